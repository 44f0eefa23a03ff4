package depgraph

import (
	"slices"
	"strings"

	"github.com/portgraph/portgraph/pkg/portage"
)

// SDKRoot is the conventional installation root of the build SDK.
const SDKRoot = "/"

// RootType filters query results by installation root.
type RootType int

const (
	// RootAll matches nodes installed to any root.
	RootAll RootType = iota
	// RootSDK matches nodes installed to the SDK root ("/").
	RootSDK
	// RootSysroot matches nodes installed to the board sysroot.
	RootSysroot
)

// nodeKey is the identity of a node within a graph: the same package may be
// installed to both the SDK and the sysroot as two distinct nodes.
type nodeKey struct {
	cpvr string
	root string
}

// PackageNode is one package installed to one root, with its forward and
// reverse adjacency. Nodes never own their neighbors; the graph owns every
// node through its identity index, and the reverse set exists purely for
// O(1) reverse traversal.
type PackageNode struct {
	Info portage.PackageIdentity
	Root string

	// SourcePaths are the filesystem paths this package is built from,
	// used by relevance queries. Kept sorted and deduplicated.
	SourcePaths []string

	deps  map[nodeKey]*PackageNode
	rdeps map[nodeKey]*PackageNode
}

// NewPackageNode creates a node for the given identity installed to root.
func NewPackageNode(info portage.PackageIdentity, root string) *PackageNode {
	return &PackageNode{
		Info:  info,
		Root:  root,
		deps:  make(map[nodeKey]*PackageNode),
		rdeps: make(map[nodeKey]*PackageNode),
	}
}

func (n *PackageNode) key() nodeKey {
	return nodeKey{cpvr: n.Info.CPVR(), root: n.Root}
}

// AddDependency records dep as a direct dependency of n and symmetrically
// records n as a reverse dependency of dep. Adding the same dependency
// twice has no effect. Self-edges are stored uninterpreted; Portage never
// produces them, and traversal is cycle-safe regardless.
func (n *PackageNode) AddDependency(dep *PackageNode) {
	n.deps[dep.key()] = dep
	dep.rdeps[n.key()] = n
}

// AddSourcePaths annotates the node with additional source paths.
func (n *PackageNode) AddSourcePaths(paths ...string) {
	for _, p := range paths {
		if !slices.Contains(n.SourcePaths, p) {
			n.SourcePaths = append(n.SourcePaths, p)
		}
	}
	slices.Sort(n.SourcePaths)
}

// Dependencies returns the direct dependencies, ordered by identity and
// root for deterministic output.
func (n *PackageNode) Dependencies() []*PackageNode {
	return sortedNodes(n.deps)
}

// ReverseDependencies returns the packages that directly depend on n,
// ordered by identity and root.
func (n *PackageNode) ReverseDependencies() []*PackageNode {
	return sortedNodes(n.rdeps)
}

// HasDependency reports whether dep is in n's direct dependency set.
func (n *PackageNode) HasDependency(dep *PackageNode) bool {
	_, ok := n.deps[dep.key()]
	return ok
}

// IsRelevant reports whether path equals or lies under any of the node's
// source paths.
func (n *PackageNode) IsRelevant(path string) bool {
	for _, sp := range n.SourcePaths {
		if path == sp || strings.HasPrefix(path, strings.TrimSuffix(sp, "/")+"/") {
			return true
		}
	}
	return false
}

// AnyRelevant reports whether any of the given paths is relevant to n.
func (n *PackageNode) AnyRelevant(paths []string) bool {
	for _, p := range paths {
		if n.IsRelevant(p) {
			return true
		}
	}
	return false
}

// String returns "cpvr (root)".
func (n *PackageNode) String() string {
	return n.Info.CPVR() + " (" + n.Root + ")"
}

// Equal reports structural equality: same identity and root, same source
// paths, and recursively equal dependency and reverse-dependency sets.
// Independently constructed but logically identical subgraphs compare
// equal. Comparison tracks visited node pairs, so it terminates on graphs
// with cycles or deep diamonds.
func (n *PackageNode) Equal(o *PackageNode) bool {
	return n.equal(o, make(map[[2]nodeKey]bool))
}

func (n *PackageNode) equal(o *PackageNode, seen map[[2]nodeKey]bool) bool {
	if n == o {
		return true
	}
	if n == nil || o == nil {
		return false
	}
	pair := [2]nodeKey{n.key(), o.key()}
	if seen[pair] {
		// Already under comparison higher up the stack; assuming
		// equality here is what makes cyclic comparison terminate.
		return true
	}
	seen[pair] = true

	if n.key() != o.key() || !slices.Equal(n.SourcePaths, o.SourcePaths) {
		return false
	}
	return equalAdjacency(n.deps, o.deps, seen) && equalAdjacency(n.rdeps, o.rdeps, seen)
}

func equalAdjacency(a, b map[nodeKey]*PackageNode, seen map[[2]nodeKey]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k, an := range a {
		bn, ok := b[k]
		if !ok || !an.equal(bn, seen) {
			return false
		}
	}
	return true
}

func sortedNodes(m map[nodeKey]*PackageNode) []*PackageNode {
	nodes := make([]*PackageNode, 0, len(m))
	for _, n := range m {
		nodes = append(nodes, n)
	}
	slices.SortFunc(nodes, func(a, b *PackageNode) int {
		if c := a.Info.Compare(b.Info); c != 0 {
			return c
		}
		return strings.Compare(a.Root, b.Root)
	})
	return nodes
}

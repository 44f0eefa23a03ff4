package depgraph

import (
	"errors"
	"fmt"

	"github.com/portgraph/portgraph/pkg/portage"
)

var (
	// ErrNodeCollision is returned by [New] when two supplied nodes
	// describe the same package and root with different edge sets or
	// source paths. This indicates inconsistent input data, e.g. two
	// different emerge runs merged incorrectly. No partial graph is
	// produced.
	ErrNodeCollision = errors.New("conflicting nodes for the same package and root")

	// ErrSysrootMismatch is returned by [New] when packages claim an
	// install root that is neither the SDK root nor the caller-supplied
	// sysroot. A sysroot with no packages installed to it is tolerated.
	ErrSysrootMismatch = errors.New("sysroot does not match observed install roots")

	// ErrTooManyRoots is returned by [New] when the supplied nodes span
	// more than two distinct install roots. Valid Portage output only
	// ever spans the SDK and one board sysroot, so this signals a bug in
	// the collaborator that produced the deps tree.
	ErrTooManyRoots = errors.New("package graph spans more than two install roots")
)

// DependencyGraph is a queryable view over the package dependency closure of
// one emerge invocation. It is built once from pre-wired nodes and is
// read-only afterward: a new build plan requires constructing a new graph.
// A fully constructed graph is safe to share across goroutines.
//
// Nodes are indexed twice: by exact full identity (a package may be
// installed to both the SDK and the sysroot as two distinct nodes), and by
// atom (multiple versions of one atom may coexist, e.g. during an upgrade).
type DependencyGraph struct {
	byCPVR map[string]map[string]*PackageNode // cpvr -> root -> node
	byAtom map[string][]*PackageNode

	sdkRoot     string
	sysrootPath string

	rootPackages []*PackageNode
	size         int
}

// New builds a graph from the given nodes, their transitive dependency
// closures, and the declared root packages (the entry points the graph was
// built to satisfy, as atoms or full identity strings).
//
// Dependency edges must already be wired with [PackageNode.AddDependency];
// New only indexes and validates. Re-submitting a structurally identical
// node is a no-op, while a conflicting description of an already-registered
// package returns ErrNodeCollision.
func New(nodes []*PackageNode, sysrootPath string, rootPackages []string) (*DependencyGraph, error) {
	g := &DependencyGraph{
		byCPVR: make(map[string]map[string]*PackageNode),
		byAtom: make(map[string][]*PackageNode),
	}

	if err := g.register(nodes); err != nil {
		return nil, err
	}
	if err := g.resolveRoots(sysrootPath); err != nil {
		return nil, err
	}

	for _, spec := range rootPackages {
		matched, err := g.lookup(spec, RootAll)
		if err != nil {
			return nil, fmt.Errorf("root package %q: %w", spec, err)
		}
		g.rootPackages = append(g.rootPackages, matched...)
	}

	return g, nil
}

// register walks the dependency closure of the supplied nodes and indexes
// every distinct (identity, root) pair exactly once.
func (g *DependencyGraph) register(nodes []*PackageNode) error {
	queue := make([]*PackageNode, len(nodes))
	copy(queue, nodes)

	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]

		cpvr := n.Info.CPVR()
		if existing, ok := g.byCPVR[cpvr][n.Root]; ok {
			if existing == n {
				continue
			}
			if !existing.Equal(n) {
				return fmt.Errorf("%w: %s", ErrNodeCollision, n)
			}
			continue
		}

		if g.byCPVR[cpvr] == nil {
			g.byCPVR[cpvr] = make(map[string]*PackageNode)
		}
		g.byCPVR[cpvr][n.Root] = n
		g.byAtom[n.Info.Atom()] = append(g.byAtom[n.Info.Atom()], n)
		g.size++

		queue = append(queue, n.Dependencies()...)
	}
	return nil
}

// resolveRoots validates the observed install roots against the caller's
// expected sysroot and records the resolved root paths.
func (g *DependencyGraph) resolveRoots(sysrootPath string) error {
	observed := make(map[string]bool)
	for _, roots := range g.byCPVR {
		for root := range roots {
			observed[root] = true
		}
	}
	if len(observed) > 2 {
		return fmt.Errorf("%w: got %d", ErrTooManyRoots, len(observed))
	}

	g.sdkRoot = SDKRoot
	g.sysrootPath = sysrootPath
	for root := range observed {
		if root == SDKRoot {
			continue
		}
		switch {
		case sysrootPath == "" && g.sysrootPath == "":
			// No expectation supplied; adopt the observed sysroot.
			g.sysrootPath = root
		case root != g.sysrootPath:
			return fmt.Errorf("%w: expected %q, packages installed to %q",
				ErrSysrootMismatch, g.sysrootPath, root)
		}
	}
	return nil
}

// newSubgraph builds the ephemeral graph used for transitive containment
// checks, rooted at the given already-registered nodes.
func (g *DependencyGraph) newSubgraph(roots []*PackageNode) (*DependencyGraph, error) {
	sub := &DependencyGraph{
		byCPVR:      make(map[string]map[string]*PackageNode),
		byAtom:      make(map[string][]*PackageNode),
		sdkRoot:     g.sdkRoot,
		sysrootPath: g.sysrootPath,
	}
	if err := sub.register(roots); err != nil {
		return nil, err
	}
	sub.rootPackages = roots
	return sub, nil
}

// Len returns the number of distinct (identity, root) nodes in the graph.
func (g *DependencyGraph) Len() int { return g.size }

// SDKRootPath returns the SDK install root ("/").
func (g *DependencyGraph) SDKRootPath() string { return g.sdkRoot }

// SysrootPath returns the board sysroot the graph was built against.
func (g *DependencyGraph) SysrootPath() string { return g.sysrootPath }

// RootPackages returns the declared entry-point nodes.
func (g *DependencyGraph) RootPackages() []*PackageNode {
	out := make([]*PackageNode, len(g.rootPackages))
	copy(out, g.rootPackages)
	return out
}

// matchesRoot reports whether the node passes the root filter.
func (g *DependencyGraph) matchesRoot(n *PackageNode, filter RootType) bool {
	switch filter {
	case RootSDK:
		return n.Root == g.sdkRoot
	case RootSysroot:
		return n.Root == g.sysrootPath
	default:
		return true
	}
}

// lookup resolves a package spec to matching nodes. A spec that parses with
// a version resolves against the exact-identity index and returns at most
// one node per root; a versionless atom returns every version at every root
// passing the filter. This single resolution step backs every public query,
// keeping the exact-vs-atom fallback consistent across the API.
func (g *DependencyGraph) lookup(spec string, filter RootType) ([]*PackageNode, error) {
	info, err := portage.Parse(spec)
	if err != nil {
		return nil, err
	}

	var candidates []*PackageNode
	if info.Version != "" {
		for _, n := range g.byCPVR[info.CPVR()] {
			candidates = append(candidates, n)
		}
	} else {
		candidates = g.byAtom[info.Atom()]
	}

	var matched []*PackageNode
	for _, n := range candidates {
		if g.matchesRoot(n, filter) {
			matched = append(matched, n)
		}
	}
	return sortNodes(matched), nil
}

// GetNodes returns the nodes matching the package spec, filtered by root.
// An unknown or absent package yields an empty result, never an error;
// errors are only returned for specs that fail to parse.
func (g *DependencyGraph) GetNodes(spec string, filter RootType) ([]*PackageNode, error) {
	return g.lookup(spec, filter)
}

// GetDependencies returns the union of the direct dependencies of every
// node matching the spec.
func (g *DependencyGraph) GetDependencies(spec string, filter RootType) ([]*PackageNode, error) {
	matched, err := g.lookup(spec, filter)
	if err != nil {
		return nil, err
	}
	return unionAdjacency(matched, (*PackageNode).Dependencies), nil
}

// GetReverseDependencies returns the union of the direct reverse
// dependencies of every node matching the spec.
func (g *DependencyGraph) GetReverseDependencies(spec string, filter RootType) ([]*PackageNode, error) {
	matched, err := g.lookup(spec, filter)
	if err != nil {
		return nil, err
	}
	return unionAdjacency(matched, (*PackageNode).ReverseDependencies), nil
}

// IsDependency reports whether any node matching depSpec is a dependency of
// any node matching srcSpec. With direct set, only the immediate dependency
// sets are consulted; otherwise the check covers the transitive closure,
// implemented by building an ephemeral subgraph rooted at the matched
// source nodes and testing containment.
func (g *DependencyGraph) IsDependency(depSpec, srcSpec string, depFilter, srcFilter RootType, direct bool) (bool, error) {
	depNodes, err := g.lookup(depSpec, depFilter)
	if err != nil {
		return false, err
	}
	srcNodes, err := g.lookup(srcSpec, srcFilter)
	if err != nil {
		return false, err
	}
	if len(depNodes) == 0 || len(srcNodes) == 0 {
		return false, nil
	}

	if direct {
		for _, src := range srcNodes {
			for _, dep := range depNodes {
				if src.HasDependency(dep) {
					return true, nil
				}
			}
		}
		return false, nil
	}

	sub, err := g.newSubgraph(srcNodes)
	if err != nil {
		return false, err
	}
	for _, dep := range depNodes {
		if sub.ContainsNode(dep) {
			return true, nil
		}
	}
	return false, nil
}

// Contains reports whether the spec matches any node in the graph,
// resolving exact identities first and falling back to atom lookup.
// Unparseable specs simply do not match.
func (g *DependencyGraph) Contains(spec string) bool {
	matched, err := g.lookup(spec, RootAll)
	return err == nil && len(matched) > 0
}

// ContainsNode reports whether the exact node (same identity and root) is
// registered in the graph.
func (g *DependencyGraph) ContainsNode(n *PackageNode) bool {
	_, ok := g.byCPVR[n.Info.CPVR()][n.Root]
	return ok
}

// Nodes returns every node reachable from the declared root packages in
// breadth-first order. Each node appears exactly once; a visited set guards
// against diamond dependencies and cycles. Order within a BFS layer is
// unspecified beyond being deterministic for a given graph.
func (g *DependencyGraph) Nodes() []*PackageNode {
	visited := make(map[nodeKey]bool, g.size)
	queue := make([]*PackageNode, 0, len(g.rootPackages))
	var out []*PackageNode

	for _, n := range g.rootPackages {
		if !visited[n.key()] {
			visited[n.key()] = true
			queue = append(queue, n)
		}
	}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		out = append(out, n)

		for _, dep := range n.Dependencies() {
			if !visited[dep.key()] {
				visited[dep.key()] = true
				queue = append(queue, dep)
			}
		}
	}
	return out
}

// AllNodes returns every registered node, including any not reachable from
// the declared root packages, ordered by identity and root. Prefer [Nodes]
// for dependency-order traversal; AllNodes is the index view used by
// serialization.
func (g *DependencyGraph) AllNodes() []*PackageNode {
	all := make([]*PackageNode, 0, g.size)
	for _, roots := range g.byCPVR {
		for _, n := range roots {
			all = append(all, n)
		}
	}
	return sortNodes(all)
}

// IsRelevant reports whether any node in the graph is relevant to path.
func (g *DependencyGraph) IsRelevant(path string) bool {
	return g.AnyRelevant([]string{path})
}

// AnyRelevant reports whether any node is relevant to any of the paths.
func (g *DependencyGraph) AnyRelevant(paths []string) bool {
	for _, roots := range g.byCPVR {
		for _, n := range roots {
			if n.AnyRelevant(paths) {
				return true
			}
		}
	}
	return false
}

// GetRelevantNodes returns every node whose source paths cover any of the
// given paths, filtered by root.
func (g *DependencyGraph) GetRelevantNodes(paths []string, filter RootType) []*PackageNode {
	var out []*PackageNode
	for _, roots := range g.byCPVR {
		for _, n := range roots {
			if g.matchesRoot(n, filter) && n.AnyRelevant(paths) {
				out = append(out, n)
			}
		}
	}
	return sortNodes(out)
}

// unionAdjacency merges the adjacency of the matched nodes, deduplicating
// by identity and root.
func unionAdjacency(matched []*PackageNode, adjacency func(*PackageNode) []*PackageNode) []*PackageNode {
	seen := make(map[nodeKey]bool)
	var out []*PackageNode
	for _, n := range matched {
		for _, adj := range adjacency(n) {
			if !seen[adj.key()] {
				seen[adj.key()] = true
				out = append(out, adj)
			}
		}
	}
	return sortNodes(out)
}

func sortNodes(nodes []*PackageNode) []*PackageNode {
	m := make(map[nodeKey]*PackageNode, len(nodes))
	for _, n := range nodes {
		m[n.key()] = n
	}
	return sortedNodes(m)
}

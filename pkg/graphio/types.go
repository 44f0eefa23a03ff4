// Package graphio serializes dependency graphs to and from their canonical
// flat document format.
//
// The format is human-readable JSON (bson-tagged for storage backends) and
// designed for round-trip fidelity: build → export → re-import produces a
// structurally equal graph. Nodes and edges are sorted for deterministic
// output, so exported documents diff cleanly across runs.
package graphio

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/portgraph/portgraph/pkg/depgraph"
	"github.com/portgraph/portgraph/pkg/portage"
)

// Document is the canonical serialization format for dependency graphs.
// Used for CLI output, storage, caching, and the HTTP API.
type Document struct {
	// Board is the build target the graph was extracted for (optional).
	Board string `json:"board,omitempty" bson:"board,omitempty"`

	// Sysroot is the board install root, e.g. "/build/amd64-generic".
	Sysroot string `json:"sysroot" bson:"sysroot"`

	// RootPackages are the declared entry points, as CPVR strings.
	RootPackages []string `json:"root_packages,omitempty" bson:"root_packages,omitempty"`

	Nodes []Node `json:"nodes" bson:"nodes"`
	Edges []Edge `json:"edges" bson:"edges"`
}

// Node is one package-at-a-root vertex in serialized form.
type Node struct {
	CPVR        string   `json:"cpvr" bson:"cpvr"`
	Root        string   `json:"root" bson:"root"`
	SourcePaths []string `json:"source_paths,omitempty" bson:"source_paths,omitempty"`
}

// Edge is a directed dependency between two nodes. Roots are part of the
// endpoint identity because the same package may exist at both roots.
type Edge struct {
	From     string `json:"from" bson:"from"`
	FromRoot string `json:"from_root" bson:"from_root"`
	To       string `json:"to" bson:"to"`
	ToRoot   string `json:"to_root" bson:"to_root"`
}

// FromGraph converts a graph to its serialization format.
// Nodes and edges are sorted for deterministic output.
func FromGraph(g *depgraph.DependencyGraph) Document {
	doc := Document{Sysroot: g.SysrootPath()}

	for _, n := range g.RootPackages() {
		doc.RootPackages = append(doc.RootPackages, n.Info.CPVR())
	}
	slices.Sort(doc.RootPackages)
	doc.RootPackages = slices.Compact(doc.RootPackages)

	for _, n := range g.AllNodes() {
		doc.Nodes = append(doc.Nodes, Node{
			CPVR:        n.Info.CPVR(),
			Root:        n.Root,
			SourcePaths: slices.Clone(n.SourcePaths),
		})
		for _, dep := range n.Dependencies() {
			doc.Edges = append(doc.Edges, Edge{
				From:     n.Info.CPVR(),
				FromRoot: n.Root,
				To:       dep.Info.CPVR(),
				ToRoot:   dep.Root,
			})
		}
	}

	slices.SortFunc(doc.Edges, func(a, b Edge) int {
		return strings.Compare(
			a.From+"\x00"+a.FromRoot+"\x00"+a.To+"\x00"+a.ToRoot,
			b.From+"\x00"+b.FromRoot+"\x00"+b.To+"\x00"+b.ToRoot,
		)
	})
	return doc
}

// ToGraph converts a document back to a dependency graph.
// Returns an error for malformed package strings, dangling edge endpoints,
// or graph constraint violations.
func ToGraph(doc Document) (*depgraph.DependencyGraph, error) {
	type key struct{ cpvr, root string }
	nodes := make(map[key]*depgraph.PackageNode, len(doc.Nodes))

	for _, nd := range doc.Nodes {
		info, err := portage.Parse(nd.CPVR)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", nd.CPVR, err)
		}
		n := depgraph.NewPackageNode(info, nd.Root)
		n.AddSourcePaths(nd.SourcePaths...)
		nodes[key{nd.CPVR, nd.Root}] = n
	}

	for _, e := range doc.Edges {
		from, ok := nodes[key{e.From, e.FromRoot}]
		if !ok {
			return nil, fmt.Errorf("edge %s→%s: unknown source node", e.From, e.To)
		}
		to, ok := nodes[key{e.To, e.ToRoot}]
		if !ok {
			return nil, fmt.Errorf("edge %s→%s: unknown target node", e.From, e.To)
		}
		from.AddDependency(to)
	}

	all := make([]*depgraph.PackageNode, 0, len(nodes))
	for _, n := range nodes {
		all = append(all, n)
	}
	return depgraph.New(all, doc.Sysroot, doc.RootPackages)
}

// UnmarshalDocument deserializes JSON bytes to a Document.
func UnmarshalDocument(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// Package depstree ingests the deps-tree document produced by the emerge
// collaborator and converts it into a wired dependency graph.
//
// The document is the flat interchange format between the Portage invocation
// and the graph engine: a sysroot path, a nested package tree per install
// root, and an optional package-to-source-paths mapping. The tree maps each
// full package identity (CPVR) to its action, its dependencies (recursively
// in the same shape), and optionally rev_deps: identities known to depend
// on the package that are not derivable by recursion.
package depstree

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/portgraph/portgraph/pkg/depgraph"
	"github.com/portgraph/portgraph/pkg/observability"
	"github.com/portgraph/portgraph/pkg/portage"
)

// Action is what emerge plans to do with a package.
type Action string

const (
	ActionMerge     Action = "merge"
	ActionNomerge   Action = "nomerge"
	ActionUninstall Action = "uninstall"
)

// Entry is one package record in a deps tree.
type Entry struct {
	Action Action `json:"action,omitempty" bson:"action,omitempty"`

	// Deps maps dependency CPVR strings to nested entries.
	Deps Tree `json:"deps,omitempty" bson:"deps,omitempty"`

	// RevDeps lists CPVR strings known to depend on this package,
	// used only to seed reverse edges not derivable by recursion.
	RevDeps []string `json:"rev_deps,omitempty" bson:"rev_deps,omitempty"`
}

// Tree maps full package identity strings to their entries.
type Tree map[string]*Entry

// Document is the complete deps-tree interchange format. Packages are
// installed to the board sysroot; SDKPackages (build-time dependencies) are
// installed to the SDK root "/".
type Document struct {
	Sysroot     string              `json:"sysroot" bson:"sysroot"`
	Packages    Tree                `json:"packages" bson:"packages"`
	SDKPackages Tree                `json:"sdk_packages,omitempty" bson:"sdk_packages,omitempty"`
	SourcePaths map[string][]string `json:"source_paths,omitempty" bson:"source_paths,omitempty"`
}

// Read decodes a deps-tree document from JSON.
func Read(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode deps tree: %w", err)
	}
	return &doc, nil
}

// ReadFile reads and decodes a deps-tree document from a JSON file.
func ReadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}

// Graph converts the document into a dependency graph: one node per
// distinct (identity, root) pair, edges wired from the nested trees and
// rev_deps seeds, source-path annotations attached, and the top-level tree
// keys declared as root packages.
func (d *Document) Graph() (*depgraph.DependencyGraph, error) {
	start := time.Now()

	b := &builder{nodes: make(map[string]map[string]*depgraph.PackageNode)}
	if err := b.walk(d.Packages, d.Sysroot); err != nil {
		return nil, err
	}
	if err := b.walk(d.SDKPackages, depgraph.SDKRoot); err != nil {
		return nil, err
	}

	for cpvr, paths := range d.SourcePaths {
		for _, n := range b.nodes[cpvr] {
			n.AddSourcePaths(paths...)
		}
	}

	var rootPackages []string
	for cpvr := range d.Packages {
		rootPackages = append(rootPackages, cpvr)
	}
	for cpvr := range d.SDKPackages {
		rootPackages = append(rootPackages, cpvr)
	}

	var all []*depgraph.PackageNode
	for _, roots := range b.nodes {
		for _, n := range roots {
			all = append(all, n)
		}
	}

	g, err := depgraph.New(all, d.Sysroot, rootPackages)
	observability.Graph().OnBuildComplete(len(all), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return g, nil
}

type builder struct {
	nodes map[string]map[string]*depgraph.PackageNode // cpvr -> root -> node
}

func (b *builder) node(cpvr, root string) (*depgraph.PackageNode, error) {
	if n, ok := b.nodes[cpvr][root]; ok {
		return n, nil
	}
	info, err := portage.Parse(cpvr)
	if err != nil {
		return nil, fmt.Errorf("deps tree entry %q: %w", cpvr, err)
	}
	n := depgraph.NewPackageNode(info, root)
	if b.nodes[cpvr] == nil {
		b.nodes[cpvr] = make(map[string]*depgraph.PackageNode)
	}
	b.nodes[cpvr][root] = n
	return n, nil
}

func (b *builder) walk(tree Tree, root string) error {
	return b.walkFrom(tree, root, make(map[string]bool))
}

// walkFrom wires edges for every entry in the tree. The visited set keys on
// cpvr within one root, so repeated or cyclic subtrees are expanded once.
func (b *builder) walkFrom(tree Tree, root string, visited map[string]bool) error {
	for cpvr, entry := range tree {
		n, err := b.node(cpvr, root)
		if err != nil {
			return err
		}
		if entry == nil {
			continue
		}

		for _, rdep := range entry.RevDeps {
			rn, err := b.node(rdep, root)
			if err != nil {
				return err
			}
			rn.AddDependency(n)
		}

		if visited[cpvr] {
			continue
		}
		visited[cpvr] = true

		for depCPVR := range entry.Deps {
			dn, err := b.node(depCPVR, root)
			if err != nil {
				return err
			}
			n.AddDependency(dn)
		}
		if err := b.walkFrom(entry.Deps, root, visited); err != nil {
			return err
		}
	}
	return nil
}

// Package render converts dependency graphs to Graphviz DOT and rasterized
// formats.
//
// Nodes are styled by install root: sysroot packages are drawn solid,
// SDK packages dashed with grey fill, and declared root packages get a
// bold outline so entry points stand out in large graphs.
package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/portgraph/portgraph/pkg/depgraph"
)

// Options configures DOT generation.
type Options struct {
	// Detailed includes the install root and source paths in node labels.
	// When false, only the package identity is shown.
	Detailed bool

	// ReachableOnly limits output to nodes reachable from the declared
	// root packages. Unreachable index entries are dropped.
	ReachableOnly bool
}

// ToDOT converts a dependency graph to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG] or [RenderPNG].
func ToDOT(g *depgraph.DependencyGraph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph deps {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=24, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	roots := make(map[*depgraph.PackageNode]bool)
	for _, n := range g.RootPackages() {
		roots[n] = true
	}

	nodes := g.AllNodes()
	if opts.ReachableOnly {
		nodes = g.Nodes()
	}

	for _, n := range nodes {
		label := fmtLabel(n, opts.Detailed)
		attrs := fmtAttrs(n, roots[n], label)
		fmt.Fprintf(&buf, "  %q [%s];\n", nodeID(n), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, n := range nodes {
		for _, dep := range n.Dependencies() {
			fmt.Fprintf(&buf, "  %q -> %q;\n", nodeID(n), nodeID(dep))
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// nodeID disambiguates the same package installed at both roots.
func nodeID(n *depgraph.PackageNode) string {
	if n.Root == depgraph.SDKRoot {
		return n.Info.CPVR() + " [sdk]"
	}
	return n.Info.CPVR()
}

func fmtLabel(n *depgraph.PackageNode, detailed bool) string {
	if !detailed {
		return nodeID(n)
	}
	parts := []string{nodeID(n), "root: " + n.Root}
	for _, p := range n.SourcePaths {
		parts = append(parts, "src: "+p)
	}
	return strings.Join(parts, "\n")
}

func fmtAttrs(n *depgraph.PackageNode, isRoot bool, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if n.Root == depgraph.SDKRoot {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey")
	}
	if isRoot {
		attrs = append(attrs, "penwidth=3")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

// RenderPDF renders a DOT graph as PDF via SVG conversion. Requires
// rsvg-convert (librsvg) on the PATH.
func RenderPDF(dot string) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return ToPDF(svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion. A scale of 2.0
// produces a 2x resolution image for high-DPI displays. Requires
// rsvg-convert (librsvg) on the PATH.
func RenderPNG(dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return ToPNG(svg, scale)
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the SVG root element so the image scales to
// its container instead of using Graphviz's fixed point dimensions.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// Package pkg provides the core libraries for portgraph dependency analysis.
//
// # Overview
//
// Portgraph builds queryable dependency graphs from Portage build targets.
// The pkg directory is organized by concern:
//
//  1. [portage] - Package identity parsing and version comparison
//  2. [depgraph] - The dual-root dependency graph and its queries
//  3. [depstree] - Ingestion of emerge dependency tree documents
//  4. [graphio] - Flat JSON serialization with round-trip fidelity
//  5. [emerge] - Extraction by running the configured emerge command
//  6. [render] - Graphviz DOT, SVG, PDF, and PNG output
//  7. [store] - Graph persistence (memory, MongoDB)
//  8. [cache] - Extraction result caching (file, redis)
//  9. [config] - TOML configuration loading
//
// # Architecture
//
// The typical data flow through portgraph:
//
//	Portage (emerge --pretend)
//	         ↓
//	    [emerge] package (run and decode the extraction command)
//	         ↓
//	    [depstree] package (wire the tree into a graph)
//	         ↓
//	    [depgraph] package (queries: deps, rdeps, reachability, relevance)
//	         ↓
//	    [graphio]/[render] output (JSON, DOT, SVG, PDF, PNG)
//
// # Quick Start
//
//	runner := emerge.NewRunner(config.DefaultExtractCommand)
//	g, err := runner.ExtractGraph(ctx, "amd64-generic")
//	if err != nil {
//	    return err
//	}
//	deps, err := g.GetDependencies("chromeos-base/chromeos-chrome", depgraph.RootSysroot)
package pkg

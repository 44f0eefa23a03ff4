// Package depgraph models the package dependency resolution output of one
// emerge invocation as a navigable, queryable directed graph.
//
// The graph spans at most two install roots: the build SDK ("/") and,
// optionally, one board sysroot (e.g. "/build/target"). The same package may
// be installed to both roots as two distinct nodes with independent edge
// sets: a build-time dependency (BDEPEND) lands in the SDK while a runtime
// dependency lands in the sysroot.
//
// Graphs are constructed once from pre-wired [PackageNode] values (typically
// produced by the depstree package from an emerge deps tree) and are
// read-only afterward. Lookups accept both exact identities
// ("cat/pkg-1.0-r1"), which match at most one node per root, and versionless
// atoms ("cat/pkg"), which match every installed version.
//
// Construction validates its input and fails with [ErrNodeCollision],
// [ErrSysrootMismatch], or [ErrTooManyRoots] rather than repairing the
// graph. Queries, by contrast, never fail for absence: asking about a
// package that is not installed returns an empty result.
package depgraph

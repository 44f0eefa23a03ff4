package depgraph

import (
	"errors"
	"testing"
)

// buildScenario constructs the canonical two-root fixture:
//
//	virtual/target-foo-1.2.3 (sysroot)
//	├── cat/dep-1.0.0-r1 (sysroot) ──> cat/depdep-2.0.1-r5 (sysroot)
//	├── cat/dep-1.0.0-r1 (sdk)     ──> cat/depdep-2.0.1-r5 (sysroot)
//	└── cat/bdep-3.4 (sdk)
func buildScenario(t *testing.T) *DependencyGraph {
	t.Helper()
	const sysroot = "/build/target"

	target := mustNode(t, "virtual/target-foo-1.2.3", sysroot)
	dep := mustNode(t, "cat/dep-1.0.0-r1", sysroot)
	depSDK := mustNode(t, "cat/dep-1.0.0-r1", SDKRoot)
	bdep := mustNode(t, "cat/bdep-3.4", SDKRoot)
	depdep := mustNode(t, "cat/depdep-2.0.1-r5", sysroot)
	depdep.AddSourcePaths("/cat/depdep", "/other/depdep")

	target.AddDependency(dep)
	target.AddDependency(depSDK)
	target.AddDependency(bdep)
	dep.AddDependency(depdep)
	depSDK.AddDependency(depdep)

	g, err := New([]*PackageNode{target}, sysroot, []string{"virtual/target-foo-1.2.3"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return g
}

func TestScenario(t *testing.T) {
	g := buildScenario(t)

	if got := g.Len(); got != 5 {
		t.Errorf("Len() = %d, want 5", got)
	}
	if got := g.SDKRootPath(); got != "/" {
		t.Errorf("SDKRootPath() = %q, want /", got)
	}
	if got := g.SysrootPath(); got != "/build/target" {
		t.Errorf("SysrootPath() = %q, want /build/target", got)
	}

	transitive, err := g.IsDependency("cat/depdep-2.0.1-r5", "virtual/target-foo-1.2.3", RootAll, RootAll, false)
	if err != nil || !transitive {
		t.Errorf("transitive IsDependency = %v, %v; want true", transitive, err)
	}
	direct, err := g.IsDependency("cat/depdep-2.0.1-r5", "virtual/target-foo-1.2.3", RootAll, RootAll, true)
	if err != nil || direct {
		t.Errorf("direct IsDependency = %v, %v; want false", direct, err)
	}

	rdeps, err := g.GetReverseDependencies("cat/depdep-2.0.1-r5", RootAll)
	if err != nil {
		t.Fatalf("GetReverseDependencies: %v", err)
	}
	if len(rdeps) != 2 {
		t.Fatalf("reverse dependencies = %v, want both cat/dep instances", rdeps)
	}
	for _, n := range rdeps {
		if n.Info.Atom() != "cat/dep" {
			t.Errorf("unexpected reverse dependency %s", n)
		}
	}
}

func TestRootFilters(t *testing.T) {
	g := buildScenario(t)

	all, err := g.GetNodes("cat/dep", RootAll)
	if err != nil || len(all) != 2 {
		t.Fatalf("GetNodes(all) = %v, %v; want 2 nodes", all, err)
	}
	sdk, err := g.GetNodes("cat/dep", RootSDK)
	if err != nil || len(sdk) != 1 || sdk[0].Root != SDKRoot {
		t.Fatalf("GetNodes(sdk) = %v, %v; want the SDK instance", sdk, err)
	}
	sysroot, err := g.GetNodes("cat/dep", RootSysroot)
	if err != nil || len(sysroot) != 1 || sysroot[0].Root != "/build/target" {
		t.Fatalf("GetNodes(sysroot) = %v, %v; want the sysroot instance", sysroot, err)
	}
}

func TestAtomVsExactResolution(t *testing.T) {
	old := mustNode(t, "cat/pkg-1.0", "/build/target")
	cur := mustNode(t, "cat/pkg-2.0", "/build/target")

	g, err := New([]*PackageNode{old, cur}, "/build/target", nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	byAtom, err := g.GetNodes("cat/pkg", RootAll)
	if err != nil || len(byAtom) != 2 {
		t.Fatalf("atom lookup = %v, %v; want both versions", byAtom, err)
	}
	exact, err := g.GetNodes("cat/pkg-1.0", RootAll)
	if err != nil || len(exact) != 1 || exact[0] != old {
		t.Fatalf("exact lookup = %v, %v; want only 1.0", exact, err)
	}
	missing, err := g.GetNodes("cat/pkg-3.0", RootAll)
	if err != nil || len(missing) != 0 {
		t.Fatalf("absent version = %v, %v; want empty, no error", missing, err)
	}
	unknown, err := g.GetNodes("cat/unknown", RootAll)
	if err != nil || len(unknown) != 0 {
		t.Fatalf("unknown atom = %v, %v; want empty, no error", unknown, err)
	}
}

func TestContains(t *testing.T) {
	g := buildScenario(t)

	for _, spec := range []string{"cat/dep-1.0.0-r1", "cat/dep", "virtual/target-foo"} {
		if !g.Contains(spec) {
			t.Errorf("Contains(%q) = false, want true", spec)
		}
	}
	for _, spec := range []string{"cat/dep-9.9", "cat/nope", ""} {
		if g.Contains(spec) {
			t.Errorf("Contains(%q) = true, want false", spec)
		}
	}
}

func TestBFSCompleteness(t *testing.T) {
	g := buildScenario(t)

	seen := make(map[string]int)
	prevDepth := 0
	depth := map[string]int{"virtual/target-foo-1.2.3 (/build/target)": 0}

	for _, n := range g.Nodes() {
		seen[n.String()]++
		d, ok := depth[n.String()]
		if !ok {
			t.Fatalf("BFS yielded unreachable node %s", n)
		}
		// BFS yields nodes in non-decreasing layer order.
		if d < prevDepth {
			t.Errorf("BFS layering violated at %s", n)
		}
		prevDepth = d
		for _, dep := range n.Dependencies() {
			if _, ok := depth[dep.String()]; !ok {
				depth[dep.String()] = d + 1
			}
		}
	}

	if len(seen) != g.Len() {
		t.Errorf("BFS visited %d distinct nodes, want %d", len(seen), g.Len())
	}
	for s, count := range seen {
		// Diamond: depdep is reachable via both cat/dep instances but
		// must still appear exactly once.
		if count != 1 {
			t.Errorf("node %s yielded %d times", s, count)
		}
	}
}

func TestIdempotentReAdd(t *testing.T) {
	const sysroot = "/build/target"
	build := func() *PackageNode {
		a := mustNode(t, "cat/a-1.0", sysroot)
		b := mustNode(t, "cat/b-1.0", sysroot)
		a.AddDependency(b)
		return a
	}

	// The same node object twice, and a structurally equal twin.
	a := build()
	g, err := New([]*PackageNode{a, a, build()}, sysroot, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := g.Len(); got != 2 {
		t.Errorf("Len() = %d, want 2", got)
	}
}

func TestNodeCollision(t *testing.T) {
	const sysroot = "/build/target"

	a1 := mustNode(t, "cat/a-1.0", sysroot)
	a2 := mustNode(t, "cat/a-1.0", sysroot)
	a2.AddDependency(mustNode(t, "cat/b-1.0", sysroot))

	_, err := New([]*PackageNode{a1, a2}, sysroot, nil)
	if !errors.Is(err, ErrNodeCollision) {
		t.Errorf("New = %v, want ErrNodeCollision", err)
	}
}

func TestTooManyRoots(t *testing.T) {
	nodes := []*PackageNode{
		mustNode(t, "cat/a-1.0", "/"),
		mustNode(t, "cat/b-1.0", "/build/target"),
		mustNode(t, "cat/c-1.0", "/build/other"),
	}
	_, err := New(nodes, "/build/target", nil)
	if !errors.Is(err, ErrTooManyRoots) {
		t.Errorf("New = %v, want ErrTooManyRoots", err)
	}
}

func TestSysrootMismatch(t *testing.T) {
	nodes := []*PackageNode{mustNode(t, "cat/a-1.0", "/build/other")}

	if _, err := New(nodes, "/build/target", nil); !errors.Is(err, ErrSysrootMismatch) {
		t.Errorf("New = %v, want ErrSysrootMismatch", err)
	}

	// An expected sysroot with no packages installed to it is tolerated.
	sdkOnly := []*PackageNode{mustNode(t, "cat/a-1.0", "/")}
	g, err := New(sdkOnly, "/build/target", nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := g.SysrootPath(); got != "/build/target" {
		t.Errorf("SysrootPath() = %q, want /build/target", got)
	}
}

func TestEdgeSymmetryInvariant(t *testing.T) {
	g := buildScenario(t)

	for _, n := range g.Nodes() {
		for _, dep := range n.Dependencies() {
			found := false
			for _, back := range dep.ReverseDependencies() {
				if back == n {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("%s missing from reverse dependencies of %s", n, dep)
			}
		}
		for _, rdep := range n.ReverseDependencies() {
			if !rdep.HasDependency(n) {
				t.Errorf("%s missing from dependencies of %s", n, rdep)
			}
		}
	}
}

func TestRelevance(t *testing.T) {
	g := buildScenario(t)

	if !g.IsRelevant("/cat/depdep") {
		t.Error("IsRelevant(/cat/depdep) = false, want true")
	}
	if g.IsRelevant("/unrelated/path") {
		t.Error("IsRelevant(/unrelated/path) = true, want false")
	}
	if !g.AnyRelevant([]string{"/unrelated/path", "/other/depdep/file"}) {
		t.Error("AnyRelevant should match the second path")
	}

	nodes := g.GetRelevantNodes([]string{"/cat/depdep"}, RootAll)
	if len(nodes) != 1 || nodes[0].Info.Atom() != "cat/depdep" {
		t.Errorf("GetRelevantNodes = %v, want the depdep node", nodes)
	}
	if got := g.GetRelevantNodes([]string{"/cat/depdep"}, RootSDK); len(got) != 0 {
		t.Errorf("GetRelevantNodes(sdk) = %v, want empty", got)
	}
}

func TestIsDependencyFilters(t *testing.T) {
	g := buildScenario(t)

	// cat/bdep is a direct SDK dependency of the target.
	got, err := g.IsDependency("cat/bdep", "virtual/target-foo", RootSDK, RootSysroot, true)
	if err != nil || !got {
		t.Errorf("IsDependency(bdep@sdk) = %v, %v; want true", got, err)
	}
	// ...but not installed to the sysroot.
	got, err = g.IsDependency("cat/bdep", "virtual/target-foo", RootSysroot, RootAll, false)
	if err != nil || got {
		t.Errorf("IsDependency(bdep@sysroot) = %v, %v; want false", got, err)
	}
	// Absent packages are not dependencies and not errors.
	got, err = g.IsDependency("cat/nope", "virtual/target-foo", RootAll, RootAll, false)
	if err != nil || got {
		t.Errorf("IsDependency(absent) = %v, %v; want false, nil", got, err)
	}
}

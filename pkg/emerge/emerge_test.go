package emerge

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/portgraph/portgraph/pkg/cache"
	"github.com/portgraph/portgraph/pkg/errors"
)

const treeJSON = `{
  "sysroot": "/build/amd64-generic",
  "packages": {
    "virtual/target-os-1.2.3": {
      "action": "merge",
      "deps": {
        "sys-apps/attr-2.5.1": {"action": "merge"}
      }
    }
  },
  "sdk_packages": {
    "dev-util/meson-1.3.0": {"action": "nomerge"}
  }
}`

// fixtureCommand writes the tree fixture to disk and returns a command
// line that emits it on stdout.
func fixtureCommand(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "deps.json")
	if err := os.WriteFile(path, []byte(treeJSON), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return "cat " + path
}

func TestExtractTree(t *testing.T) {
	r := NewRunner(fixtureCommand(t))

	doc, err := r.ExtractTree(context.Background(), "amd64-generic")
	if err != nil {
		t.Fatalf("ExtractTree: %v", err)
	}
	if doc.Sysroot != "/build/amd64-generic" {
		t.Errorf("sysroot = %q", doc.Sysroot)
	}
	if len(doc.Packages) != 1 || len(doc.SDKPackages) != 1 {
		t.Errorf("packages = %d, sdk packages = %d", len(doc.Packages), len(doc.SDKPackages))
	}
}

func TestExtractGraph(t *testing.T) {
	r := NewRunner(fixtureCommand(t))

	g, err := r.ExtractGraph(context.Background(), "amd64-generic")
	if err != nil {
		t.Fatalf("ExtractGraph: %v", err)
	}
	if g.Len() != 3 {
		t.Errorf("Len = %d, want 3", g.Len())
	}
	if !g.Contains("sys-apps/attr") {
		t.Error("graph missing extracted dependency")
	}
}

func TestExtractUsesCache(t *testing.T) {
	ctx := context.Background()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer fc.Close()
	keyer := cache.NewDefaultKeyer()

	// Seed the cache under the key the runner will compute. The command
	// itself points at a binary that does not exist, so a hit is the only
	// way the extraction can succeed.
	const command = "definitely-not-a-real-binary-xyz {board}"
	key := keyer.DepsTreeKey("kevin", command)
	if err := fc.Set(ctx, key, []byte(treeJSON), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}

	r := NewRunner(command, WithCache(fc, keyer))
	doc, err := r.ExtractTree(ctx, "kevin")
	if err != nil {
		t.Fatalf("ExtractTree should hit cache: %v", err)
	}
	if doc.Sysroot != "/build/amd64-generic" {
		t.Errorf("sysroot = %q", doc.Sysroot)
	}
}

func TestExtractErrors(t *testing.T) {
	ctx := context.Background()

	// Invalid board names are rejected before any subprocess runs.
	r := NewRunner("cat /dev/null")
	if _, err := r.ExtractTree(ctx, "Bad Board!"); errors.GetCode(err) != errors.ErrCodeInvalidBoard {
		t.Errorf("invalid board: code = %v", errors.GetCode(err))
	}

	// Missing binary.
	r = NewRunner("definitely-not-a-real-binary-xyz")
	if _, err := r.ExtractTree(ctx, "kevin"); errors.GetCode(err) != errors.ErrCodeExtract {
		t.Errorf("missing binary: code = %v", errors.GetCode(err))
	}

	// Empty command.
	r = NewRunner("   ")
	if _, err := r.ExtractTree(ctx, "kevin"); errors.GetCode(err) != errors.ErrCodeInvalidInput {
		t.Errorf("empty command: code = %v", errors.GetCode(err))
	}

	// Output that is not a deps tree.
	path := filepath.Join(t.TempDir(), "garbage")
	if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	r = NewRunner("cat " + path)
	if _, err := r.ExtractTree(ctx, "kevin"); errors.GetCode(err) != errors.ErrCodeExtract {
		t.Errorf("garbage output: code = %v", errors.GetCode(err))
	}
}

func TestBoardSubstitution(t *testing.T) {
	if got := expand("emerge-{board} -p {board}", "kevin"); got != "emerge-kevin -p kevin" {
		t.Errorf("expand = %q", got)
	}
	if got := expand("emerge -p", "kevin"); got != "emerge -p" {
		t.Errorf("expand without placeholder = %q", got)
	}
}

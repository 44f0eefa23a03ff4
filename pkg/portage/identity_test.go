package portage

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		spec string
		want PackageIdentity
	}{
		{
			name: "FullCPVR",
			spec: "cat/pkg-1.2.3-r4",
			want: PackageIdentity{Category: "cat", Name: "pkg", Version: "1.2.3", Revision: 4},
		},
		{
			name: "CPVNoRevision",
			spec: "cat/pkg-1.2.3",
			want: PackageIdentity{Category: "cat", Name: "pkg", Version: "1.2.3"},
		},
		{
			name: "Atom",
			spec: "cat/pkg",
			want: PackageIdentity{Category: "cat", Name: "pkg"},
		},
		{
			name: "NoCategory",
			spec: "pkg-1.0",
			want: PackageIdentity{Name: "pkg", Version: "1.0"},
		},
		{
			name: "HyphenatedName",
			spec: "sys-apps/gawk-ng-5.1.0-r2",
			want: PackageIdentity{Category: "sys-apps", Name: "gawk-ng", Version: "5.1.0", Revision: 2},
		},
		{
			name: "SuffixedVersion",
			spec: "dev-lang/python-3.11_rc1",
			want: PackageIdentity{Category: "dev-lang", Name: "python", Version: "3.11_rc1"},
		},
		{
			name: "ExplicitRevisionZero",
			spec: "cat/pkg-1.0-r0",
			want: PackageIdentity{Category: "cat", Name: "pkg", Version: "1.0"},
		},
		{
			name: "NameEndsLikeRevision",
			spec: "cat/pkg-r1",
			want: PackageIdentity{Category: "cat", Name: "pkg-r1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.spec)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.spec, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.spec, got, tt.want)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	for _, spec := range []string{"", "/", "cat/", "/pkg", "a/b/c", "cat/-1.0"} {
		if _, err := Parse(spec); !errors.Is(err, ErrParse) {
			t.Errorf("Parse(%q) err = %v, want ErrParse", spec, err)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	specs := []string{
		"cat/pkg-1.2.3-r4",
		"cat/pkg-1.2.3",
		"cat/pkg",
		"sys-apps/gawk-ng-5.1.0_beta1_p2-r10",
		"virtual/target-foo-1.2.3",
	}
	for _, spec := range specs {
		p, err := Parse(spec)
		if err != nil {
			t.Fatalf("Parse(%q): %v", spec, err)
		}
		if got := p.CPVR(); got != spec {
			t.Errorf("Parse(%q).CPVR() = %q", spec, got)
		}
		again, err := Parse(p.CPVR())
		if err != nil {
			t.Fatalf("re-Parse(%q): %v", p.CPVR(), err)
		}
		if again != p {
			t.Errorf("round-trip mismatch: %+v vs %+v", again, p)
		}
	}
}

func TestFormatting(t *testing.T) {
	p := PackageIdentity{Category: "cat", Name: "pkg", Version: "1.0", Revision: 2}

	if got, want := p.Atom(), "cat/pkg"; got != want {
		t.Errorf("Atom() = %q, want %q", got, want)
	}
	if got, want := p.CPV(), "cat/pkg-1.0"; got != want {
		t.Errorf("CPV() = %q, want %q", got, want)
	}
	if got, want := p.CPVR(), "cat/pkg-1.0-r2"; got != want {
		t.Errorf("CPVR() = %q, want %q", got, want)
	}
	if got, want := p.RelativeEbuildPath(), "cat/pkg/pkg-1.0-r2.ebuild"; got != want {
		t.Errorf("RelativeEbuildPath() = %q, want %q", got, want)
	}

	// Revision zero formats without a suffix.
	zero := p.WithRevision(0)
	if got, want := zero.CPVR(), "cat/pkg-1.0"; got != want {
		t.Errorf("CPVR() = %q, want %q", got, want)
	}
}

func TestEqual(t *testing.T) {
	a, _ := Parse("cat/pkg-1.0")
	b, _ := Parse("cat/pkg-1.0-r0")
	c, _ := Parse("cat/pkg-1.00")
	d, _ := Parse("cat/pkg-1.0-r1")

	if !a.Equal(b) {
		t.Error("explicit -r0 should equal implicit revision zero")
	}
	if !a.Equal(c) {
		t.Error("1.0 and 1.00 should compare equal under version semantics")
	}
	if a.Equal(d) {
		t.Error("different revisions must not be equal")
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"a/pkg-1.0", "b/pkg-1.0", -1}, // atom first
		{"cat/pkg-1.0", "cat/pkg-2.0", -1},
		{"cat/pkg-1.0", "cat/pkg-1.0-r1", -1}, // revision tiebreak
		{"cat/pkg-1.0-r2", "cat/pkg-1.0-r2", 0},
		{"cat/pkg-1.0_rc1", "cat/pkg-1.0", -1},
	}
	for _, tt := range tests {
		a, _ := Parse(tt.a)
		b, _ := Parse(tt.b)
		if got := a.Compare(b); got != tt.want {
			t.Errorf("Compare(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
		if tt.want < 0 && !a.Less(b) {
			t.Errorf("Less(%q, %q) = false, want true", tt.a, tt.b)
		}
	}
}

func TestImmutability(t *testing.T) {
	p, _ := Parse("cat/pkg-1.0-r1")

	bumped := p.WithRevision(2)
	if p.Revision != 1 || bumped.Revision != 2 {
		t.Errorf("WithRevision mutated receiver: %+v / %+v", p, bumped)
	}

	next := p.WithVersion("2.0")
	if next.Version != "2.0" || next.Revision != 0 {
		t.Errorf("WithVersion = %+v, want version 2.0 revision 0", next)
	}
	if p.Version != "1.0" {
		t.Errorf("WithVersion mutated receiver: %+v", p)
	}
}

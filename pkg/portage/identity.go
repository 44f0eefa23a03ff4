// Package portage implements Portage package identity parsing and
// version-comparison semantics.
//
// A fully specified package is written "category/name-version-rN" (the CPVR
// form). The version follows the Portage grammar: dot-separated numeric
// components, an optional trailing letter, and optional _alpha/_beta/_pre/
// _rc/_p suffixes. The revision suffix -rN is omitted when the revision is
// zero. Looser forms are also accepted: a bare "category/name" atom, or a
// category-less "name-version" where the call site cannot know the category.
//
// PackageIdentity values are immutable: derive changed identities with
// WithVersion or WithRevision rather than mutating fields in place.
package portage

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrParse is returned when a package spec cannot be decomposed into at
// least a package name.
var ErrParse = errors.New("malformed package spec")

// revisionRe matches a trailing Portage revision suffix.
var revisionRe = regexp.MustCompile(`-r(\d+)$`)

// PackageIdentity identifies one package version. The zero value is not
// valid; construct identities with Parse or NewPackageIdentity. Treat the
// fields as read-only after construction.
type PackageIdentity struct {
	Category string
	Name     string
	Version  string
	Revision int
}

// NewPackageIdentity constructs an identity from already-split fields.
// No validation is performed; use Parse for untrusted input.
func NewPackageIdentity(category, name, version string, revision int) PackageIdentity {
	return PackageIdentity{Category: category, Name: name, Version: version, Revision: revision}
}

// Parse decomposes a package spec into a PackageIdentity. It accepts the
// full CPVR form ("cat/name-1.2.3-r1"), a versionless atom ("cat/name"),
// and a category-less "name-1.2.3". Parsing a formatted identity round-trips:
// Parse(x.CPVR()) equals x for any fully specified x.
func Parse(spec string) (PackageIdentity, error) {
	if spec == "" {
		return PackageIdentity{}, fmt.Errorf("%w: empty spec", ErrParse)
	}

	var p PackageIdentity
	rest := spec
	if i := strings.Index(rest, "/"); i >= 0 {
		p.Category = rest[:i]
		rest = rest[i+1:]
		if p.Category == "" || strings.Contains(rest, "/") {
			return PackageIdentity{}, fmt.Errorf("%w: %q", ErrParse, spec)
		}
	}
	if rest == "" {
		return PackageIdentity{}, fmt.Errorf("%w: %q", ErrParse, spec)
	}

	// A revision is only meaningful after a version, so strip it
	// tentatively and put it back if no version follows.
	pv := rest
	revision := 0
	if m := revisionRe.FindStringSubmatch(pv); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil {
			revision = n
			pv = pv[:len(pv)-len(m[0])]
		}
	}

	if name, version, ok := splitPV(pv); ok {
		p.Name = name
		p.Version = version
		p.Revision = revision
	} else {
		// No version component: the whole remainder (including any
		// "-rN" that matched above) is the package name.
		p.Name = rest
	}

	if p.Name == "" || strings.HasPrefix(p.Name, "-") || strings.HasSuffix(p.Name, "-") {
		return PackageIdentity{}, fmt.Errorf("%w: %q", ErrParse, spec)
	}
	return p, nil
}

// splitPV splits "name-version" at the last hyphen whose right-hand side is
// a valid Portage version. Package names may themselves contain hyphens.
func splitPV(pv string) (name, version string, ok bool) {
	for i := len(pv) - 1; i > 0; i-- {
		if pv[i] != '-' {
			continue
		}
		if VerValid(pv[i+1:]) {
			return pv[:i], pv[i+1:], true
		}
	}
	return "", "", false
}

// Atom returns the "category/name" form, or just the name when no category
// is known.
func (p PackageIdentity) Atom() string {
	if p.Category == "" {
		return p.Name
	}
	return p.Category + "/" + p.Name
}

// CPV returns the "category/name-version" form. For a versionless identity
// this collapses to the atom.
func (p PackageIdentity) CPV() string {
	if p.Version == "" {
		return p.Atom()
	}
	return p.Atom() + "-" + p.Version
}

// CPVR returns the full identity string, omitting the -r suffix when the
// revision is zero.
func (p PackageIdentity) CPVR() string {
	if p.Revision == 0 {
		return p.CPV()
	}
	return fmt.Sprintf("%s-r%d", p.CPV(), p.Revision)
}

// String returns the CPVR form.
func (p PackageIdentity) String() string { return p.CPVR() }

// VersionRevision returns "version-rN", the ebuild-relative version string,
// omitting the revision suffix when zero.
func (p PackageIdentity) VersionRevision() string {
	if p.Revision == 0 {
		return p.Version
	}
	return fmt.Sprintf("%s-r%d", p.Version, p.Revision)
}

// RelativeEbuildPath returns the overlay-relative path of the package's
// ebuild, e.g. "cat/pkg/pkg-1.0-r1.ebuild".
func (p PackageIdentity) RelativeEbuildPath() string {
	return fmt.Sprintf("%s/%s-%s.ebuild", p.Atom(), p.Name, p.VersionRevision())
}

// WithVersion returns a copy of the identity with the version replaced and
// the revision reset to zero.
func (p PackageIdentity) WithVersion(version string) PackageIdentity {
	p.Version = version
	p.Revision = 0
	return p
}

// WithRevision returns a copy of the identity with the revision replaced.
func (p PackageIdentity) WithRevision(revision int) PackageIdentity {
	p.Revision = revision
	return p
}

// Equal reports whether two identities refer to the same package version.
// Versions are compared under Portage semantics rather than string equality,
// so "1.0" and "1.00" compare equal while formatting differently.
func (p PackageIdentity) Equal(o PackageIdentity) bool {
	return p.Category == o.Category &&
		p.Name == o.Name &&
		p.Revision == o.Revision &&
		VerCmp(p.Version, o.Version) == 0
}

// Compare orders identities: first by atom lexicographically, then by
// version under Portage semantics, with the revision as the final
// tiebreaker. Returns -1, 0, or +1.
func (p PackageIdentity) Compare(o PackageIdentity) int {
	if c := cmpOrdered(p.Atom(), o.Atom()); c != 0 {
		return c
	}
	if c := VerCmp(p.Version, o.Version); c != 0 {
		return c
	}
	return cmpInt(p.Revision, o.Revision)
}

// Less reports whether p orders before o. See Compare.
func (p PackageIdentity) Less(o PackageIdentity) bool { return p.Compare(o) < 0 }

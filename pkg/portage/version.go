package portage

import (
	"regexp"
	"strconv"
	"strings"
)

// versionRe matches the Portage version grammar: one or more dot-separated
// numeric components, an optional single trailing letter, and zero or more
// _alpha/_beta/_pre/_rc/_p suffixes, each with an optional number.
var versionRe = regexp.MustCompile(`^\d+(\.\d+)*[a-z]?(_(alpha|beta|pre|rc|p)\d*)*$`)

// suffixRe decomposes a single version suffix into tag and number.
var suffixRe = regexp.MustCompile(`^(alpha|beta|pre|rc|p)(\d*)$`)

// suffixValue orders version suffixes relative to each other and to the bare
// version. A bare version ranks above every pre-release tag and below _p:
// 1.0_alpha < 1.0_beta < 1.0_pre < 1.0_rc < 1.0 < 1.0_p1.
var suffixValue = map[string]int{
	"alpha": -4,
	"beta":  -3,
	"pre":   -2,
	"rc":    -1,
	"p":     0,
}

// VerValid reports whether s is a syntactically valid Portage version.
func VerValid(s string) bool {
	return versionRe.MatchString(s)
}

// VerCmp compares two Portage version strings and returns -1, 0, or +1.
//
// Dot-separated components compare numerically when both sides are all
// digits, lexicographically otherwise. A version with more components is
// newer when the shared prefix is equal (1.0.0 > 1.0). A trailing letter
// compares after the numeric part (1.0b > 1.0a > 1.0). Suffixes compare by
// tag order (see suffixValue), with numeric suffixes breaking ties within
// the same tag. Revisions are not part of the version and must be compared
// by the caller.
func VerCmp(a, b string) int {
	if a == b {
		return 0
	}

	aNum, aLetter, aSuffixes := splitVersion(a)
	bNum, bLetter, bSuffixes := splitVersion(b)

	if c := cmpComponents(aNum, bNum); c != 0 {
		return c
	}
	if aLetter != bLetter {
		return cmpOrdered(aLetter, bLetter)
	}
	return cmpSuffixes(aSuffixes, bSuffixes)
}

// splitVersion separates a version string into its dot-separated numeric
// components, trailing letter, and suffix list.
func splitVersion(v string) (components []string, letter string, suffixes []string) {
	parts := strings.Split(v, "_")
	base := parts[0]
	suffixes = parts[1:]

	if base != "" {
		last := base[len(base)-1]
		if last >= 'a' && last <= 'z' {
			letter = string(last)
			base = base[:len(base)-1]
		}
	}
	components = strings.Split(base, ".")
	return components, letter, suffixes
}

func cmpComponents(a, b []string) int {
	n := max(len(a), len(b))
	for i := range n {
		// A version with additional components is newer, even if they
		// are all zero: 1.0.0 > 1.0.
		if i >= len(a) {
			return -1
		}
		if i >= len(b) {
			return 1
		}
		if c := cmpSegment(a[i], b[i]); c != 0 {
			return c
		}
	}
	return 0
}

// cmpSegment compares one dot-separated component: numerically when both
// sides are all digits, lexicographically otherwise. Numeric comparison
// strips leading zeros and compares by magnitude, so arbitrarily long
// components never overflow.
func cmpSegment(a, b string) int {
	if allDigits(a) && allDigits(b) {
		a, b = strings.TrimLeft(a, "0"), strings.TrimLeft(b, "0")
		if len(a) != len(b) {
			return cmpInt(len(a), len(b))
		}
	}
	return cmpOrdered(a, b)
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func cmpSuffixes(a, b []string) int {
	n := max(len(a), len(b))
	for i := range n {
		aTag, aNum := suffixParts(a, i)
		bTag, bNum := suffixParts(b, i)
		if aTag != bTag {
			return cmpInt(suffixValue[aTag], suffixValue[bTag])
		}
		if aNum != bNum {
			return cmpInt(aNum, bNum)
		}
	}
	return 0
}

// suffixParts returns the tag and number of suffix i. A missing suffix is
// treated as _p with number -1, so 1.0_p1 > 1.0 > 1.0_rc1.
func suffixParts(suffixes []string, i int) (string, int) {
	if i >= len(suffixes) {
		return "p", -1
	}
	m := suffixRe.FindStringSubmatch(suffixes[i])
	if m == nil {
		return "p", -1
	}
	if m[2] == "" {
		return m[1], 0
	}
	n, _ := strconv.Atoi(m[2])
	return m[1], n
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpOrdered(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

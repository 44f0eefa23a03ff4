package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// boardRe matches valid board names: lowercase alphanumerics with single
// internal hyphens or underscores, e.g. "amd64-generic" or "kevin_arc-r".
var boardRe = regexp.MustCompile(`^[a-z0-9]+([_-][a-z0-9]+)*$`)

// ValidatePackageSpec validates a package spec for safety before it reaches
// the parser. It rejects strings that could be used for path traversal or
// injection, not strings that merely fail the Portage grammar; the parser
// reports those with more context.
func ValidatePackageSpec(spec string) error {
	if spec == "" {
		return New(ErrCodeInvalidPackage, "package spec cannot be empty")
	}
	if len(spec) > 256 {
		return New(ErrCodeInvalidPackage, "package spec too long (max 256 characters)")
	}
	for _, r := range spec {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidPackage, "package spec contains whitespace or control characters")
		}
	}
	for _, pattern := range []string{"..", "//", "\\"} {
		if strings.Contains(spec, pattern) {
			return New(ErrCodeInvalidPackage, "package spec contains invalid sequence: %q", pattern)
		}
	}
	return nil
}

// ValidateBoard validates a build-target board name.
func ValidateBoard(board string) error {
	if board == "" {
		return New(ErrCodeInvalidBoard, "board name cannot be empty")
	}
	if len(board) > 64 {
		return New(ErrCodeInvalidBoard, "board name too long (max 64 characters)")
	}
	if !boardRe.MatchString(board) {
		return New(ErrCodeInvalidBoard, "board name %q must be lowercase alphanumeric with - or _", board)
	}
	return nil
}

// ValidateSourcePath validates a source path used in relevance queries.
// Relevance paths are repository-absolute, so they must start with "/" and
// contain no traversal sequences.
func ValidateSourcePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}
	if len(path) > 500 {
		return New(ErrCodeInvalidPath, "path too long (max 500 characters)")
	}
	if !strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path %q must be absolute", path)
	}
	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains control characters")
		}
	}
	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path %q contains traversal sequence", path)
	}
	return nil
}

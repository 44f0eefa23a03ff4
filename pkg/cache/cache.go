// Package cache provides byte-level caching for extracted deps trees and
// rendered artifacts, with file, Redis, and no-op backends.
//
// Extracting a deps tree means running emerge, which is slow; caching the
// resulting document keyed by board and extract command makes repeated
// queries against the same build plan cheap.
package cache

import (
	"context"
	"time"
)

// Cache is the interface implemented by all cache backends.
type Cache interface {
	// Get retrieves a value. The second return is false on a miss;
	// misses are not errors.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL. A TTL of zero means the
	// entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Keyer generates cache keys for the different cached object kinds.
type Keyer interface {
	// DepsTreeKey keys an extracted deps-tree document by board and the
	// exact extract command that produced it.
	DepsTreeKey(board, command string) string

	// GraphKey keys a constructed graph document by board and the root
	// packages it was built for.
	GraphKey(board string, rootPackages []string) string

	// ArtifactKey keys a rendered artifact by graph hash and format.
	ArtifactKey(graphHash, format string) string
}

// DefaultKeyer is the standard key scheme.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer { return &DefaultKeyer{} }

// DepsTreeKey generates a key for an extracted deps tree.
func (*DefaultKeyer) DepsTreeKey(board, command string) string {
	return hashKey("depstree", board, command)
}

// GraphKey generates a key for a constructed graph document.
func (*DefaultKeyer) GraphKey(board string, rootPackages []string) string {
	return hashKey("graph", board, rootPackages)
}

// ArtifactKey generates a key for a rendered artifact.
func (*DefaultKeyer) ArtifactKey(graphHash, format string) string {
	return hashKey("artifact", graphHash, format)
}

// Package observability provides hooks for metrics and tracing.
//
// The core libraries stay free of observability frameworks: they call hook
// interfaces with no-op defaults, and the main package may register real
// implementations (Prometheus, OpenTelemetry, ...) at startup.
//
//	func main() {
//	    observability.SetGraphHooks(&myGraphHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
package observability

import (
	"sync"
	"time"
)

// GraphHooks receives events from dependency-graph construction.
type GraphHooks interface {
	// OnBuildComplete records one graph construction: the number of
	// nodes indexed, the elapsed time, and the construction error if any.
	OnBuildComplete(nodeCount int, duration time.Duration, err error)
}

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	OnCacheHit(backend string)
	OnCacheMiss(backend string)
	OnCacheSet(backend string, size int)
}

type noopGraphHooks struct{}

func (noopGraphHooks) OnBuildComplete(int, time.Duration, error) {}

type noopCacheHooks struct{}

func (noopCacheHooks) OnCacheHit(string)      {}
func (noopCacheHooks) OnCacheMiss(string)     {}
func (noopCacheHooks) OnCacheSet(string, int) {}

var (
	mu         sync.RWMutex
	graphHooks GraphHooks = noopGraphHooks{}
	cacheHooks CacheHooks = noopCacheHooks{}
)

// SetGraphHooks registers graph construction hooks. Pass nil to reset to
// the no-op implementation.
func SetGraphHooks(h GraphHooks) {
	mu.Lock()
	defer mu.Unlock()
	if h == nil {
		h = noopGraphHooks{}
	}
	graphHooks = h
}

// SetCacheHooks registers cache hooks. Pass nil to reset to the no-op
// implementation.
func SetCacheHooks(h CacheHooks) {
	mu.Lock()
	defer mu.Unlock()
	if h == nil {
		h = noopCacheHooks{}
	}
	cacheHooks = h
}

// Graph returns the registered graph hooks.
func Graph() GraphHooks {
	mu.RLock()
	defer mu.RUnlock()
	return graphHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	mu.RLock()
	defer mu.RUnlock()
	return cacheHooks
}

package observability

import (
	"testing"
	"time"
)

type recordingGraphHooks struct {
	nodes int
	calls int
}

func (r *recordingGraphHooks) OnBuildComplete(nodeCount int, _ time.Duration, _ error) {
	r.nodes = nodeCount
	r.calls++
}

func TestGraphHooksRegistration(t *testing.T) {
	defer SetGraphHooks(nil)

	rec := &recordingGraphHooks{}
	SetGraphHooks(rec)

	Graph().OnBuildComplete(42, time.Second, nil)
	if rec.calls != 1 || rec.nodes != 42 {
		t.Errorf("hooks = %+v, want one call with 42 nodes", rec)
	}

	// Resetting restores the no-op implementation without panicking.
	SetGraphHooks(nil)
	Graph().OnBuildComplete(1, 0, nil)
	if rec.calls != 1 {
		t.Error("reset hooks still invoked the old implementation")
	}
}

type recordingCacheHooks struct {
	hits, misses, sets int
}

func (r *recordingCacheHooks) OnCacheHit(string)      { r.hits++ }
func (r *recordingCacheHooks) OnCacheMiss(string)     { r.misses++ }
func (r *recordingCacheHooks) OnCacheSet(string, int) { r.sets++ }

func TestCacheHooksRegistration(t *testing.T) {
	defer SetCacheHooks(nil)

	rec := &recordingCacheHooks{}
	SetCacheHooks(rec)

	Cache().OnCacheHit("file")
	Cache().OnCacheMiss("file")
	Cache().OnCacheSet("file", 128)

	if rec.hits != 1 || rec.misses != 1 || rec.sets != 1 {
		t.Errorf("cache hooks = %+v, want one of each", rec)
	}
}

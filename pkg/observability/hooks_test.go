package observability

import (
	"context"
	"testing"
	"time"
)

type countingAnalysisHooks struct {
	searches int
}

func (h *countingAnalysisHooks) OnRelationStart(context.Context, int, int)                     {}
func (h *countingAnalysisHooks) OnRelationComplete(context.Context, int, time.Duration, error) {}
func (h *countingAnalysisHooks) OnSearchStart(ctx context.Context, predicate string, alternatives int) {
	h.searches++
}
func (h *countingAnalysisHooks) OnSearchComplete(context.Context, string, int, int64, time.Duration, error) {
}

type countingCacheHooks struct {
	hits int
}

func (h *countingCacheHooks) OnCacheHit(context.Context, string)      { h.hits++ }
func (h *countingCacheHooks) OnCacheMiss(context.Context, string)     {}
func (h *countingCacheHooks) OnCacheSet(context.Context, string, int) {}

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	a := noopAnalysisHooks{}
	a.OnRelationStart(ctx, 5, 9)
	a.OnRelationComplete(ctx, 7, time.Second, nil)
	a.OnSearchStart(ctx, "vandeemen", 5)
	a.OnSearchComplete(ctx, "vandeemen", 1, 31, time.Second, nil)

	c := noopCacheHooks{}
	c.OnCacheHit(ctx, "relation")
	c.OnCacheMiss(ctx, "result")
	c.OnCacheSet(ctx, "artifact", 1024)
}

func TestHookRegistry(t *testing.T) {
	t.Cleanup(func() {
		SetAnalysisHooks(nil)
		SetCacheHooks(nil)
	})

	analysis := &countingAnalysisHooks{}
	SetAnalysisHooks(analysis)
	Analysis().OnSearchStart(context.Background(), "duggan", 4)
	if analysis.searches != 1 {
		t.Errorf("custom analysis hook not invoked: %d", analysis.searches)
	}

	cache := &countingCacheHooks{}
	SetCacheHooks(cache)
	Cache().OnCacheHit(context.Background(), "relation")
	if cache.hits != 1 {
		t.Errorf("custom cache hook not invoked: %d", cache.hits)
	}

	// Nil restores the no-op defaults.
	SetAnalysisHooks(nil)
	if _, ok := Analysis().(noopAnalysisHooks); !ok {
		t.Error("SetAnalysisHooks(nil) should restore the no-op default")
	}
	SetCacheHooks(nil)
	if _, ok := Cache().(noopCacheHooks); !ok {
		t.Error("SetCacheHooks(nil) should restore the no-op default")
	}
}

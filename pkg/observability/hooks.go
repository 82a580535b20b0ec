// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard
// dependencies on specific observability backends. Consumers can register
// hooks at startup to receive events about analysis execution and cache
// operations.
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Hooks are registered by main, not by libraries, which avoids import
// cycles and keeps the core free of observability framework imports.
package observability

import (
	"context"
	"sync"
	"time"
)

// AnalysisHooks receives events from the analysis pipeline.
type AnalysisHooks interface {
	// Relation events
	OnRelationStart(ctx context.Context, alternatives, voters int)
	OnRelationComplete(ctx context.Context, edges int, duration time.Duration, err error)

	// Search events
	OnSearchStart(ctx context.Context, predicate string, alternatives int)
	OnSearchComplete(ctx context.Context, predicate string, qualifying int, examined int64, duration time.Duration, err error)
}

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// noopAnalysisHooks is the default no-op implementation.
type noopAnalysisHooks struct{}

func (noopAnalysisHooks) OnRelationStart(context.Context, int, int)                        {}
func (noopAnalysisHooks) OnRelationComplete(context.Context, int, time.Duration, error)    {}
func (noopAnalysisHooks) OnSearchStart(context.Context, string, int)                       {}
func (noopAnalysisHooks) OnSearchComplete(context.Context, string, int, int64, time.Duration, error) {
}

// noopCacheHooks is the default no-op implementation.
type noopCacheHooks struct{}

func (noopCacheHooks) OnCacheHit(context.Context, string)       {}
func (noopCacheHooks) OnCacheMiss(context.Context, string)      {}
func (noopCacheHooks) OnCacheSet(context.Context, string, int)  {}

var (
	mu            sync.RWMutex
	analysisHooks AnalysisHooks = noopAnalysisHooks{}
	cacheHooks    CacheHooks    = noopCacheHooks{}
)

// SetAnalysisHooks registers analysis hooks. Pass nil to restore the no-op
// default. Call at startup, before analysis begins.
func SetAnalysisHooks(h AnalysisHooks) {
	mu.Lock()
	defer mu.Unlock()
	if h == nil {
		analysisHooks = noopAnalysisHooks{}
		return
	}
	analysisHooks = h
}

// SetCacheHooks registers cache hooks. Pass nil to restore the no-op default.
func SetCacheHooks(h CacheHooks) {
	mu.Lock()
	defer mu.Unlock()
	if h == nil {
		cacheHooks = noopCacheHooks{}
		return
	}
	cacheHooks = h
}

// Analysis returns the registered analysis hooks.
func Analysis() AnalysisHooks {
	mu.RLock()
	defer mu.RUnlock()
	return analysisHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	mu.RLock()
	defer mu.RUnlock()
	return cacheHooks
}

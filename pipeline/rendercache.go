package pipeline

import (
	"sync"
	"sync/atomic"
)

// RenderPipelineCacheDiagnostics reports cumulative lookup statistics for a
// RenderPipelineCache. Useful for judging whether an application's draw loop
// is thrashing the cache (e.g. rebuilding state every frame in a way that
// never hits).
type RenderPipelineCacheDiagnostics struct {
	TotalLookups        uint64
	CacheHits           uint64
	CacheMisses         uint64
	CachedPipelineCount uint64
}

// HitRate returns CacheHits/TotalLookups, or 0 if there have been no lookups.
func (d RenderPipelineCacheDiagnostics) HitRate() float64 {
	if d.TotalLookups == 0 {
		return 0
	}
	return float64(d.CacheHits) / float64(d.TotalLookups)
}

// RenderPipelineCache is a thread-safe, content-addressed cache of backend
// render pipeline objects, keyed by RenderPipelineCacheKey. Backends
// instantiate it with their own pipeline type (hal.RenderPipeline, or a
// noop stand-in for tests).
type RenderPipelineCache[TPipeline any] struct {
	mu    sync.RWMutex
	cache map[string]TPipeline

	totalLookups atomic.Uint64
	cacheHits    atomic.Uint64
	cacheMisses  atomic.Uint64
}

// NewRenderPipelineCache returns an empty cache.
func NewRenderPipelineCache[TPipeline any]() *RenderPipelineCache[TPipeline] {
	return &RenderPipelineCache[TPipeline]{cache: make(map[string]TPipeline)}
}

// FindOrInsert looks up key in the cache. On a hit it returns the cached
// pipeline and cacheHit=true. On a miss it calls factory(key) while holding
// the exclusive lock (so at most one goroutine builds a pipeline for any
// given key), inserts the result, and returns cacheHit=false.
func (c *RenderPipelineCache[TPipeline]) FindOrInsert(
	key RenderPipelineCacheKey,
	factory func(RenderPipelineCacheKey) (TPipeline, error),
) (pipeline TPipeline, cacheHit bool, err error) {
	k := key.String()

	c.mu.RLock()
	c.totalLookups.Add(1)
	if v, ok := c.cache[k]; ok {
		c.mu.RUnlock()
		c.cacheHits.Add(1)
		return v, true, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.cache[k]; ok {
		c.cacheHits.Add(1)
		return v, true, nil
	}

	c.cacheMisses.Add(1)
	v, err := factory(key)
	if err != nil {
		var zero TPipeline
		return zero, false, err
	}
	c.cache[k] = v
	return v, false, nil
}

// Diagnostics returns a snapshot of the cache's cumulative lookup counters.
func (c *RenderPipelineCache[TPipeline]) Diagnostics() RenderPipelineCacheDiagnostics {
	c.mu.RLock()
	count := uint64(len(c.cache))
	c.mu.RUnlock()

	return RenderPipelineCacheDiagnostics{
		TotalLookups:        c.totalLookups.Load(),
		CacheHits:           c.cacheHits.Load(),
		CacheMisses:         c.cacheMisses.Load(),
		CachedPipelineCount: count,
	}
}

// Clear removes all cached pipelines and resets the diagnostics counters.
func (c *RenderPipelineCache[TPipeline]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[string]TPipeline)
	c.totalLookups.Store(0)
	c.cacheHits.Store(0)
	c.cacheMisses.Store(0)
}

// Size returns the number of cached pipelines.
func (c *RenderPipelineCache[TPipeline]) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

package pipeline

import (
	"fmt"
	"strings"
	"sync"

	"github.com/gogpu/nexus/shader"
)

// LayoutCacheKey is a hashable, content-addressed description of a pipeline
// layout, built from merged shader reflection output.
type LayoutCacheKey struct {
	Groups []shader.BindGroupLayout // sorted by Set, each with entries sorted by Binding
}

// BuildLayoutCacheKey builds a LayoutCacheKey from a program's merged bind
// group layouts.
func BuildLayoutCacheKey(layouts []shader.BindGroupLayout) LayoutCacheKey {
	return LayoutCacheKey{Groups: layouts}
}

// String renders a canonical form usable as a map key.
func (k LayoutCacheKey) String() string {
	var b strings.Builder
	for _, g := range k.Groups {
		fmt.Fprintf(&b, "s%d(", g.Set)
		for _, e := range g.Entries {
			fmt.Fprintf(&b, "%d:%d:%d:%v,", e.Binding, e.Type, e.Count, e.Writable)
		}
		b.WriteByte(')')
	}
	return b.String()
}

// LayoutCache is a thread-safe, content-addressed cache of backend pipeline
// layout objects, keyed by LayoutCacheKey. Backends instantiate it with
// their own layout type (e.g. hal's opaque layout handle, or a noop stand-in).
type LayoutCache[TLayout any] struct {
	mu    sync.RWMutex
	cache map[string]TLayout
}

// NewLayoutCache returns an empty cache.
func NewLayoutCache[TLayout any]() *LayoutCache[TLayout] {
	return &LayoutCache[TLayout]{cache: make(map[string]TLayout)}
}

// FindOrInsert looks up key in the cache. On a hit it returns the cached
// layout. On a miss it calls factory(key) to build one, while holding the
// exclusive lock so at most one goroutine builds a layout for any given key,
// inserts the result, and returns it.
func (c *LayoutCache[TLayout]) FindOrInsert(key LayoutCacheKey, factory func(LayoutCacheKey) (TLayout, error)) (TLayout, error) {
	k := key.String()

	c.mu.RLock()
	if v, ok := c.cache[k]; ok {
		c.mu.RUnlock()
		return v, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.cache[k]; ok {
		return v, nil
	}

	v, err := factory(key)
	if err != nil {
		var zero TLayout
		return zero, err
	}
	c.cache[k] = v
	return v, nil
}

// Clear removes all entries from the cache.
func (c *LayoutCache[TLayout]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[string]TLayout)
}

// Size returns the number of cached layouts.
func (c *LayoutCache[TLayout]) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

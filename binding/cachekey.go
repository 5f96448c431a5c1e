package binding

import (
	"fmt"
	"strings"
	"sync"
)

// CacheKey identifies a fully-materialized bind group: which pipeline's
// layout it was built against, which group index, and its bound content.
// This is optional, opt-in infrastructure (see Device.EnableBindGroupCache):
// most applications rebind per-draw and never touch it.
type CacheKey struct {
	PipelineIdentity uint64
	GroupIndex       uint32
	Entries          []BoundEntry
}

func (k CacheKey) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d/%d/", k.PipelineIdentity, k.GroupIndex)
	for _, e := range k.Entries {
		fmt.Fprintf(&b, "%d:%d:%d:%+v,%+v,%+v;", e.Binding, e.ArrayElement, e.Type, e.Buffer, e.Texture, e.Sampler)
	}
	return b.String()
}

// Cache is a thread-safe, content-addressed cache of materialized backend
// bind group objects, keyed by CacheKey. Backends instantiate it with their
// own bind group type.
type Cache[TBindGroup any] struct {
	mu    sync.RWMutex
	cache map[string]TBindGroup
}

// NewCache returns an empty cache.
func NewCache[TBindGroup any]() *Cache[TBindGroup] {
	return &Cache[TBindGroup]{cache: make(map[string]TBindGroup)}
}

// FindOrInsert looks up key in the cache, building via factory on a miss.
func (c *Cache[TBindGroup]) FindOrInsert(key CacheKey, factory func(CacheKey) (TBindGroup, error)) (TBindGroup, error) {
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
		var zero TBindGroup
		return zero, err
	}
	c.cache[k] = v
	return v, nil
}

// Clear removes all cached bind groups.
func (c *Cache[TBindGroup]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[string]TBindGroup)
}

package pipeline

import (
	"sync"
	"testing"

	"github.com/gogpu/nexus/shader"
)

func TestLayoutCacheFindOrInsertBuildsOnceAndReuses(t *testing.T) {
	c := NewLayoutCache[int]()
	key := BuildLayoutCacheKey([]shader.BindGroupLayout{
		{Set: 0, Entries: []shader.BindGroupLayoutEntry{{Binding: 0, Type: shader.BindGroupLayoutEntryUniformBuffer, Count: 1}}},
	})

	builds := 0
	v, err := c.FindOrInsert(key, func(LayoutCacheKey) (int, error) {
		builds++
		return 42, nil
	})
	if err != nil {
		t.Fatalf("FindOrInsert: %v", err)
	}
	if v != 42 {
		t.Fatalf("v = %d, want 42", v)
	}

	v2, err := c.FindOrInsert(key, func(LayoutCacheKey) (int, error) {
		builds++
		return 99, nil
	})
	if err != nil {
		t.Fatalf("FindOrInsert (second call): %v", err)
	}
	if v2 != 42 {
		t.Fatalf("second FindOrInsert rebuilt instead of reusing: got %d", v2)
	}
	if builds != 1 {
		t.Fatalf("factory called %d times, want 1", builds)
	}
	if c.Size() != 1 {
		t.Fatalf("Size() = %d, want 1", c.Size())
	}
}

func TestLayoutCacheDistinctKeysDoNotCollide(t *testing.T) {
	c := NewLayoutCache[int]()
	keyA := BuildLayoutCacheKey([]shader.BindGroupLayout{{Set: 0}})
	keyB := BuildLayoutCacheKey([]shader.BindGroupLayout{{Set: 1}})

	c.FindOrInsert(keyA, func(LayoutCacheKey) (int, error) { return 1, nil })
	c.FindOrInsert(keyB, func(LayoutCacheKey) (int, error) { return 2, nil })

	if c.Size() != 2 {
		t.Fatalf("Size() = %d, want 2", c.Size())
	}
}

func TestLayoutCacheFindOrInsertPropagatesFactoryError(t *testing.T) {
	c := NewLayoutCache[int]()
	key := BuildLayoutCacheKey(nil)
	wantErr := &shader.ReflectionError{Reason: "boom"}

	_, err := c.FindOrInsert(key, func(LayoutCacheKey) (int, error) {
		return 0, wantErr
	})
	if err != wantErr {
		t.Fatalf("err = %v, want %v", err, wantErr)
	}
	if c.Size() != 0 {
		t.Fatalf("a failed build should not be cached, Size() = %d", c.Size())
	}
}

func TestLayoutCacheConcurrentFindOrInsertBuildsExactlyOnce(t *testing.T) {
	c := NewLayoutCache[int]()
	key := BuildLayoutCacheKey([]shader.BindGroupLayout{{Set: 3}})

	var builds int
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.FindOrInsert(key, func(LayoutCacheKey) (int, error) {
				mu.Lock()
				builds++
				mu.Unlock()
				return 1, nil
			})
		}()
	}
	wg.Wait()

	if builds != 1 {
		t.Fatalf("factory ran %d times under concurrent access, want 1", builds)
	}
}

func TestLayoutCacheClear(t *testing.T) {
	c := NewLayoutCache[int]()
	key := BuildLayoutCacheKey([]shader.BindGroupLayout{{Set: 0}})
	c.FindOrInsert(key, func(LayoutCacheKey) (int, error) { return 1, nil })
	c.Clear()
	if c.Size() != 0 {
		t.Fatalf("Size() after Clear = %d, want 0", c.Size())
	}
}

package core

import (
	"sync"
)

// Global is the singleton owning the process-wide Hub. Surfaces and all
// device-owned resources live elsewhere (the platform layer and per-device
// registries respectively); the Global exists so the ID-addressed entry
// points share one adapter/device/queue namespace.
//
// Thread-safe for concurrent use via the singleton pattern.
type Global struct {
	mu  sync.RWMutex
	hub *Hub
}

var (
	globalOnce     sync.Once
	globalInstance *Global
)

// GetGlobal returns the singleton Global instance.
// The instance is created lazily on first call.
func GetGlobal() *Global {
	globalOnce.Do(func() {
		globalInstance = &Global{
			hub: NewHub(),
		}
	})
	return globalInstance
}

// Hub returns the adapter/device/queue hub.
func (g *Global) Hub() *Hub {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.hub
}

// Stats returns the hub's per-registry live counts.
func (g *Global) Stats() map[string]uint64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.hub.ResourceCounts()
}

// Clear removes all resources from the global state.
// Note: This does not release IDs properly - use only for cleanup/testing.
func (g *Global) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.hub.Clear()
}

// ResetGlobal resets the global instance for testing.
// This allows tests to start with a clean state.
// Should only be used in tests.
func ResetGlobal() {
	globalInstance = &Global{
		hub: NewHub(),
	}
}

package core

import (
	"sync"
)

// Hub is the process-level registry for the resources that exist before a
// logical device does: physical adapters, opened devices, and their queues.
// Everything device-owned (buffers, textures, samplers, shader modules,
// programs, pipelines) lives in per-device registries instead - see Device
// in resource.go - so a command list resolves all of a draw's resources
// under one device-scoped lock.
//
// Thread-safe for concurrent use.
type Hub struct {
	mu sync.RWMutex

	adapters *Registry[Adapter, adapterMarker]
	devices  *Registry[Device, deviceMarker]
	queues   *Registry[Queue, queueMarker]
}

// NewHub creates a hub with empty registries.
func NewHub() *Hub {
	return &Hub{
		adapters: NewRegistry[Adapter, adapterMarker](),
		devices:  NewRegistry[Device, deviceMarker](),
		queues:   NewRegistry[Queue, queueMarker](),
	}
}

// RegisterAdapter allocates a new ID and stores the adapter.
func (h *Hub) RegisterAdapter(adapter *Adapter) AdapterID {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.adapters.Register(*adapter)
}

// GetAdapter retrieves an adapter by ID.
func (h *Hub) GetAdapter(id AdapterID) (Adapter, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.adapters.Get(id)
}

// UnregisterAdapter removes an adapter by ID.
func (h *Hub) UnregisterAdapter(id AdapterID) (Adapter, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.adapters.Unregister(id)
}

// RegisterDevice allocates a new ID and stores the device.
func (h *Hub) RegisterDevice(device Device) DeviceID {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.devices.Register(device)
}

// GetDevice retrieves a device by ID.
func (h *Hub) GetDevice(id DeviceID) (Device, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.devices.Get(id)
}

// UnregisterDevice removes a device by ID.
func (h *Hub) UnregisterDevice(id DeviceID) (Device, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.devices.Unregister(id)
}

// RegisterQueue allocates a new ID and stores the queue.
func (h *Hub) RegisterQueue(queue Queue) QueueID {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.queues.Register(queue)
}

// GetQueue retrieves a queue by ID.
func (h *Hub) GetQueue(id QueueID) (Queue, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.queues.Get(id)
}

// UnregisterQueue removes a queue by ID.
func (h *Hub) UnregisterQueue(id QueueID) (Queue, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.queues.Unregister(id)
}

// UpdateQueue replaces a queue's stored value, e.g. to backfill its device
// ID once the device has been registered.
func (h *Hub) UpdateQueue(id QueueID, queue Queue) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.queues.GetMut(id, func(q *Queue) {
		*q = queue
	})
}

// ResourceCounts returns the number of live entries per registry.
func (h *Hub) ResourceCounts() map[string]uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return map[string]uint64{
		"adapters": h.adapters.Count(),
		"devices":  h.devices.Count(),
		"queues":   h.queues.Count(),
	}
}

// Clear removes every entry from every registry. IDs are not released
// individually; use only for cleanup in tests.
func (h *Hub) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.adapters.Clear()
	h.devices.Clear()
	h.queues.Clear()
}

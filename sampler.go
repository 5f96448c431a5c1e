package nexus

import (
	"github.com/gogpu/nexus/core"
	"github.com/gogpu/nexus/hal"
)

// Sampler represents a texture sampler, backed by the device's generational
// resource pool.
type Sampler struct {
	id       core.SamplerID
	core     *core.Sampler
	device   *Device
	released bool
}

// Label returns the sampler's debug label.
func (s *Sampler) Label() string { return s.core.Label() }

// Release destroys the sampler and frees its pool slot.
func (s *Sampler) Release() {
	if s.released {
		return
	}
	s.released = true
	s.core.Destroy()
	if s.device != nil {
		_, _ = s.device.core.Samplers().Unregister(s.id)
	}
}

// halSampler returns the underlying HAL sampler.
func (s *Sampler) halSampler() hal.Sampler {
	if s.core == nil || s.device == nil {
		return nil
	}
	guard := s.device.core.SnatchLock().Read()
	defer guard.Release()
	return s.core.Raw(guard)
}

package nexus

import (
	"github.com/gogpu/nexus/core"
	"github.com/gogpu/nexus/hal"
)

// Texture represents a GPU texture, backed by the device's generational
// resource pool. The swapchain texture is the same kind of record: one fixed
// pool slot whose hot cell is populated and cleared every frame by the
// surface's acquire/present handshake instead of being created and destroyed
// per frame, so core is never nil here even for a swapchain texture.
type Texture struct {
	id       core.TextureID
	core     *core.Texture
	device   *Device
	released bool
}

// Format returns the texture format.
func (t *Texture) Format() TextureFormat {
	return t.core.Format()
}

// Size returns the texture's extent.
func (t *Texture) Size() Extent3D {
	return t.core.Size()
}

// Label returns the texture's debug label.
func (t *Texture) Label() string {
	return t.core.Label()
}

// Release destroys the texture. A no-op for the swapchain texture, which the
// surface's acquire/release handshake manages instead.
func (t *Texture) Release() {
	if t.released {
		return
	}
	t.released = true
	t.core.Destroy()
	if t.device != nil && !t.core.IsSwapchain() {
		_, _ = t.device.core.Textures().Unregister(t.id)
	}
}

// halTexture returns the underlying HAL texture. May be nil for the
// swapchain texture when no frame is currently acquired - callers must
// tolerate that.
func (t *Texture) halTexture() hal.Texture {
	if t.device == nil {
		return nil
	}
	guard := t.device.core.SnatchLock().Read()
	defer guard.Release()
	return t.core.Raw(guard)
}

// TextureView represents a view into a texture.
type TextureView struct {
	core     *core.TextureView
	device   *Device
	texture  *Texture
	released bool
}

// Format returns the view's format.
func (v *TextureView) Format() TextureFormat {
	return v.core.Format()
}

// Release destroys the texture view.
func (v *TextureView) Release() {
	if v.released {
		return
	}
	v.released = true
	v.core.Destroy()
}

// halTextureView returns the underlying HAL texture view.
func (v *TextureView) halTextureView() hal.TextureView {
	if v.device == nil {
		return nil
	}
	guard := v.device.core.SnatchLock().Read()
	defer guard.Release()
	return v.core.Raw(guard)
}

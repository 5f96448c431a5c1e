package core

import (
	"errors"
	"testing"

	types "github.com/gogpu/gputypes"
	"github.com/gogpu/nexus/hal/noop"
	"github.com/gogpu/nexus/shader"
)

// newNoopDevice opens a core Device over the noop backend.
func newNoopDevice(t *testing.T) *Device {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	open, err := adapters[0].Adapter.Open(0, types.DefaultLimits())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	d := NewDevice(open.Device, nil, 0, types.DefaultLimits(), "core test device")
	t.Cleanup(d.Destroy)
	return d
}

func TestCreateBufferRejectsZeroSize(t *testing.T) {
	d := newNoopDevice(t)

	_, err := d.CreateBuffer(&types.BufferDescriptor{Label: "empty", Size: 0, Usage: types.BufferUsageVertex})
	var cbe *CreateBufferError
	if !errors.As(err, &cbe) || cbe.Kind != CreateBufferErrorZeroSize {
		t.Fatalf("err = %v, want CreateBufferError{ZeroSize}", err)
	}
}

func TestCreateTextureRejectsDefinedButUnsupportedFormat(t *testing.T) {
	d := newNoopDevice(t)

	for _, format := range []types.TextureFormat{
		TextureFormatRGB8Unorm,
		TextureFormatRGB16Float,
		TextureFormatRGB32Float,
		TextureFormatBGR10A2Unorm,
		TextureFormatRGB10A2Snorm,
	} {
		_, err := d.CreateTexture(&types.TextureDescriptor{
			Label:         "rejected",
			Size:          types.Extent3D{Width: 4, Height: 4, DepthOrArrayLayers: 1},
			MipLevelCount: 1,
			SampleCount:   1,
			Dimension:     types.TextureDimension2D,
			Format:        format,
			Usage:         types.TextureUsageTextureBinding,
		})
		var ufe *UnsupportedFormatError
		if !errors.As(err, &ufe) || ufe.Kind != UnsupportedFormatRejected {
			t.Fatalf("format %d: err = %v, want UnsupportedFormatError{Rejected}", format, err)
		}
	}
}

func TestCreateTextureRejectsUnknownFormat(t *testing.T) {
	d := newNoopDevice(t)

	_, err := d.CreateTexture(&types.TextureDescriptor{
		Label:         "unknown",
		Size:          types.Extent3D{Width: 4, Height: 4, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     types.TextureDimension2D,
		Format:        types.TextureFormat(0xDEAD),
		Usage:         types.TextureUsageTextureBinding,
	})
	var ufe *UnsupportedFormatError
	if !errors.As(err, &ufe) || ufe.Kind != UnsupportedFormatUnknown {
		t.Fatalf("err = %v, want UnsupportedFormatError{Unknown}", err)
	}
}

func TestSwapchainTextureLifecycle(t *testing.T) {
	d := newNoopDevice(t)

	id := d.EnsureSwapchainTexture(types.TextureFormatBGRA8Unorm, "swapchain")
	if again := d.EnsureSwapchainTexture(types.TextureFormatBGRA8Unorm, "swapchain"); again != id {
		t.Fatalf("swapchain slot not stable: %v then %v", id, again)
	}

	tex, err := d.Textures().Get(id)
	if err != nil {
		t.Fatalf("Get swapchain texture: %v", err)
	}
	if !tex.IsSwapchain() {
		t.Fatal("swapchain record must report IsSwapchain")
	}

	// No frame acquired yet: hot cell is null and consumers must see nil.
	guard := d.SnatchLock().Read()
	if tex.Raw(guard) != nil {
		t.Fatal("hot cell must be null before a frame is acquired")
	}
	guard.Release()

	halTex := &noop.Texture{}
	size := types.Extent3D{Width: 640, Height: 480, DepthOrArrayLayers: 1}
	if err := d.AcquireSwapchainTexture(halTex, size, types.TextureFormatBGRA8Unorm); err != nil {
		t.Fatalf("AcquireSwapchainTexture: %v", err)
	}
	guard = d.SnatchLock().Read()
	if tex.Raw(guard) == nil {
		t.Fatal("hot cell must hold the acquired frame")
	}
	guard.Release()
	if tex.Size() != size {
		t.Fatalf("swapchain extent = %+v, want %+v", tex.Size(), size)
	}

	if err := d.ReleaseSwapchainTexture(); err != nil {
		t.Fatalf("ReleaseSwapchainTexture: %v", err)
	}
	guard = d.SnatchLock().Read()
	defer guard.Release()
	if tex.Raw(guard) != nil {
		t.Fatal("hot cell must be null again after release")
	}
}

func TestProgramHoldsStageHandles(t *testing.T) {
	d := newNoopDevice(t)

	modID, err := d.CreateShaderModule(&types.ShaderModuleDescriptor{
		Label:  "stage",
		Source: types.ShaderSourceWGSL{Code: "@vertex fn main() {}"},
	}, "main", shader.StageVertex)
	if err != nil {
		t.Fatalf("CreateShaderModule: %v", err)
	}

	progID, err := d.CreateProgram("handles", []ShaderModuleID{modID})
	if err != nil {
		t.Fatalf("CreateProgram: %v", err)
	}
	prog, err := d.Programs().Get(progID)
	if err != nil {
		t.Fatalf("Get program: %v", err)
	}

	if got := prog.StageIDs(); len(got) != 1 || got[0] != modID {
		t.Fatalf("StageIDs = %v, want [%v]", got, modID)
	}
	if stages := prog.Stages(); len(stages) != 1 {
		t.Fatalf("Stages resolved %d modules, want 1", len(stages))
	}

	// Dropping the module makes the program's stage lookup come up empty.
	mod, err := d.ShaderModules().Get(modID)
	if err != nil {
		t.Fatalf("Get module: %v", err)
	}
	mod.Destroy()
	if _, err := d.ShaderModules().Unregister(modID); err != nil {
		t.Fatalf("Unregister module: %v", err)
	}
	if stages := prog.Stages(); len(stages) != 0 {
		t.Fatalf("Stages resolved %d modules after release, want 0", len(stages))
	}
}

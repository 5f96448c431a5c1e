package nexus

import (
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/nexus/core"
	"github.com/gogpu/nexus/hal/noop"
	"github.com/gogpu/nexus/shader"
)

// newTestDevice opens a Device over the noop backend, bypassing instance
// enumeration so tests don't depend on global adapter registration state.
func newTestDevice(t *testing.T) *Device {
	t.Helper()

	api := noop.API{}
	halInstance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance: %v", err)
	}
	adapters := halInstance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		t.Fatal("no noop adapters")
	}
	open, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	coreDevice := core.NewDevice(open.Device, nil, 0, gputypes.DefaultLimits(), "test device")
	fence, err := open.Device.CreateFence()
	if err != nil {
		t.Fatalf("CreateFence: %v", err)
	}

	queue := &Queue{
		hal:       open.Queue,
		halDevice: open.Device,
		fence:     fence,
	}
	device := newDevice(coreDevice, queue)
	queue.device = device

	t.Cleanup(device.Release)
	return device
}

// SPIR-V opcode and decoration values used by the test module builders.
// These match the SPIR-V 1.x binary layout.
const (
	testSpirvMagic               = 0x07230203
	testOpTypeStruct             = 30
	testOpTypePointer            = 32
	testOpVariable               = 59
	testOpDecorate               = 71
	testDecorationBinding        = 33
	testDecorationDescriptorSet  = 34
	testStorageClassUniform      = 2
	testStorageClassStorageBuf   = 12
)

func spvInstr(opcode uint32, operands ...uint32) []uint32 {
	words := []uint32{(uint32(len(operands)+1) << 16) | opcode}
	return append(words, operands...)
}

// spvBinding describes one resource declaration a test module carries.
type spvBinding struct {
	set          uint32
	binding      uint32
	storageClass uint32
}

// spvModuleWords builds a minimal SPIR-V word stream declaring the given
// bindings, enough for reflection to recover a layout from.
func spvModuleWords(bindings ...spvBinding) []uint32 {
	words := []uint32{testSpirvMagic, 0x00010300, 0, uint32(10 + 3*len(bindings)), 0}
	words = append(words, spvInstr(testOpTypeStruct, 3)...)
	nextID := uint32(4)
	for _, b := range bindings {
		ptrID := nextID
		varID := nextID + 1
		nextID += 2
		words = append(words, spvInstr(testOpTypePointer, ptrID, b.storageClass, 3)...)
		words = append(words, spvInstr(testOpVariable, ptrID, varID, b.storageClass)...)
		words = append(words, spvInstr(testOpDecorate, varID, testDecorationDescriptorSet, b.set)...)
		words = append(words, spvInstr(testOpDecorate, varID, testDecorationBinding, b.binding)...)
	}
	return words
}

// newTestProgram builds a vertex+fragment program whose stages both declare
// a uniform at (set 0, binding 0).
func newTestProgram(t *testing.T, d *Device) *Program {
	t.Helper()

	vs, err := d.CreateShaderModule(&ShaderModuleDescriptor{
		Label: "test-vs",
		SPIRV: spvModuleWords(spvBinding{set: 0, binding: 0, storageClass: testStorageClassUniform}),
	}, "vs_main", shader.StageVertex)
	if err != nil {
		t.Fatalf("vertex module: %v", err)
	}
	fs, err := d.CreateShaderModule(&ShaderModuleDescriptor{
		Label: "test-fs",
		SPIRV: spvModuleWords(spvBinding{set: 0, binding: 0, storageClass: testStorageClassUniform}),
	}, "fs_main", shader.StageFragment)
	if err != nil {
		t.Fatalf("fragment module: %v", err)
	}

	prog, err := d.CreateProgram("test-program", vs, fs)
	if err != nil {
		t.Fatalf("CreateProgram: %v", err)
	}
	return prog
}

// newTestRenderTarget creates a small color attachment texture and view.
func newTestRenderTarget(t *testing.T, d *Device) *TextureView {
	t.Helper()

	tex, err := d.CreateTexture(&TextureDescriptor{
		Label:         "test-target",
		Size:          Extent3D{Width: 64, Height: 64, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        TextureFormatRGBA8Unorm,
		Usage:         TextureUsageRenderAttachment | TextureUsageCopySrc,
	})
	if err != nil {
		t.Fatalf("CreateTexture: %v", err)
	}
	view, err := d.CreateTextureView(tex, nil)
	if err != nil {
		t.Fatalf("CreateTextureView: %v", err)
	}
	return view
}

func beginTestRenderPass(t *testing.T, cl *CommandList, view *TextureView) {
	t.Helper()
	err := cl.BeginRenderPass(&RenderPassDescriptor{
		ColorAttachments: []RenderPassColorAttachment{
			{View: view, LoadOp: gputypes.LoadOpClear, StoreOp: gputypes.StoreOpStore},
		},
	})
	if err != nil {
		t.Fatalf("BeginRenderPass: %v", err)
	}
}

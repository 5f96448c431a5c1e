package nexus

import (
	"fmt"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/nexus/binding"
	"github.com/gogpu/nexus/core"
	"github.com/gogpu/nexus/hal"
	"github.com/gogpu/nexus/pipeline"
	"github.com/gogpu/nexus/shader"
)

// resolvedLayout is what the layout cache stores for one merged shader
// layout: the per-set bind group layouts and the pipeline layout built
// from them, kept together so a cache hit returns both without rebuilding
// either.
type resolvedLayout struct {
	bindGroupLayouts []hal.BindGroupLayout
	pipelineLayout   hal.PipelineLayout
}

// Device represents a logical GPU device.
// It is the main interface for creating GPU resources.
//
// Thread-safe for concurrent use.
type Device struct {
	core     *core.Device
	queue    *Queue
	released bool

	layoutCache         *pipeline.LayoutCache[*resolvedLayout]
	renderPipelineCache *pipeline.RenderPipelineCache[hal.RenderPipeline]
	bindGroupCache      *binding.Cache[hal.BindGroup]

	// blitOnce/blitRes and rowRepackOnce/rowRepackRes lazily build the
	// device-scoped helper pipelines used by Blit and the row-repack
	// transfer path the first time either is needed (see blit.go,
	// rowrepack.go). They're per-Device rather than truly process-scoped
	// since every device has its own resource pools and HAL handles.
	blitOnce sync.Once
	blitRes  *blitResources

	rowRepackOnce sync.Once
	rowRepackRes  *rowRepackResources
}

// newDevice wraps a core.Device into the public Device facade, installing
// the caches CommandList's draw-time pipeline resolution uses. Both of
// Adapter.RequestDevice's construction paths (HAL-backed and the legacy
// ID-based path) fund the same caches so behavior doesn't depend on which
// path a given Device was opened through.
func newDevice(coreDevice *core.Device, queue *Queue) *Device {
	return &Device{
		core:                coreDevice,
		queue:               queue,
		layoutCache:         pipeline.NewLayoutCache[*resolvedLayout](),
		renderPipelineCache: pipeline.NewRenderPipelineCache[hal.RenderPipeline](),
	}
}

// EnableBindGroupCache turns on content-addressed bind group caching:
// CommandList will materialize a bind group for a given (pipeline, group
// index, bound resources) tuple at most once, reusing it on subsequent
// draws that rebind the same resources. Off by default since most
// applications rebind per-draw and the extra bookkeeping isn't free.
func (d *Device) EnableBindGroupCache() {
	if d.bindGroupCache == nil {
		d.bindGroupCache = binding.NewCache[hal.BindGroup]()
	}
}

// Queue returns the device's command queue.
func (d *Device) Queue() *Queue {
	return d.queue
}

// QueueFamilyDesc describes one queue family's capabilities.
type QueueFamilyDesc struct {
	Graphics bool
	Compute  bool
	Transfer bool
}

// GetQueueFamilyCount returns the number of queue families the device
// exposes. Nexus models a single timeline per device, so this is always 1.
func (d *Device) GetQueueFamilyCount() uint32 { return 1 }

// GetQueueFamilyDesc describes the queue family at index. The single
// family supports graphics, compute, and transfer work.
func (d *Device) GetQueueFamilyDesc(index uint32) (QueueFamilyDesc, error) {
	if index >= d.GetQueueFamilyCount() {
		return QueueFamilyDesc{}, fmt.Errorf("nexus: queue family %d out of range", index)
	}
	return QueueFamilyDesc{Graphics: true, Compute: true, Transfer: true}, nil
}

// Features returns the device's enabled features.
func (d *Device) Features() Features {
	return d.core.Features
}

// Limits returns the device's resource limits.
func (d *Device) Limits() Limits {
	return d.core.Limits
}

// CreateBuffer creates a GPU buffer.
func (d *Device) CreateBuffer(desc *BufferDescriptor) (*Buffer, error) {
	if d.released {
		return nil, ErrReleased
	}
	if desc == nil {
		return nil, fmt.Errorf("nexus: buffer descriptor is nil")
	}

	gpuDesc := &gputypes.BufferDescriptor{
		Label:            desc.Label,
		Size:             desc.Size,
		Usage:            desc.Usage,
		MappedAtCreation: desc.MappedAtCreation,
	}

	coreBuffer, err := d.core.CreateBuffer(gpuDesc)
	if err != nil {
		return nil, err
	}

	return &Buffer{core: coreBuffer, device: d}, nil
}

// CreateTexture creates a GPU texture.
func (d *Device) CreateTexture(desc *TextureDescriptor) (*Texture, error) {
	if d.released {
		return nil, ErrReleased
	}
	if desc == nil {
		return nil, fmt.Errorf("nexus: texture descriptor is nil")
	}

	gpuDesc := &gputypes.TextureDescriptor{
		Label:         desc.Label,
		Size:          desc.Size,
		MipLevelCount: desc.MipLevelCount,
		SampleCount:   desc.SampleCount,
		Dimension:     desc.Dimension,
		Format:        desc.Format,
		Usage:         desc.Usage,
		ViewFormats:   desc.ViewFormats,
	}

	id, err := d.core.CreateTexture(gpuDesc)
	if err != nil {
		return nil, err
	}
	coreTex, err := d.core.Textures().Get(id)
	if err != nil {
		return nil, err
	}

	return &Texture{id: id, core: coreTex, device: d}, nil
}

// CreateTextureView creates a view into a texture.
func (d *Device) CreateTextureView(texture *Texture, desc *TextureViewDescriptor) (*TextureView, error) {
	if d.released {
		return nil, ErrReleased
	}
	if texture == nil {
		return nil, fmt.Errorf("nexus: texture is nil")
	}

	gpuDesc := &gputypes.TextureViewDescriptor{}
	if desc != nil {
		gpuDesc.Label = desc.Label
		gpuDesc.Format = desc.Format
		gpuDesc.Dimension = desc.Dimension
		gpuDesc.Aspect = desc.Aspect
		gpuDesc.BaseMipLevel = desc.BaseMipLevel
		gpuDesc.MipLevelCount = desc.MipLevelCount
		gpuDesc.BaseArrayLayer = desc.BaseArrayLayer
		gpuDesc.ArrayLayerCount = desc.ArrayLayerCount
	}

	coreView, err := d.core.CreateTextureView(texture.id, gpuDesc)
	if err != nil {
		return nil, err
	}

	return &TextureView{core: coreView, device: d, texture: texture}, nil
}

// GetSwapchainTexture returns the device's swapchain texture record,
// creating its pool slot on first call. The returned Texture's hot cell is
// null until a surface configured against this device acquires a frame
// (Surface.GetCurrentTexture) - callers must tolerate that, the same as any
// other consumer of a texture handle.
func (d *Device) GetSwapchainTexture(format TextureFormat, label string) (*Texture, error) {
	if d.released {
		return nil, ErrReleased
	}
	id := d.core.EnsureSwapchainTexture(format, label)
	coreTex, err := d.core.Textures().Get(id)
	if err != nil {
		return nil, err
	}
	return &Texture{id: id, core: coreTex, device: d}, nil
}

// CreateSampler creates a texture sampler.
func (d *Device) CreateSampler(desc *SamplerDescriptor) (*Sampler, error) {
	if d.released {
		return nil, ErrReleased
	}

	gpuDesc := &gputypes.SamplerDescriptor{}
	if desc != nil {
		gpuDesc.Label = desc.Label
		gpuDesc.AddressModeU = desc.AddressModeU
		gpuDesc.AddressModeV = desc.AddressModeV
		gpuDesc.AddressModeW = desc.AddressModeW
		gpuDesc.MagFilter = desc.MagFilter
		gpuDesc.MinFilter = desc.MinFilter
		gpuDesc.MipmapFilter = desc.MipmapFilter
		gpuDesc.LodMinClamp = desc.LodMinClamp
		gpuDesc.LodMaxClamp = desc.LodMaxClamp
		gpuDesc.Compare = desc.Compare
		gpuDesc.Anisotropy = desc.Anisotropy
	}

	id, err := d.core.CreateSampler(gpuDesc)
	if err != nil {
		return nil, err
	}
	coreSamp, err := d.core.Samplers().Get(id)
	if err != nil {
		return nil, err
	}

	return &Sampler{id: id, core: coreSamp, device: d}, nil
}

// CreateShaderModule creates a shader module. entryPoint and stage describe
// the module's single entry point and drive SPIR-V reflection when the
// module is supplied as SPIR-V bytecode.
func (d *Device) CreateShaderModule(desc *ShaderModuleDescriptor, entryPoint string, stage shader.Stage) (*ShaderModule, error) {
	if d.released {
		return nil, ErrReleased
	}
	if desc == nil {
		return nil, fmt.Errorf("nexus: shader module descriptor is nil")
	}

	gpuDesc := &gputypes.ShaderModuleDescriptor{Label: desc.Label}
	if len(desc.SPIRV) > 0 {
		gpuDesc.Source = gputypes.ShaderSourceSPIRV{Code: desc.SPIRV}
	} else {
		// Validate WGSL through the same frontend the backends lower it
		// with, so a malformed shader fails here with a source location
		// rather than at first draw.
		if _, err := (shader.WgslFrontend{}).Compile(desc.WGSL); err != nil {
			return nil, &shader.ReflectionError{Reason: err.Error()}
		}
		gpuDesc.Source = gputypes.ShaderSourceWGSL{Code: desc.WGSL}
	}

	id, err := d.core.CreateShaderModule(gpuDesc, entryPoint, stage)
	if err != nil {
		return nil, err
	}
	coreMod, err := d.core.ShaderModules().Get(id)
	if err != nil {
		return nil, err
	}

	return &ShaderModule{id: id, core: coreMod, device: d}, nil
}

// CreateBindGroupLayout creates a bind group layout.
func (d *Device) CreateBindGroupLayout(desc *BindGroupLayoutDescriptor) (*BindGroupLayout, error) {
	if d.released {
		return nil, ErrReleased
	}
	if desc == nil {
		return nil, fmt.Errorf("nexus: bind group layout descriptor is nil")
	}

	halDevice := d.halDevice()
	if halDevice == nil {
		return nil, ErrReleased
	}

	halDesc := &hal.BindGroupLayoutDescriptor{
		Label:   desc.Label,
		Entries: desc.Entries,
	}

	halLayout, err := halDevice.CreateBindGroupLayout(halDesc)
	if err != nil {
		return nil, fmt.Errorf("nexus: failed to create bind group layout: %w", err)
	}

	return &BindGroupLayout{hal: halLayout, device: d}, nil
}

// CreatePipelineLayout creates a pipeline layout.
func (d *Device) CreatePipelineLayout(desc *PipelineLayoutDescriptor) (*PipelineLayout, error) {
	if d.released {
		return nil, ErrReleased
	}
	if desc == nil {
		return nil, fmt.Errorf("nexus: pipeline layout descriptor is nil")
	}

	halDevice := d.halDevice()
	if halDevice == nil {
		return nil, ErrReleased
	}

	halLayouts := make([]hal.BindGroupLayout, len(desc.BindGroupLayouts))
	for i, layout := range desc.BindGroupLayouts {
		halLayouts[i] = layout.hal
	}

	halDesc := &hal.PipelineLayoutDescriptor{
		Label:            desc.Label,
		BindGroupLayouts: halLayouts,
	}

	halLayout, err := halDevice.CreatePipelineLayout(halDesc)
	if err != nil {
		return nil, fmt.Errorf("nexus: failed to create pipeline layout: %w", err)
	}

	return &PipelineLayout{hal: halLayout, device: d}, nil
}

// CreateBindGroup creates a bind group.
func (d *Device) CreateBindGroup(desc *BindGroupDescriptor) (*BindGroup, error) {
	if d.released {
		return nil, ErrReleased
	}
	if desc == nil {
		return nil, fmt.Errorf("nexus: bind group descriptor is nil")
	}

	halDevice := d.halDevice()
	if halDevice == nil {
		return nil, ErrReleased
	}

	halEntries := make([]gputypes.BindGroupEntry, len(desc.Entries))
	for i, entry := range desc.Entries {
		halEntries[i] = entry.toHAL()
	}

	halDesc := &hal.BindGroupDescriptor{
		Label:   desc.Label,
		Layout:  desc.Layout.hal,
		Entries: halEntries,
	}

	halGroup, err := halDevice.CreateBindGroup(halDesc)
	if err != nil {
		return nil, fmt.Errorf("nexus: failed to create bind group: %w", err)
	}

	return &BindGroup{hal: halGroup, device: d}, nil
}

// CreateRenderPipeline creates a render pipeline.
func (d *Device) CreateRenderPipeline(desc *RenderPipelineDescriptor) (*RenderPipeline, error) {
	if d.released {
		return nil, ErrReleased
	}
	if desc == nil {
		return nil, fmt.Errorf("nexus: render pipeline descriptor is nil")
	}

	halDevice := d.halDevice()
	if halDevice == nil {
		return nil, ErrReleased
	}

	halDesc := desc.toHAL()

	halPipeline, err := halDevice.CreateRenderPipeline(halDesc)
	if err != nil {
		return nil, fmt.Errorf("nexus: failed to create render pipeline: %w", err)
	}

	return &RenderPipeline{hal: halPipeline, device: d}, nil
}

// CreateComputePipeline creates a compute pipeline.
func (d *Device) CreateComputePipeline(desc *ComputePipelineDescriptor) (*ComputePipeline, error) {
	if d.released {
		return nil, ErrReleased
	}
	if desc == nil {
		return nil, fmt.Errorf("nexus: compute pipeline descriptor is nil")
	}

	halDevice := d.halDevice()
	if halDevice == nil {
		return nil, ErrReleased
	}

	halDesc := desc.toHAL()

	halPipeline, err := halDevice.CreateComputePipeline(halDesc)
	if err != nil {
		return nil, fmt.Errorf("nexus: failed to create compute pipeline: %w", err)
	}

	return &ComputePipeline{hal: halPipeline, device: d}, nil
}

// CreateCommandEncoder creates a command encoder for recording GPU commands.
func (d *Device) CreateCommandEncoder(desc *CommandEncoderDescriptor) (*CommandEncoder, error) {
	if d.released {
		return nil, ErrReleased
	}

	label := ""
	if desc != nil {
		label = desc.Label
	}

	coreEncoder, err := d.core.CreateCommandEncoder(label)
	if err != nil {
		return nil, err
	}

	return &CommandEncoder{core: coreEncoder, device: d}, nil
}

// PushErrorScope pushes a new error scope onto the device's error scope stack.
func (d *Device) PushErrorScope(filter ErrorFilter) {
	d.core.PushErrorScope(filter)
}

// PopErrorScope pops the most recently pushed error scope.
// Returns the captured error, or nil if no error occurred.
func (d *Device) PopErrorScope() *GPUError {
	return d.core.PopErrorScope()
}

// WaitIdle waits for all GPU work to complete.
func (d *Device) WaitIdle() error {
	if d.released {
		return ErrReleased
	}
	halDevice := d.halDevice()
	if halDevice == nil {
		return ErrReleased
	}
	return halDevice.WaitIdle()
}

// Release releases the device and all associated resources.
func (d *Device) Release() {
	if d.released {
		return
	}
	d.released = true

	if d.queue != nil {
		d.queue.release()
	}

	d.core.Destroy()
}

// halDevice returns the underlying HAL device for direct resource creation.
func (d *Device) halDevice() hal.Device {
	if d.core == nil || !d.core.HasHAL() {
		return nil
	}
	guard := d.core.SnatchLock().Read()
	defer guard.Release()
	return d.core.Raw(guard)
}

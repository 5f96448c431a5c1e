package core

import (
	"fmt"
	"sync"
	"sync/atomic"

	types "github.com/gogpu/gputypes"

	"github.com/gogpu/nexus/hal"
	"github.com/gogpu/nexus/shader"
)

// Adapter represents a physical GPU adapter.
type Adapter struct {
	// Info contains information about the adapter.
	Info types.AdapterInfo
	// Features contains the features supported by the adapter.
	Features types.Features
	// Limits contains the resource limits of the adapter.
	Limits types.Limits
	// Backend identifies which graphics backend this adapter uses.
	Backend types.Backend

	// halAdapter is the underlying HAL adapter, nil for mock/legacy adapters.
	halAdapter hal.Adapter
	// halCapabilities holds the detailed capability report HAL returned when
	// this adapter was enumerated, nil for mock/legacy adapters.
	halCapabilities *hal.Capabilities
}

// HasHAL reports whether this adapter is backed by a real HAL backend.
func (a *Adapter) HasHAL() bool {
	return a.halAdapter != nil
}

// HALAdapter returns the underlying HAL adapter, or nil if this adapter has
// no HAL backend (mock adapters, or adapters created through the legacy
// ID-based path).
func (a *Adapter) HALAdapter() hal.Adapter {
	return a.halAdapter
}

// Capabilities returns the detailed capability report for this adapter, or
// nil if unavailable.
func (a *Adapter) Capabilities() *hal.Capabilities {
	return a.halCapabilities
}

// Device represents a logical GPU device.
//
// A Device created through NewDevice owns a HAL device behind a Snatchable,
// guarded by a per-device SnatchLock: the same lock coordinates access to
// every resource (buffers, textures, ...) created from the device, so a
// single Read guard lets a command list touch many resources without
// contending on per-resource locks, while Destroy takes the Write side to
// guarantee nothing is mid-access when the HAL device goes away.
type Device struct {
	// Adapter is the adapter this device was created from.
	Adapter AdapterID
	// Label is a debug label for the device.
	Label string
	// Features contains the features enabled on this device.
	Features types.Features
	// Limits contains the resource limits of this device.
	Limits types.Limits
	// Queue is the device's default queue (legacy ID-based API only).
	Queue QueueID

	halDevice  hal.Device
	snatchable *Snatchable[hal.Device]
	snatchLock *SnatchLock
	destroyed  atomic.Bool

	associatedQueueMu sync.Mutex
	associatedQueue   *Queue

	errorScopeManager *ErrorScopeManager

	buffers          *Registry[*Buffer, bufferMarker]
	textures         *Registry[*Texture, textureMarker]
	samplers         *Registry[*Sampler, samplerMarker]
	shaderModules    *Registry[*ShaderModule, shaderModuleMarker]
	programs         *Registry[*Program, programMarker]
	renderPipelines  *Registry[*RenderPipeline, renderPipelineMarker]
	computePipelines *Registry[*ComputePipeline, computePipelineMarker]

	swapchainOnce sync.Once
	swapchainID   TextureID
}

// NewDevice wraps an opened HAL device into a core Device. adapter is the
// adapter the device was opened from.
func NewDevice(halDevice hal.Device, adapter *Adapter, features types.Features, limits types.Limits, label string) *Device {
	d := &Device{
		Label:      label,
		Features:   features,
		Limits:     limits,
		halDevice:  halDevice,
		snatchable: NewSnatchable(halDevice),
		snatchLock: NewSnatchLock(),

		buffers:          NewRegistry[*Buffer, bufferMarker](),
		textures:         NewRegistry[*Texture, textureMarker](),
		samplers:         NewRegistry[*Sampler, samplerMarker](),
		shaderModules:    NewRegistry[*ShaderModule, shaderModuleMarker](),
		programs:         NewRegistry[*Program, programMarker](),
		renderPipelines:  NewRegistry[*RenderPipeline, renderPipelineMarker](),
		computePipelines: NewRegistry[*ComputePipeline, computePipelineMarker](),
	}
	if adapter != nil {
		d.Backend(adapter)
	}
	return d
}

// Backend is a no-op: it records nothing about the adapter it is given.
// Device.Adapter is an AdapterID, not an *Adapter, and the registry assigns
// IDs separately; callers that register the device in the Hub set
// Device.Adapter themselves.
func (d *Device) Backend(_ *Adapter) {}

// IsValid reports whether the device has not been destroyed.
func (d *Device) IsValid() bool {
	return !d.destroyed.Load()
}

// HasHAL reports whether this device owns a HAL device.
func (d *Device) HasHAL() bool {
	return d.halDevice != nil
}

// SnatchLock returns the device's snatch lock, or nil if this device has no
// HAL backend.
func (d *Device) SnatchLock() *SnatchLock {
	return d.snatchLock
}

// Raw returns the underlying HAL device. The caller must hold a SnatchGuard
// from SnatchLock().Read(). Returns nil once the device has been destroyed.
func (d *Device) Raw(guard *SnatchGuard) hal.Device {
	if d.snatchable == nil {
		return nil
	}
	v := d.snatchable.Get(guard)
	if v == nil {
		return nil
	}
	return *v
}

// checkValid returns ErrDeviceDestroyed if the device has been destroyed.
func (d *Device) checkValid() error {
	if d.destroyed.Load() {
		return ErrDeviceDestroyed
	}
	return nil
}

// AssociatedQueue returns the device's default queue, or nil if none has
// been set.
func (d *Device) AssociatedQueue() *Queue {
	d.associatedQueueMu.Lock()
	defer d.associatedQueueMu.Unlock()
	return d.associatedQueue
}

// SetAssociatedQueue sets the device's default queue.
func (d *Device) SetAssociatedQueue(q *Queue) {
	d.associatedQueueMu.Lock()
	defer d.associatedQueueMu.Unlock()
	d.associatedQueue = q
}

// Destroy releases the device's HAL resources. Safe to call more than once;
// only the first call has an effect.
func (d *Device) Destroy() {
	if d.destroyed.Swap(true) {
		return
	}
	if d.snatchLock == nil || d.snatchable == nil {
		return
	}
	guard := d.snatchLock.Write()
	defer guard.Release()
	if hd := d.snatchable.Snatch(guard); hd != nil && *hd != nil {
		(*hd).Destroy()
	}
}

// CreateBuffer creates a HAL buffer and wraps it for hot/cold tracking.
func (d *Device) CreateBuffer(desc *types.BufferDescriptor) (*Buffer, error) {
	if err := d.checkValid(); err != nil {
		return nil, err
	}
	if d.halDevice == nil {
		return nil, &CreateBufferError{Kind: CreateBufferErrorHAL, Label: desc.Label}
	}
	if desc.Size == 0 {
		hal.Logger().Error("buffer creation rejected: zero size", "label", desc.Label)
		d.reportError(ErrorFilterValidation, fmt.Sprintf("buffer %q: zero size", desc.Label))
		return nil, &CreateBufferError{Kind: CreateBufferErrorZeroSize, Label: desc.Label}
	}
	if desc.Usage == 0 {
		d.reportError(ErrorFilterValidation, fmt.Sprintf("buffer %q: empty usage", desc.Label))
		return nil, &CreateBufferError{Kind: CreateBufferErrorEmptyUsage, Label: desc.Label}
	}

	halDesc := &hal.BufferDescriptor{
		Label:            desc.Label,
		Size:             desc.Size,
		Usage:            desc.Usage,
		MappedAtCreation: desc.MappedAtCreation,
	}

	halBuf, err := d.halDevice.CreateBuffer(halDesc)
	if err != nil {
		d.reportError(ErrorFilterOutOfMemory, fmt.Sprintf("buffer %q: %v", desc.Label, err))
		return nil, &CreateBufferError{Kind: CreateBufferErrorHAL, Label: desc.Label, RequestedSize: desc.Size, HALError: err}
	}

	buf := &Buffer{
		size:       desc.Size,
		usage:      desc.Usage,
		label:      desc.Label,
		device:     d,
		snatchable: NewSnatchable(halBuf),
	}
	buf.id = d.buffers.Register(buf)
	trackResource("Buffer", buf.id.Raw())
	return buf, nil
}

// Buffers returns the device's buffer registry.
func (d *Device) Buffers() *Registry[*Buffer, bufferMarker] { return d.buffers }

// Textures returns the device's texture registry.
func (d *Device) Textures() *Registry[*Texture, textureMarker] { return d.textures }

// Samplers returns the device's sampler registry.
func (d *Device) Samplers() *Registry[*Sampler, samplerMarker] { return d.samplers }

// ShaderModules returns the device's shader module registry.
func (d *Device) ShaderModules() *Registry[*ShaderModule, shaderModuleMarker] { return d.shaderModules }

// Programs returns the device's program registry.
func (d *Device) Programs() *Registry[*Program, programMarker] { return d.programs }

// RenderPipelines returns the device's render pipeline registry.
func (d *Device) RenderPipelines() *Registry[*RenderPipeline, renderPipelineMarker] {
	return d.renderPipelines
}

// ComputePipelines returns the device's compute pipeline registry.
func (d *Device) ComputePipelines() *Registry[*ComputePipeline, computePipelineMarker] {
	return d.computePipelines
}

// CreateTexture creates a HAL texture and registers it, returning its handle.
func (d *Device) CreateTexture(desc *types.TextureDescriptor) (TextureID, error) {
	if err := d.checkValid(); err != nil {
		return TextureID{}, err
	}
	if d.halDevice == nil {
		return TextureID{}, &UnsupportedFormatError{Kind: UnsupportedFormatBackend, Resource: "Texture"}
	}
	if name, rejected := RejectedFormat(desc.Format); rejected {
		hal.Logger().Error("texture creation rejected: format not creatable", "label", desc.Label, "format", name)
		d.reportError(ErrorFilterValidation, fmt.Sprintf("texture %q: format %s is defined but not supported", desc.Label, name))
		return TextureID{}, &UnsupportedFormatError{Kind: UnsupportedFormatRejected, Resource: "Texture", Format: name}
	}
	if _, ok := LookupFormat(desc.Format); !ok {
		hal.Logger().Error("texture creation rejected: unsupported format", "label", desc.Label, "format", formatName(desc.Format))
		d.reportError(ErrorFilterValidation, fmt.Sprintf("texture %q: unsupported format %s", desc.Label, formatName(desc.Format)))
		return TextureID{}, &UnsupportedFormatError{Kind: UnsupportedFormatUnknown, Resource: "Texture", Format: formatName(desc.Format)}
	}

	halDesc := &hal.TextureDescriptor{
		Label:         desc.Label,
		Size:          desc.Size,
		MipLevelCount: desc.MipLevelCount,
		SampleCount:   desc.SampleCount,
		Dimension:     desc.Dimension,
		Format:        desc.Format,
		Usage:         desc.Usage,
		ViewFormats:   desc.ViewFormats,
	}

	halTex, err := d.halDevice.CreateTexture(halDesc)
	if err != nil {
		d.reportError(ErrorFilterInternal, fmt.Sprintf("texture %q: %v", desc.Label, err))
		return TextureID{}, NewIDError(0, "texture creation failed", err)
	}

	tex := &Texture{
		size:          desc.Size,
		mipLevelCount: desc.MipLevelCount,
		sampleCount:   desc.SampleCount,
		dimension:     desc.Dimension,
		format:        desc.Format,
		usage:         desc.Usage,
		label:         desc.Label,
		device:        d,
		snatchable:    NewSnatchable(halTex),
	}
	tex.id = d.textures.Register(tex)
	trackResource("Texture", tex.id.Raw())
	return tex.id, nil
}

// CreateTextureView creates a view into an already-registered texture.
func (d *Device) CreateTextureView(id TextureID, desc *types.TextureViewDescriptor) (*TextureView, error) {
	if err := d.checkValid(); err != nil {
		return nil, err
	}
	tex, err := d.textures.Get(id)
	if err != nil {
		return nil, err
	}
	if d.halDevice == nil {
		return nil, ErrDeviceDestroyed
	}

	guard := d.snatchLock.Read()
	halTex := tex.Raw(guard)
	guard.Release()
	if halTex == nil {
		return nil, ErrResourceDestroyed
	}

	halDesc := &hal.TextureViewDescriptor{
		Label:           desc.Label,
		Format:          desc.Format,
		Dimension:       desc.Dimension,
		Aspect:          desc.Aspect,
		BaseMipLevel:    desc.BaseMipLevel,
		MipLevelCount:   desc.MipLevelCount,
		BaseArrayLayer:  desc.BaseArrayLayer,
		ArrayLayerCount: desc.ArrayLayerCount,
	}

	halView, err := d.halDevice.CreateTextureView(halTex, halDesc)
	if err != nil {
		return nil, NewIDError(0, "texture view creation failed", err)
	}

	format := desc.Format
	if format == types.TextureFormatUndefined {
		format = tex.Format()
	}

	return &TextureView{
		format:     format,
		dimension:  desc.Dimension,
		label:      desc.Label,
		device:     d,
		texture:    tex,
		snatchable: NewSnatchable(halView),
	}, nil
}

// EnsureSwapchainTexture returns the device's single swapchain texture
// record, creating it on first call. Its hot cell starts null - no
// frame has been acquired yet - and the same TextureID is returned on every
// later call, since the swapchain is one texture record mutated in place
// across frames rather than a fresh handle per frame.
func (d *Device) EnsureSwapchainTexture(format types.TextureFormat, label string) TextureID {
	d.swapchainOnce.Do(func() {
		tex := &Texture{
			format:    format,
			label:     label,
			device:    d,
			swapchain: true,
		}
		d.swapchainID = d.textures.Register(tex)
		tex.id = d.swapchainID
	})
	return d.swapchainID
}

// AcquireSwapchainTexture populates the swapchain texture record's hot cell
// with a newly-acquired surface texture. Called by the surface's
// presentation glue once per frame.
func (d *Device) AcquireSwapchainTexture(hot hal.Texture, size types.Extent3D, format types.TextureFormat) error {
	tex, err := d.textures.Get(d.swapchainID)
	if err != nil {
		return err
	}
	tex.AcquireSwapchain(hot, size, format)
	return nil
}

// ReleaseSwapchainTexture clears the swapchain texture record's hot cell
// back to null after the acquired frame has been presented or discarded.
func (d *Device) ReleaseSwapchainTexture() error {
	tex, err := d.textures.Get(d.swapchainID)
	if err != nil {
		return err
	}
	tex.ReleaseSwapchain()
	return nil
}

// CreateSampler creates a HAL sampler and registers it.
func (d *Device) CreateSampler(desc *types.SamplerDescriptor) (SamplerID, error) {
	if err := d.checkValid(); err != nil {
		return SamplerID{}, err
	}
	if d.halDevice == nil {
		return SamplerID{}, ErrDeviceDestroyed
	}

	halDesc := &hal.SamplerDescriptor{
		Label:        desc.Label,
		AddressModeU: desc.AddressModeU,
		AddressModeV: desc.AddressModeV,
		AddressModeW: desc.AddressModeW,
		MagFilter:    desc.MagFilter,
		MinFilter:    desc.MinFilter,
		MipmapFilter: desc.MipmapFilter,
		LodMinClamp:  desc.LodMinClamp,
		LodMaxClamp:  desc.LodMaxClamp,
		Compare:      desc.Compare,
		Anisotropy:   desc.Anisotropy,
	}

	halSamp, err := d.halDevice.CreateSampler(halDesc)
	if err != nil {
		return SamplerID{}, NewIDError(0, "sampler creation failed", err)
	}

	samp := &Sampler{
		label:      desc.Label,
		device:     d,
		snatchable: NewSnatchable(halSamp),
	}
	return d.samplers.Register(samp), nil
}

// CreateShaderModule compiles/validates a shader module and, when SPIR-V
// bytecode is supplied, reflects it to recover its bind group layouts.
// entryPoint and stage describe the single entry point this module exposes;
// WGSL modules are compiled via naga and not reflected (naga's own type
// information is used by backends that need it; nexus's binding merge only
// consumes SPIR-V reflection, matching how shader/reflect.go is grounded).
func (d *Device) CreateShaderModule(desc *types.ShaderModuleDescriptor, entryPoint string, stage shader.Stage) (ShaderModuleID, error) {
	if err := d.checkValid(); err != nil {
		return ShaderModuleID{}, err
	}
	if d.halDevice == nil {
		return ShaderModuleID{}, ErrDeviceDestroyed
	}

	halSource := hal.ShaderSource{}
	var spirv []uint32
	switch src := desc.Source.(type) {
	case types.ShaderSourceWGSL:
		halSource.WGSL = src.Code
	case types.ShaderSourceSPIRV:
		halSource.SPIRV = src.Code
		spirv = src.Code
	}

	halDesc := &hal.ShaderModuleDescriptor{
		Label:  desc.Label,
		Source: halSource,
	}

	halMod, err := d.halDevice.CreateShaderModule(halDesc)
	if err != nil {
		return ShaderModuleID{}, &shader.ReflectionError{Reason: err.Error()}
	}

	var reflection *shader.Reflection
	if len(spirv) > 0 {
		reflection, err = shader.ReflectSPIRV(spirv, entryPoint, stage)
		if err != nil {
			d.halDevice.DestroyShaderModule(halMod)
			d.reportError(ErrorFilterValidation, fmt.Sprintf("shader module %q: %v", desc.Label, err))
			return ShaderModuleID{}, err
		}
	}

	mod := &ShaderModule{
		label:      desc.Label,
		stage:      stage,
		entryPoint: entryPoint,
		reflection: reflection,
		device:     d,
		halModule:  halMod,
	}
	return d.shaderModules.Register(mod), nil
}

// CreateProgram merges the bind group layouts of the given shader stages
// (reflected at CreateShaderModule time) into one program-wide layout.
// Modules without SPIR-V reflection contribute no bindings. Returns
// shader.ErrLayoutConflict if two stages declare the same binding with
// incompatible types, in which case no Program is registered.
func (d *Device) CreateProgram(label string, moduleIDs []ShaderModuleID) (ProgramID, error) {
	if err := d.checkValid(); err != nil {
		return ProgramID{}, err
	}

	var merged shader.MergedLayout
	for _, id := range moduleIDs {
		mod, err := d.shaderModules.Get(id)
		if err != nil {
			return ProgramID{}, err
		}
		if mod.reflection != nil {
			if err := merged.Merge(mod.reflection); err != nil {
				d.reportError(ErrorFilterValidation, fmt.Sprintf("program %q: %v", label, err))
				return ProgramID{}, err
			}
		}
	}

	prog := &Program{
		label:    label,
		stageIDs: append([]ShaderModuleID(nil), moduleIDs...),
		merged:   merged,
		device:   d,
	}
	return d.programs.Register(prog), nil
}

// formatName renders a texture format for error messages. gputypes doesn't
// expose a Stringer for TextureFormat.
func formatName(f types.TextureFormat) string {
	return fmt.Sprintf("TextureFormat(%d)", uint32(f))
}

// CreateCommandEncoder creates a command encoder backed by the device's HAL
// device.
func (d *Device) CreateCommandEncoder(label string) (*CoreCommandEncoder, error) {
	if err := d.checkValid(); err != nil {
		return nil, err
	}
	if d.halDevice == nil {
		return nil, &CreateCommandEncoderError{Kind: CreateCommandEncoderErrorHAL, Label: label}
	}

	halEncoder, err := d.halDevice.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: label})
	if err != nil {
		return nil, &CreateCommandEncoderError{Kind: CreateCommandEncoderErrorHAL, Label: label, HALError: err}
	}
	if err := halEncoder.BeginEncoding(label); err != nil {
		return nil, &CreateCommandEncoderError{Kind: CreateCommandEncoderErrorHAL, Label: label, HALError: err}
	}

	return &CoreCommandEncoder{halEncoder: halEncoder, device: d}, nil
}

// Queue represents a command queue for a device (legacy ID-based API).
type Queue struct {
	// Device is the device this queue belongs to.
	Device DeviceID
	// Label is a debug label for the queue.
	Label string
}

// Buffer represents a GPU buffer. Size/Usage/Label are immutable cold data
// fixed at creation time; the HAL handle itself sits behind a Snatchable so
// Destroy can race safely against concurrent command-list recording.
type Buffer struct {
	id    BufferID
	size  uint64
	usage types.BufferUsage
	label string

	device     *Device
	snatchable *Snatchable[hal.Buffer]
	destroyed  atomic.Bool
}

// ID returns the buffer's generational handle into the device's registry.
func (b *Buffer) ID() BufferID { return b.id }

// Size returns the buffer's size in bytes.
func (b *Buffer) Size() uint64 { return b.size }

// Usage returns the buffer's usage flags.
func (b *Buffer) Usage() types.BufferUsage { return b.usage }

// Label returns the buffer's debug label.
func (b *Buffer) Label() string { return b.label }

// HasHAL reports whether this buffer owns a HAL resource.
func (b *Buffer) HasHAL() bool { return b.snatchable != nil }

// Raw returns the underlying HAL buffer. The caller must hold a SnatchGuard
// from the owning device's SnatchLock().Read(). Returns nil once destroyed.
func (b *Buffer) Raw(guard *SnatchGuard) hal.Buffer {
	if b.snatchable == nil {
		return nil
	}
	v := b.snatchable.Get(guard)
	if v == nil {
		return nil
	}
	return *v
}

// Destroy releases the buffer's HAL resource. Safe to call more than once.
func (b *Buffer) Destroy() {
	if b.destroyed.Swap(true) {
		return
	}
	untrackResource("Buffer", b.id.Raw())
	if b.device == nil || b.snatchable == nil || b.device.halDevice == nil {
		return
	}
	lock := b.device.SnatchLock()
	if lock == nil {
		return
	}
	guard := lock.Write()
	defer guard.Release()
	if hb := b.snatchable.Snatch(guard); hb != nil && *hb != nil {
		b.device.halDevice.DestroyBuffer(*hb)
	}
}

// Texture represents a GPU texture. Dimensions and format are immutable
// cold data; the HAL handle sits behind a Snatchable so a texture can be
// destroyed safely while a command list might still be reading it.
//
// A swapchain texture (see Device.EnsureSwapchainTexture) is a second shape
// of the same record: one fixed pool slot whose hot cell is populated by
// AcquireSwapchain and cleared by ReleaseSwapchain every surface frame
// instead of being destroyed once. It can't use Snatchable, which is
// one-shot by design, so its hot cell is a plain field guarded by its own
// mutex across the acquire/release handshake.
type Texture struct {
	id            TextureID
	size          types.Extent3D
	mipLevelCount uint32
	sampleCount   uint32
	dimension     types.TextureDimension
	format        types.TextureFormat
	usage         types.TextureUsage
	label         string

	device     *Device
	snatchable *Snatchable[hal.Texture]
	destroyed  atomic.Bool

	swapchain    bool
	swapchainMu  sync.RWMutex
	swapchainHot hal.Texture
}

// Size returns the texture's extent.
func (t *Texture) Size() types.Extent3D { return t.size }

// Format returns the texture's pixel format.
func (t *Texture) Format() types.TextureFormat { return t.format }

// MipLevelCount returns the number of mip levels.
func (t *Texture) MipLevelCount() uint32 { return t.mipLevelCount }

// SampleCount returns the number of samples per texel.
func (t *Texture) SampleCount() uint32 { return t.sampleCount }

// Usage returns the texture's usage flags.
func (t *Texture) Usage() types.TextureUsage { return t.usage }

// Label returns the texture's debug label.
func (t *Texture) Label() string { return t.label }

// Raw returns the underlying HAL texture. The caller must hold a SnatchGuard
// from the owning device's SnatchLock().Read(). Returns nil once destroyed,
// or, for a swapchain texture, whenever no frame is currently acquired -
// every consumer of a texture handle must tolerate this null hot cell.
func (t *Texture) Raw(guard *SnatchGuard) hal.Texture {
	if t.swapchain {
		t.swapchainMu.RLock()
		defer t.swapchainMu.RUnlock()
		return t.swapchainHot
	}
	if t.snatchable == nil {
		return nil
	}
	v := t.snatchable.Get(guard)
	if v == nil {
		return nil
	}
	return *v
}

// IsSwapchain reports whether this record is the device's swapchain texture
// slot rather than an application-created texture.
func (t *Texture) IsSwapchain() bool { return t.swapchain }

// AcquireSwapchain populates the swapchain texture's hot cell and cold
// metadata with a newly-acquired surface texture. Called once per frame by
// the surface's presentation glue, never by application code directly.
func (t *Texture) AcquireSwapchain(hot hal.Texture, size types.Extent3D, format types.TextureFormat) {
	t.swapchainMu.Lock()
	defer t.swapchainMu.Unlock()
	t.swapchainHot = hot
	t.size = size
	t.format = format
}

// ReleaseSwapchain clears the swapchain texture's hot cell back to null,
// called after the acquired texture has been presented or discarded.
func (t *Texture) ReleaseSwapchain() {
	t.swapchainMu.Lock()
	defer t.swapchainMu.Unlock()
	t.swapchainHot = nil
}

// Destroy releases the texture's HAL resource. Safe to call more than once.
// A no-op for the swapchain texture record, which the surface's lifecycle
// manages through AcquireSwapchain/ReleaseSwapchain instead.
func (t *Texture) Destroy() {
	if t.destroyed.Swap(true) {
		return
	}
	untrackResource("Texture", t.id.Raw())
	if t.swapchain || t.device == nil || t.snatchable == nil || t.device.halDevice == nil {
		return
	}
	guard := t.device.snatchLock.Write()
	defer guard.Release()
	if ht := t.snatchable.Snatch(guard); ht != nil && *ht != nil {
		t.device.halDevice.DestroyTexture(*ht)
	}
}

// TextureView represents a view into a texture.
type TextureView struct {
	format    types.TextureFormat
	dimension types.TextureViewDimension
	label     string

	device     *Device
	texture    *Texture
	snatchable *Snatchable[hal.TextureView]
	destroyed  atomic.Bool
}

// Format returns the view's format.
func (v *TextureView) Format() types.TextureFormat { return v.format }

// Label returns the view's debug label.
func (v *TextureView) Label() string { return v.label }

// Raw returns the underlying HAL texture view. The caller must hold a
// SnatchGuard from the owning device's SnatchLock().Read().
func (v *TextureView) Raw(guard *SnatchGuard) hal.TextureView {
	if v.snatchable == nil {
		return nil
	}
	p := v.snatchable.Get(guard)
	if p == nil {
		return nil
	}
	return *p
}

// Destroy releases the view's HAL resource. Safe to call more than once.
func (v *TextureView) Destroy() {
	if v.destroyed.Swap(true) {
		return
	}
	if v.device == nil || v.snatchable == nil || v.device.halDevice == nil {
		return
	}
	guard := v.device.snatchLock.Write()
	defer guard.Release()
	if hv := v.snatchable.Snatch(guard); hv != nil && *hv != nil {
		v.device.halDevice.DestroyTextureView(*hv)
	}
}

// Sampler represents a texture sampler.
type Sampler struct {
	label string

	device     *Device
	snatchable *Snatchable[hal.Sampler]
	destroyed  atomic.Bool
}

// Label returns the sampler's debug label.
func (s *Sampler) Label() string { return s.label }

// Raw returns the underlying HAL sampler. The caller must hold a SnatchGuard
// from the owning device's SnatchLock().Read().
func (s *Sampler) Raw(guard *SnatchGuard) hal.Sampler {
	if s.snatchable == nil {
		return nil
	}
	p := s.snatchable.Get(guard)
	if p == nil {
		return nil
	}
	return *p
}

// Destroy releases the sampler's HAL resource. Safe to call more than once.
func (s *Sampler) Destroy() {
	if s.destroyed.Swap(true) {
		return
	}
	if s.device == nil || s.snatchable == nil || s.device.halDevice == nil {
		return
	}
	guard := s.device.snatchLock.Write()
	defer guard.Release()
	if hs := s.snatchable.Snatch(guard); hs != nil && *hs != nil {
		s.device.halDevice.DestroySampler(*hs)
	}
}

// ShaderModule represents a compiled shader module together with the
// reflection data (its bind group layouts) recovered from its SPIR-V form.
// Cold data only: the shader module has no mutable runtime state once
// compiled, so there is no Snatchable split here.
type ShaderModule struct {
	label      string
	stage      shader.Stage
	entryPoint string
	reflection *shader.Reflection

	device    *Device
	halModule hal.ShaderModule
	destroyed atomic.Bool
}

// Label returns the module's debug label.
func (m *ShaderModule) Label() string { return m.label }

// Reflection returns the recovered bind group layouts for this module, or
// nil if the module was created from WGSL source without SPIR-V reflection.
func (m *ShaderModule) Reflection() *shader.Reflection { return m.reflection }

// Raw returns the underlying HAL shader module.
func (m *ShaderModule) Raw() hal.ShaderModule {
	if m.destroyed.Load() {
		return nil
	}
	return m.halModule
}

// Destroy releases the module's HAL resource. Safe to call more than once.
func (m *ShaderModule) Destroy() {
	if m.destroyed.Swap(true) {
		return
	}
	if m.device == nil || m.device.halDevice == nil || m.halModule == nil {
		return
	}
	m.device.halDevice.DestroyShaderModule(m.halModule)
}

// Program is an ordered set of shader stages (one vertex+fragment pair, or a
// single compute stage) plus the bind group layout obtained by merging their
// individual SPIR-V reflections. A Program has no HAL object of its own: it
// is the unit CommandList resolves render/compute pipelines against, and the
// merged layout is what the pipeline-layout cache is keyed on.
//
// Stages are held as handle values, not pointers: the program does not keep
// its modules alive, and a module released while a program still references
// it surfaces as a missing stage at pipeline-build time.
type Program struct {
	label    string
	stageIDs []ShaderModuleID
	merged   shader.MergedLayout
	device   *Device
	destroyed atomic.Bool
}

// StageIDs returns the handle values of the shader modules making up this
// program, in the order they were supplied to CreateProgram.
func (p *Program) StageIDs() []ShaderModuleID { return p.stageIDs }

// Stages resolves the program's stage handles against the device's shader
// module pool, in creation order. Released modules are omitted; callers
// that require a specific stage treat its absence as a failed lookup.
func (p *Program) Stages() []*ShaderModule {
	stages := make([]*ShaderModule, 0, len(p.stageIDs))
	for _, id := range p.stageIDs {
		if mod, err := p.device.shaderModules.Get(id); err == nil {
			stages = append(stages, mod)
		}
	}
	return stages
}

// MergedLayout returns the program's merged bind group layout.
func (p *Program) MergedLayout() *shader.MergedLayout { return &p.merged }

// Label returns the program's debug label.
func (p *Program) Label() string { return p.label }

// RenderPipeline is a fully resolved, backend-specific render pipeline.
// Populated either by explicit creation or by CommandList's draw-time cache.
type RenderPipeline struct {
	label string

	device     *Device
	snatchable *Snatchable[hal.RenderPipeline]
	destroyed  atomic.Bool
}

// Label returns the pipeline's debug label.
func (p *RenderPipeline) Label() string { return p.label }

// Raw returns the underlying HAL render pipeline. The caller must hold a
// SnatchGuard from the owning device's SnatchLock().Read().
func (p *RenderPipeline) Raw(guard *SnatchGuard) hal.RenderPipeline {
	if p.snatchable == nil {
		return nil
	}
	v := p.snatchable.Get(guard)
	if v == nil {
		return nil
	}
	return *v
}

// Destroy releases the pipeline's HAL resource. Safe to call more than once.
func (p *RenderPipeline) Destroy() {
	if p.destroyed.Swap(true) {
		return
	}
	if p.device == nil || p.snatchable == nil || p.device.halDevice == nil {
		return
	}
	guard := p.device.snatchLock.Write()
	defer guard.Release()
	if hp := p.snatchable.Snatch(guard); hp != nil && *hp != nil {
		p.device.halDevice.DestroyRenderPipeline(*hp)
	}
}

// ComputePipeline is a fully resolved, backend-specific compute pipeline.
type ComputePipeline struct {
	label string

	device     *Device
	snatchable *Snatchable[hal.ComputePipeline]
	destroyed  atomic.Bool
}

// Label returns the pipeline's debug label.
func (p *ComputePipeline) Label() string { return p.label }

// Raw returns the underlying HAL compute pipeline. The caller must hold a
// SnatchGuard from the owning device's SnatchLock().Read().
func (p *ComputePipeline) Raw(guard *SnatchGuard) hal.ComputePipeline {
	if p.snatchable == nil {
		return nil
	}
	v := p.snatchable.Get(guard)
	if v == nil {
		return nil
	}
	return *v
}

// Destroy releases the pipeline's HAL resource. Safe to call more than once.
func (p *ComputePipeline) Destroy() {
	if p.destroyed.Swap(true) {
		return
	}
	if p.device == nil || p.snatchable == nil || p.device.halDevice == nil {
		return
	}
	guard := p.device.snatchLock.Write()
	defer guard.Release()
	if hp := p.snatchable.Snatch(guard); hp != nil && *hp != nil {
		p.device.halDevice.DestroyComputePipeline(*hp)
	}
}


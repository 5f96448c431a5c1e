package hal

import "github.com/gogpu/gputypes"

// InstanceDescriptor describes how to create a GPU instance.
type InstanceDescriptor struct {
	// Backends selects which backends to enable.
	Backends gputypes.Backends

	// Flags controls instance behavior (debug, validation, ...).
	Flags gputypes.InstanceFlags

	// Dx12ShaderCompiler selects the DX12 shader compiler (FXC or DXC).
	Dx12ShaderCompiler gputypes.Dx12ShaderCompiler

	// GLBackend selects the OpenGL flavor (GL or GLES).
	GLBackend gputypes.GLBackend
}

// Capabilities is an adapter's detailed capability report.
type Capabilities struct {
	// Limits are the maximum supported limits.
	Limits gputypes.Limits

	// AlignmentsMask carries the backend's buffer alignment requirements.
	AlignmentsMask Alignments

	// DownlevelCapabilities applies to GL/GLES backends.
	DownlevelCapabilities DownlevelCapabilities
}

// Alignments carries the backend's buffer alignment requirements: what a
// copy's offset and row pitch must be multiples of.
type Alignments struct {
	BufferCopyOffset uint64
	BufferCopyPitch  uint64
}

// DownlevelCapabilities describes what a GL/GLES-class backend can do.
type DownlevelCapabilities struct {
	// ShaderModel is the supported shader model (5.0, 5.1, 6.0, ...).
	ShaderModel uint32

	// Flags are the individual downlevel feature bits.
	Flags DownlevelFlags
}

// DownlevelFlags are feature bits for downlevel backends.
type DownlevelFlags uint32

const (
	DownlevelFlagsComputeShaders DownlevelFlags = 1 << iota
	DownlevelFlagsFragmentWritableStorage
	DownlevelFlagsIndirectFirstInstance
	DownlevelFlagsBaseVertexBaseInstance
	DownlevelFlagsReadOnlyDepthStencil
	DownlevelFlagsAnisotropicFiltering
)

// TextureFormatCapabilities reports what one format supports.
type TextureFormatCapabilities struct {
	Flags TextureFormatCapabilityFlags
}

// TextureFormatCapabilityFlags are per-format operation bits.
type TextureFormatCapabilityFlags uint32

const (
	TextureFormatCapabilitySampled TextureFormatCapabilityFlags = 1 << iota
	TextureFormatCapabilityStorage
	TextureFormatCapabilityStorageReadWrite
	TextureFormatCapabilityRenderAttachment
	TextureFormatCapabilityBlendable
	TextureFormatCapabilityMultisample
	TextureFormatCapabilityMultisampleResolve
)

// SurfaceCapabilities reports what a surface supports on an adapter.
type SurfaceCapabilities struct {
	Formats      []gputypes.TextureFormat
	PresentModes []gputypes.PresentMode
	AlphaModes   []gputypes.CompositeAlphaMode
}

// PresentMode is an alias for gputypes.PresentMode.
type PresentMode = gputypes.PresentMode

const (
	PresentModeImmediate   = gputypes.PresentModeImmediate
	PresentModeMailbox     = gputypes.PresentModeMailbox
	PresentModeFifo        = gputypes.PresentModeFifo
	PresentModeFifoRelaxed = gputypes.PresentModeFifoRelaxed
)

// CompositeAlphaMode is an alias for gputypes.CompositeAlphaMode.
type CompositeAlphaMode = gputypes.CompositeAlphaMode

const (
	CompositeAlphaModeAuto            = gputypes.CompositeAlphaModeAuto
	CompositeAlphaModeOpaque          = gputypes.CompositeAlphaModeOpaque
	CompositeAlphaModePremultiplied   = gputypes.CompositeAlphaModePremultiplied
	CompositeAlphaModeUnpremultiplied = gputypes.CompositeAlphaModeUnpremultiplied
	CompositeAlphaModeInherit         = gputypes.CompositeAlphaModeInherit
)

// SurfaceConfiguration describes how a surface presents.
type SurfaceConfiguration struct {
	Width       uint32
	Height      uint32
	Format      gputypes.TextureFormat
	Usage       gputypes.TextureUsage
	PresentMode gputypes.PresentMode
	AlphaMode   gputypes.CompositeAlphaMode
}

// BufferDescriptor describes how to create a buffer.
type BufferDescriptor struct {
	Label string
	Size  uint64
	Usage gputypes.BufferUsage

	// MappedAtCreation creates the buffer pre-mapped for writing.
	MappedAtCreation bool
}

// TextureDescriptor describes how to create a texture.
type TextureDescriptor struct {
	Label         string
	Size          Extent3D
	MipLevelCount uint32
	SampleCount   uint32
	Dimension     gputypes.TextureDimension
	Format        gputypes.TextureFormat
	Usage         gputypes.TextureUsage

	// ViewFormats lists the additional formats views of this texture may
	// use; required for reinterpreting views.
	ViewFormats []gputypes.TextureFormat
}

// TextureViewDescriptor describes how to create a texture view. Zero
// values inherit from the texture: Format/Dimension default to the
// texture's own, zero counts mean "all remaining".
type TextureViewDescriptor struct {
	Label           string
	Format          gputypes.TextureFormat
	Dimension       gputypes.TextureViewDimension
	Aspect          gputypes.TextureAspect
	BaseMipLevel    uint32
	MipLevelCount   uint32
	BaseArrayLayer  uint32
	ArrayLayerCount uint32
}

// SamplerDescriptor describes how to create a sampler.
type SamplerDescriptor struct {
	Label        string
	AddressModeU gputypes.AddressMode
	AddressModeV gputypes.AddressMode
	AddressModeW gputypes.AddressMode
	MagFilter    gputypes.FilterMode
	MinFilter    gputypes.FilterMode
	MipmapFilter gputypes.FilterMode
	LodMinClamp  float32
	LodMaxClamp  float32

	// Compare, when set, makes this a comparison sampler for depth
	// textures.
	Compare gputypes.CompareFunction

	// Anisotropy is the anisotropic filtering level (1-16, 1 is off).
	Anisotropy uint16
}

// BindGroupLayoutDescriptor describes a bind group layout.
type BindGroupLayoutDescriptor struct {
	Label   string
	Entries []gputypes.BindGroupLayoutEntry
}

// BindGroupDescriptor describes a bind group: concrete resources laid out
// per its layout.
type BindGroupDescriptor struct {
	Label   string
	Layout  BindGroupLayout
	Entries []gputypes.BindGroupEntry
}

// PipelineLayoutDescriptor describes a pipeline layout.
type PipelineLayoutDescriptor struct {
	Label            string
	BindGroupLayouts []BindGroupLayout

	// PushConstantRanges is Vulkan-specific.
	PushConstantRanges []PushConstantRange
}

// PushConstantRange grants shader stages access to a push constant range.
type PushConstantRange struct {
	Stages gputypes.ShaderStages
	Range  Range
}

// Range is a byte range.
type Range struct {
	Start uint32
	End   uint32
}

// ShaderModuleDescriptor describes a shader module.
type ShaderModuleDescriptor struct {
	Label  string
	Source ShaderSource
}

// ShaderSource carries shader code in whichever form the caller has:
// WGSL source, SPIR-V words, or both.
type ShaderSource struct {
	WGSL  string
	SPIRV []uint32
}

// RenderPipelineDescriptor describes a render pipeline.
type RenderPipelineDescriptor struct {
	Label  string
	Layout PipelineLayout
	Vertex VertexState

	// Primitive is the input assembly and rasterizer state.
	Primitive gputypes.PrimitiveState

	// DepthStencil is optional; nil for passes without a depth/stencil
	// attachment.
	DepthStencil *DepthStencilState

	Multisample gputypes.MultisampleState

	// Fragment is optional; nil for depth-only passes.
	Fragment *FragmentState
}

// VertexState is the vertex stage plus its buffer layouts.
type VertexState struct {
	Module     ShaderModule
	EntryPoint string
	Buffers    []gputypes.VertexBufferLayout
}

// FragmentState is the fragment stage plus its color targets.
type FragmentState struct {
	Module     ShaderModule
	EntryPoint string
	Targets    []gputypes.ColorTargetState
}

// ComputePipelineDescriptor describes a compute pipeline.
type ComputePipelineDescriptor struct {
	Label   string
	Layout  PipelineLayout
	Compute ComputeState
}

// ComputeState is the compute stage.
type ComputeState struct {
	Module     ShaderModule
	EntryPoint string
}

// CommandEncoderDescriptor describes a command encoder.
type CommandEncoderDescriptor struct {
	Label string
}

// RenderBundleEncoderDescriptor describes a render bundle encoder: the
// attachment formats the bundle must be compatible with when replayed.
type RenderBundleEncoderDescriptor struct {
	Label        string
	ColorFormats []gputypes.TextureFormat

	// DepthStencilFormat is TextureFormatUndefined when the bundle renders
	// without a depth/stencil attachment.
	DepthStencilFormat gputypes.TextureFormat

	SampleCount     uint32
	DepthReadOnly   bool
	StencilReadOnly bool
}

// RenderPassDescriptor describes a render pass.
type RenderPassDescriptor struct {
	Label                  string
	ColorAttachments       []RenderPassColorAttachment
	DepthStencilAttachment *RenderPassDepthStencilAttachment
	TimestampWrites        *RenderPassTimestampWrites
}

// RenderPassColorAttachment is one color target of a render pass.
type RenderPassColorAttachment struct {
	View TextureView

	// ResolveTarget receives the MSAA resolve; nil without multisampling.
	ResolveTarget TextureView

	LoadOp  gputypes.LoadOp
	StoreOp gputypes.StoreOp

	// ClearValue applies when LoadOp is Clear.
	ClearValue gputypes.Color
}

// RenderPassDepthStencilAttachment is a render pass's depth/stencil target.
type RenderPassDepthStencilAttachment struct {
	View TextureView

	DepthLoadOp     gputypes.LoadOp
	DepthStoreOp    gputypes.StoreOp
	DepthClearValue float32
	DepthReadOnly   bool

	StencilLoadOp     gputypes.LoadOp
	StencilStoreOp    gputypes.StoreOp
	StencilClearValue uint32
	StencilReadOnly   bool
}

// RenderPassTimestampWrites requests timestamps at pass boundaries; nil
// indices skip that boundary.
type RenderPassTimestampWrites struct {
	QuerySet                  QuerySet
	BeginningOfPassWriteIndex *uint32
	EndOfPassWriteIndex       *uint32
}

// QueryType selects what a query set measures.
type QueryType uint32

const (
	// QueryTypeOcclusion counts samples passing depth/stencil tests.
	QueryTypeOcclusion QueryType = iota

	// QueryTypeTimestamp writes GPU timestamps for profiling.
	QueryTypeTimestamp
)

// QuerySetDescriptor describes how to create a query set.
type QuerySetDescriptor struct {
	Label string
	Type  QueryType
	Count uint32
}

// QuerySet is a set of occlusion or timestamp queries.
type QuerySet interface {
	Resource
}

// ComputePassDescriptor describes a compute pass.
type ComputePassDescriptor struct {
	Label           string
	TimestampWrites *ComputePassTimestampWrites
}

// ComputePassTimestampWrites requests timestamps at pass boundaries; nil
// indices skip that boundary.
type ComputePassTimestampWrites struct {
	QuerySet                  QuerySet
	BeginningOfPassWriteIndex *uint32
	EndOfPassWriteIndex       *uint32
}

// DepthStencilState describes depth and stencil testing.
type DepthStencilState struct {
	Format            gputypes.TextureFormat
	DepthWriteEnabled bool
	DepthCompare      gputypes.CompareFunction

	StencilFront StencilFaceState
	StencilBack  StencilFaceState

	StencilReadMask  uint32
	StencilWriteMask uint32

	DepthBias           int32
	DepthBiasSlopeScale float32
	DepthBiasClamp      float32
}

// StencilFaceState describes stencil handling for one face orientation.
type StencilFaceState struct {
	Compare gputypes.CompareFunction

	// FailOp runs when the stencil test fails, DepthFailOp when stencil
	// passes but depth fails, PassOp when both pass.
	FailOp      StencilOperation
	DepthFailOp StencilOperation
	PassOp      StencilOperation
}

// StencilOperation is what a stencil test outcome does to the stored
// value.
type StencilOperation uint8

const (
	StencilOperationKeep StencilOperation = iota
	StencilOperationZero
	StencilOperationReplace
	StencilOperationInvert
	StencilOperationIncrementClamp
	StencilOperationDecrementClamp
	StencilOperationIncrementWrap
	StencilOperationDecrementWrap
)

package hal

import "github.com/gogpu/gputypes"

// CommandEncoder records GPU commands. Encoders are single-use: once
// EndEncoding (or DiscardEncoding) has run they cannot record again.
type CommandEncoder interface {
	// BeginEncoding begins command recording with an optional label.
	BeginEncoding(label string) error

	// EndEncoding finishes recording and returns the command buffer.
	EndEncoding() (CommandBuffer, error)

	// DiscardEncoding abandons the recording without producing a command
	// buffer.
	DiscardEncoding()

	// ResetAll resets command buffers for reuse, on backends that can.
	ResetAll(commandBuffers []CommandBuffer)

	// TransitionBuffers records buffer state transitions. Vulkan and DX12
	// need these; Metal treats them as no-ops.
	TransitionBuffers(barriers []BufferBarrier)

	// TransitionTextures records texture state transitions, same story as
	// TransitionBuffers.
	TransitionTextures(barriers []TextureBarrier)

	// ClearBuffer clears a buffer region to zero.
	ClearBuffer(buffer Buffer, offset, size uint64)

	// CopyBufferToBuffer copies between buffers.
	CopyBufferToBuffer(src, dst Buffer, regions []BufferCopy)

	// CopyBufferToTexture copies buffer contents into a texture. Each
	// region's BufferLayout row pitch must satisfy the backend's 256-byte
	// alignment; callers with tighter pitches repack or copy row by row.
	CopyBufferToTexture(src Buffer, dst Texture, regions []BufferTextureCopy)

	// CopyTextureToBuffer copies a texture region into a buffer.
	CopyTextureToBuffer(src Texture, dst Buffer, regions []BufferTextureCopy)

	// CopyTextureToTexture copies between textures.
	CopyTextureToTexture(src, dst Texture, regions []TextureCopy)

	// BeginRenderPass opens a render pass for draw recording.
	BeginRenderPass(desc *RenderPassDescriptor) RenderPassEncoder

	// BeginComputePass opens a compute pass for dispatch recording.
	BeginComputePass(desc *ComputePassDescriptor) ComputePassEncoder
}

// RenderPassEncoder records draw commands inside one render pass.
type RenderPassEncoder interface {
	// End closes the pass; the encoder cannot be used afterwards.
	End()

	// SetPipeline binds the render pipeline for subsequent draws.
	SetPipeline(pipeline RenderPipeline)

	// SetBindGroup binds a resource group at index. offsets supply dynamic
	// uniform/storage buffer offsets.
	SetBindGroup(index uint32, group BindGroup, offsets []uint32)

	// SetVertexBuffer binds a vertex buffer at slot.
	SetVertexBuffer(slot uint32, buffer Buffer, offset uint64)

	// SetIndexBuffer binds the index buffer.
	SetIndexBuffer(buffer Buffer, format gputypes.IndexFormat, offset uint64)

	// SetViewport sets the viewport transform.
	SetViewport(x, y, width, height, minDepth, maxDepth float32)

	// SetScissorRect sets the scissor rectangle.
	SetScissorRect(x, y, width, height uint32)

	// SetBlendConstant sets the blend constant color.
	SetBlendConstant(color *gputypes.Color)

	// SetStencilReference sets the stencil reference value.
	SetStencilReference(reference uint32)

	// Draw issues a non-indexed draw.
	Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32)

	// DrawIndexed issues an indexed draw; baseVertex is added to each
	// index before vertex fetch.
	DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32)

	// DrawIndirect draws with parameters read from buffer at offset.
	DrawIndirect(buffer Buffer, offset uint64)

	// DrawIndexedIndirect draws indexed with parameters read from buffer
	// at offset.
	DrawIndexedIndirect(buffer Buffer, offset uint64)

	// ExecuteBundle replays a pre-recorded render bundle.
	ExecuteBundle(bundle RenderBundle)
}

// ComputePassEncoder records dispatches inside one compute pass.
type ComputePassEncoder interface {
	// End closes the pass; the encoder cannot be used afterwards.
	End()

	// SetPipeline binds the compute pipeline for subsequent dispatches.
	SetPipeline(pipeline ComputePipeline)

	// SetBindGroup binds a resource group at index.
	SetBindGroup(index uint32, group BindGroup, offsets []uint32)

	// Dispatch launches x by y by z workgroups.
	Dispatch(x, y, z uint32)

	// DispatchIndirect dispatches with parameters read from buffer at
	// offset.
	DispatchIndirect(buffer Buffer, offset uint64)
}

// RenderBundle is a pre-recorded, replayable set of render commands.
type RenderBundle interface {
	Resource
}

// RenderBundleEncoder records draw commands into a reusable bundle. The
// recording surface mirrors a render pass minus the attachment-level
// operations, which are fixed by the bundle's descriptor.
type RenderBundleEncoder interface {
	// SetPipeline binds the render pipeline for subsequent draws.
	SetPipeline(pipeline RenderPipeline)

	// SetBindGroup binds a resource group at index.
	SetBindGroup(index uint32, group BindGroup, offsets []uint32)

	// SetVertexBuffer binds a vertex buffer at slot.
	SetVertexBuffer(slot uint32, buffer Buffer, offset uint64)

	// SetIndexBuffer binds the index buffer.
	SetIndexBuffer(buffer Buffer, format gputypes.IndexFormat, offset uint64)

	// Draw issues a non-indexed draw.
	Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32)

	// DrawIndexed issues an indexed draw.
	DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32)

	// Finish ends recording and returns the bundle.
	Finish() (RenderBundle, error)
}

// BufferBarrier is one buffer state transition.
type BufferBarrier struct {
	Buffer Buffer
	Usage  BufferUsageTransition
}

// TextureBarrier is one texture state transition.
type TextureBarrier struct {
	Texture Texture
	Range   TextureRange
	Usage   TextureUsageTransition
}

// BufferUsageTransition names the usage a buffer moves between.
type BufferUsageTransition struct {
	OldUsage gputypes.BufferUsage
	NewUsage gputypes.BufferUsage
}

// TextureUsageTransition names the usage a texture moves between.
type TextureUsageTransition struct {
	OldUsage gputypes.TextureUsage
	NewUsage gputypes.TextureUsage
}

// TextureRange selects a slice of a texture's subresources. Zero counts
// mean "all remaining".
type TextureRange struct {
	Aspect          gputypes.TextureAspect
	BaseMipLevel    uint32
	MipLevelCount   uint32
	BaseArrayLayer  uint32
	ArrayLayerCount uint32
}

// BufferCopy is one buffer-to-buffer copy region.
type BufferCopy struct {
	SrcOffset uint64
	DstOffset uint64
	Size      uint64
}

// BufferTextureCopy is one buffer<->texture copy region.
type BufferTextureCopy struct {
	BufferLayout ImageDataLayout
	TextureBase  ImageCopyTexture
	Size         Extent3D
}

// TextureCopy is one texture-to-texture copy region.
type TextureCopy struct {
	SrcBase ImageCopyTexture
	DstBase ImageCopyTexture
	Size    Extent3D
}

// ImageDataLayout describes how image rows are laid out in a buffer.
type ImageDataLayout struct {
	// Offset in bytes from the start of the buffer.
	Offset uint64

	// BytesPerRow is the stride between rows; a multiple of 256 for
	// texture copies, or 0 for single-row images.
	BytesPerRow uint32

	// RowsPerImage is the rows per image slice; only meaningful for 3D
	// textures, 0 to use the image height.
	RowsPerImage uint32
}

// ImageCopyTexture addresses one mip level and origin within a texture.
type ImageCopyTexture struct {
	Texture  Texture
	MipLevel uint32
	Origin   Origin3D
	Aspect   gputypes.TextureAspect
}

// Origin3D is a 3D origin point. Aliased to the gputypes definition so
// descriptors can flow between the facade and the HAL without conversion.
type Origin3D = gputypes.Origin3D

// Extent3D is a 3D extent, aliased like Origin3D.
type Extent3D = gputypes.Extent3D

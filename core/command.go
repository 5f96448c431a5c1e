package core

import (
	"sync/atomic"

	types "github.com/gogpu/gputypes"

	"github.com/gogpu/nexus/hal"
)

// RenderPassColorAttachment mirrors hal.RenderPassColorAttachment but is
// built up from core-level resources before being handed to the HAL.
type RenderPassColorAttachment struct {
	View          hal.TextureView
	ResolveTarget hal.TextureView
	LoadOp        types.LoadOp
	StoreOp       types.StoreOp
	ClearValue    types.Color
}

// RenderPassDepthStencilAttachment mirrors hal.RenderPassDepthStencilAttachment.
type RenderPassDepthStencilAttachment struct {
	View              hal.TextureView
	DepthLoadOp       types.LoadOp
	DepthStoreOp      types.StoreOp
	DepthClearValue   float32
	DepthReadOnly     bool
	StencilLoadOp     types.LoadOp
	StencilStoreOp    types.StoreOp
	StencilClearValue uint32
	StencilReadOnly   bool
}

// RenderPassDescriptor mirrors hal.RenderPassDescriptor.
type RenderPassDescriptor struct {
	Label                  string
	ColorAttachments       []RenderPassColorAttachment
	DepthStencilAttachment *RenderPassDepthStencilAttachment
}

func (d *RenderPassDescriptor) toHAL() *hal.RenderPassDescriptor {
	halDesc := &hal.RenderPassDescriptor{Label: d.Label}

	for _, ca := range d.ColorAttachments {
		halDesc.ColorAttachments = append(halDesc.ColorAttachments, hal.RenderPassColorAttachment{
			View:          ca.View,
			ResolveTarget: ca.ResolveTarget,
			LoadOp:        ca.LoadOp,
			StoreOp:       ca.StoreOp,
			ClearValue:    ca.ClearValue,
		})
	}

	if d.DepthStencilAttachment != nil {
		ds := d.DepthStencilAttachment
		halDesc.DepthStencilAttachment = &hal.RenderPassDepthStencilAttachment{
			View:              ds.View,
			DepthLoadOp:       ds.DepthLoadOp,
			DepthStoreOp:      ds.DepthStoreOp,
			DepthClearValue:   ds.DepthClearValue,
			DepthReadOnly:     ds.DepthReadOnly,
			StencilLoadOp:     ds.StencilLoadOp,
			StencilStoreOp:    ds.StencilStoreOp,
			StencilClearValue: ds.StencilClearValue,
			StencilReadOnly:   ds.StencilReadOnly,
		}
	}

	return halDesc
}

// CoreComputePassDescriptor mirrors hal.ComputePassDescriptor.
type CoreComputePassDescriptor struct {
	Label string
}

func (d *CoreComputePassDescriptor) toHAL() *hal.ComputePassDescriptor {
	if d == nil {
		return &hal.ComputePassDescriptor{}
	}
	return &hal.ComputePassDescriptor{Label: d.Label}
}

// CoreCommandEncoder wraps a HAL command encoder, tracking whether it has
// already been finished or discarded so double-use is rejected early
// instead of corrupting the underlying backend's command stream.
type CoreCommandEncoder struct {
	halEncoder hal.CommandEncoder
	device     *Device
	finished   atomic.Bool
}

// RawEncoder returns the underlying HAL command encoder.
func (e *CoreCommandEncoder) RawEncoder() hal.CommandEncoder {
	return e.halEncoder
}

// BeginRenderPass starts a render pass on the encoder.
func (e *CoreCommandEncoder) BeginRenderPass(desc *RenderPassDescriptor) (*CoreRenderPassEncoder, error) {
	if e.finished.Load() {
		return nil, ErrCommandEncoderFinished
	}
	if desc == nil {
		desc = &RenderPassDescriptor{}
	}
	halPass := e.halEncoder.BeginRenderPass(desc.toHAL())
	return &CoreRenderPassEncoder{halPass: halPass, encoder: e}, nil
}

// BeginComputePass starts a compute pass on the encoder.
func (e *CoreCommandEncoder) BeginComputePass(desc *CoreComputePassDescriptor) (*CoreComputePassEncoder, error) {
	if e.finished.Load() {
		return nil, ErrCommandEncoderFinished
	}
	halPass := e.halEncoder.BeginComputePass(desc.toHAL())
	return &CoreComputePassEncoder{halPass: halPass, encoder: e}, nil
}

// Discard abandons the encoder's recording without producing a command
// buffer. The encoder cannot be used again afterwards.
func (e *CoreCommandEncoder) Discard() {
	if e.finished.Swap(true) {
		return
	}
	e.halEncoder.DiscardEncoding()
}

// Finish ends command recording and returns the resulting command buffer.
// The encoder cannot be used again afterwards.
func (e *CoreCommandEncoder) Finish() (*CoreCommandBuffer, error) {
	if e.finished.Swap(true) {
		return nil, ErrCommandEncoderFinished
	}
	cmdBuf, err := e.halEncoder.EndEncoding()
	if err != nil {
		return nil, err
	}
	return &CoreCommandBuffer{halBuffer: cmdBuf}, nil
}

// CoreRenderPassEncoder wraps a HAL render pass encoder with the pipeline
// state tracking needed to resolve draws against the layout/pipeline caches.
type CoreRenderPassEncoder struct {
	halPass hal.RenderPassEncoder
	encoder *CoreCommandEncoder
	ended   bool
}

// SetPipeline binds the render pipeline that subsequent draws use.
func (p *CoreRenderPassEncoder) SetPipeline(pipeline hal.RenderPipeline) {
	if pipeline == nil {
		return
	}
	p.halPass.SetPipeline(pipeline)
}

// SetBindGroup binds a resource group at the given index.
func (p *CoreRenderPassEncoder) SetBindGroup(index uint32, group hal.BindGroup, offsets []uint32) {
	if group == nil {
		return
	}
	p.halPass.SetBindGroup(index, group, offsets)
}

// SetVertexBuffer binds a vertex buffer at the given slot.
func (p *CoreRenderPassEncoder) SetVertexBuffer(slot uint32, buffer *Buffer, offset uint64) {
	if buffer == nil || p.encoder == nil || p.encoder.device == nil {
		return
	}
	lock := p.encoder.device.SnatchLock()
	if lock == nil {
		return
	}
	guard := lock.Read()
	defer guard.Release()
	hb := buffer.Raw(guard)
	if hb == nil {
		return
	}
	p.halPass.SetVertexBuffer(slot, hb, offset)
}

// SetIndexBuffer binds the index buffer used by indexed draws.
func (p *CoreRenderPassEncoder) SetIndexBuffer(buffer *Buffer, format types.IndexFormat, offset uint64) {
	if buffer == nil || p.encoder == nil || p.encoder.device == nil {
		return
	}
	lock := p.encoder.device.SnatchLock()
	if lock == nil {
		return
	}
	guard := lock.Read()
	defer guard.Release()
	hb := buffer.Raw(guard)
	if hb == nil {
		return
	}
	p.halPass.SetIndexBuffer(hb, format, offset)
}

// SetViewport sets the viewport transform.
func (p *CoreRenderPassEncoder) SetViewport(x, y, width, height, minDepth, maxDepth float32) {
	p.halPass.SetViewport(x, y, width, height, minDepth, maxDepth)
}

// SetScissorRect sets the scissor rectangle.
func (p *CoreRenderPassEncoder) SetScissorRect(x, y, width, height uint32) {
	p.halPass.SetScissorRect(x, y, width, height)
}

// SetBlendConstant sets the blend constant color.
func (p *CoreRenderPassEncoder) SetBlendConstant(color *types.Color) {
	p.halPass.SetBlendConstant(color)
}

// SetStencilReference sets the stencil reference value.
func (p *CoreRenderPassEncoder) SetStencilReference(reference uint32) {
	p.halPass.SetStencilReference(reference)
}

// Draw issues a non-indexed draw call.
func (p *CoreRenderPassEncoder) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	p.halPass.Draw(vertexCount, instanceCount, firstVertex, firstInstance)
}

// DrawIndexed issues an indexed draw call.
func (p *CoreRenderPassEncoder) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	p.halPass.DrawIndexed(indexCount, instanceCount, firstIndex, baseVertex, firstInstance)
}

// DrawIndirect issues a draw call with GPU-generated parameters.
func (p *CoreRenderPassEncoder) DrawIndirect(buffer *Buffer, offset uint64) {
	if buffer == nil || p.encoder == nil || p.encoder.device == nil {
		return
	}
	lock := p.encoder.device.SnatchLock()
	if lock == nil {
		return
	}
	guard := lock.Read()
	defer guard.Release()
	hb := buffer.Raw(guard)
	if hb == nil {
		return
	}
	p.halPass.DrawIndirect(hb, offset)
}

// DrawIndexedIndirect issues an indexed draw call with GPU-generated parameters.
func (p *CoreRenderPassEncoder) DrawIndexedIndirect(buffer *Buffer, offset uint64) {
	if buffer == nil || p.encoder == nil || p.encoder.device == nil {
		return
	}
	lock := p.encoder.device.SnatchLock()
	if lock == nil {
		return
	}
	guard := lock.Read()
	defer guard.Release()
	hb := buffer.Raw(guard)
	if hb == nil {
		return
	}
	p.halPass.DrawIndexedIndirect(hb, offset)
}

// End finishes the render pass.
func (p *CoreRenderPassEncoder) End() error {
	if p.ended {
		return ErrRenderPassEnded
	}
	p.ended = true
	p.halPass.End()
	return nil
}

// CoreComputePassEncoder wraps a HAL compute pass encoder.
type CoreComputePassEncoder struct {
	halPass hal.ComputePassEncoder
	encoder *CoreCommandEncoder
	ended   bool
}

// SetPipeline binds the compute pipeline that subsequent dispatches use.
func (p *CoreComputePassEncoder) SetPipeline(pipeline hal.ComputePipeline) {
	if pipeline == nil {
		return
	}
	p.halPass.SetPipeline(pipeline)
}

// SetBindGroup binds a resource group at the given index.
func (p *CoreComputePassEncoder) SetBindGroup(index uint32, group hal.BindGroup, offsets []uint32) {
	if group == nil {
		return
	}
	p.halPass.SetBindGroup(index, group, offsets)
}

// Dispatch issues a compute dispatch.
func (p *CoreComputePassEncoder) Dispatch(x, y, z uint32) {
	p.halPass.Dispatch(x, y, z)
}

// DispatchIndirect issues a compute dispatch with GPU-generated parameters.
func (p *CoreComputePassEncoder) DispatchIndirect(buffer *Buffer, offset uint64) {
	if buffer == nil || p.encoder == nil || p.encoder.device == nil {
		return
	}
	lock := p.encoder.device.SnatchLock()
	if lock == nil {
		return
	}
	guard := lock.Read()
	defer guard.Release()
	hb := buffer.Raw(guard)
	if hb == nil {
		return
	}
	p.halPass.DispatchIndirect(hb, offset)
}

// End finishes the compute pass.
func (p *CoreComputePassEncoder) End() error {
	if p.ended {
		return ErrRenderPassEnded
	}
	p.ended = true
	p.halPass.End()
	return nil
}

// CoreCommandBuffer wraps a finished HAL command buffer, ready for
// submission to a queue.
type CoreCommandBuffer struct {
	halBuffer hal.CommandBuffer
}

// Raw returns the underlying HAL command buffer.
func (b *CoreCommandBuffer) Raw() hal.CommandBuffer {
	return b.halBuffer
}

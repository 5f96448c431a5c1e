package nexus

import (
	"fmt"
	"hash/fnv"

	types "github.com/gogpu/gputypes"
	"github.com/gogpu/nexus/binding"
	"github.com/gogpu/nexus/hal"
	"github.com/gogpu/nexus/pipeline"
	"github.com/gogpu/nexus/shader"
)

type shaderStages = types.ShaderStages

// stageVisibility maps a reflected shader stage to its gputypes visibility
// bit.
func stageVisibility(s shader.Stage) shaderStages {
	switch s {
	case shader.StageVertex:
		return types.ShaderStageVertex
	case shader.StageFragment:
		return types.ShaderStageFragment
	case shader.StageCompute:
		return types.ShaderStageCompute
	default:
		return 0
	}
}

// recorderState is CommandList's pass state machine. A command list starts
// Idle; render and compute passes are mutually exclusive, so entering one
// kind ends the other. Ended is terminal: no further recording is
// permitted, whether reached by Finish or by a pass state violation.
type recorderState int

const (
	recorderIdle recorderState = iota
	recorderInRenderPass
	recorderInComputePass
	recorderEnded
)

func (s recorderState) String() string {
	switch s {
	case recorderIdle:
		return "idle"
	case recorderInRenderPass:
		return "in a render pass"
	case recorderInComputePass:
		return "in a compute pass"
	default:
		return "ended"
	}
}

// vertexBinding remembers a SetVertexBuffer call until draw time, when the
// recorder replays every valid binding onto the pass.
type vertexBinding struct {
	buffer *Buffer
	offset uint64
}

// indexBinding remembers the SetIndexBuffer call the same way.
type indexBinding struct {
	buffer *Buffer
	format types.IndexFormat
	offset uint64
}

// CommandList is the auto-resolving counterpart to CommandEncoder: instead
// of requiring every draw call to carry an explicit *RenderPipeline, it lets
// callers set a Program plus fixed-function state piecemeal (the way an
// immediate-mode renderer accumulates state) and resolves the concrete
// pipeline lazily, on the first draw after anything changed. Explicit
// pipelines remain available via BindRenderPipeline for callers that already
// have one cached themselves.
//
// Render and compute passes are mutually exclusive and the list manages the
// transitions itself: BeginRenderPass ends an open compute pass,
// BindComputePipeline ends an open render pass and opens a compute pass,
// and any transfer command closes whichever pass is open. Only Draw,
// DrawIndexed, Dispatch, SetComputeBindGroup, and EndRenderPass insist on
// already being in the right pass.
//
// NOT thread-safe - do not use from multiple goroutines.
type CommandList struct {
	encoder *CommandEncoder
	device  *Device

	state recorderState

	renderPass  *RenderPassEncoder
	computePass *ComputePassEncoder
	tracker     *pipeline.StateTracker
	binds       *binding.Tracker

	program          *Program
	explicitPipeline *RenderPipeline

	vertexBuffers [8]vertexBinding
	indexBuffer   indexBinding

	// refSeq/refs/boundResources assign a stable per-object identity to
	// whatever buffer/view/sampler is bound to a group slot, so rebinding
	// the same object twice resolves to the same binding.*Ref (letting the
	// bind group cache actually dedup) without reaching into core IDs that
	// not every resource kind carries (texture views don't have one).
	refSeq         uint64
	refs           map[any]uint64
	boundResources map[uint64]any

	log *RenderStateEventLog
}

func (cl *CommandList) refFor(obj any) uint64 {
	if r, ok := cl.refs[obj]; ok {
		return r
	}
	cl.refSeq++
	cl.refs[obj] = cl.refSeq
	cl.boundResources[cl.refSeq] = obj
	return cl.refSeq
}

// CreateCommandList creates a dual-mode command list recorder on top of a
// fresh command encoder.
func (d *Device) CreateCommandList(desc *CommandEncoderDescriptor) (*CommandList, error) {
	if d.released {
		return nil, ErrReleased
	}
	encoder, err := d.CreateCommandEncoder(desc)
	if err != nil {
		return nil, err
	}
	return &CommandList{
		encoder:        encoder,
		device:         d,
		tracker:        pipeline.NewStateTracker(),
		binds:          binding.NewTracker(),
		refs:           make(map[any]uint64),
		boundResources: make(map[uint64]any),
		log:            NewRenderStateEventLog(),
	}, nil
}

// DiscardCommandList abandons a command list that will not be submitted,
// releasing its encoder's recording resources. A finished command list does
// not need discarding; its command buffer is consumed by Submit.
func (d *Device) DiscardCommandList(cl *CommandList) {
	if cl == nil || cl.state == recorderEnded {
		return
	}
	if cl.renderPass != nil {
		_ = cl.renderPass.End()
		cl.renderPass = nil
	}
	if cl.computePass != nil {
		_ = cl.computePass.End()
		cl.computePass = nil
	}
	cl.state = recorderEnded
	cl.encoder.Discard()
}

// EventLog returns the command list's structured event log. Recording is
// off by default; call SetEnabled(true) on the log to capture events.
func (cl *CommandList) EventLog() *RenderStateEventLog { return cl.log }

// record appends an event carrying a snapshot of the tracked render state
// at this point. No-op while the log is disabled.
func (cl *CommandList) record(tag RenderStateEventTag, detail string) {
	if !cl.log.Enabled() {
		return
	}
	cl.log.add(RenderStateEvent{Tag: tag, Detail: detail, Snapshot: cl.tracker.BuildSnapshot()})
}

// violate latches the command list closed and reports which operation was
// attempted in which state. Recording past a violation is refused the same
// way it is after Finish.
func (cl *CommandList) violate(op string) error {
	err := &PassStateError{Op: op, State: cl.state.String()}
	cl.state = recorderEnded
	return err
}

// endOpenPasses closes whichever pass is currently open, returning the
// list to Idle. Transfer commands and Finish route through here.
func (cl *CommandList) endOpenPasses() error {
	switch cl.state {
	case recorderInRenderPass:
		return cl.EndRenderPass()
	case recorderInComputePass:
		return cl.endComputePass()
	}
	return nil
}

func (cl *CommandList) endComputePass() error {
	if err := cl.computePass.End(); err != nil {
		return err
	}
	cl.computePass = nil
	cl.state = recorderIdle
	cl.record(RenderStateEventEndComputePass, "")
	return nil
}

// BeginRenderPass opens a render pass, first ending whichever pass is
// currently open.
func (cl *CommandList) BeginRenderPass(desc *RenderPassDescriptor) error {
	if cl.state == recorderEnded {
		return cl.violate("BeginRenderPass")
	}
	if err := cl.endOpenPasses(); err != nil {
		return err
	}
	pass, err := cl.encoder.BeginRenderPass(desc)
	if err != nil {
		return err
	}
	cl.renderPass = pass
	cl.state = recorderInRenderPass

	colorFormats := make([]types.TextureFormat, len(desc.ColorAttachments))
	for i, ca := range desc.ColorAttachments {
		if ca.View != nil {
			colorFormats[i] = ca.View.Format()
		}
	}
	var depthFormat types.TextureFormat
	if desc.DepthStencilAttachment != nil && desc.DepthStencilAttachment.View != nil {
		depthFormat = desc.DepthStencilAttachment.View.Format()
	}
	cl.tracker.SetRenderTargetConfig(colorFormats, depthFormat, 1)
	cl.record(RenderStateEventBeginRenderPass, "")
	return nil
}

// EndRenderPass ends the current render pass.
func (cl *CommandList) EndRenderPass() error {
	if cl.state != recorderInRenderPass {
		return cl.violate("EndRenderPass")
	}
	if err := cl.renderPass.End(); err != nil {
		return err
	}
	cl.renderPass = nil
	cl.state = recorderIdle
	cl.record(RenderStateEventEndRenderPass, "")
	return nil
}

// Finish completes recording and returns a submittable command buffer. An
// open compute pass is ended implicitly; an open render pass is a state
// violation, since the caller still owes the pass an EndRenderPass with
// its attachments resolved.
func (cl *CommandList) Finish() (*CommandBuffer, error) {
	switch cl.state {
	case recorderEnded, recorderInRenderPass:
		return nil, cl.violate("Finish")
	case recorderInComputePass:
		if err := cl.endComputePass(); err != nil {
			return nil, err
		}
	}
	cl.state = recorderEnded
	cl.record(RenderStateEventCommandListFinished, "")
	return cl.encoder.Finish()
}

// BindComputePipeline binds an explicitly-created compute pipeline, ending
// an open render pass and opening a compute pass if one isn't already open.
// Subsequent Dispatch calls use this pipeline.
func (cl *CommandList) BindComputePipeline(p *ComputePipeline) error {
	if cl.state == recorderEnded {
		return cl.violate("BindComputePipeline")
	}
	if cl.state == recorderInRenderPass {
		if err := cl.EndRenderPass(); err != nil {
			return err
		}
	}
	if cl.state != recorderInComputePass {
		pass, err := cl.encoder.BeginComputePass(nil)
		if err != nil {
			return err
		}
		cl.computePass = pass
		cl.state = recorderInComputePass
		cl.record(RenderStateEventBeginComputePass, "")
	}
	cl.computePass.SetPipeline(p)
	return nil
}

// SetComputeBindGroup binds a bind group for subsequent dispatches. Legal
// only inside a compute pass.
func (cl *CommandList) SetComputeBindGroup(index uint32, group *BindGroup, offsets []uint32) error {
	if cl.state != recorderInComputePass {
		return cl.violate("SetComputeBindGroup")
	}
	cl.computePass.SetBindGroup(index, group, offsets)
	return nil
}

// Dispatch issues a compute dispatch. Legal only inside a compute pass.
func (cl *CommandList) Dispatch(x, y, z uint32) error {
	if cl.state != recorderInComputePass {
		return cl.violate("Dispatch")
	}
	cl.computePass.Dispatch(x, y, z)
	return nil
}

// CopyBufferToBuffer records a buffer copy, ending any open pass first.
func (cl *CommandList) CopyBufferToBuffer(src *Buffer, srcOffset uint64, dst *Buffer, dstOffset, size uint64) error {
	if cl.state == recorderEnded {
		return cl.violate("CopyBufferToBuffer")
	}
	if err := cl.endOpenPasses(); err != nil {
		return err
	}
	cl.encoder.CopyBufferToBuffer(src, srcOffset, dst, dstOffset, size)
	return nil
}

// CopyBufferToTexture records a buffer-to-texture copy, ending any open
// pass first. See CommandEncoder.CopyBufferToTexture for how the row pitch
// decides between the aligned, compute-repack, and row-by-row paths.
func (cl *CommandList) CopyBufferToTexture(src *Buffer, dst *Texture, extent BufferTextureCopyExtent) error {
	if cl.state == recorderEnded {
		return cl.violate("CopyBufferToTexture")
	}
	if err := cl.endOpenPasses(); err != nil {
		return err
	}
	return cl.encoder.CopyBufferToTexture(src, dst, extent)
}

// CopyTextureToBuffer records a texture-to-buffer copy, ending any open
// pass first.
func (cl *CommandList) CopyTextureToBuffer(src *Texture, dst *Buffer, extent BufferTextureCopyExtent, dstRowPitch uint32) error {
	if cl.state == recorderEnded {
		return cl.violate("CopyTextureToBuffer")
	}
	if err := cl.endOpenPasses(); err != nil {
		return err
	}
	return cl.encoder.CopyTextureToBuffer(src, dst, extent, dstRowPitch)
}

// BindProgram switches the command list to auto-resolved mode: subsequent
// draws build a pipeline on demand from the program's merged layout and the
// fixed-function state set on this command list, rather than requiring an
// explicitly-created *RenderPipeline.
func (cl *CommandList) BindProgram(program *Program) {
	cl.explicitPipeline = nil
	cl.program = program
	cl.tracker.SetProgram(program.ref())
	cl.record(RenderStateEventProgramBound, program.Label())
}

// BindRenderPipeline switches to explicit mode: the given pipeline is used
// as-is for subsequent draws, bypassing resolution entirely.
func (cl *CommandList) BindRenderPipeline(p *RenderPipeline) {
	cl.program = nil
	cl.explicitPipeline = p
	if cl.state == recorderInRenderPass {
		cl.renderPass.core.SetPipeline(p.hal)
	}
	cl.record(RenderStateEventPipelineBoundExplicit, "")
}

// SetVertexInputLayout sets the vertex buffer layout used by the pipeline
// resolved for subsequent draws.
func (cl *CommandList) SetVertexInputLayout(buffers []types.VertexBufferLayout) {
	cl.tracker.SetVertexInputLayout(buffers)
	cl.record(RenderStateEventVertexInputLayoutChanged, "")
}

// SetPrimitiveTopology sets the input assembly topology.
func (cl *CommandList) SetPrimitiveTopology(t types.PrimitiveTopology) {
	cl.tracker.SetPrimitiveTopology(t)
	cl.record(RenderStateEventPrimitiveTopologyChanged, "")
}

// SetPolygonMode sets the rasterizer fill mode.
func (cl *CommandList) SetPolygonMode(m pipeline.PolygonMode) {
	cl.tracker.SetPolygonMode(m)
	cl.record(RenderStateEventPolygonModeChanged, "")
}

// SetCullMode sets which triangle faces are culled.
func (cl *CommandList) SetCullMode(m types.CullMode) {
	cl.tracker.SetCullMode(m)
	cl.record(RenderStateEventCullModeChanged, "")
}

// SetFrontFace sets the winding order considered front-facing.
func (cl *CommandList) SetFrontFace(f types.FrontFace) {
	cl.tracker.SetFrontFace(f)
	cl.record(RenderStateEventFrontFaceChanged, "")
}

// SetDepthTest configures depth testing for subsequent draws.
func (cl *CommandList) SetDepthTest(testEnabled, writeEnabled bool, compare types.CompareFunction) {
	cl.tracker.SetDepthTest(testEnabled, writeEnabled, uint8(compare))
	cl.record(RenderStateEventDepthTestChanged, "")
}

// SetStencilTest toggles stencil testing for subsequent draws.
func (cl *CommandList) SetStencilTest(enabled bool) {
	cl.tracker.SetStencilTest(enabled)
	cl.record(RenderStateEventStencilTestChanged, "")
}

// SetStencilFrontOps sets the front-face stencil fail/pass/depth-fail
// operations and compare function.
func (cl *CommandList) SetStencilFrontOps(fail, pass, depthFail hal.StencilOperation, compare types.CompareFunction) {
	cl.tracker.SetStencilFrontOps(uint8(fail), uint8(pass), uint8(depthFail), uint8(compare))
	cl.record(RenderStateEventStencilTestChanged, "front")
}

// SetStencilBackOps sets the back-face stencil fail/pass/depth-fail
// operations and compare function.
func (cl *CommandList) SetStencilBackOps(fail, pass, depthFail hal.StencilOperation, compare types.CompareFunction) {
	cl.tracker.SetStencilBackOps(uint8(fail), uint8(pass), uint8(depthFail), uint8(compare))
	cl.record(RenderStateEventStencilTestChanged, "back")
}

// SetBlend configures blending for one color attachment.
func (cl *CommandList) SetBlend(attachment uint32, enabled bool, blend *types.BlendState) {
	cl.tracker.SetBlendEnabled(attachment, enabled)
	if blend != nil {
		cl.tracker.SetBlendFactors(attachment,
			uint8(blend.Color.SrcFactor), uint8(blend.Color.DstFactor), uint8(blend.Color.Operation),
			uint8(blend.Alpha.SrcFactor), uint8(blend.Alpha.DstFactor), uint8(blend.Alpha.Operation))
	}
	cl.record(RenderStateEventBlendChanged, "")
}

// SetColorWriteMask sets the write mask for one color attachment.
func (cl *CommandList) SetColorWriteMask(attachment uint32, mask types.ColorWriteMask) {
	cl.tracker.SetColorWriteMask(attachment, mask)
	cl.record(RenderStateEventColorWriteMaskChanged, "")
}

// SetVertexBuffer binds a vertex buffer at slot. The binding is applied to
// the pass at the next draw, so it may be set before BeginRenderPass.
func (cl *CommandList) SetVertexBuffer(slot uint32, buf *Buffer, offset uint64) {
	if int(slot) < len(cl.vertexBuffers) {
		cl.vertexBuffers[slot] = vertexBinding{buffer: buf, offset: offset}
	}
	cl.record(RenderStateEventVertexBufferBound, fmt.Sprintf("slot %d", slot))
}

// SetIndexBuffer binds the index buffer. Applied at the next indexed draw.
func (cl *CommandList) SetIndexBuffer(buf *Buffer, format types.IndexFormat, offset uint64) {
	cl.indexBuffer = indexBinding{buffer: buf, format: format, offset: offset}
	cl.record(RenderStateEventIndexBufferBound, "")
}

// SetBindGroupBuffer binds a buffer range at (group, binding, arrayElement)
// for bind group materialization at the next draw.
func (cl *CommandList) SetBindGroupBuffer(group, binding_, arrayElement uint32, typ shader.BindGroupLayoutEntryType, buf *Buffer, offset, size uint64) {
	ref := binding.BufferRef(cl.refFor(buf))
	cl.binds.SetBuffer(group, binding_, arrayElement, typ, ref, offset, size)
}

// SetBindGroupTexture binds a texture view at (group, binding, arrayElement).
func (cl *CommandList) SetBindGroupTexture(group, binding_, arrayElement uint32, typ shader.BindGroupLayoutEntryType, view *TextureView) {
	ref := binding.TextureRef(cl.refFor(view))
	cl.binds.SetTexture(group, binding_, arrayElement, typ, ref, binding.TextureSubresourceRange{MipLevelCount: 1, ArrayLayerCount: 1})
}

// SetBindGroupSampler binds a sampler at (group, binding, arrayElement).
func (cl *CommandList) SetBindGroupSampler(group, binding_, arrayElement uint32, samp *Sampler) {
	ref := binding.SamplerRef(cl.refFor(samp))
	cl.binds.SetSampler(group, binding_, arrayElement, ref)
}

// Draw resolves a pipeline and bind groups if needed, then issues a draw.
func (cl *CommandList) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) error {
	if err := cl.resolveBeforeDraw(); err != nil {
		return err
	}
	cl.renderPass.core.Draw(vertexCount, instanceCount, firstVertex, firstInstance)
	cl.record(RenderStateEventDraw, "")
	return nil
}

// DrawIndexed resolves a pipeline and bind groups if needed, then issues an
// indexed draw.
func (cl *CommandList) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) error {
	if err := cl.resolveBeforeDraw(); err != nil {
		return err
	}
	cl.renderPass.core.DrawIndexed(indexCount, instanceCount, firstIndex, baseVertex, firstInstance)
	cl.record(RenderStateEventDraw, "indexed")
	return nil
}

// resolveBeforeDraw runs the draw-time resolution sequence: the pipeline
// (explicit binding, or the cache when the tracked state is dirty), then
// dirty bind groups, then the deferred vertex and index buffer bindings.
func (cl *CommandList) resolveBeforeDraw() error {
	if cl.state != recorderInRenderPass {
		return cl.violate("Draw")
	}

	var merged *shader.MergedLayout
	switch {
	case cl.explicitPipeline != nil:
		cl.renderPass.core.SetPipeline(cl.explicitPipeline.hal)
	case cl.program == nil:
		return fmt.Errorf("nexus: no program or pipeline bound")
	default:
		if cl.tracker.IsDirty() {
			key := cl.tracker.BuildCacheKey()
			halPipeline, cacheHit, err := cl.resolvePipeline(key)
			if err != nil {
				return err
			}
			cl.renderPass.core.SetPipeline(halPipeline)
			cl.tracker.MarkClean()
			if cl.log.Enabled() {
				cl.log.add(RenderStateEvent{
					Tag:      RenderStateEventPsoResolved,
					Snapshot: cl.tracker.BuildSnapshot(),
					KeyHash:  hashCacheKey(key),
					CacheHit: cacheHit,
				})
			}
		}
		merged = cl.program.mergedLayout()
	}

	if err := cl.materializeBindGroups(merged); err != nil {
		return err
	}

	for slot, vb := range cl.vertexBuffers {
		if vb.buffer != nil {
			cl.renderPass.SetVertexBuffer(uint32(slot), vb.buffer, vb.offset)
		}
	}
	if cl.indexBuffer.buffer != nil {
		cl.renderPass.SetIndexBuffer(cl.indexBuffer.buffer, cl.indexBuffer.format, cl.indexBuffer.offset)
	}
	return nil
}

// hashCacheKey digests a cache key's canonical form for the event log, so
// two PsoResolved events can be compared for key identity without carrying
// the whole key.
func hashCacheKey(key pipeline.RenderPipelineCacheKey) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(key.String()))
	return h.Sum64()
}

// resolvePipeline builds (or reuses) the layout and pipeline for the
// command list's current program and fixed-function state.
func (cl *CommandList) resolvePipeline(key pipeline.RenderPipelineCacheKey) (hal.RenderPipeline, bool, error) {
	layout, err := cl.resolveLayout(cl.program.mergedLayout(), cl.program.visibility())
	if err != nil {
		return nil, false, err
	}

	halPipeline, hit, err := cl.device.renderPipelineCache.FindOrInsert(key, func(k pipeline.RenderPipelineCacheKey) (hal.RenderPipeline, error) {
		return cl.buildRenderPipeline(k, layout)
	})
	if err != nil {
		hal.Logger().Error("render pipeline construction failed", "program", cl.program.Label(), "error", err)
		return nil, false, &pipeline.PipelineConstructionError{Label: cl.program.Label(), Reason: err}
	}
	return halPipeline, hit, nil
}

func (cl *CommandList) resolveLayout(merged *shader.MergedLayout, visibility shaderStages) (*resolvedLayout, error) {
	key := pipeline.BuildLayoutCacheKey(merged.Layouts)
	return cl.device.layoutCache.FindOrInsert(key, func(pipeline.LayoutCacheKey) (*resolvedLayout, error) {
		halDevice := cl.device.halDevice()
		if halDevice == nil {
			return nil, ErrReleased
		}

		bgls := make([]hal.BindGroupLayout, len(merged.Layouts))
		for i, group := range merged.Layouts {
			entries := make([]types.BindGroupLayoutEntry, len(group.Entries))
			for j, e := range group.Entries {
				entries[j] = pipeline.GPUTypesEntry(e, visibility)
			}
			bgl, err := halDevice.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{Entries: entries})
			if err != nil {
				return nil, fmt.Errorf("nexus: bind group layout for set %d: %w", group.Set, err)
			}
			bgls[i] = bgl
		}

		pl, err := halDevice.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{BindGroupLayouts: bgls})
		if err != nil {
			return nil, fmt.Errorf("nexus: pipeline layout: %w", err)
		}

		return &resolvedLayout{bindGroupLayouts: bgls, pipelineLayout: pl}, nil
	})
}

func (cl *CommandList) buildRenderPipeline(key pipeline.RenderPipelineCacheKey, layout *resolvedLayout) (hal.RenderPipeline, error) {
	halDevice := cl.device.halDevice()
	if halDevice == nil {
		return nil, ErrReleased
	}

	var vertexModule, fragmentModule hal.ShaderModule
	var vertexEntry, fragmentEntry string
	for _, stage := range cl.program.Stages() {
		refl := stage.Reflection()
		if refl == nil {
			continue
		}
		switch refl.Stage {
		case shader.StageVertex:
			vertexModule = stage.halShaderModule()
			vertexEntry = refl.EntryPoint
		case shader.StageFragment:
			fragmentModule = stage.halShaderModule()
			fragmentEntry = refl.EntryPoint
		}
	}
	if vertexModule == nil {
		return nil, fmt.Errorf("nexus: program %q has no vertex stage", cl.program.Label())
	}

	desc := &hal.RenderPipelineDescriptor{
		Label:  cl.program.Label(),
		Layout: layout.pipelineLayout,
		Vertex: hal.VertexState{
			Module:     vertexModule,
			EntryPoint: vertexEntry,
			Buffers:    key.VertexBuffers,
		},
		Primitive:   perDrawToPrimitiveState(key.PerDraw),
		Multisample: types.MultisampleState{Count: key.SampleCount, Mask: 0xFFFFFFFF},
	}

	if key.DepthStencilFormat != types.TextureFormatUndefined {
		desc.DepthStencil = perDrawToDepthStencilState(key.PerDraw, key.DepthStencilFormat)
	}

	if fragmentModule != nil {
		targets := make([]types.ColorTargetState, len(key.ColorFormats))
		for i, format := range key.ColorFormats {
			targets[i] = perAttachmentToColorTargetState(format, key.PerAttachment[i])
		}
		desc.Fragment = &hal.FragmentState{
			Module:     fragmentModule,
			EntryPoint: fragmentEntry,
			Targets:    targets,
		}
	}

	return halDevice.CreateRenderPipeline(desc)
}

// materializeBindGroups creates (or, with bind group caching enabled,
// reuses) a hal.BindGroup for every dirty group and binds it. merged is nil
// when an explicit pipeline is bound; the caller is responsible for having
// set up bind groups through the explicit Device.CreateBindGroup path in
// that case, so only re-binding resources changed through the tracker
// applies.
func (cl *CommandList) materializeBindGroups(merged *shader.MergedLayout) error {
	halDevice := cl.device.halDevice()
	if halDevice == nil {
		return ErrReleased
	}

	for group := uint32(0); group < binding.MaxGroups; group++ {
		if !cl.binds.IsGroupDirty(group) {
			continue
		}
		entries := cl.binds.GroupEntries(group)
		if len(entries) == 0 {
			cl.binds.MarkGroupClean(group)
			continue
		}

		var layoutIdx int = -1
		if merged != nil {
			for i, l := range merged.Layouts {
				if l.Set == group {
					layoutIdx = i
					break
				}
			}
		}
		if layoutIdx < 0 {
			cl.binds.MarkGroupClean(group)
			continue
		}

		halEntries := make([]types.BindGroupEntry, len(entries))
		for i, e := range entries {
			halEntries[i] = cl.toGPUBindGroupEntry(e)
		}

		bgl, err := cl.resolveGroupLayout(merged, group)
		if err != nil {
			return err
		}

		var halGroup hal.BindGroup
		if cl.device.bindGroupCache != nil {
			cacheKey := binding.CacheKey{PipelineIdentity: uint64(cl.tracker.BuildCacheKey().Program), GroupIndex: group, Entries: entries}
			halGroup, err = cl.device.bindGroupCache.FindOrInsert(cacheKey, func(binding.CacheKey) (hal.BindGroup, error) {
				return halDevice.CreateBindGroup(&hal.BindGroupDescriptor{Layout: bgl, Entries: halEntries})
			})
		} else {
			halGroup, err = halDevice.CreateBindGroup(&hal.BindGroupDescriptor{Layout: bgl, Entries: halEntries})
		}
		if err != nil {
			return fmt.Errorf("nexus: bind group for set %d: %w", group, err)
		}

		cl.renderPass.core.SetBindGroup(group, halGroup, nil)
		cl.binds.MarkGroupClean(group)
		cl.record(RenderStateEventBindGroupMaterialized, fmt.Sprintf("group %d", group))
	}
	return nil
}

func (cl *CommandList) resolveGroupLayout(merged *shader.MergedLayout, group uint32) (hal.BindGroupLayout, error) {
	layout, err := cl.resolveLayout(merged, cl.program.visibility())
	if err != nil {
		return nil, err
	}
	for i, l := range merged.Layouts {
		if l.Set == group {
			return layout.bindGroupLayouts[i], nil
		}
	}
	return nil, fmt.Errorf("nexus: no layout for group %d", group)
}

func (cl *CommandList) toGPUBindGroupEntry(e binding.BoundEntry) types.BindGroupEntry {
	entry := types.BindGroupEntry{Binding: e.Binding}
	switch res := cl.boundResources[resourceKeyFor(e)].(type) {
	case *Buffer:
		halBuf := res.halBuffer()
		if halBuf != nil {
			entry.Resource = types.BufferBinding{Buffer: halBuf.NativeHandle(), Offset: e.Buffer.Offset, Size: e.Buffer.Size}
		}
	case *TextureView:
		halView := res.halTextureView()
		if halView != nil {
			entry.Resource = types.TextureViewBinding{TextureView: halView.NativeHandle()}
		}
	case *Sampler:
		halSamp := res.halSampler()
		if halSamp != nil {
			entry.Resource = types.SamplerBinding{Sampler: halSamp.NativeHandle()}
		}
	}
	return entry
}

// resourceKeyFor recovers the map key toGPUBindGroupEntry's caller used
// when it recorded the binding, from the BoundEntry alone.
func resourceKeyFor(e binding.BoundEntry) uint64 {
	switch e.Type {
	case shader.BindGroupLayoutEntryUniformBuffer, shader.BindGroupLayoutEntryStorageBuffer:
		return uint64(e.Buffer.Buffer)
	case shader.BindGroupLayoutEntrySampler:
		return uint64(e.Sampler.Sampler)
	default:
		return uint64(e.Texture.Texture)
	}
}

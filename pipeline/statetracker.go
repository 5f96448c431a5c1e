package pipeline

import (
	"fmt"
	"strings"

	types "github.com/gogpu/gputypes"
)

// ProgramSetter is implemented by whatever uniquely identifies a bound
// program; CommandList passes the raw form of a core.ProgramID.
type ProgramSetter = ProgramRef

// StateTracker tracks mutable render pipeline state on a command list. Each
// setter is a no-op if the new value matches the current one; otherwise it
// updates the value and marks the tracker dirty. At draw time, if dirty, the
// command list calls BuildCacheKey to get a key for pipeline lookup/creation.
type StateTracker struct {
	dirty bool

	program ProgramRef

	perDraw       PerDrawFixedFunctionStaticState
	perAttachment []PerAttachmentFixedFunctionStaticState

	vertexBuffers []types.VertexBufferLayout

	colorFormats       []types.TextureFormat
	depthStencilFormat types.TextureFormat
	sampleCount        uint32
}

// NewStateTracker returns a tracker with the engine's default fixed-function
// state, already marked dirty (there is no pipeline resolved yet).
func NewStateTracker() *StateTracker {
	t := &StateTracker{}
	t.Reset()
	return t
}

// IsDirty reports whether any setter has been called since the last
// MarkClean.
func (t *StateTracker) IsDirty() bool { return t.dirty }

// MarkClean clears the dirty flag after a pipeline has been resolved for the
// current state.
func (t *StateTracker) MarkClean() { t.dirty = false }

// SetProgram binds the program a draw will use.
func (t *StateTracker) SetProgram(program ProgramRef) {
	if t.program != program {
		t.program = program
		t.dirty = true
	}
}

// SetVertexInputLayout replaces the vertex buffer layout. Buffers (and their
// attributes) are compared and hashed in the order given, not canonicalized;
// setting a layout equal to the current one is a no-op.
func (t *StateTracker) SetVertexInputLayout(buffers []types.VertexBufferLayout) {
	if vertexLayoutsEqual(t.vertexBuffers, buffers) {
		return
	}
	t.vertexBuffers = buffers
	t.dirty = true
}

func vertexLayoutsEqual(a, b []types.VertexBufferLayout) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ArrayStride != b[i].ArrayStride || a[i].StepMode != b[i].StepMode ||
			len(a[i].Attributes) != len(b[i].Attributes) {
			return false
		}
		for j := range a[i].Attributes {
			if a[i].Attributes[j] != b[i].Attributes[j] {
				return false
			}
		}
	}
	return true
}

// SetPrimitiveTopology sets the input assembly topology.
func (t *StateTracker) SetPrimitiveTopology(topology types.PrimitiveTopology) {
	v := uint8(topology)
	if t.perDraw.PrimitiveTopology != v {
		t.perDraw.PrimitiveTopology = v
		t.dirty = true
	}
}

// SetPolygonMode sets the rasterizer fill mode.
func (t *StateTracker) SetPolygonMode(mode PolygonMode) {
	v := uint8(mode)
	if t.perDraw.PolygonMode != v {
		t.perDraw.PolygonMode = v
		t.dirty = true
	}
}

// SetCullMode sets which triangle faces are culled.
func (t *StateTracker) SetCullMode(cullMode types.CullMode) {
	v := uint8(cullMode)
	if t.perDraw.CullMode != v {
		t.perDraw.CullMode = v
		t.dirty = true
	}
}

// SetFrontFace sets the winding order considered front-facing.
func (t *StateTracker) SetFrontFace(frontFace types.FrontFace) {
	v := uint8(frontFace)
	if t.perDraw.FrontFace != v {
		t.perDraw.FrontFace = v
		t.dirty = true
	}
}

// SetDepthTest sets whether depth testing and depth writes are enabled, and
// the comparison function used when testing is enabled.
func (t *StateTracker) SetDepthTest(testEnabled, writeEnabled bool, compare uint8) {
	nt, nw := boolToU8(testEnabled), boolToU8(writeEnabled)
	if t.perDraw.DepthTestEnabled != nt || t.perDraw.DepthWriteEnabled != nw || t.perDraw.DepthCompareOp != compare {
		t.perDraw.DepthTestEnabled = nt
		t.perDraw.DepthWriteEnabled = nw
		t.perDraw.DepthCompareOp = compare
		t.dirty = true
	}
}

// SetStencilTest sets whether stencil testing is enabled.
func (t *StateTracker) SetStencilTest(enabled bool) {
	v := boolToU8(enabled)
	if t.perDraw.StencilTestEnabled != v {
		t.perDraw.StencilTestEnabled = v
		t.dirty = true
	}
}

// SetStencilFrontOps sets the front-face stencil operations.
func (t *StateTracker) SetStencilFrontOps(fail, pass, depthFail, compare uint8) {
	if t.perDraw.StencilFrontFailOp != fail || t.perDraw.StencilFrontPassOp != pass ||
		t.perDraw.StencilFrontDepthOp != depthFail || t.perDraw.StencilFrontCompare != compare {
		t.perDraw.StencilFrontFailOp = fail
		t.perDraw.StencilFrontPassOp = pass
		t.perDraw.StencilFrontDepthOp = depthFail
		t.perDraw.StencilFrontCompare = compare
		t.dirty = true
	}
}

// SetStencilBackOps sets the back-face stencil operations.
func (t *StateTracker) SetStencilBackOps(fail, pass, depthFail, compare uint8) {
	if t.perDraw.StencilBackFailOp != fail || t.perDraw.StencilBackPassOp != pass ||
		t.perDraw.StencilBackDepthOp != depthFail || t.perDraw.StencilBackCompare != compare {
		t.perDraw.StencilBackFailOp = fail
		t.perDraw.StencilBackPassOp = pass
		t.perDraw.StencilBackDepthOp = depthFail
		t.perDraw.StencilBackCompare = compare
		t.dirty = true
	}
}

// SetBlendEnabled toggles blending for one color attachment.
func (t *StateTracker) SetBlendEnabled(attachment uint32, enabled bool) {
	if int(attachment) >= len(t.perAttachment) {
		return
	}
	v := boolToU8(enabled)
	if t.perAttachment[attachment].BlendEnabled != v {
		t.perAttachment[attachment].BlendEnabled = v
		t.dirty = true
	}
}

// SetBlendFactors sets the blend factors/op for one color attachment.
func (t *StateTracker) SetBlendFactors(attachment uint32, srcColor, dstColor, colorOp, srcAlpha, dstAlpha, alphaOp uint8) {
	if int(attachment) >= len(t.perAttachment) {
		return
	}
	a := &t.perAttachment[attachment]
	if a.BlendSrcColorFactor != srcColor || a.BlendDstColorFactor != dstColor || a.BlendColorOp != colorOp ||
		a.BlendSrcAlphaFactor != srcAlpha || a.BlendDstAlphaFactor != dstAlpha || a.BlendAlphaOp != alphaOp {
		a.BlendSrcColorFactor = srcColor
		a.BlendDstColorFactor = dstColor
		a.BlendColorOp = colorOp
		a.BlendSrcAlphaFactor = srcAlpha
		a.BlendDstAlphaFactor = dstAlpha
		a.BlendAlphaOp = alphaOp
		t.dirty = true
	}
}

// SetColorWriteMask sets the write mask for one color attachment.
func (t *StateTracker) SetColorWriteMask(attachment uint32, mask types.ColorWriteMask) {
	if int(attachment) >= len(t.perAttachment) {
		return
	}
	v := uint8(mask)
	if t.perAttachment[attachment].ColorWriteMask != v {
		t.perAttachment[attachment].ColorWriteMask = v
		t.dirty = true
	}
}

// SetRenderTargetConfig is called by the command list at BeginRenderPass. It
// resizes the per-attachment state to match the new attachment count,
// keeping existing slots and initializing new ones to defaults, and
// unconditionally marks the tracker dirty since a pipeline compiled for
// different attachment formats can never be reused.
func (t *StateTracker) SetRenderTargetConfig(colorFormats []types.TextureFormat, depthStencilFormat types.TextureFormat, sampleCount uint32) {
	t.colorFormats = colorFormats
	t.depthStencilFormat = depthStencilFormat
	t.sampleCount = sampleCount

	attachments := make([]PerAttachmentFixedFunctionStaticState, len(colorFormats))
	for i := range attachments {
		if i < len(t.perAttachment) {
			attachments[i] = t.perAttachment[i]
		} else {
			attachments[i] = DefaultPerAttachmentFixedFunctionStaticState()
		}
	}
	t.perAttachment = attachments

	t.dirty = true
}

// BuildCacheKey assembles a RenderPipelineCacheKey from the current state.
func (t *StateTracker) BuildCacheKey() RenderPipelineCacheKey {
	return RenderPipelineCacheKey{
		Program:            t.program,
		PerDraw:            t.perDraw,
		PerAttachment:      append([]PerAttachmentFixedFunctionStaticState(nil), t.perAttachment...),
		VertexBuffers:      append([]types.VertexBufferLayout(nil), t.vertexBuffers...),
		ColorFormats:       append([]types.TextureFormat(nil), t.colorFormats...),
		DepthStencilFormat: t.depthStencilFormat,
		SampleCount:        t.sampleCount,
	}
}

// BuildSnapshot renders the tracked state in the human-readable form the
// event log carries: the packed blocks, the render target config, and the
// vertex input layout, one field per draw-relevant decision.
func (t *StateTracker) BuildSnapshot() string {
	var b strings.Builder
	fmt.Fprintf(&b, "program=%d dirty=%t\n", t.program, t.dirty)
	fmt.Fprintf(&b, "perDraw=%+v\n", t.perDraw)
	for i, att := range t.perAttachment {
		fmt.Fprintf(&b, "attachment[%d]=%+v\n", i, att)
	}
	fmt.Fprintf(&b, "colorFormats=%v depthStencil=%d samples=%d\n", t.colorFormats, t.depthStencilFormat, t.sampleCount)
	for i, vb := range t.vertexBuffers {
		fmt.Fprintf(&b, "vertexBuffer[%d]={stride=%d step=%d attrs=%d}\n", i, vb.ArrayStride, vb.StepMode, len(vb.Attributes))
	}
	return b.String()
}

// Reset returns the tracker to its state at the start of a command list:
// no program bound, default fixed-function state, no render targets.
func (t *StateTracker) Reset() {
	t.dirty = true
	t.program = 0
	t.perDraw = DefaultPerDrawFixedFunctionStaticState()
	t.perAttachment = nil
	t.vertexBuffers = nil
	t.colorFormats = nil
	t.depthStencilFormat = types.TextureFormatUndefined
	t.sampleCount = 1
}

func boolToU8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

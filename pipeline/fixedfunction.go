// Package pipeline tracks mutable render pipeline state on a command list,
// resolves it to a cache key at draw time, and caches the backend pipeline
// objects (and the pipeline layouts they're built from) keyed on content.
package pipeline

import (
	"github.com/gogpu/nexus/hal"
	types "github.com/gogpu/gputypes"
)

// PolygonMode selects the rasterizer fill mode. WebGPU has no polygon-mode
// control of its own, so the tracker carries this for backends that expose
// one; backends without it treat anything but Fill as unsupported.
type PolygonMode uint8

const (
	PolygonModeFill PolygonMode = iota
	PolygonModeLine
	PolygonModePoint
)

// PerDrawFixedFunctionStaticState is the packed, per-draw fixed-function
// pipeline state. It is a fixed-size struct of uint8 fields, so it is
// comparable with == and cheap to hash as part of a RenderPipelineCacheKey.
type PerDrawFixedFunctionStaticState struct {
	PrimitiveTopology   uint8
	PolygonMode         uint8
	CullMode            uint8
	FrontFace           uint8
	DepthTestEnabled    uint8
	DepthWriteEnabled   uint8
	DepthCompareOp      uint8
	StencilTestEnabled  uint8
	StencilFrontFailOp  uint8
	StencilFrontPassOp  uint8
	StencilFrontDepthOp uint8
	StencilFrontCompare uint8
	StencilBackFailOp   uint8
	StencilBackPassOp   uint8
	StencilBackDepthOp  uint8
	StencilBackCompare  uint8
}

// DefaultPerDrawFixedFunctionStaticState matches the engine's defaults:
// triangle list, fill, no culling, CCW front face, depth/stencil disabled.
func DefaultPerDrawFixedFunctionStaticState() PerDrawFixedFunctionStaticState {
	return PerDrawFixedFunctionStaticState{
		PrimitiveTopology:   uint8(types.PrimitiveTopologyTriangleList),
		PolygonMode:         uint8(PolygonModeFill),
		CullMode:            uint8(types.CullModeNone),
		FrontFace:           uint8(types.FrontFaceCCW),
		DepthCompareOp:      uint8(0), // CompareFunctionUndefined == "always" sentinel for disabled tests
		StencilFrontFailOp:  uint8(hal.StencilOperationKeep),
		StencilFrontPassOp:  uint8(hal.StencilOperationKeep),
		StencilFrontDepthOp: uint8(hal.StencilOperationKeep),
		StencilBackFailOp:   uint8(hal.StencilOperationKeep),
		StencilBackPassOp:   uint8(hal.StencilOperationKeep),
		StencilBackDepthOp:  uint8(hal.StencilOperationKeep),
	}
}

// PerAttachmentFixedFunctionStaticState is the packed per-color-attachment
// blend state.
type PerAttachmentFixedFunctionStaticState struct {
	BlendEnabled        uint8
	BlendSrcColorFactor uint8
	BlendDstColorFactor uint8
	BlendColorOp        uint8
	BlendSrcAlphaFactor uint8
	BlendDstAlphaFactor uint8
	BlendAlphaOp        uint8
	ColorWriteMask       uint8
}

// DefaultPerAttachmentFixedFunctionStaticState is one-minus-nothing, additive,
// write-everything: the state of a color target with no Blend set.
func DefaultPerAttachmentFixedFunctionStaticState() PerAttachmentFixedFunctionStaticState {
	return PerAttachmentFixedFunctionStaticState{
		BlendSrcColorFactor: uint8(types.BlendFactorOne),
		BlendDstColorFactor: uint8(types.BlendFactorZero),
		BlendColorOp:        uint8(types.BlendOperationAdd),
		BlendSrcAlphaFactor: uint8(types.BlendFactorOne),
		BlendDstAlphaFactor: uint8(types.BlendFactorZero),
		BlendAlphaOp:        uint8(types.BlendOperationAdd),
		ColorWriteMask:      uint8(types.ColorWriteMaskAll),
	}
}

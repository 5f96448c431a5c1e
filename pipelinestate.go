package nexus

import (
	types "github.com/gogpu/gputypes"
	"github.com/gogpu/nexus/hal"
	"github.com/gogpu/nexus/pipeline"
)

// perDrawToPrimitiveState unpacks the tracked input-assembly state back into
// the form CreateRenderPipeline expects.
func perDrawToPrimitiveState(s pipeline.PerDrawFixedFunctionStaticState) types.PrimitiveState {
	return types.PrimitiveState{
		Topology:  types.PrimitiveTopology(s.PrimitiveTopology),
		FrontFace: types.FrontFace(s.FrontFace),
		CullMode:  types.CullMode(s.CullMode),
	}
}

// perDrawToDepthStencilState unpacks the tracked depth/stencil state. Called
// only when a depth/stencil attachment is bound; depth/stencil testing
// itself may still be disabled within it.
func perDrawToDepthStencilState(s pipeline.PerDrawFixedFunctionStaticState, format types.TextureFormat) *hal.DepthStencilState {
	return &hal.DepthStencilState{
		Format:            format,
		DepthWriteEnabled: s.DepthWriteEnabled != 0,
		DepthCompare:      types.CompareFunction(s.DepthCompareOp),
		StencilFront: hal.StencilFaceState{
			Compare:     types.CompareFunction(s.StencilFrontCompare),
			FailOp:      hal.StencilOperation(s.StencilFrontFailOp),
			DepthFailOp: hal.StencilOperation(s.StencilFrontDepthOp),
			PassOp:      hal.StencilOperation(s.StencilFrontPassOp),
		},
		StencilBack: hal.StencilFaceState{
			Compare:     types.CompareFunction(s.StencilBackCompare),
			FailOp:      hal.StencilOperation(s.StencilBackFailOp),
			DepthFailOp: hal.StencilOperation(s.StencilBackDepthOp),
			PassOp:      hal.StencilOperation(s.StencilBackPassOp),
		},
		StencilReadMask:  0xFFFFFFFF,
		StencilWriteMask: 0xFFFFFFFF,
	}
}

// perAttachmentToColorTargetState unpacks one color attachment's tracked
// blend state.
func perAttachmentToColorTargetState(format types.TextureFormat, s pipeline.PerAttachmentFixedFunctionStaticState) types.ColorTargetState {
	target := types.ColorTargetState{
		Format:    format,
		WriteMask: types.ColorWriteMask(s.ColorWriteMask),
	}
	if s.BlendEnabled != 0 {
		target.Blend = &types.BlendState{
			Color: types.BlendComponent{
				SrcFactor: types.BlendFactor(s.BlendSrcColorFactor),
				DstFactor: types.BlendFactor(s.BlendDstColorFactor),
				Operation: types.BlendOperation(s.BlendColorOp),
			},
			Alpha: types.BlendComponent{
				SrcFactor: types.BlendFactor(s.BlendSrcAlphaFactor),
				DstFactor: types.BlendFactor(s.BlendDstAlphaFactor),
				Operation: types.BlendOperation(s.BlendAlphaOp),
			},
		}
	}
	return target
}

package pipeline

import "testing"

func TestDefaultPerDrawFixedFunctionStaticState(t *testing.T) {
	s := DefaultPerDrawFixedFunctionStaticState()
	if s.DepthTestEnabled != 0 {
		t.Errorf("depth test should default to disabled")
	}
	if s.StencilTestEnabled != 0 {
		t.Errorf("stencil test should default to disabled")
	}
	if s.StencilFrontFailOp != s.StencilFrontPassOp || s.StencilFrontPassOp != s.StencilFrontDepthOp {
		t.Errorf("default stencil ops should all be Keep, got fail=%d pass=%d depth=%d",
			s.StencilFrontFailOp, s.StencilFrontPassOp, s.StencilFrontDepthOp)
	}
}

func TestDefaultPerAttachmentFixedFunctionStaticState(t *testing.T) {
	s := DefaultPerAttachmentFixedFunctionStaticState()
	if s.BlendEnabled != 0 {
		t.Errorf("blend should default to disabled")
	}
	if s.ColorWriteMask == 0 {
		t.Errorf("default color write mask should write all channels")
	}
}

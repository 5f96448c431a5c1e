package pipeline

import (
	"fmt"
	"strings"

	types "github.com/gogpu/gputypes"
)

// ProgramRef identifies the Program a render pipeline was built from. It is
// the raw form of a core.ProgramID (index|epoch<<32): the pipeline package
// sits below core, so it can't reference core.ProgramID directly.
type ProgramRef uint64

// RenderPipelineCacheKey is a hashable, equality-comparable description of a
// complete render pipeline configuration: everything CreateRenderPipeline
// would otherwise need to rebuild the backend object from scratch.
type RenderPipelineCacheKey struct {
	Program           ProgramRef
	PerDraw           PerDrawFixedFunctionStaticState
	PerAttachment     []PerAttachmentFixedFunctionStaticState
	VertexBuffers     []types.VertexBufferLayout
	ColorFormats      []types.TextureFormat
	DepthStencilFormat types.TextureFormat
	SampleCount       uint32
}

// String renders a canonical textual form of the key suitable for use as a
// map key; two keys with equal content always produce equal strings.
func (k RenderPipelineCacheKey) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "p%d|", k.Program)
	fmt.Fprintf(&b, "%+v|", k.PerDraw)
	for _, att := range k.PerAttachment {
		fmt.Fprintf(&b, "%+v,", att)
	}
	b.WriteByte('|')
	for _, vb := range k.VertexBuffers {
		fmt.Fprintf(&b, "vb(%d,%d,", vb.ArrayStride, vb.StepMode)
		for _, a := range vb.Attributes {
			fmt.Fprintf(&b, "a(%d,%d,%d)", a.Format, a.Offset, a.ShaderLocation)
		}
		b.WriteByte(')')
	}
	b.WriteByte('|')
	for _, f := range k.ColorFormats {
		fmt.Fprintf(&b, "%d,", f)
	}
	fmt.Fprintf(&b, "|ds%d|s%d", k.DepthStencilFormat, k.SampleCount)
	return b.String()
}

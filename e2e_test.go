package nexus

import (
	"testing"

	"github.com/gogpu/gputypes"
)

// TestHeadlessDrawReadbackFlow drives the whole facade the way a headless
// renderer does: upload vertices, record a clearing render pass with an
// auto-resolved program draw, copy the target into a readback buffer,
// submit, and wait the readback's submission id. The noop backend doesn't
// rasterize, so the assertions are about the flow completing and the
// readback landing, not pixel values.
func TestHeadlessDrawReadbackFlow(t *testing.T) {
	d := newTestDevice(t)
	q := d.Queue()

	target, err := d.CreateTexture(&TextureDescriptor{
		Label:         "headless-target",
		Size:          Extent3D{Width: 256, Height: 256, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        TextureFormatRGBA8Unorm,
		Usage:         TextureUsageRenderAttachment | TextureUsageCopySrc,
	})
	if err != nil {
		t.Fatalf("CreateTexture: %v", err)
	}
	view, err := d.CreateTextureView(target, nil)
	if err != nil {
		t.Fatalf("CreateTextureView: %v", err)
	}

	vertices := make([]byte, 3*20) // 3 vertices, pos.xy + color.rgb
	vb, err := d.CreateBuffer(&BufferDescriptor{Label: "triangle-vb", Size: uint64(len(vertices)), Usage: BufferUsageVertex | BufferUsageCopyDst})
	if err != nil {
		t.Fatalf("CreateBuffer: %v", err)
	}
	if _, err := q.WriteBuffer(vb, 0, vertices); err != nil {
		t.Fatalf("WriteBuffer: %v", err)
	}

	prog := newTestProgram(t, d)

	readback, err := d.CreateBuffer(&BufferDescriptor{Label: "readback", Size: 256 * 256 * 4, Usage: BufferUsageCopyDst | BufferUsageCopySrc})
	if err != nil {
		t.Fatalf("CreateBuffer (readback): %v", err)
	}

	cl, err := d.CreateCommandList(nil)
	if err != nil {
		t.Fatalf("CreateCommandList: %v", err)
	}
	err = cl.BeginRenderPass(&RenderPassDescriptor{
		ColorAttachments: []RenderPassColorAttachment{{
			View:       view,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: Color{R: 0.392, G: 0.584, B: 0.929, A: 1.0},
		}},
	})
	if err != nil {
		t.Fatalf("BeginRenderPass: %v", err)
	}
	cl.BindProgram(prog)
	cl.SetVertexInputLayout([]VertexBufferLayout{{
		ArrayStride: 20,
		Attributes: []gputypes.VertexAttribute{
			{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
			{Format: gputypes.VertexFormatFloat32x3, Offset: 8, ShaderLocation: 1},
		},
	}})
	cl.SetVertexBuffer(0, vb, 0)
	if err := cl.Draw(3, 1, 0, 0); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if err := cl.EndRenderPass(); err != nil {
		t.Fatalf("EndRenderPass: %v", err)
	}

	// The texture-to-buffer copy is a transfer command on the list itself.
	err = cl.CopyTextureToBuffer(target, readback, BufferTextureCopyExtent{
		Size: Extent3D{Width: 256, Height: 256, DepthOrArrayLayers: 1},
	}, 0)
	if err != nil {
		t.Fatalf("CopyTextureToBuffer: %v", err)
	}

	cb, err := cl.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	submitID, err := q.Submit(cb)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	dst := make([]byte, 256*256*4)
	readID, err := q.ReadBuffer(readback, 0, dst)
	if err != nil {
		t.Fatalf("ReadBuffer: %v", err)
	}
	if readID <= submitID {
		t.Errorf("readback id %d should follow submit id %d", readID, submitID)
	}
	if err := q.Wait(readID); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if got := q.CompletedValue(); got < readID {
		t.Errorf("CompletedValue() = %d, want >= %d", got, readID)
	}
}

package nexus

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	types "github.com/gogpu/gputypes"
	"github.com/gogpu/nexus/shader"
)

// blitShaderWGSL holds the blit's vertex and fragment stages as WGSL
// source, not precompiled SPIR-V; it is handed straight to
// CreateShaderModule, which is the path backends without a reflection step
// of their own take for fixed-function helpers like this.
const blitShaderWGSL = `
struct VertexOutput {
  @builtin(position) position: vec4<f32>,
  @location(0) uv: vec2<f32>,
}

struct BlitUniform {
  uv_offset: vec2<f32>,
  uv_scale: vec2<f32>,
}

@group(0) @binding(0) var<uniform> blit: BlitUniform;
@group(0) @binding(1) var blit_sampler: sampler;
@group(0) @binding(2) var blit_texture: texture_2d<f32>;

@vertex
fn vs_main(@builtin(vertex_index) idx: u32) -> VertexOutput {
  var positions = array<vec2<f32>, 3>(
    vec2<f32>(-1.0, -1.0),
    vec2<f32>(3.0, -1.0),
    vec2<f32>(-1.0, 3.0),
  );
  var out: VertexOutput;
  let p = positions[idx];
  out.position = vec4<f32>(p, 0.0, 1.0);
  out.uv = blit.uv_offset + (p * 0.5 + vec2<f32>(0.5, 0.5)) * blit.uv_scale;
  return out;
}

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
  return textureSample(blit_texture, blit_sampler, in.uv);
}
`

// blitResources is the device-wide, format-agnostic blit machinery: one
// program and bind group layout shared across every destination format.
// The render pipeline itself is keyed by destination color format only (the
// blit shader has no other configurable state), cached in pipelinesByFormat
// behind its own mutex rather than going through the general
// RenderPipelineCache, since a blit never touches a CommandList's state
// tracker. Built lazily on first use.
type blitResources struct {
	initErr error

	program         *Program
	bindGroupLayout *BindGroupLayout
	pipelineLayout  *PipelineLayout
	nearestSampler  *Sampler
	linearSampler   *Sampler
	uniformBuf      *Buffer

	mu              sync.Mutex
	pipelinesByFormat map[TextureFormat]*RenderPipeline
}

func (d *Device) blit() (*blitResources, error) {
	d.blitOnce.Do(func() {
		d.blitRes = &blitResources{}
		d.blitRes.initErr = d.blitRes.init(d)
	})
	return d.blitRes, d.blitRes.initErr
}

func (b *blitResources) init(d *Device) error {
	vs, err := d.CreateShaderModule(&ShaderModuleDescriptor{Label: "blit-vs", WGSL: blitShaderWGSL}, "vs_main", shader.StageVertex)
	if err != nil {
		return fmt.Errorf("nexus: blit vertex module: %w", err)
	}
	fs, err := d.CreateShaderModule(&ShaderModuleDescriptor{Label: "blit-fs", WGSL: blitShaderWGSL}, "fs_main", shader.StageFragment)
	if err != nil {
		return fmt.Errorf("nexus: blit fragment module: %w", err)
	}

	bgl, err := d.CreateBindGroupLayout(&BindGroupLayoutDescriptor{
		Label: "blit-bgl",
		Entries: []types.BindGroupLayoutEntry{
			{Binding: 0, Visibility: types.ShaderStageVertex | types.ShaderStageFragment, Buffer: &types.BufferBindingLayout{Type: types.BufferBindingTypeUniform}},
			{Binding: 1, Visibility: types.ShaderStageFragment, Sampler: &types.SamplerBindingLayout{Type: types.SamplerBindingTypeFiltering}},
			{Binding: 2, Visibility: types.ShaderStageFragment, Texture: &types.TextureBindingLayout{SampleType: types.TextureSampleTypeFloat, ViewDimension: types.TextureViewDimension2D}},
		},
	})
	if err != nil {
		return fmt.Errorf("nexus: blit bind group layout: %w", err)
	}

	pl, err := d.CreatePipelineLayout(&PipelineLayoutDescriptor{Label: "blit-layout", BindGroupLayouts: []*BindGroupLayout{bgl}})
	if err != nil {
		return fmt.Errorf("nexus: blit pipeline layout: %w", err)
	}

	nearest, err := d.CreateSampler(&SamplerDescriptor{Label: "blit-nearest", MagFilter: types.FilterModeNearest, MinFilter: types.FilterModeNearest})
	if err != nil {
		return fmt.Errorf("nexus: blit nearest sampler: %w", err)
	}
	linear, err := d.CreateSampler(&SamplerDescriptor{Label: "blit-linear", MagFilter: types.FilterModeLinear, MinFilter: types.FilterModeLinear})
	if err != nil {
		return fmt.Errorf("nexus: blit linear sampler: %w", err)
	}

	uniformBuf, err := d.CreateBuffer(&BufferDescriptor{Label: "blit-uniform", Size: 16, Usage: types.BufferUsageUniform | types.BufferUsageCopyDst})
	if err != nil {
		return fmt.Errorf("nexus: blit uniform buffer: %w", err)
	}

	prog, err := d.CreateProgram("blit", vs, fs)
	if err != nil {
		return fmt.Errorf("nexus: blit program: %w", err)
	}

	b.program = prog
	b.bindGroupLayout = bgl
	b.pipelineLayout = pl
	b.nearestSampler = nearest
	b.linearSampler = linear
	b.uniformBuf = uniformBuf
	b.pipelinesByFormat = make(map[TextureFormat]*RenderPipeline)
	return nil
}

// pipelineForFormat returns the blit render pipeline for dstFormat, building
// it on first use. b.mu is held across both the lookup and the build, so
// two blits racing on a new format build its pipeline only once.
func (b *blitResources) pipelineForFormat(d *Device, dstFormat TextureFormat) (*RenderPipeline, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if p, ok := b.pipelinesByFormat[dstFormat]; ok {
		return p, nil
	}

	pl, err := d.CreateRenderPipeline(&RenderPipelineDescriptor{
		Label:  "blit",
		Layout: b.pipelineLayout,
		Vertex: VertexState{Module: b.program.Stages()[0], EntryPoint: "vs_main"},
		Fragment: &FragmentState{
			Module:     b.program.Stages()[1],
			EntryPoint: "fs_main",
			Targets:    []types.ColorTargetState{{Format: dstFormat, WriteMask: types.ColorWriteMaskAll}},
		},
		Primitive:   types.PrimitiveState{Topology: types.PrimitiveTopologyTriangleList, CullMode: types.CullModeNone},
		Multisample: types.MultisampleState{Count: 1, Mask: 0xFFFFFFFF},
	})
	if err != nil {
		return nil, fmt.Errorf("nexus: blit pipeline for %v: %w", dstFormat, err)
	}
	b.pipelinesByFormat[dstFormat] = pl
	return pl, nil
}

// PixelRect is a pixel-space rectangle within a texture's base mip level,
// used to describe the region a blit reads from or writes to.
type PixelRect struct {
	X, Y, Width, Height uint32
}

// BlitOptions configures Device.Blit. SrcRect/DstRect default to the full
// extent of the respective view's texture when zero-valued.
type BlitOptions struct {
	// Linear selects bilinear sampling; the default is nearest.
	Linear bool
	// SrcRect restricts sampling to this pixel region of src (full extent
	// if zero).
	SrcRect PixelRect
	// DstRect restricts both the viewport and scissor of the draw to this
	// pixel region of dst (full extent if zero). The blit does not clear;
	// it overwrites only within this rectangle.
	DstRect PixelRect
}

// Blit draws src into dst using a full-screen triangle and a texture
// sample, converting between formats implicitly via the destination
// attachment's format the way a compositor would. The destination
// attachment uses Load/Store (not Clear): only the pixels inside DstRect's
// viewport are overwritten, and existing contents outside it (or if DstRect
// doesn't cover the whole attachment) are preserved.
func (d *Device) Blit(dst *TextureView, src *TextureView, opts BlitOptions) error {
	if d.released {
		return ErrReleased
	}
	res, err := d.blit()
	if err != nil {
		return err
	}

	sampler := res.nearestSampler
	if opts.Linear {
		sampler = res.linearSampler
	}

	srcRect := opts.SrcRect
	if srcRect.Width == 0 || srcRect.Height == 0 {
		if src.texture != nil {
			size := src.texture.Size()
			srcRect = PixelRect{Width: size.Width, Height: size.Height}
		}
	}
	dstRect := opts.DstRect
	if dstRect.Width == 0 || dstRect.Height == 0 {
		if dst.texture != nil {
			size := dst.texture.Size()
			dstRect = PixelRect{Width: size.Width, Height: size.Height}
		}
	}

	if src.texture != nil {
		srcSize := src.texture.Size()
		if srcSize.Width > 0 && srcSize.Height > 0 {
			uv := [4]float32{
				float32(srcRect.X) / float32(srcSize.Width),
				float32(srcRect.Y) / float32(srcSize.Height),
				float32(srcRect.Width) / float32(srcSize.Width),
				float32(srcRect.Height) / float32(srcSize.Height),
			}
			if _, err := d.queue.WriteBuffer(res.uniformBuf, 0, float32sToBytes(uv[:])); err != nil {
				return fmt.Errorf("nexus: blit uniform write: %w", err)
			}
		}
	}

	bindGroup, err := d.CreateBindGroup(&BindGroupDescriptor{
		Label:  "blit",
		Layout: res.bindGroupLayout,
		Entries: []BindGroupEntry{
			{Binding: 0, Buffer: res.uniformBuf, Size: 16},
			{Binding: 1, Sampler: sampler},
			{Binding: 2, TextureView: src},
		},
	})
	if err != nil {
		return fmt.Errorf("nexus: blit bind group: %w", err)
	}

	pl, err := res.pipelineForFormat(d, dst.Format())
	if err != nil {
		return err
	}

	encoder, err := d.CreateCommandEncoder(&CommandEncoderDescriptor{Label: "blit"})
	if err != nil {
		return err
	}

	pass, err := encoder.BeginRenderPass(&RenderPassDescriptor{
		Label: "blit",
		ColorAttachments: []RenderPassColorAttachment{
			{View: dst, LoadOp: types.LoadOpLoad, StoreOp: types.StoreOpStore},
		},
	})
	if err != nil {
		return err
	}

	pass.SetViewport(float32(dstRect.X), float32(dstRect.Y), float32(dstRect.Width), float32(dstRect.Height), 0, 1)
	pass.SetScissorRect(dstRect.X, dstRect.Y, dstRect.Width, dstRect.Height)
	pass.SetPipeline(pl)
	pass.SetBindGroup(0, bindGroup, nil)
	pass.Draw(3, 1, 0, 0)
	if err := pass.End(); err != nil {
		return err
	}

	cmd, err := encoder.Finish()
	if err != nil {
		return err
	}
	id, err := d.queue.Submit(cmd)
	if err != nil {
		return err
	}
	return d.queue.Wait(id)
}

func float32sToBytes(vs []float32) []byte {
	out := make([]byte, len(vs)*4)
	for i, v := range vs {
		bits := math.Float32bits(v)
		binary.LittleEndian.PutUint32(out[i*4:], bits)
	}
	return out
}

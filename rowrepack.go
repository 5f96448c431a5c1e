package nexus

import (
	"encoding/binary"
	"fmt"

	types "github.com/gogpu/gputypes"
	"github.com/gogpu/nexus/shader"
)

// rowRepackShaderWGSL copies one row of words per invocation from a
// tightly-packed source buffer into a 256-byte-aligned destination buffer.
// Both buffers are addressed as arrays of u32 words; the uniform gives the
// per-row word counts since the unaligned and aligned strides differ.
const rowRepackShaderWGSL = `
struct RepackParams {
  src_words_per_row: u32,
  dst_words_per_row: u32,
  rows: u32,
  _pad: u32,
}

@group(0) @binding(0) var<uniform> params: RepackParams;
@group(0) @binding(1) var<storage, read> src: array<u32>;
@group(0) @binding(2) var<storage, read_write> dst: array<u32>;

@compute @workgroup_size(64, 1, 1)
fn repack_main(@builtin(global_invocation_id) gid: vec3<u32>) {
  let word = gid.x;
  let row = gid.y;
  if (word >= params.src_words_per_row || row >= params.rows) {
    return;
  }
  dst[row * params.dst_words_per_row + word] = src[row * params.src_words_per_row + word];
}
`

// rowRepackWorkgroupSize matches @workgroup_size(64, 1, 1) in the shader
// above; dispatch must cover ceil(words_per_row / this) workgroups in X.
const rowRepackWorkgroupSize = 64

// rowRepackResources is the process-scoped (per-Device, in this port) compute
// pipeline used to repack buffer rows ahead of a buffer->texture copy whose
// unaligned pitch isn't already a multiple of 256 but is a multiple of 4
// bytes. Built lazily on first use and keyed by nothing: there is exactly
// one shader, independent of texture format.
type rowRepackResources struct {
	initErr error

	program        *Program
	bindGroupLayout *BindGroupLayout
	pipelineLayout  *PipelineLayout
	pipeline        *ComputePipeline
	paramsBuf       *Buffer
}

func (d *Device) rowRepack() (*rowRepackResources, error) {
	d.rowRepackOnce.Do(func() {
		d.rowRepackRes = &rowRepackResources{}
		d.rowRepackRes.initErr = d.rowRepackRes.init(d)
	})
	return d.rowRepackRes, d.rowRepackRes.initErr
}

func (r *rowRepackResources) init(d *Device) error {
	module, err := d.CreateShaderModule(&ShaderModuleDescriptor{Label: "row-repack", WGSL: rowRepackShaderWGSL}, "repack_main", shader.StageCompute)
	if err != nil {
		return fmt.Errorf("nexus: row-repack module: %w", err)
	}

	bgl, err := d.CreateBindGroupLayout(&BindGroupLayoutDescriptor{
		Label: "row-repack-bgl",
		Entries: []types.BindGroupLayoutEntry{
			{Binding: 0, Visibility: types.ShaderStageCompute, Buffer: &types.BufferBindingLayout{Type: types.BufferBindingTypeUniform}},
			{Binding: 1, Visibility: types.ShaderStageCompute, Buffer: &types.BufferBindingLayout{Type: types.BufferBindingTypeReadOnlyStorage}},
			{Binding: 2, Visibility: types.ShaderStageCompute, Buffer: &types.BufferBindingLayout{Type: types.BufferBindingTypeStorage}},
		},
	})
	if err != nil {
		return fmt.Errorf("nexus: row-repack bind group layout: %w", err)
	}

	pl, err := d.CreatePipelineLayout(&PipelineLayoutDescriptor{Label: "row-repack-layout", BindGroupLayouts: []*BindGroupLayout{bgl}})
	if err != nil {
		return fmt.Errorf("nexus: row-repack pipeline layout: %w", err)
	}

	paramsBuf, err := d.CreateBuffer(&BufferDescriptor{Label: "row-repack-params", Size: 16, Usage: BufferUsageUniform | BufferUsageCopyDst})
	if err != nil {
		return fmt.Errorf("nexus: row-repack params buffer: %w", err)
	}

	prog, err := d.CreateProgram("row-repack", module)
	if err != nil {
		return fmt.Errorf("nexus: row-repack program: %w", err)
	}

	pipeline, err := d.CreateComputePipeline(&ComputePipelineDescriptor{
		Label:      "row-repack",
		Layout:     pl,
		Module:     module,
		EntryPoint: "repack_main",
	})
	if err != nil {
		return fmt.Errorf("nexus: row-repack pipeline: %w", err)
	}

	r.program = prog
	r.bindGroupLayout = bgl
	r.pipelineLayout = pl
	r.pipeline = pipeline
	r.paramsBuf = paramsBuf
	return nil
}

// repackRowsIntoAligned dispatches the row-repack compute shader on encoder,
// copying rowsPerImage rows of srcWordsPerRow words each from src (a tightly
// packed region starting at srcOffset) into dst (addressed with a
// dstWordsPerRow stride, e.g. bytesPerRowAligned/4). It is the caller's
// responsibility that src and dst were created with BufferUsageStorage.
func (e *CommandEncoder) repackRowsIntoAligned(src *Buffer, srcOffset uint64, dst *Buffer, srcWordsPerRow, dstWordsPerRow, rowsPerImage uint32) error {
	d := e.device
	res, err := d.rowRepack()
	if err != nil {
		return err
	}

	params := make([]byte, 16)
	binary.LittleEndian.PutUint32(params[0:4], srcWordsPerRow)
	binary.LittleEndian.PutUint32(params[4:8], dstWordsPerRow)
	binary.LittleEndian.PutUint32(params[8:12], rowsPerImage)
	if _, err := d.queue.WriteBuffer(res.paramsBuf, 0, params); err != nil {
		return fmt.Errorf("nexus: row-repack params write: %w", err)
	}

	bindGroup, err := d.CreateBindGroup(&BindGroupDescriptor{
		Label:  "row-repack",
		Layout: res.bindGroupLayout,
		Entries: []BindGroupEntry{
			{Binding: 0, Buffer: res.paramsBuf, Size: 16},
			{Binding: 1, Buffer: src, Offset: srcOffset},
			{Binding: 2, Buffer: dst},
		},
	})
	if err != nil {
		return fmt.Errorf("nexus: row-repack bind group: %w", err)
	}

	pass, err := e.BeginComputePass(&ComputePassDescriptor{Label: "row-repack"})
	if err != nil {
		return err
	}
	pass.SetPipeline(res.pipeline)
	pass.SetBindGroup(0, bindGroup, nil)
	pass.Dispatch(ceilDiv(srcWordsPerRow, rowRepackWorkgroupSize), rowsPerImage, 1)
	return pass.End()
}

func ceilDiv(a, b uint32) uint32 {
	if b == 0 {
		return 0
	}
	return (a + b - 1) / b
}

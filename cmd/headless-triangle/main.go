// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Command headless-triangle drives the full Nexus facade without a window:
// it uploads a three-vertex buffer, records a clearing render pass whose
// pipeline is auto-resolved from a program and tracked state, copies the
// render target into a readback buffer, submits, waits the readback's
// submission id, and prints the readback result and the event log's
// pipeline-resolution entries (cache key and hit flag).
//
// With only the noop backend linked the draw produces no pixels, but every
// code path - reflection, layout merge, pipeline cache, bind tracking,
// row-aligned copy, queue timeline - runs end to end. Linking a native
// backend turns the same program into a real render.
package main

import (
	"fmt"
	"os"

	"github.com/gogpu/gputypes"
	nexus "github.com/gogpu/nexus"
	_ "github.com/gogpu/nexus/hal/noop"
	"github.com/gogpu/nexus/shader"
)

const (
	targetSize  = 256
	vertexCount = 3
	// pos.xy (2 float32) + color.rgb (3 float32)
	vertexStride = 20
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("FATAL: %v\n", err)
		os.Exit(1)
	}
}

// triangleSPIRV builds a minimal SPIR-V module declaring one uniform at
// (set 0, binding 0), standing in for precompiled shaders in this harness.
func triangleSPIRV() []uint32 {
	const (
		opTypeStruct  = 30
		opTypePointer = 32
		opVariable    = 59
		opDecorate    = 71
		decoBinding   = 33
		decoDescSet   = 34
		scUniform     = 2
	)
	instr := func(opcode uint32, operands ...uint32) []uint32 {
		return append([]uint32{(uint32(len(operands)+1) << 16) | opcode}, operands...)
	}
	words := []uint32{0x07230203, 0x00010300, 0, 8, 0}
	words = append(words, instr(opTypeStruct, 3)...)
	words = append(words, instr(opTypePointer, 4, scUniform, 3)...)
	words = append(words, instr(opVariable, 4, 5, scUniform)...)
	words = append(words, instr(opDecorate, 5, decoDescSet, 0)...)
	words = append(words, instr(opDecorate, 5, decoBinding, 0)...)
	return words
}

func run() error {
	instance, err := nexus.CreateInstance(nil)
	if err != nil {
		return fmt.Errorf("create instance: %w", err)
	}
	defer instance.Release()

	adapter, err := instance.RequestAdapter(nil)
	if err != nil {
		return fmt.Errorf("request adapter: %w", err)
	}
	fmt.Printf("adapter: %s (%s)\n", adapter.Info().Name, adapter.Info().Driver)

	device, err := adapter.RequestDevice(&nexus.DeviceDescriptor{Label: "headless"})
	if err != nil {
		return fmt.Errorf("request device: %w", err)
	}
	defer device.Release()
	queue := device.Queue()

	target, err := device.CreateTexture(&nexus.TextureDescriptor{
		Label:         "target",
		Size:          nexus.Extent3D{Width: targetSize, Height: targetSize, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        nexus.TextureFormatRGBA8Unorm,
		Usage:         nexus.TextureUsageRenderAttachment | nexus.TextureUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("create target: %w", err)
	}
	view, err := device.CreateTextureView(target, nil)
	if err != nil {
		return fmt.Errorf("create view: %w", err)
	}

	vb, err := device.CreateBuffer(&nexus.BufferDescriptor{
		Label: "triangle-vb",
		Size:  vertexCount * vertexStride,
		Usage: nexus.BufferUsageVertex | nexus.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create vertex buffer: %w", err)
	}
	if _, err := queue.WriteBuffer(vb, 0, make([]byte, vertexCount*vertexStride)); err != nil {
		return fmt.Errorf("upload vertices: %w", err)
	}

	vs, err := device.CreateShaderModule(&nexus.ShaderModuleDescriptor{Label: "vs", SPIRV: triangleSPIRV()}, "vs_main", shader.StageVertex)
	if err != nil {
		return fmt.Errorf("vertex module: %w", err)
	}
	fs, err := device.CreateShaderModule(&nexus.ShaderModuleDescriptor{Label: "fs", SPIRV: triangleSPIRV()}, "fs_main", shader.StageFragment)
	if err != nil {
		return fmt.Errorf("fragment module: %w", err)
	}
	program, err := device.CreateProgram("triangle", vs, fs)
	if err != nil {
		return fmt.Errorf("create program: %w", err)
	}

	readback, err := device.CreateBuffer(&nexus.BufferDescriptor{
		Label: "readback",
		Size:  targetSize * targetSize * 4,
		Usage: nexus.BufferUsageCopyDst | nexus.BufferUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("create readback: %w", err)
	}

	cl, err := device.CreateCommandList(nil)
	if err != nil {
		return fmt.Errorf("create command list: %w", err)
	}
	cl.EventLog().SetEnabled(true)

	err = cl.BeginRenderPass(&nexus.RenderPassDescriptor{
		ColorAttachments: []nexus.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: nexus.Color{R: 0.392, G: 0.584, B: 0.929, A: 1.0},
		}},
	})
	if err != nil {
		return fmt.Errorf("begin pass: %w", err)
	}
	cl.BindProgram(program)
	cl.SetVertexInputLayout([]nexus.VertexBufferLayout{{
		ArrayStride: vertexStride,
		Attributes: []gputypes.VertexAttribute{
			{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
			{Format: gputypes.VertexFormatFloat32x3, Offset: 8, ShaderLocation: 1},
		},
	}})
	cl.SetVertexBuffer(0, vb, 0)
	if err := cl.Draw(vertexCount, 1, 0, 0); err != nil {
		return fmt.Errorf("draw: %w", err)
	}
	if err := cl.EndRenderPass(); err != nil {
		return fmt.Errorf("end pass: %w", err)
	}
	err = cl.CopyTextureToBuffer(target, readback, nexus.BufferTextureCopyExtent{
		Size: nexus.Extent3D{Width: targetSize, Height: targetSize, DepthOrArrayLayers: 1},
	}, 0)
	if err != nil {
		return fmt.Errorf("copy to readback: %w", err)
	}

	cb, err := cl.Finish()
	if err != nil {
		return fmt.Errorf("finish: %w", err)
	}
	if _, err := queue.Submit(cb); err != nil {
		return fmt.Errorf("submit: %w", err)
	}

	pixels := make([]byte, targetSize*targetSize*4)
	readID, err := queue.ReadBuffer(readback, 0, pixels)
	if err != nil {
		return fmt.Errorf("read back: %w", err)
	}
	if err := queue.Wait(readID); err != nil {
		return fmt.Errorf("wait: %w", err)
	}

	fmt.Printf("readback complete at submission %d (%d bytes)\n", readID, len(pixels))
	for _, ev := range cl.EventLog().Events() {
		if ev.Tag == nexus.RenderStateEventPsoResolved {
			fmt.Printf("pipeline resolved: key=%016x hit=%t\n", ev.KeyHash, ev.CacheHit)
		}
	}
	return nil
}

package pipeline

import (
	"testing"

	types "github.com/gogpu/gputypes"
	"github.com/gogpu/nexus/shader"
)

func TestGPUTypesEntryUniformBuffer(t *testing.T) {
	e := GPUTypesEntry(shader.BindGroupLayoutEntry{
		Binding: 3, Type: shader.BindGroupLayoutEntryUniformBuffer, Writable: true,
	}, types.ShaderStageVertex)

	if e.Binding != 3 || e.Visibility != types.ShaderStageVertex {
		t.Fatalf("unexpected base fields: %+v", e)
	}
	if e.Buffer == nil || e.Buffer.Type != types.BufferBindingTypeUniform {
		t.Fatalf("expected uniform buffer binding, got %+v", e.Buffer)
	}
}

func TestGPUTypesEntryStorageBufferRespectsWritable(t *testing.T) {
	writable := GPUTypesEntry(shader.BindGroupLayoutEntry{Type: shader.BindGroupLayoutEntryStorageBuffer, Writable: true}, 0)
	if writable.Buffer.Type != types.BufferBindingTypeStorage {
		t.Errorf("writable storage buffer should map to Storage, got %v", writable.Buffer.Type)
	}

	readonly := GPUTypesEntry(shader.BindGroupLayoutEntry{Type: shader.BindGroupLayoutEntryStorageBuffer, Writable: false}, 0)
	if readonly.Buffer.Type != types.BufferBindingTypeReadOnlyStorage {
		t.Errorf("non-writable storage buffer should map to ReadOnlyStorage, got %v", readonly.Buffer.Type)
	}
}

func TestGPUTypesEntryCombinedTextureSampler(t *testing.T) {
	e := GPUTypesEntry(shader.BindGroupLayoutEntry{Type: shader.BindGroupLayoutEntryCombinedTextureSampler}, types.ShaderStageFragment)
	if e.Texture == nil || e.Sampler == nil {
		t.Fatalf("expected both texture and sampler set, got %+v", e)
	}
}

func TestGPUTypesEntryStorageTextureAccess(t *testing.T) {
	writeOnly := GPUTypesEntry(shader.BindGroupLayoutEntry{Type: shader.BindGroupLayoutEntryStorageTexture, Writable: false}, 0)
	if writeOnly.StorageTexture.Access != types.StorageTextureAccessWriteOnly {
		t.Errorf("non-writable storage texture should be WriteOnly, got %v", writeOnly.StorageTexture.Access)
	}

	readWrite := GPUTypesEntry(shader.BindGroupLayoutEntry{Type: shader.BindGroupLayoutEntryStorageTexture, Writable: true}, 0)
	if readWrite.StorageTexture.Access != types.StorageTextureAccessReadWrite {
		t.Errorf("writable storage texture should be ReadWrite, got %v", readWrite.StorageTexture.Access)
	}
}

func TestGPUTypesEntryAccelerationStructureFallsBackToReadOnlyStorage(t *testing.T) {
	e := GPUTypesEntry(shader.BindGroupLayoutEntry{Type: shader.BindGroupLayoutEntryAccelerationStructure}, 0)
	if e.Buffer == nil || e.Buffer.Type != types.BufferBindingTypeReadOnlyStorage {
		t.Fatalf("expected acceleration structure to fall back to read-only storage buffer, got %+v", e)
	}
}

package pipeline

import (
	types "github.com/gogpu/gputypes"
	"github.com/gogpu/nexus/shader"
)

// GPUTypesEntry converts one reflected binding into the gputypes form a HAL
// backend's CreateBindGroupLayout expects. Reflection only recovers a
// binding's resource kind and writability, not precise texture sample type
// or storage format, so sampled/storage textures are given the most common
// defaults (float-sampled 2D, write-only storage) rather than left unset.
func GPUTypesEntry(e shader.BindGroupLayoutEntry, visibility types.ShaderStages) types.BindGroupLayoutEntry {
	entry := types.BindGroupLayoutEntry{
		Binding:    e.Binding,
		Visibility: visibility,
	}

	switch e.Type {
	case shader.BindGroupLayoutEntryUniformBuffer:
		entry.Buffer = &types.BufferBindingLayout{Type: types.BufferBindingTypeUniform}
	case shader.BindGroupLayoutEntryStorageBuffer:
		bufType := types.BufferBindingTypeStorage
		if !e.Writable {
			bufType = types.BufferBindingTypeReadOnlyStorage
		}
		entry.Buffer = &types.BufferBindingLayout{Type: bufType}
	case shader.BindGroupLayoutEntrySampledTexture:
		entry.Texture = &types.TextureBindingLayout{
			SampleType:    types.TextureSampleTypeFloat,
			ViewDimension: types.TextureViewDimension2D,
		}
	case shader.BindGroupLayoutEntryCombinedTextureSampler:
		entry.Texture = &types.TextureBindingLayout{
			SampleType:    types.TextureSampleTypeFloat,
			ViewDimension: types.TextureViewDimension2D,
		}
		entry.Sampler = &types.SamplerBindingLayout{Type: types.SamplerBindingTypeFiltering}
	case shader.BindGroupLayoutEntryStorageTexture:
		access := types.StorageTextureAccessWriteOnly
		if e.Writable {
			access = types.StorageTextureAccessReadWrite
		}
		entry.StorageTexture = &types.StorageTextureBindingLayout{
			Access:        access,
			Format:        types.TextureFormatRGBA8Unorm,
			ViewDimension: types.TextureViewDimension2D,
		}
	case shader.BindGroupLayoutEntrySampler:
		entry.Sampler = &types.SamplerBindingLayout{Type: types.SamplerBindingTypeFiltering}
	case shader.BindGroupLayoutEntryAccelerationStructure:
		// No gputypes field for acceleration structures yet; reflect it as
		// a read-only storage buffer so descriptor set layouts still line
		// up in binding count until the backend gains native support.
		entry.Buffer = &types.BufferBindingLayout{Type: types.BufferBindingTypeReadOnlyStorage}
	}

	return entry
}

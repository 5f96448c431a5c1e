package pipeline

import (
	"strings"
	"testing"

	types "github.com/gogpu/gputypes"
)

func TestNewStateTrackerStartsDirtyWithDefaults(t *testing.T) {
	tr := NewStateTracker()
	if !tr.IsDirty() {
		t.Fatal("a fresh tracker has no resolved pipeline yet and must start dirty")
	}
	key := tr.BuildCacheKey()
	if key.PerDraw != DefaultPerDrawFixedFunctionStaticState() {
		t.Fatalf("expected default per-draw state, got %+v", key.PerDraw)
	}
}

func TestStateTrackerSetterNoOpOnUnchangedValue(t *testing.T) {
	tr := NewStateTracker()
	tr.MarkClean()

	tr.SetPrimitiveTopology(types.PrimitiveTopologyTriangleList) // already the default
	if tr.IsDirty() {
		t.Fatal("setting the current value must be a no-op (P6)")
	}

	tr.SetPrimitiveTopology(types.PrimitiveTopologyLineList)
	if !tr.IsDirty() {
		t.Fatal("setting a new value must mark the tracker dirty")
	}
}

func TestStateTrackerSetProgramNoOpOnSameProgram(t *testing.T) {
	tr := NewStateTracker()
	tr.SetProgram(5)
	tr.MarkClean()

	tr.SetProgram(5)
	if tr.IsDirty() {
		t.Fatal("rebinding the same program must not dirty the tracker")
	}

	tr.SetProgram(6)
	if !tr.IsDirty() {
		t.Fatal("binding a different program must dirty the tracker")
	}
}

func TestStateTrackerSetRenderTargetConfigResizesAttachmentsToDefaults(t *testing.T) {
	tr := NewStateTracker()
	tr.SetRenderTargetConfig([]types.TextureFormat{types.TextureFormatRGBA8Unorm, types.TextureFormatRGBA8Unorm}, types.TextureFormatDepth24PlusStencil8, 4)
	tr.MarkClean()

	key := tr.BuildCacheKey()
	if len(key.PerAttachment) != 2 {
		t.Fatalf("expected 2 attachment slots, got %d", len(key.PerAttachment))
	}
	for i, a := range key.PerAttachment {
		if a != DefaultPerAttachmentFixedFunctionStaticState() {
			t.Fatalf("attachment %d not reset to defaults: %+v", i, a)
		}
	}
	if key.SampleCount != 4 {
		t.Fatalf("expected sample count 4, got %d", key.SampleCount)
	}
	if !tr.IsDirty() {
		t.Fatal("SetRenderTargetConfig must unconditionally dirty the tracker")
	}
}

func TestStateTrackerSetBlendOutOfRangeAttachmentIsIgnored(t *testing.T) {
	tr := NewStateTracker()
	tr.SetRenderTargetConfig([]types.TextureFormat{types.TextureFormatRGBA8Unorm}, types.TextureFormatUndefined, 1)
	tr.MarkClean()

	tr.SetBlendEnabled(5, true) // out of range: only attachment 0 exists
	if tr.IsDirty() {
		t.Fatal("setting blend state on a nonexistent attachment must be a no-op")
	}

	tr.SetBlendEnabled(0, true)
	if !tr.IsDirty() {
		t.Fatal("setting blend state on an existing attachment must dirty the tracker")
	}
}

func TestStateTrackerBuildCacheKeyReturnsIndependentSlices(t *testing.T) {
	tr := NewStateTracker()
	tr.SetRenderTargetConfig([]types.TextureFormat{types.TextureFormatRGBA8Unorm}, types.TextureFormatUndefined, 1)

	key := tr.BuildCacheKey()
	key.PerAttachment[0].BlendEnabled = 1

	key2 := tr.BuildCacheKey()
	if key2.PerAttachment[0].BlendEnabled != 0 {
		t.Fatal("mutating a returned cache key must not affect the tracker's internal state")
	}
}

func TestStateTrackerResetRestoresDefaultsAndDirties(t *testing.T) {
	tr := NewStateTracker()
	tr.SetProgram(3)
	tr.SetRenderTargetConfig([]types.TextureFormat{types.TextureFormatRGBA8Unorm}, types.TextureFormatUndefined, 1)
	tr.MarkClean()

	tr.Reset()

	if !tr.IsDirty() {
		t.Fatal("Reset must leave the tracker dirty")
	}
	key := tr.BuildCacheKey()
	if key.Program != 0 {
		t.Fatalf("expected program cleared to 0, got %d", key.Program)
	}
	if len(key.PerAttachment) != 0 {
		t.Fatalf("expected no attachments after Reset, got %d", len(key.PerAttachment))
	}
	if key.PerDraw != DefaultPerDrawFixedFunctionStaticState() {
		t.Fatal("Reset must restore default per-draw state")
	}
}

func TestStateTrackerSetRenderTargetConfigPreservesExistingAttachments(t *testing.T) {
	tr := NewStateTracker()
	tr.SetRenderTargetConfig([]types.TextureFormat{types.TextureFormatRGBA8Unorm}, types.TextureFormatUndefined, 1)
	tr.SetBlendEnabled(0, true)

	// Growing the attachment array keeps slot 0's state and defaults the
	// new slot.
	tr.SetRenderTargetConfig([]types.TextureFormat{types.TextureFormatRGBA8Unorm, types.TextureFormatRGBA8Unorm}, types.TextureFormatUndefined, 1)

	key := tr.BuildCacheKey()
	if key.PerAttachment[0].BlendEnabled != 1 {
		t.Fatal("existing attachment state must survive a resize")
	}
	if key.PerAttachment[1] != DefaultPerAttachmentFixedFunctionStaticState() {
		t.Fatalf("new attachment slot not defaulted: %+v", key.PerAttachment[1])
	}
}

func TestStateTrackerSetVertexInputLayoutNoOpOnEqualLayout(t *testing.T) {
	tr := NewStateTracker()
	layout := []types.VertexBufferLayout{{
		ArrayStride: 20,
		Attributes: []types.VertexAttribute{
			{Format: types.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
		},
	}}
	tr.SetVertexInputLayout(layout)
	tr.MarkClean()

	tr.SetVertexInputLayout([]types.VertexBufferLayout{{
		ArrayStride: 20,
		Attributes: []types.VertexAttribute{
			{Format: types.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
		},
	}})
	if tr.IsDirty() {
		t.Fatal("equal vertex layout must not dirty the tracker")
	}

	tr.SetVertexInputLayout([]types.VertexBufferLayout{{ArrayStride: 16}})
	if !tr.IsDirty() {
		t.Fatal("different vertex layout must dirty the tracker")
	}
}

func TestStateTrackerBuildSnapshotMentionsKeyState(t *testing.T) {
	tr := NewStateTracker()
	tr.SetProgram(7)
	tr.SetRenderTargetConfig([]types.TextureFormat{types.TextureFormatRGBA8Unorm}, types.TextureFormatUndefined, 1)

	snap := tr.BuildSnapshot()
	if !strings.Contains(snap, "program=7") {
		t.Errorf("snapshot missing program: %q", snap)
	}
	if !strings.Contains(snap, "attachment[0]") {
		t.Errorf("snapshot missing attachment state: %q", snap)
	}
}

package binding

import (
	"testing"

	"github.com/gogpu/nexus/shader"
)

func TestTrackerUpsertKeepsSortedOrder(t *testing.T) {
	tr := NewTracker()
	tr.SetBuffer(0, 3, 0, shader.BindGroupLayoutEntryUniformBuffer, 1, 0, 64)
	tr.SetBuffer(0, 1, 0, shader.BindGroupLayoutEntryUniformBuffer, 2, 0, 64)
	tr.SetBuffer(0, 2, 1, shader.BindGroupLayoutEntryStorageBuffer, 3, 0, 64)
	tr.SetBuffer(0, 2, 0, shader.BindGroupLayoutEntryStorageBuffer, 4, 0, 64)

	entries := tr.GroupEntries(0)
	if len(entries) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(entries))
	}
	for i := 1; i < len(entries); i++ {
		prev, cur := entries[i-1], entries[i]
		if prev.Binding > cur.Binding || (prev.Binding == cur.Binding && prev.ArrayElement > cur.ArrayElement) {
			t.Fatalf("entries not sorted by (binding, array element): %+v then %+v", prev, cur)
		}
	}
}

func TestTrackerSetMarksOnlyTouchedGroupDirty(t *testing.T) {
	tr := NewTracker()
	tr.SetBuffer(1, 0, 0, shader.BindGroupLayoutEntryUniformBuffer, 5, 0, 16)

	if !tr.IsGroupDirty(1) {
		t.Fatal("group 1 should be dirty after SetBuffer")
	}
	if tr.IsGroupDirty(0) || tr.IsGroupDirty(2) || tr.IsGroupDirty(3) {
		t.Fatal("untouched groups should not be dirty")
	}
}

func TestTrackerMarkGroupCleanClearsOnlyThatGroup(t *testing.T) {
	tr := NewTracker()
	tr.SetBuffer(0, 0, 0, shader.BindGroupLayoutEntryUniformBuffer, 1, 0, 16)
	tr.SetTexture(1, 0, 0, shader.BindGroupLayoutEntrySampledTexture, 2, TextureSubresourceRange{MipLevelCount: 1, ArrayLayerCount: 1})

	tr.MarkGroupClean(0)
	if tr.IsGroupDirty(0) {
		t.Fatal("group 0 should be clean")
	}
	if !tr.IsGroupDirty(1) {
		t.Fatal("group 1 should remain dirty")
	}
}

func TestTrackerUpsertReplacesExistingEntry(t *testing.T) {
	tr := NewTracker()
	tr.SetBuffer(0, 0, 0, shader.BindGroupLayoutEntryUniformBuffer, 1, 0, 16)
	tr.MarkGroupClean(0)

	tr.SetBuffer(0, 0, 0, shader.BindGroupLayoutEntryUniformBuffer, 9, 32, 64)

	entries := tr.GroupEntries(0)
	if len(entries) != 1 {
		t.Fatalf("expected upsert to replace, not append: got %d entries", len(entries))
	}
	if entries[0].Buffer.Buffer != 9 || entries[0].Buffer.Offset != 32 || entries[0].Buffer.Size != 64 {
		t.Fatalf("entry was not updated in place: %+v", entries[0])
	}
	if !tr.IsGroupDirty(0) {
		t.Fatal("re-setting an entry should mark the group dirty again")
	}
}

func TestTrackerSetSamplerUsesSamplerType(t *testing.T) {
	tr := NewTracker()
	tr.SetSampler(2, 0, 0, 7)

	entries := tr.GroupEntries(2)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Type != shader.BindGroupLayoutEntrySampler {
		t.Fatalf("expected sampler entry type, got %v", entries[0].Type)
	}
	if entries[0].Sampler.Sampler != 7 {
		t.Fatalf("sampler ref not stored: %+v", entries[0].Sampler)
	}
}

func TestTrackerResetClearsAllGroups(t *testing.T) {
	tr := NewTracker()
	tr.SetBuffer(0, 0, 0, shader.BindGroupLayoutEntryUniformBuffer, 1, 0, 16)
	tr.SetBuffer(3, 0, 0, shader.BindGroupLayoutEntryUniformBuffer, 2, 0, 16)

	tr.Reset()

	for g := uint32(0); g < MaxGroups; g++ {
		if tr.IsGroupDirty(g) {
			t.Fatalf("group %d should be clean after Reset", g)
		}
		if len(tr.GroupEntries(g)) != 0 {
			t.Fatalf("group %d should be empty after Reset", g)
		}
	}
}

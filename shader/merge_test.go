package shader

import "testing"

func refl(set uint32, entries ...BindGroupLayoutEntry) *Reflection {
	return &Reflection{
		EntryPoint: "main",
		Stage:      StageFragment,
		Layouts:    []BindGroupLayout{{Set: set, Entries: entries}},
	}
}

func TestMergedLayoutMergeDisjointSets(t *testing.T) {
	var m MergedLayout
	if err := m.Merge(refl(0, BindGroupLayoutEntry{Binding: 0, Type: BindGroupLayoutEntryUniformBuffer, Count: 1})); err != nil {
		t.Fatalf("Merge (set 0): %v", err)
	}
	if err := m.Merge(refl(1, BindGroupLayoutEntry{Binding: 0, Type: BindGroupLayoutEntrySampler, Count: 1})); err != nil {
		t.Fatalf("Merge (set 1): %v", err)
	}

	if len(m.Layouts) != 2 {
		t.Fatalf("expected 2 sets, got %d", len(m.Layouts))
	}
	if m.Layouts[0].Set != 0 || m.Layouts[1].Set != 1 {
		t.Fatalf("sets out of order: %+v", m.Layouts)
	}
}

func TestMergedLayoutMergeSameBindingCompatible(t *testing.T) {
	var m MergedLayout
	if err := m.Merge(refl(0, BindGroupLayoutEntry{Binding: 0, Type: BindGroupLayoutEntryUniformBuffer, Count: 1, Writable: false})); err != nil {
		t.Fatalf("Merge (vertex): %v", err)
	}
	if err := m.Merge(refl(0, BindGroupLayoutEntry{Binding: 0, Type: BindGroupLayoutEntryUniformBuffer, Count: 1, Writable: true})); err != nil {
		t.Fatalf("Merge (fragment): %v", err)
	}

	if len(m.Layouts) != 1 || len(m.Layouts[0].Entries) != 1 {
		t.Fatalf("expected a single merged entry, got %+v", m.Layouts)
	}
	if !m.Layouts[0].Entries[0].Writable {
		t.Fatal("writability should OR-merge across stages")
	}
}

func TestMergedLayoutMergeConflictingType(t *testing.T) {
	var m MergedLayout
	if err := m.Merge(refl(0, BindGroupLayoutEntry{Binding: 0, Type: BindGroupLayoutEntryUniformBuffer, Count: 1})); err != nil {
		t.Fatalf("Merge (first): %v", err)
	}
	err := m.Merge(refl(0, BindGroupLayoutEntry{Binding: 0, Type: BindGroupLayoutEntryStorageBuffer, Count: 1}))
	if err == nil {
		t.Fatal("expected a layout conflict error")
	}
	conflict, ok := err.(*ErrLayoutConflict)
	if !ok {
		t.Fatalf("err = %T, want *ErrLayoutConflict", err)
	}
	if conflict.Set != 0 || conflict.Binding != 0 {
		t.Fatalf("unexpected conflict location: %+v", conflict)
	}
}

func TestMergedLayoutMergeConflictingCount(t *testing.T) {
	var m MergedLayout
	if err := m.Merge(refl(0, BindGroupLayoutEntry{Binding: 0, Type: BindGroupLayoutEntrySampledTexture, Count: 1})); err != nil {
		t.Fatalf("Merge (first): %v", err)
	}
	if err := m.Merge(refl(0, BindGroupLayoutEntry{Binding: 0, Type: BindGroupLayoutEntrySampledTexture, Count: 4})); err == nil {
		t.Fatal("expected a conflict for mismatched array counts")
	}
}

func TestMergedLayoutMergeInsertsSortedByBinding(t *testing.T) {
	var m MergedLayout
	if err := m.Merge(refl(0, BindGroupLayoutEntry{Binding: 5, Type: BindGroupLayoutEntryUniformBuffer, Count: 1})); err != nil {
		t.Fatal(err)
	}
	if err := m.Merge(refl(0, BindGroupLayoutEntry{Binding: 1, Type: BindGroupLayoutEntryUniformBuffer, Count: 1})); err != nil {
		t.Fatal(err)
	}
	if err := m.Merge(refl(0, BindGroupLayoutEntry{Binding: 3, Type: BindGroupLayoutEntryUniformBuffer, Count: 1})); err != nil {
		t.Fatal(err)
	}

	entries := m.Layouts[0].Entries
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	for i := 1; i < len(entries); i++ {
		if entries[i-1].Binding >= entries[i].Binding {
			t.Fatalf("entries not sorted: %+v", entries)
		}
	}
}

func TestMergedLayoutMergeInsertsSortedBySet(t *testing.T) {
	var m MergedLayout
	if err := m.Merge(refl(2, BindGroupLayoutEntry{Binding: 0, Type: BindGroupLayoutEntryUniformBuffer, Count: 1})); err != nil {
		t.Fatal(err)
	}
	if err := m.Merge(refl(0, BindGroupLayoutEntry{Binding: 0, Type: BindGroupLayoutEntryUniformBuffer, Count: 1})); err != nil {
		t.Fatal(err)
	}
	if err := m.Merge(refl(1, BindGroupLayoutEntry{Binding: 0, Type: BindGroupLayoutEntryUniformBuffer, Count: 1})); err != nil {
		t.Fatal(err)
	}

	for i, l := range m.Layouts {
		if uint32(i) != l.Set {
			t.Fatalf("sets not sorted: %+v", m.Layouts)
		}
	}
}

func TestMergedLayoutMergeOrderIndependent(t *testing.T) {
	a := refl(0,
		BindGroupLayoutEntry{Binding: 0, Type: BindGroupLayoutEntryUniformBuffer, Count: 1},
		BindGroupLayoutEntry{Binding: 2, Type: BindGroupLayoutEntrySampledTexture, Count: 1})
	b := refl(1,
		BindGroupLayoutEntry{Binding: 1, Type: BindGroupLayoutEntryStorageBuffer, Count: 1, Writable: true})

	var ab, ba MergedLayout
	if err := ab.Merge(a); err != nil {
		t.Fatalf("Merge a: %v", err)
	}
	if err := ab.Merge(b); err != nil {
		t.Fatalf("Merge b: %v", err)
	}
	if err := ba.Merge(b); err != nil {
		t.Fatalf("Merge b: %v", err)
	}
	if err := ba.Merge(a); err != nil {
		t.Fatalf("Merge a: %v", err)
	}

	if len(ab.Layouts) != len(ba.Layouts) {
		t.Fatalf("set counts differ: %d vs %d", len(ab.Layouts), len(ba.Layouts))
	}
	for i := range ab.Layouts {
		x, y := ab.Layouts[i], ba.Layouts[i]
		if x.Set != y.Set || len(x.Entries) != len(y.Entries) {
			t.Fatalf("set %d differs: %+v vs %+v", i, x, y)
		}
		for j := range x.Entries {
			if x.Entries[j] != y.Entries[j] {
				t.Fatalf("entry (%d,%d) differs: %+v vs %+v", i, j, x.Entries[j], y.Entries[j])
			}
		}
	}
}

package shader

import "fmt"

// ErrLayoutConflict is returned by MergedLayout.Merge when two stages
// declare the same (set, binding) with incompatible type or count.
type ErrLayoutConflict struct {
	Set     uint32
	Binding uint32
	WasType BindGroupLayoutEntryType
	GotType BindGroupLayoutEntryType
}

func (e *ErrLayoutConflict) Error() string {
	return fmt.Sprintf("binding conflict at set %d binding %d: %s vs %s",
		e.Set, e.Binding, e.WasType, e.GotType)
}

// MergedLayout incrementally merges the bind group layouts of a program's
// shader stages (e.g. vertex + fragment, or a single compute stage) into a
// single set of layouts sorted by Set, each with entries sorted by Binding.
type MergedLayout struct {
	// Layouts is sorted by Set.
	Layouts []BindGroupLayout
}

// Merge folds the bind group layouts of one reflected module into the
// merged layout. It returns an error if a binding already present in the
// merged layout is redeclared with a different type or count; writability is
// OR-combined across stages.
func (m *MergedLayout) Merge(r *Reflection) error {
	for _, srcBGL := range r.Layouts {
		setIdx := findOrInsertSet(&m.Layouts, srcBGL.Set)

		for _, srcEntry := range srcBGL.Entries {
			entries := m.Layouts[setIdx].Entries
			pos, found := lowerBoundEntry(entries, srcEntry.Binding)

			if found {
				existing := &entries[pos]
				if existing.Type != srcEntry.Type || existing.Count != srcEntry.Count {
					return &ErrLayoutConflict{
						Set:     srcBGL.Set,
						Binding: srcEntry.Binding,
						WasType: existing.Type,
						GotType: srcEntry.Type,
					}
				}
				existing.Writable = existing.Writable || srcEntry.Writable
				continue
			}

			entries = append(entries, BindGroupLayoutEntry{})
			copy(entries[pos+1:], entries[pos:])
			entries[pos] = srcEntry
			m.Layouts[setIdx].Entries = entries
		}
	}
	return nil
}

// findOrInsertSet returns the index within layouts of the BindGroupLayout
// for the given set, inserting an empty one in sorted position if absent.
func findOrInsertSet(layouts *[]BindGroupLayout, set uint32) int {
	ls := *layouts
	lo, hi := 0, len(ls)
	for lo < hi {
		mid := (lo + hi) / 2
		if ls[mid].Set < set {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < len(ls) && ls[lo].Set == set {
		return lo
	}

	ls = append(ls, BindGroupLayout{})
	copy(ls[lo+1:], ls[lo:])
	ls[lo] = BindGroupLayout{Set: set}
	*layouts = ls
	return lo
}

// lowerBoundEntry finds the insertion position of binding within a
// binding-sorted entry slice, and whether an entry with that binding exists.
func lowerBoundEntry(entries []BindGroupLayoutEntry, binding uint32) (int, bool) {
	lo, hi := 0, len(entries)
	for lo < hi {
		mid := (lo + hi) / 2
		if entries[mid].Binding < binding {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo, lo < len(entries) && entries[lo].Binding == binding
}

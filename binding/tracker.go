// Package binding tracks the resources bound to a command list's bind
// groups, and optionally caches fully-materialized backend bind groups by
// content so that rebinding identical resources doesn't recreate them.
package binding

import "github.com/gogpu/nexus/shader"

// MaxGroups is the number of independently-tracked bind groups a command
// list supports.
const MaxGroups = 4

// BufferRef is the raw form of a core.BufferID; this package sits below
// core, so it can't reference core.BufferID directly.
type BufferRef uint64

// TextureRef is the raw form of a core.TextureID.
type TextureRef uint64

// SamplerRef is the raw form of a core.SamplerID.
type SamplerRef uint64

// BoundBuffer is a buffer binding: a sub-range of a buffer.
type BoundBuffer struct {
	Buffer BufferRef
	Offset uint64
	Size   uint64
}

// TextureSubresourceRange narrows a texture binding to a slice of its mips
// and array layers.
type TextureSubresourceRange struct {
	BaseMipLevel   uint32
	MipLevelCount  uint32
	BaseArrayLayer uint32
	ArrayLayerCount uint32
}

// BoundTexture is a texture binding.
type BoundTexture struct {
	Texture           TextureRef
	SubresourceRange TextureSubresourceRange
}

// BoundSampler is a sampler binding.
type BoundSampler struct {
	Sampler SamplerRef
}

// BoundEntry is one binding slot's current content. Only the field matching
// Type is meaningful.
type BoundEntry struct {
	Binding       uint32
	ArrayElement  uint32
	Type          shader.BindGroupLayoutEntryType
	Buffer        BoundBuffer
	Texture       BoundTexture
	Sampler       BoundSampler
}

type trackedGroup struct {
	// entries sorted by (Binding, ArrayElement).
	entries []BoundEntry
	dirty   bool
}

// Tracker tracks the current bind group state across all groups on a
// command list. Each group is independently dirty-tracked.
type Tracker struct {
	groups [MaxGroups]trackedGroup
}

// NewTracker returns an empty, clean tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// SetBuffer binds a buffer range at (group, binding, arrayElement).
func (t *Tracker) SetBuffer(group, binding, arrayElement uint32, typ shader.BindGroupLayoutEntryType, buf BufferRef, offset, size uint64) {
	t.upsert(group, BoundEntry{
		Binding:      binding,
		ArrayElement: arrayElement,
		Type:         typ,
		Buffer:       BoundBuffer{Buffer: buf, Offset: offset, Size: size},
	})
}

// SetTexture binds a texture view at (group, binding, arrayElement).
func (t *Tracker) SetTexture(group, binding, arrayElement uint32, typ shader.BindGroupLayoutEntryType, tex TextureRef, rng TextureSubresourceRange) {
	t.upsert(group, BoundEntry{
		Binding:      binding,
		ArrayElement: arrayElement,
		Type:         typ,
		Texture:      BoundTexture{Texture: tex, SubresourceRange: rng},
	})
}

// SetSampler binds a sampler at (group, binding, arrayElement).
func (t *Tracker) SetSampler(group, binding, arrayElement uint32, samp SamplerRef) {
	t.upsert(group, BoundEntry{
		Binding:      binding,
		ArrayElement: arrayElement,
		Type:         shader.BindGroupLayoutEntrySampler,
		Sampler:      BoundSampler{Sampler: samp},
	})
}

func (t *Tracker) upsert(group uint32, entry BoundEntry) {
	if group >= MaxGroups {
		return
	}
	g := &t.groups[group]

	for i := range g.entries {
		if g.entries[i].Binding == entry.Binding && g.entries[i].ArrayElement == entry.ArrayElement {
			g.entries[i] = entry
			g.dirty = true
			return
		}
	}

	g.entries = append(g.entries, entry)
	for a := 1; a < len(g.entries); a++ {
		for b := a; b > 0 && less(g.entries[b], g.entries[b-1]); b-- {
			g.entries[b-1], g.entries[b] = g.entries[b], g.entries[b-1]
		}
	}
	g.dirty = true
}

func less(a, b BoundEntry) bool {
	if a.Binding != b.Binding {
		return a.Binding < b.Binding
	}
	return a.ArrayElement < b.ArrayElement
}

// IsGroupDirty reports whether group has changed since MarkGroupClean.
func (t *Tracker) IsGroupDirty(group uint32) bool {
	return group < MaxGroups && t.groups[group].dirty
}

// GroupEntries returns group's bound entries, sorted by (binding, array element).
func (t *Tracker) GroupEntries(group uint32) []BoundEntry {
	if group >= MaxGroups {
		return nil
	}
	return t.groups[group].entries
}

// MarkGroupClean clears group's dirty flag.
func (t *Tracker) MarkGroupClean(group uint32) {
	if group < MaxGroups {
		t.groups[group].dirty = false
	}
}

// Reset clears all groups back to empty and clean.
func (t *Tracker) Reset() {
	for i := range t.groups {
		t.groups[i].entries = nil
		t.groups[i].dirty = false
	}
}

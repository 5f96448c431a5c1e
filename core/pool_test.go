package core

import (
	"sync"
	"testing"
)

// poolTestMarker gives these tests their own ID space, independent of the
// real resource kinds.
type poolTestMarker struct{}

func (poolTestMarker) marker() {}

// poolRecord stands in for a pooled resource record: a hot field a draw
// would read plus a cold label.
type poolRecord struct {
	hot   int
	label string
}

func TestRawIDLayout(t *testing.T) {
	id := Zip(7, 3)
	if id.Index() != 7 || id.Epoch() != 3 {
		t.Fatalf("Zip(7,3) unpacked to (%d,%d)", id.Index(), id.Epoch())
	}
	index, epoch := id.Unzip()
	if index != 7 || epoch != 3 {
		t.Fatalf("Unzip = (%d,%d), want (7,3)", index, epoch)
	}
	if RawID(0).IsZero() != true || id.IsZero() {
		t.Fatal("IsZero must hold exactly for the zero value")
	}
}

func TestRegistryEmplaceGetErase(t *testing.T) {
	r := NewRegistry[*poolRecord, poolTestMarker]()

	id := r.Register(&poolRecord{hot: 1, label: "first"})
	if id.Epoch() == 0 {
		t.Fatal("allocated handle must not carry epoch 0")
	}

	got, err := r.Get(id)
	if err != nil {
		t.Fatalf("Get after Register: %v", err)
	}
	if got.label != "first" {
		t.Fatalf("got %+v", got)
	}

	if _, err := r.Unregister(id); err != nil {
		t.Fatalf("Unregister: %v", err)
	}
	if _, err := r.Get(id); err == nil {
		t.Fatal("Get after Unregister must fail")
	}
}

func TestRegistryReusedSlotGetsNewEpoch(t *testing.T) {
	r := NewRegistry[*poolRecord, poolTestMarker]()

	id1 := r.Register(&poolRecord{hot: 1})
	if _, err := r.Unregister(id1); err != nil {
		t.Fatalf("Unregister: %v", err)
	}

	id2 := r.Register(&poolRecord{hot: 2})
	if id2.Index() != id1.Index() {
		t.Fatalf("expected slot %d to be reused, got %d", id1.Index(), id2.Index())
	}
	if id2.Epoch() <= id1.Epoch() {
		t.Fatalf("epoch %d must exceed released epoch %d", id2.Epoch(), id1.Epoch())
	}

	// The stale handle stays dead even though the slot is live again.
	if _, err := r.Get(id1); err == nil {
		t.Fatal("stale handle must not resolve after slot reuse")
	}
	got, err := r.Get(id2)
	if err != nil || got.hot != 2 {
		t.Fatalf("fresh handle failed: %v %+v", err, got)
	}
}

func TestRegistryZeroHandleRejected(t *testing.T) {
	r := NewRegistry[*poolRecord, poolTestMarker]()
	if _, err := r.Get(ID[poolTestMarker]{}); err == nil {
		t.Fatal("zero handle must be rejected")
	}
}

func TestRegistryGetMut(t *testing.T) {
	r := NewRegistry[*poolRecord, poolTestMarker]()
	id := r.Register(&poolRecord{hot: 1})

	err := r.GetMut(id, func(rec **poolRecord) {
		(*rec).hot = 9
	})
	if err != nil {
		t.Fatalf("GetMut: %v", err)
	}
	got, _ := r.Get(id)
	if got.hot != 9 {
		t.Fatalf("mutation lost: %+v", got)
	}
}

func TestRegistryConcurrentReadersSurviveErase(t *testing.T) {
	r := NewRegistry[*poolRecord, poolTestMarker]()

	const slots = 32
	ids := make([]ID[poolTestMarker], slots)
	for i := range ids {
		ids[i] = r.Register(&poolRecord{hot: i})
	}

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for round := 0; round < 200; round++ {
				for _, id := range ids {
					// Either outcome is fine under concurrent erase; the
					// lookup must never return a record for a dead epoch.
					if rec, err := r.Get(id); err == nil && rec == nil {
						t.Error("live lookup returned nil record")
						return
					}
				}
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for _, id := range ids[:slots/2] {
			_, _ = r.Unregister(id)
		}
	}()
	wg.Wait()

	for _, id := range ids[:slots/2] {
		if _, err := r.Get(id); err == nil {
			t.Fatal("erased handle resolved after concurrent access settled")
		}
	}
}

func TestIdentityManagerNeverEmitsEpochZero(t *testing.T) {
	m := NewIdentityManager[poolTestMarker]()
	for i := 0; i < 100; i++ {
		id := m.Alloc()
		if id.Epoch() == 0 {
			t.Fatalf("allocation %d produced epoch 0", i)
		}
		m.Release(id)
	}
}

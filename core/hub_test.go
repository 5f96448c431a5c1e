package core

import (
	"testing"

	types "github.com/gogpu/gputypes"
)

func TestHubAdapterRoundTrip(t *testing.T) {
	hub := NewHub()

	id := hub.RegisterAdapter(&Adapter{
		Info:    types.AdapterInfo{Name: "test adapter"},
		Backend: types.BackendEmpty,
	})

	got, err := hub.GetAdapter(id)
	if err != nil {
		t.Fatalf("GetAdapter: %v", err)
	}
	if got.Info.Name != "test adapter" {
		t.Fatalf("got %+v", got.Info)
	}

	if _, err := hub.UnregisterAdapter(id); err != nil {
		t.Fatalf("UnregisterAdapter: %v", err)
	}
	if _, err := hub.GetAdapter(id); err == nil {
		t.Fatal("stale adapter handle must fail lookup")
	}
}

func TestHubQueueRoundTrip(t *testing.T) {
	hub := NewHub()

	id := hub.RegisterQueue(Queue{Label: "test queue"})
	got, err := hub.GetQueue(id)
	if err != nil {
		t.Fatalf("GetQueue: %v", err)
	}
	if got.Label != "test queue" {
		t.Fatalf("got %+v", got)
	}

	got.Label = "renamed"
	if err := hub.UpdateQueue(id, got); err != nil {
		t.Fatalf("UpdateQueue: %v", err)
	}
	updated, err := hub.GetQueue(id)
	if err != nil || updated.Label != "renamed" {
		t.Fatalf("after update: %+v %v", updated, err)
	}

	if _, err := hub.UnregisterQueue(id); err != nil {
		t.Fatalf("UnregisterQueue: %v", err)
	}
	if _, err := hub.GetQueue(id); err == nil {
		t.Fatal("stale queue handle must fail lookup")
	}
}

func TestGlobalHubIsASingleton(t *testing.T) {
	if GetGlobal() != GetGlobal() {
		t.Fatal("GetGlobal must return the same instance")
	}
	if GetGlobal().Hub() == nil {
		t.Fatal("the global hub must exist")
	}
}

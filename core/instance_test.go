package core

import (
	"testing"

	types "github.com/gogpu/gputypes"
)

// The noop HAL backend is registered by the init side effect of
// device_test.go's hal/noop import, so NewInstance has a real backend to
// enumerate even on a machine with no GPU.

func TestNewInstanceExposesHALBackedAdapter(t *testing.T) {
	instance := NewInstance(nil)
	defer instance.Destroy()

	adapters := instance.EnumerateAdapters()
	if len(adapters) == 0 {
		t.Fatal("expected at least one adapter")
	}

	adapter, err := GetGlobal().Hub().GetAdapter(adapters[0])
	if err != nil {
		t.Fatalf("GetAdapter: %v", err)
	}
	if !adapter.HasHAL() {
		t.Fatal("with the noop backend registered, the fallback adapter must be HAL-backed")
	}
}

func TestInstanceRequestAdapter(t *testing.T) {
	instance := NewInstance(nil)
	defer instance.Destroy()

	id, err := instance.RequestAdapter(nil)
	if err != nil {
		t.Fatalf("RequestAdapter: %v", err)
	}

	info, err := GetAdapterInfo(id)
	if err != nil {
		t.Fatalf("GetAdapterInfo: %v", err)
	}
	if info.Name == "" {
		t.Fatal("adapter info must carry a name")
	}
	if _, err := GetAdapterLimits(id); err != nil {
		t.Fatalf("GetAdapterLimits: %v", err)
	}
}

func TestNewInstanceWithMockHasNoHAL(t *testing.T) {
	instance := NewInstanceWithMock(nil)
	defer instance.Destroy()

	adapters := instance.EnumerateAdapters()
	if len(adapters) != 1 {
		t.Fatalf("mock instance exposed %d adapters, want 1", len(adapters))
	}
	adapter, err := GetGlobal().Hub().GetAdapter(adapters[0])
	if err != nil {
		t.Fatalf("GetAdapter: %v", err)
	}
	if adapter.HasHAL() {
		t.Fatal("mock adapters must not claim a HAL backend")
	}
	if adapter.Limits != types.DefaultLimits() {
		t.Fatal("mock adapter should carry default limits")
	}
}

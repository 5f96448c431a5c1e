package core

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// CreateDevice creates a device record from an adapter, along with its
// default queue. This is the ID-addressed path RequestDevice uses when an
// adapter has no HAL backend to open a real device through; HAL-backed
// adapters construct a Device via NewDevice instead.
//
// Returns the device ID and an error if device creation fails.
func CreateDevice(adapterID AdapterID, desc *gputypes.DeviceDescriptor) (DeviceID, error) {
	hub := GetGlobal().Hub()

	adapter, err := hub.GetAdapter(adapterID)
	if err != nil {
		return DeviceID{}, fmt.Errorf("invalid adapter: %w", err)
	}

	if desc == nil {
		defaultDesc := gputypes.DefaultDeviceDescriptor()
		desc = &defaultDesc
	}

	// Every requested feature must be present on the adapter.
	for _, feature := range desc.RequiredFeatures {
		if !adapter.Features.Contains(feature) {
			return DeviceID{}, fmt.Errorf("adapter does not support required feature: %v", feature)
		}
	}

	enabledFeatures := gputypes.Features(0)
	for _, feature := range desc.RequiredFeatures {
		enabledFeatures.Insert(feature)
	}

	// The queue is registered first so the device record can carry its ID;
	// the queue's own device ID is backfilled right after.
	queue := Queue{
		Label: desc.Label + " Queue",
	}
	queueID := hub.RegisterQueue(queue)

	device := Device{
		Adapter:  adapterID,
		Label:    desc.Label,
		Features: enabledFeatures,
		Limits:   desc.RequiredLimits,
		Queue:    queueID,
	}
	deviceID := hub.RegisterDevice(device)

	queue.Device = deviceID
	if err := hub.UpdateQueue(queueID, queue); err != nil {
		_, _ = hub.UnregisterDevice(deviceID)
		_, _ = hub.UnregisterQueue(queueID)
		return DeviceID{}, fmt.Errorf("failed to update queue: %w", err)
	}

	return deviceID, nil
}

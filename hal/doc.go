// Package hal is the hardware abstraction layer: the backend-agnostic
// interface set the nexus core drives, which a concrete backend (Vulkan,
// Metal, DX12, GL) or the bundled noop reference backend implements.
//
// # Architecture
//
// The layers, outermost first:
//
//  1. Backend - factory for creating instances (entry point)
//  2. Instance - adapter enumeration and surface creation
//  3. Adapter - a physical GPU with capability queries
//  4. Device - resource creation and fence waits
//  5. Queue - command buffer submission, transfers, presentation
//  6. CommandEncoder - command recording
//
// # Design
//
// The HAL prioritizes portability over safety and delegates validation to
// the core layer above it: only unrecoverable errors are returned (out of
// memory, device lost), and invalid usage is undefined behavior at the
// GPU level. Every GPU resource implements Resource and must be
// explicitly destroyed to free its memory.
//
// # Backend Registration
//
// Backends register themselves in an init function via RegisterBackend;
// the core layer queries them by variant:
//
//	backend, ok := hal.GetBackend(types.BackendVulkan)
//	if !ok {
//		return fmt.Errorf("vulkan backend not available")
//	}
//	instance, err := backend.CreateInstance(desc)
//
// # Thread Safety
//
// Unless stated otherwise, HAL interfaces are not thread-safe and
// synchronization is the caller's responsibility. Backend registration is
// thread-safe, and Queue.Submit typically is (backend-specific).
//
// # Reference
//
// The shape of this layer follows wgpu-hal from the Rust WebGPU
// implementation. See:
// https://github.com/gfx-rs/wgpu/tree/trunk/wgpu-hal
package hal

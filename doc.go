// Package nexus provides a safe, explicit-handle GPU abstraction layer for Go
// applications.
//
// It wraps the lower-level hal/ and core/ packages into a small resource
// lifecycle (buffers, textures, samplers, shader modules, programs, pipelines)
// plus a command list recorder that interleaves compute and render passes.
//
// # Quick Start
//
// Import this package and a backend:
//
//	import (
//	    "github.com/gogpu/nexus"
//	    "github.com/gogpu/nexus/hal/noop"
//	)
//
//	instance, err := nexus.CreateInstance(nil)
//	// ...
//
// # Resource Lifecycle
//
// All GPU resources must be explicitly released with Release(). Resources
// are identified by generational handles (core.ID), so a use of a released
// resource's handle is rejected rather than silently reused.
//
// # Backend Registration
//
// Backends register themselves via blank imports:
//
//	_ "github.com/gogpu/nexus/hal/noop" // in-process reference backend
//
// # Thread Safety
//
// Instance, Adapter, Device and Queue are safe for concurrent use. A
// CommandList is not; it is single-writer by construction (one goroutine
// records one command list at a time).
package nexus

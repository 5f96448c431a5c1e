package nexus

import (
	"errors"

	"github.com/gogpu/nexus/core"
	"github.com/gogpu/nexus/hal"
)

// Sentinel errors re-exported from HAL.
var (
	ErrDeviceLost      = hal.ErrDeviceLost
	ErrOutOfMemory     = hal.ErrDeviceOutOfMemory
	ErrSurfaceLost     = hal.ErrSurfaceLost
	ErrSurfaceOutdated = hal.ErrSurfaceOutdated
	ErrTimeout         = hal.ErrTimeout
)

// Public API sentinel errors.
var (
	// ErrReleased is returned when operating on a released resource.
	ErrReleased = errors.New("nexus: resource already released")

	// ErrNoAdapters is returned when no GPU adapters are found.
	ErrNoAdapters = errors.New("nexus: no GPU adapters available")

	// ErrNoBackends is returned when no backends are registered.
	ErrNoBackends = errors.New("nexus: no backends registered (import a backend package)")
)

// PassStateError reports a command recorded against the wrong pass state:
// a draw outside a render pass, a dispatch outside a compute pass, or a
// Finish with a render pass still open. A CommandList that returns one
// latches closed and refuses all further recording.
type PassStateError struct {
	// Op is the operation that was attempted.
	Op string
	// State describes the pass state the command list was actually in.
	State string
}

func (e *PassStateError) Error() string {
	return "nexus: " + e.Op + " not permitted while " + e.State
}

// Re-export error types from core.
type GPUError = core.GPUError
type ErrorFilter = core.ErrorFilter

const (
	ErrorFilterValidation  = core.ErrorFilterValidation
	ErrorFilterOutOfMemory = core.ErrorFilterOutOfMemory
	ErrorFilterInternal    = core.ErrorFilterInternal
)

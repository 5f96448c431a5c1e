package core

import (
	"fmt"
	"sync"
)

// ErrorFilter selects which error category an error scope captures.
type ErrorFilter int

const (
	// ErrorFilterValidation captures descriptor and API-usage rejections:
	// zero-size buffers, unsupported formats, layout merge conflicts,
	// malformed shader binaries.
	ErrorFilterValidation ErrorFilter = iota

	// ErrorFilterOutOfMemory captures GPU allocation failures.
	ErrorFilterOutOfMemory

	// ErrorFilterInternal captures backend failures that are neither a
	// caller mistake nor an allocation failure.
	ErrorFilterInternal
)

// String returns a human-readable name for the error filter.
func (f ErrorFilter) String() string {
	switch f {
	case ErrorFilterValidation:
		return "Validation"
	case ErrorFilterOutOfMemory:
		return "OutOfMemory"
	case ErrorFilterInternal:
		return "Internal"
	default:
		return fmt.Sprintf("ErrorFilter(%d)", int(f))
	}
}

// GPUError is an error captured by an error scope.
type GPUError struct {
	// Type identifies the category of the error.
	Type ErrorFilter

	// Message provides a human-readable description of the error.
	Message string
}

// Error implements the error interface.
func (e *GPUError) Error() string {
	return fmt.Sprintf("GPU %s error: %s", e.Type, e.Message)
}

// errorScope is one stack entry: a filter plus the first matching error
// reported while the scope was open.
type errorScope struct {
	filter ErrorFilter
	err    *GPUError
}

// ErrorScopeManager holds a device's LIFO stack of error scopes. Creation
// paths report their rejections here (see Device.reportError), so a caller
// that pushes a scope before a batch of operations can pop it afterwards
// and learn the first thing that went wrong, without error-returning
// plumbing through every call site.
//
// Thread-safe for concurrent use.
type ErrorScopeManager struct {
	mu     sync.Mutex
	scopes []errorScope
}

// NewErrorScopeManager creates a manager with an empty scope stack.
func NewErrorScopeManager() *ErrorScopeManager {
	return &ErrorScopeManager{}
}

// PushErrorScope pushes a scope that captures the first error matching
// filter. Each push must be paired with a PopErrorScope.
func (m *ErrorScopeManager) PushErrorScope(filter ErrorFilter) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scopes = append(m.scopes, errorScope{filter: filter})
}

// PopErrorScope pops the most recently pushed scope and returns its
// captured error, nil if nothing matching was reported. The second return
// value is non-nil when the stack is empty.
func (m *ErrorScopeManager) PopErrorScope() (*GPUError, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.scopes) == 0 {
		return nil, fmt.Errorf("error scope stack is empty: no matching PushErrorScope")
	}

	last := len(m.scopes) - 1
	scope := m.scopes[last]
	m.scopes = m.scopes[:last]
	return scope.err, nil
}

// ReportError delivers an error to the topmost scope whose filter matches.
// A scope keeps only its first error; later matches are dropped. Returns
// false if no open scope matched, leaving the error uncaptured for the
// caller to log.
func (m *ErrorScopeManager) ReportError(filter ErrorFilter, message string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := len(m.scopes) - 1; i >= 0; i-- {
		if m.scopes[i].filter == filter {
			if m.scopes[i].err == nil {
				m.scopes[i].err = &GPUError{Type: filter, Message: message}
			}
			return true
		}
	}
	return false
}

// ScopeDepth returns the number of currently open scopes.
func (m *ErrorScopeManager) ScopeDepth() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.scopes)
}

// PushErrorScope opens an error scope on this device. Every creation-path
// rejection between the push and the matching PopErrorScope is a candidate
// for capture.
func (d *Device) PushErrorScope(filter ErrorFilter) {
	d.errorScopes().PushErrorScope(filter)
}

// PopErrorScope closes the most recently pushed scope and returns the
// first matching error reported while it was open, or nil. Panics if no
// scope is open, mirroring the push/pop pairing contract.
func (d *Device) PopErrorScope() *GPUError {
	gpuErr, err := d.errorScopes().PopErrorScope()
	if err != nil {
		panic(fmt.Sprintf("PopErrorScope: %v", err))
	}
	return gpuErr
}

// reportError routes a creation-path rejection into the device's scope
// stack. Callers still return their concrete error value; the scope is an
// additional observation channel, not a replacement.
func (d *Device) reportError(filter ErrorFilter, message string) bool {
	return d.errorScopes().ReportError(filter, message)
}

// errorScopes returns the device's ErrorScopeManager, creating it lazily.
// Lazy creation is not race-protected for a brand-new Device; in practice
// a scope is always pushed before the first concurrent GPU operation, and
// the manager itself is fully thread-safe once created.
func (d *Device) errorScopes() *ErrorScopeManager {
	if d.errorScopeManager == nil {
		d.errorScopeManager = NewErrorScopeManager()
	}
	return d.errorScopeManager
}

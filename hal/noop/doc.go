// Package noop is the reference backend: every HAL interface implemented
// with no GPU behind it. Buffers keep host-side storage so writes, copies,
// and readback round-trip byte-for-byte, which makes this backend the one
// the test suite drives end to end; draws and dispatches succeed without
// producing pixels.
//
// The backend registers itself as types.BackendEmpty and doubles as the
// fallback adapter on machines with no GPU.
package noop

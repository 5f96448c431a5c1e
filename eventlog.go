package nexus

import (
	"sync"
	"sync/atomic"
)

// RenderStateEventTag classifies one entry in a CommandList's event log.
// The log exists for diagnosing why a draw loop is rebuilding pipelines or
// bind groups it shouldn't be: replaying it against the tracked
// fixed-function state answers "what changed, and when" without reaching
// for a GPU debugger.
type RenderStateEventTag int

const (
	RenderStateEventBeginRenderPass RenderStateEventTag = iota
	RenderStateEventEndRenderPass
	RenderStateEventBeginComputePass
	RenderStateEventEndComputePass
	RenderStateEventProgramBound
	RenderStateEventPipelineBoundExplicit
	// PsoResolved records a draw-time pipeline resolution: the cache was
	// consulted (and, on a miss, a new pipeline was built) because the
	// tracked fixed-function state was dirty. The event carries the cache
	// key's hash and whether the lookup hit.
	RenderStateEventPsoResolved
	RenderStateEventPrimitiveTopologyChanged
	RenderStateEventPolygonModeChanged
	RenderStateEventCullModeChanged
	RenderStateEventFrontFaceChanged
	RenderStateEventDepthTestChanged
	RenderStateEventStencilTestChanged
	RenderStateEventBlendChanged
	RenderStateEventColorWriteMaskChanged
	RenderStateEventVertexInputLayoutChanged
	RenderStateEventVertexBufferBound
	RenderStateEventIndexBufferBound
	RenderStateEventBindGroupMaterialized
	RenderStateEventBindGroupCacheHit
	RenderStateEventDraw
	RenderStateEventCommandListFinished
)

func (t RenderStateEventTag) String() string {
	switch t {
	case RenderStateEventBeginRenderPass:
		return "begin-render-pass"
	case RenderStateEventEndRenderPass:
		return "end-render-pass"
	case RenderStateEventBeginComputePass:
		return "begin-compute-pass"
	case RenderStateEventEndComputePass:
		return "end-compute-pass"
	case RenderStateEventProgramBound:
		return "program-bound"
	case RenderStateEventPipelineBoundExplicit:
		return "pipeline-bound-explicit"
	case RenderStateEventPsoResolved:
		return "pso-resolved"
	case RenderStateEventPrimitiveTopologyChanged:
		return "primitive-topology-changed"
	case RenderStateEventPolygonModeChanged:
		return "polygon-mode-changed"
	case RenderStateEventCullModeChanged:
		return "cull-mode-changed"
	case RenderStateEventFrontFaceChanged:
		return "front-face-changed"
	case RenderStateEventDepthTestChanged:
		return "depth-test-changed"
	case RenderStateEventStencilTestChanged:
		return "stencil-test-changed"
	case RenderStateEventBlendChanged:
		return "blend-changed"
	case RenderStateEventColorWriteMaskChanged:
		return "color-write-mask-changed"
	case RenderStateEventVertexInputLayoutChanged:
		return "vertex-input-layout-changed"
	case RenderStateEventVertexBufferBound:
		return "vertex-buffer-bound"
	case RenderStateEventIndexBufferBound:
		return "index-buffer-bound"
	case RenderStateEventBindGroupMaterialized:
		return "bind-group-materialized"
	case RenderStateEventBindGroupCacheHit:
		return "bind-group-cache-hit"
	case RenderStateEventDraw:
		return "draw"
	case RenderStateEventCommandListFinished:
		return "command-list-finished"
	default:
		return "unknown"
	}
}

// RenderStateEvent is one entry in a RenderStateEventLog. Snapshot is the
// human-readable render state at the moment the event was recorded; KeyHash
// and CacheHit are populated only for PsoResolved events.
type RenderStateEvent struct {
	Tag      RenderStateEventTag
	Detail   string
	Snapshot string
	KeyHash  uint64
	CacheHit bool
}

// RenderStateEventLog accumulates a CommandList's state-change and
// pipeline-resolution events in order. Disabled by default: while disabled
// every record call is a no-op, so an always-created log costs one atomic
// load per command. The log is owned by its CommandList and lives as long
// as it does; it is meant to be inspected after a frame, not streamed live.
type RenderStateEventLog struct {
	enabled atomic.Bool
	mu      sync.Mutex
	events  []RenderStateEvent
}

// NewRenderStateEventLog returns an empty, disabled log.
func NewRenderStateEventLog() *RenderStateEventLog {
	return &RenderStateEventLog{}
}

// SetEnabled turns event recording on or off. Events recorded before
// disabling are kept.
func (l *RenderStateEventLog) SetEnabled(enabled bool) {
	l.enabled.Store(enabled)
}

// Enabled reports whether events are currently being recorded.
func (l *RenderStateEventLog) Enabled() bool {
	return l.enabled.Load()
}

// add stores a fully-formed event. Callers check Enabled first so the
// snapshot isn't built for a disabled log.
func (l *RenderStateEventLog) add(ev RenderStateEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, ev)
}

// Events returns a snapshot of the recorded events in order.
func (l *RenderStateEventLog) Events() []RenderStateEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]RenderStateEvent(nil), l.events...)
}

// EventsWithTag returns the recorded events carrying the given tag, in
// order.
func (l *RenderStateEventLog) EventsWithTag(tag RenderStateEventTag) []RenderStateEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []RenderStateEvent
	for _, ev := range l.events {
		if ev.Tag == tag {
			out = append(out, ev)
		}
	}
	return out
}

// Reset clears the log, e.g. at the start of a new frame.
func (l *RenderStateEventLog) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = nil
}

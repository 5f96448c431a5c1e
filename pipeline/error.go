package pipeline

import "fmt"

// PipelineConstructionError is returned when a backend rejects a pipeline
// descriptor (incompatible formats, an unsupported combination of state,
// etc). The cache records the miss but does not insert anything for the
// key, so the next draw with the same state retries construction rather
// than permanently caching the failure.
type PipelineConstructionError struct {
	Label  string
	Reason error
}

func (e *PipelineConstructionError) Error() string {
	label := e.Label
	if label == "" {
		label = "<unnamed>"
	}
	return fmt.Sprintf("pipeline %q: construction failed: %v", label, e.Reason)
}

func (e *PipelineConstructionError) Unwrap() error { return e.Reason }

package temporal

import (
	"errors"
	"fmt"
)

var (
	// ErrNilSnapshot is returned when a step is given no snapshot.
	ErrNilSnapshot = errors.New("nil snapshot")

	// ErrUnknownState is returned when Step receives a State it did not produce.
	ErrUnknownState = errors.New("unknown detector state")
)

// StepError is a failure while processing one snapshot. Failures from the
// extractor, partitioner, classifier or scorer are carried unmodified in
// Cause.
type StepError struct {
	Snapshot int   // 1-based index of the snapshot being processed
	Phase    Phase // Phase the detector was in
	Stage    Stage // Stage that failed, empty if the step did not start
	Cause    error // Underlying error
}

// Error implements the error interface.
func (e *StepError) Error() string {
	if e.Stage != "" {
		return fmt.Sprintf("snapshot %d (%s) %s: %v", e.Snapshot, e.Phase, e.Stage, e.Cause)
	}
	return fmt.Sprintf("snapshot %d (%s): %v", e.Snapshot, e.Phase, e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *StepError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target error matches this error's cause.
func (e *StepError) Is(target error) bool {
	if target == nil {
		return false
	}
	return errors.Is(e.Cause, target)
}

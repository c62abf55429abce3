package release

import "fmt"

// UnfinalizedVersionError is returned when the develop stage is invoked with a
// stored version that still carries a pre-release marker. Such a version must
// pass through finalization before a new bump is allowed.
type UnfinalizedVersionError struct {
	Version string
}

func (e *UnfinalizedVersionError) Error() string {
	return fmt.Sprintf("stored version %s still carries a pre-release marker; finalize it before bumping", e.Version)
}

// ActionExecutionError wraps a failure of an external collaborator while
// executing an action. Actions completed before the failure are not rolled
// back; remaining actions are aborted.
type ActionExecutionError struct {
	Kind string
	Err  error
}

func (e *ActionExecutionError) Error() string {
	return fmt.Sprintf("action %s failed: %v", e.Kind, e.Err)
}

func (e *ActionExecutionError) Unwrap() error {
	return e.Err
}

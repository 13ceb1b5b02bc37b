package predictions

import "fmt"

// InferenceReason distinguishes how the external model failed. The caller
// needs to tell "the model never answered" apart from "the model answered
// badly".
type InferenceReason string

const (
	ReasonTimeout    InferenceReason = "timeout"
	ReasonExitStatus InferenceReason = "exit_status"
	ReasonBadOutput  InferenceReason = "bad_output"
)

// ValidationError: client-caused, terjadi sebelum side effect apapun.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// StorageError: artifact write failed, request aborted.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("artifact storage %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// InferenceError: model failed or misbehaved. Diagnostic carries captured
// process/transport output, never a stack trace.
type InferenceError struct {
	Reason     InferenceReason
	Diagnostic string
	Err        error
}

func (e *InferenceError) Error() string {
	if e.Diagnostic != "" {
		return fmt.Sprintf("inference failed (%s): %s", e.Reason, e.Diagnostic)
	}
	return fmt.Sprintf("inference failed (%s): %v", e.Reason, e.Err)
}

func (e *InferenceError) Unwrap() error { return e.Err }

// PersistenceError: record write failed after inference already succeeded.
// Surfaced distinctly karena biaya inference sudah terlanjur keluar.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("analysis succeeded but the result could not be saved: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// DeliveryError: notification failed. Recovered locally, never changes the
// pipeline outcome.
type DeliveryError struct {
	Recipient string
	Err       error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("notification to %s failed: %v", e.Recipient, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

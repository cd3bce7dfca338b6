package errors

import "fmt"

// Error type constants
const (
	PreconditionFailed = "PRECONDITION_FAILED"
	StepFailed         = "STEP_FAILED"
	VersionMismatch    = "VERSION_MISMATCH"
	SanityCheckFailed  = "SANITY_CHECK_FAILED"
	ConfirmDeclined    = "CONFIRM_DECLINED"
	CaptureFailed      = "CAPTURE_FAILED"
	ConfigError        = "CONFIG_ERROR"
)

// RunError is a structured error surfaced by the orchestrator.
type RunError struct {
	Type    string `json:"type"`
	StepID  string `json:"step_id,omitempty"`
	Message string `json:"message"`
	Hint    string `json:"hint,omitempty"`
}

func (e *RunError) Error() string {
	if e.StepID != "" {
		return fmt.Sprintf("[%s] step %s: %s", e.Type, e.StepID, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

func NewStepError(stepID, msg, hint string) *RunError {
	return &RunError{Type: StepFailed, StepID: stepID, Message: msg, Hint: hint}
}

func NewVersionMismatch(stepID, want, got string) *RunError {
	return &RunError{
		Type:    VersionMismatch,
		StepID:  stepID,
		Message: fmt.Sprintf("expected version %q, found %q", want, got),
		Hint:    "Remove the mismatched installation and re-run",
	}
}

func NewSanityCheckError(stepID, msg string) *RunError {
	return &RunError{
		Type:    SanityCheckFailed,
		StepID:  stepID,
		Message: msg,
		Hint:    "Verify the pipeline ingested documents before querying",
	}
}

package engine

import booterrors "github.com/pipeboot/pipeboot/internal/errors"

// Step statuses.
const (
	StatusSatisfied  = "satisfied"
	StatusApplied    = "applied"
	StatusSuccess    = "success"
	StatusFailed     = "failed"
	StatusSkipped    = "skipped"
	StatusDeclined   = "declined"
	StatusDryRun     = "dry-run"
	StatusNeedsApply = "needs-apply"
)

// Result is the structured output of a bootstrap run.
type Result struct {
	RunID        string                 `json:"run_id"`
	Success      bool                   `json:"success"`
	FailedStepID string                 `json:"failed_step_id,omitempty"`
	Steps        []StepResult           `json:"steps"`
	Transcript   string                 `json:"transcript,omitempty"`
	Errors       []*booterrors.RunError `json:"errors,omitempty"`
}

// StepResult describes the outcome of one step or delegated target.
type StepResult struct {
	ID       string `json:"id"`
	Phase    string `json:"phase"`
	Status   string `json:"status"`
	Command  string `json:"command,omitempty"`
	Detail   string `json:"detail,omitempty"`
	Duration string `json:"duration,omitempty"`
}

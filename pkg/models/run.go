package models

import "time"

// RunStatus represents the state of one execution attempt.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusSuccess   RunStatus = "success"
	RunStatusFailed    RunStatus = "failed"
	RunStatusCancelled RunStatus = "cancelled"
)

// RunRecord is one concrete execution attempt of a workflow. It is created
// in the running state when a trigger fires and transitions exactly once to a
// terminal state; it is immutable thereafter and independent of any later
// edits to the definition.
type RunRecord struct {
	ID         string     `json:"id"`
	WorkflowID string     `json:"workflow_id" validate:"required"`
	OrgID      string     `json:"org_id,omitempty"`
	Status     RunStatus  `json:"status"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	LastError  string     `json:"last_error,omitempty"`
}

// IsTerminal reports whether the run has reached a terminal state.
func (r *RunRecord) IsTerminal() bool {
	return r.Status != RunStatusRunning
}

// Complete transitions the run to success or failed. A run may only
// terminate once; a second transition attempt fails without mutating state.
func (r *RunRecord) Complete(outcome RunStatus, lastError string) error {
	if outcome != RunStatusSuccess && outcome != RunStatusFailed {
		return &InvalidTransitionError{
			Entity: "run",
			ID:     r.ID,
			From:   string(r.Status),
			Action: "complete with outcome " + string(outcome),
		}
	}

	if r.IsTerminal() {
		return &InvalidTransitionError{
			Entity: "run",
			ID:     r.ID,
			From:   string(r.Status),
			Action: "complete",
		}
	}

	now := time.Now().UTC()
	r.Status = outcome
	r.FinishedAt = &now
	r.LastError = lastError

	return nil
}

// Cancel transitions a running run to cancelled, with the same
// single-termination guard as Complete.
func (r *RunRecord) Cancel() error {
	if r.IsTerminal() {
		return &InvalidTransitionError{
			Entity: "run",
			ID:     r.ID,
			From:   string(r.Status),
			Action: "cancel",
		}
	}

	now := time.Now().UTC()
	r.Status = RunStatusCancelled
	r.FinishedAt = &now

	return nil
}

package models

import "time"

// ApprovalAction is a governance transition requested by an actor.
type ApprovalAction string

const (
	ApprovalActionRequest ApprovalAction = "request"
	ApprovalActionApprove ApprovalAction = "approve"
	ApprovalActionReject  ApprovalAction = "reject"
)

// ApprovalEvent is one append-only audit entry on a workflow's governance
// trail. Events are never edited after creation; the definition's cached
// approval status is always the To state of the latest event.
type ApprovalEvent struct {
	ID         string         `json:"id"`
	WorkflowID string         `json:"workflow_id" validate:"required"`
	Action     ApprovalAction `json:"action"      validate:"required,oneof=request approve reject"`
	From       ApprovalStatus `json:"from"`
	To         ApprovalStatus `json:"to"`
	ActorID    string         `json:"actor_id"`
	Notes      string         `json:"notes,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
}

// Package models defines the core domain models for CRM workflow automation.
package models

import "time"

// LifecycleStatus represents the lifecycle state of a workflow definition.
type LifecycleStatus string

const (
	LifecycleStatusDraft  LifecycleStatus = "draft"  // Editable, not executable
	LifecycleStatusPaused LifecycleStatus = "paused" // Approved but temporarily not executable
	LifecycleStatusActive LifecycleStatus = "active" // Executable, requires approval
)

// ApprovalStatus represents the governance state of a workflow definition.
type ApprovalStatus string

const (
	ApprovalStatusDraft    ApprovalStatus = "draft"    // Not yet submitted for approval
	ApprovalStatusPending  ApprovalStatus = "pending"  // Awaiting an approver's decision
	ApprovalStatusApproved ApprovalStatus = "approved" // May be activated
	ApprovalStatusRejected ApprovalStatus = "rejected" // Recorded on the audit trail; the definition itself returns to draft
)

// OrgContext identifies the organization and actor on whose behalf an
// operation runs. It is threaded explicitly instead of being ambient state.
type OrgContext struct {
	OrgID   string `json:"org_id"   validate:"required"`
	ActorID string `json:"actor_id" validate:"required"`
}

// WorkflowDefinition is the aggregate root: the editable, versioned
// specification of one automation. It exclusively owns its trigger and graph.
type WorkflowDefinition struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"             validate:"required,min=3"`
	Description     string          `json:"description"`
	LifecycleStatus LifecycleStatus `json:"lifecycle_status" validate:"required"`
	ApprovalStatus  ApprovalStatus  `json:"approval_status"  validate:"required"`
	Trigger         *TriggerSpec    `json:"trigger"`
	Graph           *Graph          `json:"graph"`
	OrgID           string          `json:"org_id"`
	Owner           string          `json:"owner"`
	CreatedAt       time.Time       `json:"created_at"`

	// UpdatedAt is refreshed on any mutation to trigger, graph or status.
	// It doubles as the optimistic-concurrency token checked by the
	// persistence layer on save.
	UpdatedAt time.Time `json:"updated_at"`
}

// Touch refreshes the UpdatedAt timestamp.
func (d *WorkflowDefinition) Touch() {
	d.UpdatedAt = time.Now().UTC()
}

// Activate moves the definition to the active lifecycle status. Activation is
// gated on governance: only an approved definition with a trigger and a
// non-empty graph may run.
func (d *WorkflowDefinition) Activate() error {
	if d.ApprovalStatus != ApprovalStatusApproved {
		return &GovernanceError{
			WorkflowID:     d.ID,
			ApprovalStatus: d.ApprovalStatus,
			Message:        "workflow is not approved; request approval first",
		}
	}

	if d.Trigger == nil {
		return &GovernanceError{
			WorkflowID:     d.ID,
			ApprovalStatus: d.ApprovalStatus,
			Message:        "workflow has no trigger",
		}
	}

	if d.Graph == nil || len(d.Graph.Nodes) == 0 {
		return &GovernanceError{
			WorkflowID:     d.ID,
			ApprovalStatus: d.ApprovalStatus,
			Message:        "workflow graph is empty",
		}
	}

	d.LifecycleStatus = LifecycleStatusActive
	d.Touch()

	return nil
}

// Pause moves an active definition back to paused. Approval is retained.
func (d *WorkflowDefinition) Pause() error {
	if d.LifecycleStatus != LifecycleStatusActive {
		return &InvalidTransitionError{
			Entity: "workflow",
			ID:     d.ID,
			From:   string(d.LifecycleStatus),
			Action: "pause",
		}
	}

	d.LifecycleStatus = LifecycleStatusPaused
	d.Touch()

	return nil
}

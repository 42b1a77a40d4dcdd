// Package web provides HTTP request and response types for the workflow API.
package web

import (
	"github.com/apexcrm/flowkit/pkg/models"
)

// CreateWorkflowRequest represents the request body for creating a new
// workflow definition. Trigger and graph may be supplied up front or edited
// in later.
type CreateWorkflowRequest struct {
	Name        string              `json:"name"        validate:"required,min=3"`
	Description string              `json:"description"`
	Trigger     *models.TriggerSpec `json:"trigger,omitempty"`
	Graph       *models.Graph       `json:"graph,omitempty"`
	OrgID       string              `json:"org_id"      validate:"required"`
	ActorID     string              `json:"actor_id"    validate:"required"`
}

// UpdateWorkflowRequest represents the request body for updating an existing
// definition. All fields are optional to support partial updates.
type UpdateWorkflowRequest struct {
	Name        *string             `json:"name,omitempty" validate:"omitempty,min=3"`
	Description *string             `json:"description,omitempty"`
	Trigger     *models.TriggerSpec `json:"trigger,omitempty"`
	Graph       *models.Graph       `json:"graph,omitempty"`
}

// ApprovalActionRequest carries the actor and notes for a governance
// transition.
type ApprovalActionRequest struct {
	ActorID string `json:"actor_id"`
	Notes   string `json:"notes,omitempty"`
}

// CompleteRunRequest reports a run's terminal outcome from the execution
// runtime.
type CompleteRunRequest struct {
	Outcome models.RunStatus `json:"outcome" validate:"required,oneof=success failed"`
	Error   string           `json:"error,omitempty"`
}

// InstallTemplateRequest stamps the org context onto an installed template.
type InstallTemplateRequest struct {
	OrgID   string `json:"org_id"   validate:"required"`
	ActorID string `json:"actor_id" validate:"required"`
}

// ActionKindSummary is the catalog shape for one registered action kind,
// schema included so the editor can validate config client-side.
type ActionKindSummary struct {
	Kind        string         `json:"kind"`
	Description string         `json:"description"`
	Schema      map[string]any `json:"schema,omitempty"`
}

// WorkflowSummary is the trimmed listing shape: graph details are replaced
// by node and edge counts.
type WorkflowSummary struct {
	ID              string                 `json:"id"`
	Name            string                 `json:"name"`
	Description     string                 `json:"description"`
	LifecycleStatus models.LifecycleStatus `json:"lifecycle_status"`
	ApprovalStatus  models.ApprovalStatus  `json:"approval_status"`
	TriggerSummary  string                 `json:"trigger_summary,omitempty"`
	NodeCount       int                    `json:"node_count"`
	EdgeCount       int                    `json:"edge_count"`
}

// TransformWorkflowSummary builds the listing shape for one definition.
func TransformWorkflowSummary(def *models.WorkflowDefinition) WorkflowSummary {
	summary := WorkflowSummary{
		ID:              def.ID,
		Name:            def.Name,
		Description:     def.Description,
		LifecycleStatus: def.LifecycleStatus,
		ApprovalStatus:  def.ApprovalStatus,
	}

	if def.Trigger != nil {
		summary.TriggerSummary = def.Trigger.Describe()
	}

	if def.Graph != nil {
		summary.NodeCount = def.Graph.NodeCount()
		summary.EdgeCount = def.Graph.EdgeCount()
	}

	return summary
}

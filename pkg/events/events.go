// Package events defines the notification events emitted at governance and
// run lifecycle transitions. Delivery to approvers or dashboards is an
// external consumer's concern; the core only emits well-formed events.
package events

import (
	"time"

	"github.com/apexcrm/flowkit/pkg/models"
	"github.com/google/uuid"
)

type EventType string

// Topic carries all core notification events.
const Topic = "flowkit.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	// Governance events.
	ApprovalRequestedEvent EventType = "approval.requested"
	ApprovalApprovedEvent  EventType = "approval.approved"
	ApprovalRejectedEvent  EventType = "approval.rejected"

	// Workflow lifecycle events.
	WorkflowActivatedEvent EventType = "workflow.activated"
	WorkflowPausedEvent    EventType = "workflow.paused"

	// Run lifecycle events.
	RunStartedEvent   EventType = "run.started"
	RunCompletedEvent EventType = "run.completed"
	RunCancelledEvent EventType = "run.cancelled"

	// Template events.
	TemplateInstalledEvent EventType = "template.installed"
)

type BaseEvent struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	Timestamp  time.Time `json:"timestamp"`
	WorkflowID string    `json:"workflow_id"`
	OrgID      string    `json:"org_id,omitempty"`
}

// NewBaseEvent stamps identity and time for an event under construction.
func NewBaseEvent(eventType EventType, workflowID, orgID string) BaseEvent {
	return BaseEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		Timestamp:  time.Now().UTC(),
		WorkflowID: workflowID,
		OrgID:      orgID,
	}
}

// ApprovalTransition is emitted for every governance transition so an
// external notifier can alert approvers.
type ApprovalTransition struct {
	BaseEvent

	Action  models.ApprovalAction `json:"action"`
	From    models.ApprovalStatus `json:"from"`
	To      models.ApprovalStatus `json:"to"`
	ActorID string                `json:"actor_id"`
	Notes   string                `json:"notes,omitempty"`
}

func (e ApprovalTransition) GetType() EventType {
	return e.Type
}

// WorkflowLifecycleChanged is emitted when a definition is activated or
// paused.
type WorkflowLifecycleChanged struct {
	BaseEvent

	LifecycleStatus models.LifecycleStatus `json:"lifecycle_status"`
}

func (e WorkflowLifecycleChanged) GetType() EventType {
	return e.Type
}

// RunTransition is emitted when a run starts or reaches a terminal state.
type RunTransition struct {
	BaseEvent

	RunID  string           `json:"run_id"`
	Status models.RunStatus `json:"status"`
	Error  string           `json:"error,omitempty"`
}

func (e RunTransition) GetType() EventType {
	return e.Type
}

// TemplateInstalled is emitted when a template is cloned into a new
// definition.
type TemplateInstalled struct {
	BaseEvent

	TemplateID string `json:"template_id"`
}

func (e TemplateInstalled) GetType() EventType {
	return e.Type
}

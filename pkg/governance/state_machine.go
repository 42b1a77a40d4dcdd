// Package governance implements the approval state machine gating workflow
// activation. The machine itself is stateless: the current status is the To
// state of the latest audit event, cached on the definition for O(1) reads.
package governance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/apexcrm/flowkit/pkg/events"
	"github.com/apexcrm/flowkit/pkg/eventbus"
	"github.com/apexcrm/flowkit/pkg/models"
	"github.com/apexcrm/flowkit/pkg/persistence"
)

// ErrActorRequired is returned when an approval is attempted without an
// acting user.
var ErrActorRequired = errors.New("approval requires an actor")

// StateMachine applies governance transitions, appending an audit event and
// publishing a notification for each one.
type StateMachine struct {
	persistence persistence.Persistence
	publisher   eventbus.EventPublisher
	logger      *slog.Logger
}

func NewStateMachine(p persistence.Persistence, publisher eventbus.EventPublisher, logger *slog.Logger) *StateMachine {
	return &StateMachine{
		persistence: p,
		publisher:   publisher,
		logger:      logger,
	}
}

// Next returns the status an action leads to from the current status, or an
// error when the transition is not permitted:
//
//	draft    --request--> pending
//	pending  --approve--> approved
//	pending  --reject---> draft (edit and resubmit; not a dead end)
//	approved --request--> pending (re-approval after edits)
func Next(current models.ApprovalStatus, action models.ApprovalAction) (models.ApprovalStatus, error) {
	switch action {
	case models.ApprovalActionRequest:
		if current == models.ApprovalStatusDraft || current == models.ApprovalStatusApproved {
			return models.ApprovalStatusPending, nil
		}
	case models.ApprovalActionApprove:
		if current == models.ApprovalStatusPending {
			return models.ApprovalStatusApproved, nil
		}
	case models.ApprovalActionReject:
		if current == models.ApprovalStatusPending {
			return models.ApprovalStatusDraft, nil
		}
	default:
		return "", fmt.Errorf("unknown approval action %q", action)
	}

	return "", &models.InvalidTransitionError{
		Entity: "approval",
		From:   string(current),
		Action: string(action),
	}
}

// Request submits a definition for approval. Allowed from draft and, for
// re-approval after edits, from approved.
func (sm *StateMachine) Request(ctx context.Context, workflowID, actorID, notes string) (*models.WorkflowDefinition, error) {
	return sm.transition(ctx, workflowID, models.ApprovalActionRequest, actorID, notes, events.ApprovalRequestedEvent)
}

// Approve grants approval. The acting approver is mandatory for the audit
// trail.
func (sm *StateMachine) Approve(ctx context.Context, workflowID, actorID, notes string) (*models.WorkflowDefinition, error) {
	if actorID == "" {
		return nil, ErrActorRequired
	}

	return sm.transition(ctx, workflowID, models.ApprovalActionApprove, actorID, notes, events.ApprovalApprovedEvent)
}

// Reject declines approval and returns the definition to draft. Notes should
// carry the rejection reason.
func (sm *StateMachine) Reject(ctx context.Context, workflowID, actorID, notes string) (*models.WorkflowDefinition, error) {
	return sm.transition(ctx, workflowID, models.ApprovalActionReject, actorID, notes, events.ApprovalRejectedEvent)
}

// History returns the workflow's audit trail in append order.
func (sm *StateMachine) History(ctx context.Context, workflowID string) ([]*models.ApprovalEvent, error) {
	return sm.persistence.Approvals().ListByWorkflow(ctx, workflowID)
}

func (sm *StateMachine) transition(
	ctx context.Context,
	workflowID string,
	action models.ApprovalAction,
	actorID, notes string,
	eventType events.EventType,
) (*models.WorkflowDefinition, error) {
	def, err := sm.persistence.Definitions().GetByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	from := def.ApprovalStatus

	to, err := Next(from, action)
	if err != nil {
		var invalid *models.InvalidTransitionError
		if errors.As(err, &invalid) {
			invalid.ID = workflowID
		}

		return nil, err
	}

	audit := &models.ApprovalEvent{
		ID:         uuid.New().String(),
		WorkflowID: workflowID,
		Action:     action,
		From:       from,
		To:         to,
		ActorID:    actorID,
		Notes:      notes,
		Timestamp:  time.Now().UTC(),
	}

	if err := sm.persistence.Approvals().Append(ctx, audit); err != nil {
		return nil, fmt.Errorf("failed to append approval event: %w", err)
	}

	def.ApprovalStatus = to
	if err := sm.persistence.Definitions().Save(ctx, def); err != nil {
		return nil, fmt.Errorf("failed to save approval status: %w", err)
	}

	sm.publish(ctx, def, audit, eventType)

	return def, nil
}

// publish emits the notification event. Delivery failures are logged, not
// returned: the transition itself has already been recorded.
func (sm *StateMachine) publish(ctx context.Context, def *models.WorkflowDefinition, audit *models.ApprovalEvent, eventType events.EventType) {
	if sm.publisher == nil {
		return
	}

	event := events.ApprovalTransition{
		BaseEvent: events.NewBaseEvent(eventType, def.ID, def.OrgID),
		Action:    audit.Action,
		From:      audit.From,
		To:        audit.To,
		ActorID:   audit.ActorID,
		Notes:     audit.Notes,
	}

	if err := sm.publisher.Publish(ctx, def.ID, event); err != nil {
		sm.logger.ErrorContext(ctx, "Failed to publish approval event",
			"workflow_id", def.ID, "action", audit.Action, "error", err)
	}
}

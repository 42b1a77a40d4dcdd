package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/apexcrm/flowkit/pkg/events"
	"github.com/apexcrm/flowkit/pkg/eventbus"
	"github.com/apexcrm/flowkit/pkg/models"
	"github.com/apexcrm/flowkit/pkg/persistence"
	"github.com/apexcrm/flowkit/pkg/registry"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// Workflow is the definition service: CRUD plus the approval-gated lifecycle
// transitions on the aggregate.
type Workflow struct {
	persistence persistence.Persistence
	registry    *registry.Registry
	publisher   eventbus.EventPublisher
	validate    *validator.Validate
	logger      *slog.Logger
}

// NewWorkflow creates a new workflow service.
func NewWorkflow(p persistence.Persistence, reg *registry.Registry, publisher eventbus.EventPublisher, logger *slog.Logger) *Workflow {
	return &Workflow{
		persistence: p,
		registry:    reg,
		publisher:   publisher,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		logger:      logger,
	}
}

// HealthCheck checks the health of the persistence layer.
func (w *Workflow) HealthCheck(ctx context.Context) (string, bool) {
	if w.persistence == nil {
		return "Persistence layer not initialized", false
	}

	if err := w.persistence.HealthCheck(ctx); err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// ListWorkflowsRequest contains options for listing workflow definitions.
type ListWorkflowsRequest struct {
	Limit           int `validate:"min=0,max=100"`
	Offset          int `validate:"min=0"`
	OrgID           string
	LifecycleStatus *models.LifecycleStatus
	ApprovalStatus  *models.ApprovalStatus
}

// ListWorkflows retrieves definitions with filtering and pagination, newest
// first.
func (w *Workflow) ListWorkflows(ctx context.Context, req ListWorkflowsRequest) ([]*models.WorkflowDefinition, error) {
	if req.Limit <= 0 {
		req.Limit = defaultPageLimit
	}

	if req.Limit > maxPageLimit {
		req.Limit = maxPageLimit
	}

	if req.Offset < 0 {
		req.Offset = 0
	}

	defs, err := w.persistence.Definitions().List(ctx, persistence.ListDefinitionsOptions{
		Limit:           req.Limit,
		Offset:          req.Offset,
		OrgID:           req.OrgID,
		LifecycleStatus: req.LifecycleStatus,
		ApprovalStatus:  req.ApprovalStatus,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}

	return defs, nil
}

// FetchByID retrieves a definition by its ID.
func (w *Workflow) FetchByID(ctx context.Context, id string) (*models.WorkflowDefinition, error) {
	return w.persistence.Definitions().GetByID(ctx, id)
}

// Create adds a new definition. Both statuses start at draft regardless of
// what the caller sent.
func (w *Workflow) Create(ctx context.Context, def *models.WorkflowDefinition, org models.OrgContext) (*models.WorkflowDefinition, error) {
	if def == nil {
		return nil, ErrWorkflowNil
	}

	if org.OrgID == "" {
		return nil, ErrEmptyOrgID
	}

	now := time.Now().UTC()
	def.ID = uuid.New().String()
	def.LifecycleStatus = models.LifecycleStatusDraft
	def.ApprovalStatus = models.ApprovalStatusDraft
	def.OrgID = org.OrgID
	def.Owner = org.ActorID
	def.CreatedAt = now
	def.UpdatedAt = now

	if err := w.validateDefinition(def); err != nil {
		return nil, err
	}

	if err := w.persistence.Definitions().Save(ctx, def); err != nil {
		return nil, fmt.Errorf("failed to create workflow: %w", err)
	}

	return def, nil
}

// Update modifies an existing definition's name, description, trigger and
// graph. Governance and lifecycle status are not touched: editing after
// approval keeps the approval and only bumps UpdatedAt.
func (w *Workflow) Update(ctx context.Context, workflowID string, def *models.WorkflowDefinition) (*models.WorkflowDefinition, error) {
	if def == nil {
		return nil, ErrWorkflowNil
	}

	existing, err := w.persistence.Definitions().GetByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	def.ID = existing.ID
	def.LifecycleStatus = existing.LifecycleStatus
	def.ApprovalStatus = existing.ApprovalStatus
	def.OrgID = existing.OrgID
	def.Owner = existing.Owner
	def.CreatedAt = existing.CreatedAt
	// Carry the loaded UpdatedAt as the optimistic-concurrency token.
	def.UpdatedAt = existing.UpdatedAt

	if err := w.validateDefinition(def); err != nil {
		return nil, err
	}

	if err := w.persistence.Definitions().Save(ctx, def); err != nil {
		return nil, fmt.Errorf("failed to update workflow: %w", err)
	}

	return def, nil
}

// UpdateGraph replaces the definition's normalized graph, typically at the
// end of an editor session.
func (w *Workflow) UpdateGraph(ctx context.Context, workflowID string, g *models.Graph) (*models.WorkflowDefinition, error) {
	existing, err := w.persistence.Definitions().GetByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	existing.Graph = g

	if err := w.validateDefinition(existing); err != nil {
		return nil, err
	}

	if err := w.persistence.Definitions().Save(ctx, existing); err != nil {
		return nil, fmt.Errorf("failed to update workflow graph: %w", err)
	}

	return existing, nil
}

// Delete removes a definition by its ID.
func (w *Workflow) Delete(ctx context.Context, workflowID string) error {
	if _, err := w.persistence.Definitions().GetByID(ctx, workflowID); err != nil {
		return err
	}

	if err := w.persistence.Definitions().Delete(ctx, workflowID); err != nil {
		return fmt.Errorf("failed to delete workflow: %w", err)
	}

	return nil
}

// Activate turns the definition live. Fails with GovernanceError unless the
// definition is approved with a trigger and a non-empty graph.
func (w *Workflow) Activate(ctx context.Context, workflowID string) (*models.WorkflowDefinition, error) {
	return w.lifecycleTransition(ctx, workflowID, events.WorkflowActivatedEvent,
		func(def *models.WorkflowDefinition) error { return def.Activate() })
}

// Pause suspends an active definition. Approval is retained.
func (w *Workflow) Pause(ctx context.Context, workflowID string) (*models.WorkflowDefinition, error) {
	return w.lifecycleTransition(ctx, workflowID, events.WorkflowPausedEvent,
		func(def *models.WorkflowDefinition) error { return def.Pause() })
}

func (w *Workflow) lifecycleTransition(
	ctx context.Context,
	workflowID string,
	eventType events.EventType,
	apply func(*models.WorkflowDefinition) error,
) (*models.WorkflowDefinition, error) {
	def, err := w.persistence.Definitions().GetByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	if err := apply(def); err != nil {
		return nil, err
	}

	if err := w.persistence.Definitions().Save(ctx, def); err != nil {
		return nil, fmt.Errorf("failed to save workflow: %w", err)
	}

	w.publishLifecycle(ctx, def, eventType)

	return def, nil
}

func (w *Workflow) publishLifecycle(ctx context.Context, def *models.WorkflowDefinition, eventType events.EventType) {
	if w.publisher == nil {
		return
	}

	event := events.WorkflowLifecycleChanged{
		BaseEvent:       events.NewBaseEvent(eventType, def.ID, def.OrgID),
		LifecycleStatus: def.LifecycleStatus,
	}

	if err := w.publisher.Publish(ctx, def.ID, event); err != nil {
		w.logger.ErrorContext(ctx, "Failed to publish lifecycle event",
			"workflow_id", def.ID, "status", def.LifecycleStatus, "error", err)
	}
}

// validateDefinition runs struct validation plus the structural checks on
// trigger and graph, including registry schema checks on action configs.
func (w *Workflow) validateDefinition(def *models.WorkflowDefinition) error {
	if err := w.validate.Struct(def); err != nil {
		return NewValidationError("validateDefinition", "INVALID_DEFINITION", err.Error(), ErrInvalidRequest)
	}

	var result models.ValidationResult

	if def.Trigger != nil {
		result.Merge(def.Trigger.Validate())
	}

	if def.Graph != nil {
		result.Merge(def.Graph.Validate())

		if w.registry != nil {
			for _, node := range def.Graph.Nodes {
				if node.Type != models.NodeTypeAction {
					continue
				}

				kind, ok := node.Config[models.ConfigKeyActionKind].(string)
				if !ok {
					continue
				}

				if err := w.registry.ValidateActionConfig(kind, node.Config); err != nil {
					result.Add("ACTION_CONFIG_INVALID", node.ID, err.Error())
				}
			}
		}
	}

	return result.AsError()
}

// Package persistence provides the data storage abstraction for workflow
// definitions, approval trails, run records and templates.
package persistence

import (
	"context"

	"github.com/apexcrm/flowkit/pkg/models"
)

// Persistence groups the repositories. Each call is assumed atomic by the
// core; cross-call atomicity is the implementation's concern.
type Persistence interface {
	Definitions() DefinitionRepository
	Approvals() ApprovalRepository
	Runs() RunRepository
	Templates() TemplateRepository

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

// ListDefinitionsOptions filters and pages a definition listing.
type ListDefinitionsOptions struct {
	Limit           int
	Offset          int
	OrgID           string
	LifecycleStatus *models.LifecycleStatus
	ApprovalStatus  *models.ApprovalStatus
}

// DefinitionRepository stores workflow definitions.
//
// Save uses UpdatedAt as an optimistic-concurrency token: the caller passes
// the definition carrying the UpdatedAt it loaded, Save fails with
// ErrStaleDefinition if the stored copy is newer, and refreshes UpdatedAt on
// success.
type DefinitionRepository interface {
	List(ctx context.Context, opts ListDefinitionsOptions) ([]*models.WorkflowDefinition, error)
	GetByID(ctx context.Context, id string) (*models.WorkflowDefinition, error)
	Save(ctx context.Context, def *models.WorkflowDefinition) error
	Delete(ctx context.Context, id string) error
}

// ApprovalRepository stores the append-only governance audit trail.
type ApprovalRepository interface {
	Append(ctx context.Context, event *models.ApprovalEvent) error
	ListByWorkflow(ctx context.Context, workflowID string) ([]*models.ApprovalEvent, error)
}

// RunRepository stores run records. Append creates a record; Update writes
// its single terminal transition. ListByWorkflow orders by StartedAt
// descending.
type RunRepository interface {
	Append(ctx context.Context, record *models.RunRecord) error
	GetByID(ctx context.Context, id string) (*models.RunRecord, error)
	Update(ctx context.Context, record *models.RunRecord) error
	ListByWorkflow(ctx context.Context, workflowID string, limit int) ([]*models.RunRecord, error)
}

// TemplateRepository stores the catalog of installable templates.
type TemplateRepository interface {
	List(ctx context.Context) ([]*models.WorkflowTemplate, error)
	GetByID(ctx context.Context, id string) (*models.WorkflowTemplate, error)
	Save(ctx context.Context, template *models.WorkflowTemplate) error
}

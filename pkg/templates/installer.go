// Package templates installs catalog templates as new, independently owned
// workflow definitions.
package templates

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/apexcrm/flowkit/pkg/events"
	"github.com/apexcrm/flowkit/pkg/eventbus"
	"github.com/apexcrm/flowkit/pkg/models"
	"github.com/apexcrm/flowkit/pkg/persistence"
)

// Installer clones templates into definitions. The clone is deep: mutating
// the installed copy never affects the source template. Node ids are kept as
// is, since the copy is scoped to a new definition id and never aliased back.
type Installer struct {
	persistence persistence.Persistence
	publisher   eventbus.EventPublisher
	logger      *slog.Logger
}

func NewInstaller(p persistence.Persistence, publisher eventbus.EventPublisher, logger *slog.Logger) *Installer {
	return &Installer{
		persistence: p,
		publisher:   publisher,
		logger:      logger,
	}
}

// Install creates a new draft definition from the template, stamped with the
// caller's org context. Both lifecycle and approval status start at draft.
func (i *Installer) Install(ctx context.Context, templateID string, org models.OrgContext) (*models.WorkflowDefinition, error) {
	template, err := i.persistence.Templates().GetByID(ctx, templateID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	def := &models.WorkflowDefinition{
		ID:              uuid.New().String(),
		Name:            template.Name,
		Description:     template.Description,
		LifecycleStatus: models.LifecycleStatusDraft,
		ApprovalStatus:  models.ApprovalStatusDraft,
		Trigger:         template.Trigger.Clone(),
		Graph:           template.Graph.Clone(),
		OrgID:           org.OrgID,
		Owner:           org.ActorID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := i.persistence.Definitions().Save(ctx, def); err != nil {
		return nil, fmt.Errorf("failed to save installed workflow: %w", err)
	}

	i.publish(ctx, def, templateID)

	return def, nil
}

// ListTemplates returns the installable catalog.
func (i *Installer) ListTemplates(ctx context.Context) ([]*models.WorkflowTemplate, error) {
	return i.persistence.Templates().List(ctx)
}

func (i *Installer) publish(ctx context.Context, def *models.WorkflowDefinition, templateID string) {
	if i.publisher == nil {
		return
	}

	event := events.TemplateInstalled{
		BaseEvent:  events.NewBaseEvent(events.TemplateInstalledEvent, def.ID, def.OrgID),
		TemplateID: templateID,
	}

	if err := i.publisher.Publish(ctx, def.ID, event); err != nil {
		i.logger.ErrorContext(ctx, "Failed to publish template installed event",
			"workflow_id", def.ID, "template_id", templateID, "error", err)
	}
}

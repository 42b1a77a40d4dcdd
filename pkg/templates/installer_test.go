package templates

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apexcrm/flowkit/pkg/eventbus"
	"github.com/apexcrm/flowkit/pkg/events"
	"github.com/apexcrm/flowkit/pkg/models"
	"github.com/apexcrm/flowkit/pkg/persistence"
	"github.com/apexcrm/flowkit/pkg/persistence/file"
)

type capturePublisher struct {
	published []eventbus.Event
}

func (p *capturePublisher) Publish(_ context.Context, _ string, event eventbus.Event) error {
	p.published = append(p.published, event)
	return nil
}

func leadNurtureTemplate() *models.WorkflowTemplate {
	return &models.WorkflowTemplate{
		ID:          "tmpl-lead-nurture",
		Name:        "Lead nurture",
		Description: "Welcome email, wait a day, create a follow-up task",
		Category:    "sales",
		Trigger: &models.TriggerSpec{
			Kind:      models.TriggerKindEvent,
			EventType: "lead.created",
		},
		Graph: &models.Graph{
			Nodes: []*models.Node{
				{ID: "welcome", Type: models.NodeTypeAction, Config: map[string]any{
					models.ConfigKeyActionKind: "email.send",
					"to":                       "{{ lead.email }}",
					"subject":                  "Welcome",
				}},
				{ID: "wait", Type: models.NodeTypeDelay, Config: map[string]any{
					models.ConfigKeyDurationMs: int64(86400000),
				}},
				{ID: "task", Type: models.NodeTypeAction, Config: map[string]any{
					models.ConfigKeyActionKind: "task.create",
					"title":                    "Call the lead",
				}},
			},
			Edges: []*models.Edge{
				{From: "welcome", To: "wait"},
				{From: "wait", To: "task"},
			},
		},
		CreatedAt: time.Now().UTC(),
	}
}

func setupInstaller(t *testing.T) (*Installer, persistence.Persistence, *capturePublisher) {
	t.Helper()

	store := file.NewPersistence(t.TempDir())
	publisher := &capturePublisher{}
	installer := NewInstaller(store, publisher, slog.Default())

	require.NoError(t, store.Templates().Save(context.Background(), leadNurtureTemplate()))

	return installer, store, publisher
}

func TestInstaller_Install(t *testing.T) {
	t.Parallel()

	installer, store, publisher := setupInstaller(t)
	ctx := context.Background()
	org := models.OrgContext{OrgID: "org-9", ActorID: "user-3"}

	def, err := installer.Install(ctx, "tmpl-lead-nurture", org)
	require.NoError(t, err)

	assert.NotEmpty(t, def.ID)
	assert.NotEqual(t, "tmpl-lead-nurture", def.ID)
	assert.Equal(t, "Lead nurture", def.Name)
	assert.Equal(t, models.LifecycleStatusDraft, def.LifecycleStatus)
	assert.Equal(t, models.ApprovalStatusDraft, def.ApprovalStatus)
	assert.Equal(t, "org-9", def.OrgID)
	assert.Equal(t, "user-3", def.Owner)
	require.NotNil(t, def.Trigger)
	assert.Equal(t, "lead.created", def.Trigger.EventType)
	require.NotNil(t, def.Graph)
	assert.Equal(t, 3, def.Graph.NodeCount())

	stored, err := store.Definitions().GetByID(ctx, def.ID)
	require.NoError(t, err)
	assert.Equal(t, def.ID, stored.ID)

	require.Len(t, publisher.published, 1)
	assert.Equal(t, events.TemplateInstalledEvent, publisher.published[0].GetType())
}

func TestInstaller_InstalledCopyIsIsolated(t *testing.T) {
	t.Parallel()

	installer, store, _ := setupInstaller(t)
	ctx := context.Background()

	def, err := installer.Install(ctx, "tmpl-lead-nurture", models.OrgContext{OrgID: "org-9", ActorID: "user-3"})
	require.NoError(t, err)

	// Mutate the installed copy at every depth.
	def.Trigger.EventType = "deal.created"
	def.Graph.Nodes[0].Config["subject"] = "changed"
	def.Graph.Nodes = append(def.Graph.Nodes[:1], def.Graph.Nodes[2:]...)
	cond := "{{ lead.score }} > 50"
	def.Graph.Edges[0].Condition = &cond

	template, err := store.Templates().GetByID(ctx, "tmpl-lead-nurture")
	require.NoError(t, err)
	assert.Equal(t, "lead.created", template.Trigger.EventType)
	assert.Equal(t, 3, template.Graph.NodeCount())
	assert.Equal(t, "Welcome", template.Graph.Nodes[0].Config["subject"])
	assert.Nil(t, template.Graph.Edges[0].Condition)
}

func TestInstaller_TwoInstallsAreIndependent(t *testing.T) {
	t.Parallel()

	installer, _, _ := setupInstaller(t)
	ctx := context.Background()
	org := models.OrgContext{OrgID: "org-9", ActorID: "user-3"}

	first, err := installer.Install(ctx, "tmpl-lead-nurture", org)
	require.NoError(t, err)

	second, err := installer.Install(ctx, "tmpl-lead-nurture", org)
	require.NoError(t, err)

	require.NotEqual(t, first.ID, second.ID)

	first.Graph.Nodes[0].Config["subject"] = "changed"
	assert.Equal(t, "Welcome", second.Graph.Nodes[0].Config["subject"])
}

func TestInstaller_UnknownTemplate(t *testing.T) {
	t.Parallel()

	installer, _, _ := setupInstaller(t)

	_, err := installer.Install(context.Background(), "missing", models.OrgContext{OrgID: "org-9", ActorID: "user-3"})
	require.ErrorIs(t, err, persistence.ErrTemplateNotFound)
}

func TestInstaller_ListTemplates(t *testing.T) {
	t.Parallel()

	installer, store, _ := setupInstaller(t)
	ctx := context.Background()

	another := leadNurtureTemplate()
	another.ID = "tmpl-deal-won"
	another.Name = "Deal won celebration"
	require.NoError(t, store.Templates().Save(ctx, another))

	list, err := installer.ListTemplates(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Deal won celebration", list[0].Name)
	assert.Equal(t, "Lead nurture", list[1].Name)
}

package web_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/apexcrm/flowkit/pkg/models"
	"github.com/apexcrm/flowkit/pkg/web"
)

func TestTransformWorkflowSummary(t *testing.T) {
	t.Parallel()

	def := &models.WorkflowDefinition{
		ID:              "wf-1",
		Name:            "Lead follow-up",
		Description:     "Email new leads",
		LifecycleStatus: models.LifecycleStatusDraft,
		ApprovalStatus:  models.ApprovalStatusPending,
		Trigger: &models.TriggerSpec{
			Kind: models.TriggerKindSchedule,
			Cron: "0 9 * * 1",
		},
		Graph: &models.Graph{
			Nodes: []*models.Node{
				{ID: "a", Type: models.NodeTypeAction},
				{ID: "b", Type: models.NodeTypeDelay},
			},
			Edges: []*models.Edge{{From: "a", To: "b"}},
		},
	}

	summary := web.TransformWorkflowSummary(def)

	assert.Equal(t, "wf-1", summary.ID)
	assert.Equal(t, "Lead follow-up", summary.Name)
	assert.Equal(t, models.ApprovalStatusPending, summary.ApprovalStatus)
	assert.Equal(t, "Schedule: 0 9 * * 1", summary.TriggerSummary)
	assert.Equal(t, 2, summary.NodeCount)
	assert.Equal(t, 1, summary.EdgeCount)
}

func TestTransformWorkflowSummary_BareDefinition(t *testing.T) {
	t.Parallel()

	summary := web.TransformWorkflowSummary(&models.WorkflowDefinition{
		ID:              "wf-2",
		Name:            "Empty shell",
		LifecycleStatus: models.LifecycleStatusDraft,
		ApprovalStatus:  models.ApprovalStatusDraft,
	})

	assert.Empty(t, summary.TriggerSummary)
	assert.Zero(t, summary.NodeCount)
	assert.Zero(t, summary.EdgeCount)
}

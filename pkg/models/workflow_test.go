package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDefinition(approval ApprovalStatus) *WorkflowDefinition {
	now := time.Now().UTC()

	return &WorkflowDefinition{
		ID:              "wf-1",
		Name:            "Lead follow-up",
		LifecycleStatus: LifecycleStatusDraft,
		ApprovalStatus:  approval,
		Trigger:         &TriggerSpec{Kind: TriggerKindEvent, EventType: "lead.created"},
		Graph: &Graph{
			Nodes: []*Node{
				{ID: "a", Type: NodeTypeAction, Config: map[string]any{ConfigKeyActionKind: "email.send", "to": "x", "subject": "y"}},
			},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestWorkflowDefinition_ActivateRequiresApproval(t *testing.T) {
	t.Parallel()

	for _, status := range []ApprovalStatus{ApprovalStatusDraft, ApprovalStatusPending, ApprovalStatusRejected} {
		def := newTestDefinition(status)

		var governance *GovernanceError

		err := def.Activate()
		require.ErrorAs(t, err, &governance, "approval status %s must not activate", status)
		assert.Equal(t, LifecycleStatusDraft, def.LifecycleStatus)
	}

	def := newTestDefinition(ApprovalStatusApproved)
	require.NoError(t, def.Activate())
	assert.Equal(t, LifecycleStatusActive, def.LifecycleStatus)
}

func TestWorkflowDefinition_ActivateRejectsEmptyGraph(t *testing.T) {
	t.Parallel()

	def := newTestDefinition(ApprovalStatusApproved)
	def.Graph = &Graph{}

	var governance *GovernanceError

	err := def.Activate()
	assert.ErrorAs(t, err, &governance)
}

func TestWorkflowDefinition_ActivateRequiresTrigger(t *testing.T) {
	t.Parallel()

	def := newTestDefinition(ApprovalStatusApproved)
	def.Trigger = nil

	var governance *GovernanceError

	err := def.Activate()
	assert.ErrorAs(t, err, &governance)
}

func TestWorkflowDefinition_Pause(t *testing.T) {
	t.Parallel()

	def := newTestDefinition(ApprovalStatusApproved)
	require.NoError(t, def.Activate())
	require.NoError(t, def.Pause())
	assert.Equal(t, LifecycleStatusPaused, def.LifecycleStatus)
	// Approval is retained across pause.
	assert.Equal(t, ApprovalStatusApproved, def.ApprovalStatus)

	var invalid *InvalidTransitionError

	err := def.Pause()
	assert.ErrorAs(t, err, &invalid)
}

func TestWorkflowDefinition_TouchBumpsUpdatedAt(t *testing.T) {
	t.Parallel()

	def := newTestDefinition(ApprovalStatusDraft)
	before := def.UpdatedAt

	time.Sleep(time.Millisecond)
	def.Touch()

	assert.True(t, def.UpdatedAt.After(before))
}

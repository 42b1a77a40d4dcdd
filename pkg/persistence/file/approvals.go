package file

import (
	"context"
	"os"

	"github.com/apexcrm/flowkit/pkg/models"
)

const approvalsCollection = "approvals"

// ApprovalRepository stores one JSON document per workflow holding its
// append-only approval trail.
type ApprovalRepository struct {
	store *Persistence
}

// Append adds an event to the workflow's trail. Existing events are never
// rewritten, only extended.
func (r *ApprovalRepository) Append(ctx context.Context, event *models.ApprovalEvent) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	events, err := r.listLocked(event.WorkflowID)
	if err != nil {
		return err
	}

	events = append(events, event)

	return r.store.writeEntity(approvalsCollection, event.WorkflowID, events)
}

// ListByWorkflow returns the workflow's trail in append order.
func (r *ApprovalRepository) ListByWorkflow(ctx context.Context, workflowID string) ([]*models.ApprovalEvent, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return r.listLocked(workflowID)
}

func (r *ApprovalRepository) listLocked(workflowID string) ([]*models.ApprovalEvent, error) {
	var events []*models.ApprovalEvent

	err := r.store.readEntity(approvalsCollection, workflowID, &events)
	if os.IsNotExist(err) {
		return []*models.ApprovalEvent{}, nil
	}

	if err != nil {
		return nil, err
	}

	return events, nil
}

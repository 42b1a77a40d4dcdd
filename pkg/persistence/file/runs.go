package file

import (
	"context"
	"os"
	"sort"

	"github.com/apexcrm/flowkit/pkg/models"
	"github.com/apexcrm/flowkit/pkg/persistence"
)

const runsCollection = "runs"

// RunRepository stores run records as JSON documents.
type RunRepository struct {
	store *Persistence
}

// Append creates a new run record.
func (r *RunRepository) Append(ctx context.Context, record *models.RunRecord) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	return r.store.writeEntity(runsCollection, record.ID, record)
}

// GetByID returns the record or persistence.ErrRunNotFound.
func (r *RunRepository) GetByID(ctx context.Context, id string) (*models.RunRecord, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return r.getLocked(id)
}

func (r *RunRepository) getLocked(id string) (*models.RunRecord, error) {
	var record models.RunRecord

	err := r.store.readEntity(runsCollection, id, &record)
	if os.IsNotExist(err) {
		return nil, persistence.ErrRunNotFound
	}

	if err != nil {
		return nil, err
	}

	return &record, nil
}

// Update writes a record's terminal transition.
func (r *RunRepository) Update(ctx context.Context, record *models.RunRecord) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, err := r.getLocked(record.ID); err != nil {
		return err
	}

	return r.store.writeEntity(runsCollection, record.ID, record)
}

// ListByWorkflow returns the workflow's runs ordered by StartedAt descending.
func (r *RunRepository) ListByWorkflow(ctx context.Context, workflowID string, limit int) ([]*models.RunRecord, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	ids, err := r.store.listIDs(runsCollection)
	if err != nil {
		return nil, err
	}

	records := make([]*models.RunRecord, 0, len(ids))

	for _, id := range ids {
		record, err := r.getLocked(id)
		if err != nil {
			return nil, err
		}

		if record.WorkflowID == workflowID {
			records = append(records, record)
		}
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].StartedAt.After(records[j].StartedAt)
	})

	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}

	return records, nil
}

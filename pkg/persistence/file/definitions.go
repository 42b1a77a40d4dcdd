package file

import (
	"context"
	"errors"
	"os"
	"sort"
	"time"

	"github.com/apexcrm/flowkit/pkg/models"
	"github.com/apexcrm/flowkit/pkg/persistence"
)

const workflowsCollection = "workflows"

// DefinitionRepository stores workflow definitions as JSON documents.
type DefinitionRepository struct {
	store *Persistence
}

// List returns definitions filtered and paged per opts, newest first.
func (r *DefinitionRepository) List(ctx context.Context, opts persistence.ListDefinitionsOptions) ([]*models.WorkflowDefinition, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	ids, err := r.store.listIDs(workflowsCollection)
	if err != nil {
		return nil, err
	}

	all := make([]*models.WorkflowDefinition, 0, len(ids))

	for _, id := range ids {
		def, err := r.getLocked(id)
		if err != nil {
			return nil, err
		}

		if opts.OrgID != "" && def.OrgID != opts.OrgID {
			continue
		}

		if opts.LifecycleStatus != nil && def.LifecycleStatus != *opts.LifecycleStatus {
			continue
		}

		if opts.ApprovalStatus != nil && def.ApprovalStatus != *opts.ApprovalStatus {
			continue
		}

		all = append(all, def)
	}

	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	if opts.Offset > 0 {
		if opts.Offset >= len(all) {
			return []*models.WorkflowDefinition{}, nil
		}

		all = all[opts.Offset:]
	}

	if opts.Limit > 0 && len(all) > opts.Limit {
		all = all[:opts.Limit]
	}

	return all, nil
}

// GetByID returns the definition or persistence.ErrDefinitionNotFound.
func (r *DefinitionRepository) GetByID(ctx context.Context, id string) (*models.WorkflowDefinition, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return r.getLocked(id)
}

func (r *DefinitionRepository) getLocked(id string) (*models.WorkflowDefinition, error) {
	var def models.WorkflowDefinition

	err := r.store.readEntity(workflowsCollection, id, &def)
	if os.IsNotExist(err) {
		return nil, persistence.ErrDefinitionNotFound
	}

	if err != nil {
		return nil, err
	}

	return &def, nil
}

// Save writes the definition, enforcing the UpdatedAt optimistic-concurrency
// token: if the stored copy is newer than the caller's snapshot the save
// fails with ErrStaleDefinition. On success UpdatedAt is refreshed.
func (r *DefinitionRepository) Save(ctx context.Context, def *models.WorkflowDefinition) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	stored, err := r.getLocked(def.ID)
	if err != nil && !errors.Is(err, persistence.ErrDefinitionNotFound) {
		return err
	}

	if stored != nil && stored.UpdatedAt.After(def.UpdatedAt) {
		return persistence.ErrStaleDefinition
	}

	def.UpdatedAt = time.Now().UTC()

	return r.store.writeEntity(workflowsCollection, def.ID, def)
}

// Delete removes the definition document.
func (r *DefinitionRepository) Delete(ctx context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	path, err := r.store.entityPath(workflowsCollection, id)
	if err != nil {
		return err
	}

	err = os.Remove(path)
	if os.IsNotExist(err) {
		return persistence.ErrDefinitionNotFound
	}

	return err
}

package file

import (
	"context"
	"os"
	"sort"

	"github.com/apexcrm/flowkit/pkg/models"
	"github.com/apexcrm/flowkit/pkg/persistence"
)

const templatesCollection = "templates"

// TemplateRepository stores the installable template catalog.
type TemplateRepository struct {
	store *Persistence
}

// List returns all templates sorted by name.
func (r *TemplateRepository) List(ctx context.Context) ([]*models.WorkflowTemplate, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	ids, err := r.store.listIDs(templatesCollection)
	if err != nil {
		return nil, err
	}

	templates := make([]*models.WorkflowTemplate, 0, len(ids))

	for _, id := range ids {
		template, err := r.getLocked(id)
		if err != nil {
			return nil, err
		}

		templates = append(templates, template)
	}

	sort.Slice(templates, func(i, j int) bool {
		return templates[i].Name < templates[j].Name
	})

	return templates, nil
}

// GetByID returns the template or persistence.ErrTemplateNotFound.
func (r *TemplateRepository) GetByID(ctx context.Context, id string) (*models.WorkflowTemplate, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return r.getLocked(id)
}

func (r *TemplateRepository) getLocked(id string) (*models.WorkflowTemplate, error) {
	var template models.WorkflowTemplate

	err := r.store.readEntity(templatesCollection, id, &template)
	if os.IsNotExist(err) {
		return nil, persistence.ErrTemplateNotFound
	}

	if err != nil {
		return nil, err
	}

	return &template, nil
}

// Save writes a template into the catalog.
func (r *TemplateRepository) Save(ctx context.Context, template *models.WorkflowTemplate) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	return r.store.writeEntity(templatesCollection, template.ID, template)
}

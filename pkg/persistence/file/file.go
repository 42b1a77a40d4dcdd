// Package file provides a file-based persistence implementation storing each
// entity as a JSON document on disk.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/apexcrm/flowkit/pkg/persistence"
)

const storeDirPerm = 0o755

// Persistence implements persistence.Persistence on the local file system.
// A store-level mutex serializes writes, which is also the serialization
// point for concurrent approval-status updates.
type Persistence struct {
	root string
	mu   sync.RWMutex

	definitionRepo *DefinitionRepository
	approvalRepo   *ApprovalRepository
	runRepo        *RunRepository
	templateRepo   *TemplateRepository
}

// NewPersistence creates a file store rooted at the given directory.
func NewPersistence(root string) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	p := &Persistence{root: cleanRoot}
	p.definitionRepo = &DefinitionRepository{store: p}
	p.approvalRepo = &ApprovalRepository{store: p}
	p.runRepo = &RunRepository{store: p}
	p.templateRepo = &TemplateRepository{store: p}

	return p
}

func (p *Persistence) Definitions() persistence.DefinitionRepository {
	return p.definitionRepo
}

func (p *Persistence) Approvals() persistence.ApprovalRepository {
	return p.approvalRepo
}

func (p *Persistence) Runs() persistence.RunRepository {
	return p.runRepo
}

func (p *Persistence) Templates() persistence.TemplateRepository {
	return p.templateRepo
}

// HealthCheck verifies the root directory exists.
func (p *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(p.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

// Close is a no-op for the file store.
func (p *Persistence) Close(_ context.Context) error {
	return nil
}

// entityPath returns root/<collection>/<id>.json, creating the collection
// directory on demand.
func (p *Persistence) entityPath(collection, id string) (string, error) {
	dir := filepath.Join(p.root, collection)
	if err := os.MkdirAll(dir, storeDirPerm); err != nil {
		return "", fmt.Errorf("failed to create %s directory: %w", collection, err)
	}

	return filepath.Join(dir, id+".json"), nil
}

// listIDs returns the entity ids present in a collection directory.
func (p *Persistence) listIDs(collection string) ([]string, error) {
	dir := filepath.Join(p.root, collection)

	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", collection, err)
	}

	ids := make([]string, 0, len(entries))

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}

		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}

	return ids, nil
}

// readEntity decodes one JSON document into out. Returns os.ErrNotExist when
// the document is absent.
func (p *Persistence) readEntity(collection, id string, out any) error {
	path, err := p.entityPath(collection, id)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s/%s: %w", collection, id, err)
	}

	return nil
}

// writeEntity encodes in as one JSON document.
func (p *Persistence) writeEntity(collection, id string, in any) error {
	path, err := p.entityPath(collection, id)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(in, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s/%s: %w", collection, id, err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s/%s: %w", collection, id, err)
	}

	return nil
}

// Package registry catalogs the action kinds and domain event types the
// core understands. Action kinds carry a JSON schema used to validate node
// config; event types form the taxonomy trigger validation checks against.
package registry

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ActionKind describes one registered action kind and the schema its node
// config parameters must satisfy.
type ActionKind struct {
	Kind        string
	Description string
	Schema      map[string]any
}

type Registry struct {
	logger      *slog.Logger
	actionKinds map[string]*ActionKind
	eventTypes  map[string]string // event type -> description
}

func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		logger:      logger,
		actionKinds: make(map[string]*ActionKind),
		eventTypes:  make(map[string]string),
	}
}

// RegisterActionKind adds an action kind to the catalog, replacing any
// previous registration for the same kind.
func (r *Registry) RegisterActionKind(kind *ActionKind) {
	r.actionKinds[kind.Kind] = kind
}

// RegisterEventType adds a domain event type to the taxonomy.
func (r *Registry) RegisterEventType(eventType, description string) {
	r.eventTypes[eventType] = description
}

// KnownActionKind reports whether the kind is in the catalog.
func (r *Registry) KnownActionKind(kind string) bool {
	_, exists := r.actionKinds[kind]

	return exists
}

// KnownEventType reports whether the event type is in the taxonomy.
func (r *Registry) KnownEventType(eventType string) bool {
	_, exists := r.eventTypes[eventType]

	return exists
}

// ActionKinds returns the catalog sorted by kind, for display.
func (r *Registry) ActionKinds() []*ActionKind {
	kinds := make([]*ActionKind, 0, len(r.actionKinds))
	for _, kind := range r.actionKinds {
		kinds = append(kinds, kind)
	}

	sort.Slice(kinds, func(i, j int) bool {
		return kinds[i].Kind < kinds[j].Kind
	})

	return kinds
}

// EventTypes returns the taxonomy sorted by event type, for display.
func (r *Registry) EventTypes() []string {
	types := make([]string, 0, len(r.eventTypes))
	for eventType := range r.eventTypes {
		types = append(types, eventType)
	}

	sort.Strings(types)

	return types
}

// ValidateActionConfig checks an action node's config against the registered
// schema for its kind. Unknown kinds pass: the catalog is open-ended and the
// runtime owns the final word on executability.
func (r *Registry) ValidateActionConfig(kind string, config map[string]any) error {
	registered, exists := r.actionKinds[kind]
	if !exists {
		return nil
	}

	schemaLoader := gojsonschema.NewGoLoader(registered.Schema)
	dataLoader := gojsonschema.NewGoLoader(config)

	result, err := gojsonschema.Validate(schemaLoader, dataLoader)
	if err != nil {
		return fmt.Errorf("failed to validate %s config: %w", kind, err)
	}

	if !result.Valid() {
		messages := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			messages = append(messages, desc.String())
		}

		return fmt.Errorf("%s config invalid: %s", kind, strings.Join(messages, "; "))
	}

	return nil
}

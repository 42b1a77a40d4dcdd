// Package persistence provides standardized error types for persistence operations.
package persistence

import "errors"

// Standard persistence error types that all implementations should use.
var (
	// ErrDefinitionNotFound indicates a workflow definition was not found.
	ErrDefinitionNotFound = errors.New("workflow definition not found")

	// ErrRunNotFound indicates a run record was not found.
	ErrRunNotFound = errors.New("run record not found")

	// ErrTemplateNotFound indicates a template was not found in the catalog.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrStaleDefinition indicates a save carried an UpdatedAt token older
	// than the stored copy; the caller's edits would silently discard a
	// concurrent write.
	ErrStaleDefinition = errors.New("workflow definition was modified concurrently")
)

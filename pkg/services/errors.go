// Package services provides standardized error types for service layer operations.
package services

import (
	"errors"
	"fmt"

	"github.com/apexcrm/flowkit/pkg/models"
	"github.com/apexcrm/flowkit/pkg/persistence"
)

// Business logic errors. These indicate client errors (4xx responses).
var (
	// Validation errors (400 Bad Request).
	ErrInvalidRequest = errors.New("invalid request")
	ErrWorkflowNil    = errors.New("workflow cannot be nil")
	ErrEmptyOrgID     = errors.New("org ID cannot be empty")

	// Not found (404).
	ErrWorkflowNotFound = persistence.ErrDefinitionNotFound
	ErrRunNotFound      = persistence.ErrRunNotFound
	ErrTemplateNotFound = persistence.ErrTemplateNotFound

	// Conflicts (409).
	ErrStaleDefinition = persistence.ErrStaleDefinition
)

// ServiceError wraps service-level errors with additional context.
type ServiceError struct {
	Op      string // Operation name
	Code    string // Error code for API responses
	Message string // Human-readable message
	Err     error  // Underlying error
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsValidationError checks if an error should surface as HTTP 400.
func IsValidationError(err error) bool {
	var validation *models.ValidationError
	if errors.As(err, &validation) {
		return true
	}

	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrWorkflowNil) ||
		errors.Is(err, ErrEmptyOrgID)
}

// IsNotFoundError checks if an error should surface as HTTP 404.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrWorkflowNotFound) ||
		errors.Is(err, ErrRunNotFound) ||
		errors.Is(err, ErrTemplateNotFound)
}

// IsConflictError checks if an error should surface as HTTP 409. Governance
// gates and illegal state transitions are conflicts with the current state
// of the resource, not malformed requests.
func IsConflictError(err error) bool {
	var governance *models.GovernanceError
	if errors.As(err, &governance) {
		return true
	}

	var invalid *models.InvalidTransitionError
	if errors.As(err, &invalid) {
		return true
	}

	return errors.Is(err, ErrStaleDefinition)
}

// NewValidationError creates a new validation error with context.
func NewValidationError(op, code, message string, err error) *ServiceError {
	return &ServiceError{
		Op:      op,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

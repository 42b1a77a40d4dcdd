package models

import (
	"fmt"
	"strings"
)

// Violation describes one structural problem found during validation.
// Subject names the offending element (a node id, an edge, a trigger field).
type Violation struct {
	Code    string `json:"code"`
	Subject string `json:"subject,omitempty"`
	Message string `json:"message"`
}

func (v Violation) String() string {
	if v.Subject != "" {
		return fmt.Sprintf("%s (%s): %s", v.Code, v.Subject, v.Message)
	}

	return fmt.Sprintf("%s: %s", v.Code, v.Message)
}

// ValidationResult collects violations from a validation pass. An empty
// result means the input is valid.
type ValidationResult struct {
	Violations []Violation `json:"violations"`
}

// Valid reports whether the validation pass found no violations. The value
// receiver keeps it callable on results returned straight from Validate.
func (r ValidationResult) Valid() bool {
	return len(r.Violations) == 0
}

// Add appends a violation to the result.
func (r *ValidationResult) Add(code, subject, message string) {
	r.Violations = append(r.Violations, Violation{Code: code, Subject: subject, Message: message})
}

// Merge appends all violations from another result.
func (r *ValidationResult) Merge(other ValidationResult) {
	r.Violations = append(r.Violations, other.Violations...)
}

// AsError returns a *ValidationError if the result has violations, nil otherwise.
func (r ValidationResult) AsError() error {
	if r.Valid() {
		return nil
	}

	return &ValidationError{Violations: r.Violations}
}

// ValidationError carries the full violation list of a failed validation.
// It is always recoverable: the caller surfaces the list and retries.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, v.String())
	}

	return "validation failed: " + strings.Join(msgs, "; ")
}

// GovernanceError is returned when activation is attempted without the
// required approval status.
type GovernanceError struct {
	WorkflowID     string
	ApprovalStatus ApprovalStatus
	Message        string
}

func (e *GovernanceError) Error() string {
	return fmt.Sprintf("governance: workflow %s (approval status %q): %s", e.WorkflowID, e.ApprovalStatus, e.Message)
}

// InvalidTransitionError is returned when a state transition is attempted
// from a state that does not permit it. The caller's state is left unchanged.
type InvalidTransitionError struct {
	Entity string // "run", "approval" or "workflow"
	ID     string
	From   string
	Action string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition: cannot %s %s %s from state %q", e.Action, e.Entity, e.ID, e.From)
}

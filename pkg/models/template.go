package models

import "time"

// WorkflowTemplate is a catalog definition intended to be cloned into new,
// independently owned workflow definitions. Templates are read-only from the
// installer's point of view.
type WorkflowTemplate struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"        validate:"required,min=3"`
	Description string       `json:"description"`
	Category    string       `json:"category,omitempty"`
	Trigger     *TriggerSpec `json:"trigger"`
	Graph       *Graph       `json:"graph"`
	CreatedAt   time.Time    `json:"created_at"`
}

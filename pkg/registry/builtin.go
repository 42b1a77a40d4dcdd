package registry

// RegisterBuiltins loads the stock CRM catalog: the action kinds shipped with
// the product and the domain events the platform emits.
func RegisterBuiltins(r *Registry) {
	registerActionKinds(r)
	registerEventTypes(r)
}

func registerActionKinds(r *Registry) {
	r.RegisterActionKind(&ActionKind{
		Kind:        "email.send",
		Description: "Send an email through the configured provider",
		Schema: map[string]any{
			"type":     "object",
			"required": []any{"action_kind", "to", "subject"},
			"properties": map[string]any{
				"action_kind": map[string]any{"type": "string"},
				"to":          map[string]any{"type": "string", "minLength": 1},
				"subject":     map[string]any{"type": "string", "minLength": 1},
				"body":        map[string]any{"type": "string"},
			},
		},
	})

	r.RegisterActionKind(&ActionKind{
		Kind:        "task.create",
		Description: "Create a follow-up task for a user or team",
		Schema: map[string]any{
			"type":     "object",
			"required": []any{"action_kind", "title"},
			"properties": map[string]any{
				"action_kind": map[string]any{"type": "string"},
				"title":       map[string]any{"type": "string", "minLength": 1},
				"assignee":    map[string]any{"type": "string"},
				"due_in_days": map[string]any{"type": "integer", "minimum": 0},
			},
		},
	})

	r.RegisterActionKind(&ActionKind{
		Kind:        "http.webhook",
		Description: "POST the execution payload to an external URL",
		Schema: map[string]any{
			"type":     "object",
			"required": []any{"action_kind", "url"},
			"properties": map[string]any{
				"action_kind": map[string]any{"type": "string"},
				"url":         map[string]any{"type": "string", "format": "uri"},
				"headers":     map[string]any{"type": "object"},
			},
		},
	})

	r.RegisterActionKind(&ActionKind{
		Kind:        "record.update",
		Description: "Update fields on the record that fired the trigger",
		Schema: map[string]any{
			"type":     "object",
			"required": []any{"action_kind", "fields"},
			"properties": map[string]any{
				"action_kind": map[string]any{"type": "string"},
				"fields":      map[string]any{"type": "object", "minProperties": 1},
			},
		},
	})

	r.RegisterActionKind(&ActionKind{
		Kind:        "note.create",
		Description: "Attach a note to the triggering record",
		Schema: map[string]any{
			"type":     "object",
			"required": []any{"action_kind", "content"},
			"properties": map[string]any{
				"action_kind": map[string]any{"type": "string"},
				"content":     map[string]any{"type": "string", "minLength": 1},
			},
		},
	})
}

func registerEventTypes(r *Registry) {
	taxonomy := map[string]string{
		"lead.created":       "A new lead was captured",
		"lead.updated":       "Lead fields changed",
		"lead.converted":     "A lead was converted to a deal",
		"contact.created":    "A new contact was added",
		"deal.created":       "A new deal entered the pipeline",
		"deal.stage_changed": "A deal moved between pipeline stages",
		"deal.won":           "A deal was marked won",
		"deal.lost":          "A deal was marked lost",
		"task.completed":     "A task was checked off",
		"invoice.paid":       "An invoice payment was received",
		"invoice.overdue":    "An invoice passed its due date",
	}

	for eventType, description := range taxonomy {
		r.RegisterEventType(eventType, description)
	}
}

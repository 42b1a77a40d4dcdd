package models

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/robfig/cron/v3"
)

// TriggerKind discriminates the two trigger variants.
type TriggerKind string

const (
	TriggerKindEvent    TriggerKind = "event"    // Fires on a CRM domain event
	TriggerKindSchedule TriggerKind = "schedule" // Fires on a cron schedule
)

// TriggerSpec is a tagged union: exactly one variant's fields are populated,
// selected by Kind. The non-selected fields are absent on the wire.
type TriggerSpec struct {
	Kind      TriggerKind `json:"kind"                 validate:"required,oneof=event schedule"`
	EventType string      `json:"event_type,omitempty"`
	Cron      string      `json:"cron,omitempty"`
}

// eventTypePattern matches domain event names such as "deal.stage_changed".
var eventTypePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*\.[a-z][a-z0-9_]*$`)

const (
	cronFieldsStandard    = 5
	cronFieldsWithSeconds = 6
)

// Validate checks the trigger's structural invariants: exactly one variant
// populated, event types shaped like "<entity>.<verb>", cron expressions with
// five or six parseable fields. Deeper cron semantics are not checked here.
func (t *TriggerSpec) Validate() ValidationResult {
	var result ValidationResult

	switch t.Kind {
	case TriggerKindEvent:
		if t.Cron != "" {
			result.Add("TRIGGER_MIXED_VARIANTS", "cron", "event trigger must not carry a cron expression")
		}

		if t.EventType == "" {
			result.Add("TRIGGER_EVENT_TYPE_REQUIRED", "event_type", "event trigger requires a non-empty event type")

			break
		}

		if !eventTypePattern.MatchString(t.EventType) {
			result.Add("TRIGGER_EVENT_TYPE_MALFORMED", "event_type",
				fmt.Sprintf("event type %q must look like \"<entity>.<verb>\"", t.EventType))
		}
	case TriggerKindSchedule:
		if t.EventType != "" {
			result.Add("TRIGGER_MIXED_VARIANTS", "event_type", "schedule trigger must not carry an event type")
		}

		if t.Cron == "" {
			result.Add("TRIGGER_CRON_REQUIRED", "cron", "schedule trigger requires a cron expression")

			break
		}

		if err := validateCronExpression(t.Cron); err != nil {
			result.Add("TRIGGER_CRON_MALFORMED", "cron", err.Error())
		}
	default:
		result.Add("TRIGGER_KIND_UNKNOWN", "kind", fmt.Sprintf("unknown trigger kind %q", t.Kind))
	}

	return result
}

// validateCronExpression accepts 5-field (minute-resolution) and 6-field
// (second-resolution) cron expressions.
func validateCronExpression(expr string) error {
	fields := strings.Fields(expr)

	var parser cron.Parser

	switch len(fields) {
	case cronFieldsStandard:
		parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	case cronFieldsWithSeconds:
		parser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	default:
		return fmt.Errorf("cron expression %q must have 5 or 6 fields, got %d", expr, len(fields))
	}

	_, err := parser.Parse(expr)

	return err
}

// Describe returns a human-readable summary of the trigger, for display only.
func (t *TriggerSpec) Describe() string {
	switch t.Kind {
	case TriggerKindEvent:
		return "Event: " + t.EventType
	case TriggerKindSchedule:
		return "Schedule: " + t.Cron
	default:
		return "Unknown trigger"
	}
}

// Clone returns an independent copy of the trigger.
func (t *TriggerSpec) Clone() *TriggerSpec {
	if t == nil {
		return nil
	}

	clone := *t

	return &clone
}

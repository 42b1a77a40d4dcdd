// Package runs implements the append-only run ledger: one record per
// execution attempt, independent of later edits to the definition.
package runs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/apexcrm/flowkit/pkg/events"
	"github.com/apexcrm/flowkit/pkg/eventbus"
	"github.com/apexcrm/flowkit/pkg/models"
	"github.com/apexcrm/flowkit/pkg/persistence"
)

const defaultListLimit = 50

// Ledger records execution attempts. The external dispatcher calls StartRun
// when it determines a trigger has fired; the core does not evaluate cron
// expressions or listen for domain events itself. Concurrent firings create
// independent records; the ledger does not deduplicate or serialize them.
type Ledger struct {
	persistence persistence.Persistence
	publisher   eventbus.EventPublisher
	logger      *slog.Logger
}

func NewLedger(p persistence.Persistence, publisher eventbus.EventPublisher, logger *slog.Logger) *Ledger {
	return &Ledger{
		persistence: p,
		publisher:   publisher,
		logger:      logger,
	}
}

// StartRun creates a record in the running state for the given workflow.
func (l *Ledger) StartRun(ctx context.Context, workflowID string) (*models.RunRecord, error) {
	def, err := l.persistence.Definitions().GetByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	record := &models.RunRecord{
		ID:         uuid.New().String(),
		WorkflowID: def.ID,
		OrgID:      def.OrgID,
		Status:     models.RunStatusRunning,
		StartedAt:  time.Now().UTC(),
	}

	if err := l.persistence.Runs().Append(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to append run record: %w", err)
	}

	l.publish(ctx, record, events.RunStartedEvent)

	return record, nil
}

// CompleteRun transitions a run to success or failed. Completing an already
// terminal run fails with InvalidTransitionError and leaves the record
// untouched.
func (l *Ledger) CompleteRun(ctx context.Context, runID string, outcome models.RunStatus, lastError string) (*models.RunRecord, error) {
	record, err := l.persistence.Runs().GetByID(ctx, runID)
	if err != nil {
		return nil, err
	}

	if err := record.Complete(outcome, lastError); err != nil {
		return nil, err
	}

	if err := l.persistence.Runs().Update(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to update run record: %w", err)
	}

	l.publish(ctx, record, events.RunCompletedEvent)

	return record, nil
}

// CancelRun transitions a running run to cancelled, with the same terminal
// guard as CompleteRun.
func (l *Ledger) CancelRun(ctx context.Context, runID string) (*models.RunRecord, error) {
	record, err := l.persistence.Runs().GetByID(ctx, runID)
	if err != nil {
		return nil, err
	}

	if err := record.Cancel(); err != nil {
		return nil, err
	}

	if err := l.persistence.Runs().Update(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to update run record: %w", err)
	}

	l.publish(ctx, record, events.RunCancelledEvent)

	return record, nil
}

// ListRuns returns the workflow's runs, newest first. A non-positive limit
// falls back to the default page size.
func (l *Ledger) ListRuns(ctx context.Context, workflowID string, limit int) ([]*models.RunRecord, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	return l.persistence.Runs().ListByWorkflow(ctx, workflowID, limit)
}

func (l *Ledger) publish(ctx context.Context, record *models.RunRecord, eventType events.EventType) {
	if l.publisher == nil {
		return
	}

	event := events.RunTransition{
		BaseEvent: events.NewBaseEvent(eventType, record.WorkflowID, record.OrgID),
		RunID:     record.ID,
		Status:    record.Status,
		Error:     record.LastError,
	}

	if err := l.publisher.Publish(ctx, record.WorkflowID, event); err != nil {
		l.logger.ErrorContext(ctx, "Failed to publish run event",
			"workflow_id", record.WorkflowID, "run_id", record.ID, "error", err)
	}
}

package audit

import (
	"context"
	"log/slog"
)

// Worker drains completed records from a channel and hands them to a
// publisher. It keeps fan-out off the request path without wiring queue
// implementations into the core.
type Worker struct {
	publisher Publisher
	inbox     <-chan Record
	logger    *slog.Logger
}

func NewWorker(publisher Publisher, inbox <-chan Record, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{publisher: publisher, inbox: inbox, logger: logger}
}

// Run consumes until the context is cancelled. Publish failures are
// logged and skipped; fan-out is best-effort by contract.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case record := <-w.inbox:
			if err := w.publisher.Publish(ctx, record); err != nil {
				w.logger.WarnContext(ctx, "audit record publish failed",
					"record_id", record.ID,
					"auditable_type", record.AuditableType,
					"error", err,
				)
			}
		}
	}
}

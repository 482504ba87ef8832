package worker

import (
	"context"
	"log/slog"

	audit "neuroease/pkg/platform/audit"
)

// Worker drains an event channel into a store. A failed append is logged
// and skipped; audit failures never block screening.
type Worker struct {
	store  audit.Store
	inbox  <-chan audit.Event
	logger *slog.Logger
}

func NewWorker(store audit.Store, inbox <-chan audit.Event, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{store: store, inbox: inbox, logger: logger}
}

// Run processes events until inbox is closed. Events still buffered when
// the channel closes are persisted before Run returns.
func (w *Worker) Run(ctx context.Context) {
	for event := range w.inbox {
		if err := w.store.Append(ctx, event); err != nil {
			w.logger.ErrorContext(ctx, "failed to persist audit event",
				"action", event.Action,
				"error", err,
			)
		}
	}
}

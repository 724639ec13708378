package audit

import (
	"context"
	"log/slog"
)

// Worker consumes audit events from a channel and persists them. It keeps
// background processing testable without wiring queue implementations.
type Worker struct {
	store  Store
	inbox  <-chan Event
	logger *slog.Logger
}

func NewWorker(store Store, inbox <-chan Event, logger *slog.Logger) *Worker {
	return &Worker{store: store, inbox: inbox, logger: logger}
}

// Run drains the inbox until the context is cancelled. Store failures are
// logged, not fatal: audit persistence must never take the service down.
func (w *Worker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			// Drain what is already queued before exiting.
			for {
				select {
				case event := <-w.inbox:
					w.append(context.Background(), event)
				default:
					return
				}
			}
		case event := <-w.inbox:
			w.append(ctx, event)
		}
	}
}

func (w *Worker) append(ctx context.Context, event Event) {
	if err := w.store.Append(ctx, event); err != nil && w.logger != nil {
		w.logger.ErrorContext(ctx, "failed to append audit event",
			"action", event.Action,
			"error", err,
		)
	}
}

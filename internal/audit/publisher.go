package audit

import (
	"context"
	"log/slog"

	"clubdesk/pkg/requestcontext"
)

// Publisher hands events to the background worker. Emit never blocks the
// request path: if the inbox is full the event is dropped with a warning,
// the structured log line from the service remains the source of truth.
type Publisher struct {
	inbox  chan<- Event
	logger *slog.Logger
}

func NewPublisher(inbox chan<- Event, logger *slog.Logger) *Publisher {
	return &Publisher{inbox: inbox, logger: logger}
}

func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	select {
	case p.inbox <- event:
	default:
		if p.logger != nil {
			p.logger.WarnContext(ctx, "audit inbox full, dropping event",
				"action", event.Action,
			)
		}
	}
	return nil
}

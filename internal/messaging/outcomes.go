package messaging

import (
	"context"
	"log/slog"

	"github.com/hookrelay-systems/hookrelay/internal/forwarder"
)

// OutcomePublisher publishes forwarding outcomes to NATS. It satisfies the
// forwarder's out-of-band channel: publish failures are logged and never
// propagate back into the forwarding path.
type OutcomePublisher struct {
	client *Client
}

// NewOutcomePublisher creates a publisher on an existing NATS client.
func NewOutcomePublisher(client *Client) *OutcomePublisher {
	return &OutcomePublisher{client: client}
}

// PublishOutcome publishes one forwarding outcome to the completed or failed
// subject.
func (p *OutcomePublisher) PublishOutcome(ctx context.Context, outcome *forwarder.Outcome) {
	subject := SubjectForwardCompleted
	if !outcome.Success {
		subject = SubjectForwardFailed
	}

	if err := p.client.PublishJSON(ctx, subject, outcome); err != nil {
		slog.Warn("failed to publish forwarding outcome",
			slog.String("subject", subject),
			slog.String("event_id", outcome.EventID),
			slog.String("error", err.Error()),
		)
	}
}

package events

import (
	"context"
	"time"

	"loan-origination-be/internal/pkg/logger"
	pkgEvents "loan-origination-be/pkg/events"
	pktNats "loan-origination-be/pkg/nats"
)

// Publisher abstracts event publishing for the conversation orchestrator.
// Publishing is best-effort: implementations must never fail a turn.
type Publisher interface {
	PublishLoanDecision(ctx context.Context, sessionID, outcome, reason string, approvedAmount float64)
	PublishDocumentIssued(ctx context.Context, sessionID, filename, referenceNo string)
	PublishSessionEnded(ctx context.Context, sessionID, stage string)
}

// NatsPublisher implements Publisher using NATS.
type NatsPublisher struct {
	publisher *pktNats.Publisher
	logger    logger.ILogger
}

// NewNatsPublisher creates a new NATS-based event publisher. publisher may
// be nil when NATS is unavailable; events are then dropped.
func NewNatsPublisher(publisher *pktNats.Publisher, log logger.ILogger) *NatsPublisher {
	return &NatsPublisher{publisher: publisher, logger: log}
}

// PublishLoanDecision emits LOAN_DECISION after an underwriting verdict is
// committed to the session.
func (p *NatsPublisher) PublishLoanDecision(ctx context.Context, sessionID, outcome, reason string, approvedAmount float64) {
	p.publish(ctx, pkgEvents.BaseEvent{
		Type: pkgEvents.TypeLoanDecision,
		Data: map[string]interface{}{
			"session_id":      sessionID,
			"outcome":         outcome,
			"reason":          reason,
			"approved_amount": approvedAmount,
		},
		OccurredAt: time.Now(),
	})
}

// PublishDocumentIssued emits DOCUMENT_ISSUED once a sanction letter exists.
func (p *NatsPublisher) PublishDocumentIssued(ctx context.Context, sessionID, filename, referenceNo string) {
	p.publish(ctx, pkgEvents.BaseEvent{
		Type: pkgEvents.TypeDocumentIssued,
		Data: map[string]interface{}{
			"session_id":   sessionID,
			"filename":     filename,
			"reference_no": referenceNo,
		},
		OccurredAt: time.Now(),
	})
}

// PublishSessionEnded emits SESSION_ENDED when a session reaches a terminal stage.
func (p *NatsPublisher) PublishSessionEnded(ctx context.Context, sessionID, stage string) {
	p.publish(ctx, pkgEvents.BaseEvent{
		Type: pkgEvents.TypeSessionEnded,
		Data: map[string]interface{}{
			"session_id": sessionID,
			"stage":      stage,
		},
		OccurredAt: time.Now(),
	})
}

func (p *NatsPublisher) publish(ctx context.Context, evt pkgEvents.BaseEvent) {
	if p.publisher == nil {
		return
	}
	if err := p.publisher.Publish(ctx, evt); err != nil {
		p.logger.Error("EVENTS", "Failed to publish "+evt.Type+" event", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

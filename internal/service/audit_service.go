package service

import (
	"context"
	"encoding/json"
	"time"

	"loan-origination-be/internal/dto"
	"loan-origination-be/internal/entity"
	"loan-origination-be/internal/pkg/logger"
	"loan-origination-be/internal/repository/contract"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// IAuditService drains the audit topic and persists one row per
// conversation turn. Persistence failures are logged and the message is
// redelivered; malformed payloads are acked so they do not loop forever.
type IAuditService interface {
	Consume(ctx context.Context) error
}

type auditService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	auditRepo contract.AuditLogRepository
	logger    logger.ILogger
}

func NewAuditService(
	pubSub *gochannel.GoChannel,
	topicName string,
	auditRepo contract.AuditLogRepository,
	logger logger.ILogger,
) IAuditService {
	return &auditService{
		pubSub:    pubSub,
		topicName: topicName,
		auditRepo: auditRepo,
		logger:    logger,
	}
}

func (s *auditService) Consume(ctx context.Context) error {
	messages, err := s.pubSub.Subscribe(ctx, s.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			s.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (s *auditService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.AuditMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		s.logger.Error("audit_service", "failed to unmarshal audit message", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack()
		return
	}

	record := &entity.AuditLog{
		Id:        uuid.New(),
		SessionID: payload.SessionID,
		Stage:     payload.Stage,
		Event:     payload.Event,
		Detail:    payload.Detail,
		CreatedAt: time.Now(),
	}

	if err := s.auditRepo.Create(ctx, record); err != nil {
		s.logger.Error("audit_service", "failed to persist audit record", map[string]interface{}{
			"session_id": payload.SessionID,
			"error":      err.Error(),
		})
		msg.Nack()
		return
	}

	msg.Ack()
}

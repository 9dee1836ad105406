package contract

import (
	"context"

	"loan-origination-be/internal/entity"
)

// AuditLogRepository persists conversation audit entries.
type AuditLogRepository interface {
	Create(ctx context.Context, log *entity.AuditLog) error
	FindBySessionID(ctx context.Context, sessionID string) ([]*entity.AuditLog, error)
}

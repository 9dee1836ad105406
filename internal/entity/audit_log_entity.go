package entity

import (
	"time"

	"github.com/google/uuid"
)

// AuditLog records one committed conversation turn for offline review.
type AuditLog struct {
	Id        uuid.UUID `gorm:"primaryKey"`
	SessionID string    `gorm:"index"`
	Stage     string
	Event     string
	Detail    string
	CreatedAt time.Time
}

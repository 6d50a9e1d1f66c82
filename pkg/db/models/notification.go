package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/gatepasshq/gatepass-backend/pkg/enums"
)

// Notification stores outbound customer emails queued by the worker.
type Notification struct {
	ID        uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrgID     uuid.UUID              `gorm:"column:org_id;type:uuid;not null;index"`
	Type      enums.NotificationType `gorm:"column:type;type:text;not null"`
	Recipient string                 `gorm:"column:recipient;type:text;not null"`
	Subject   string                 `gorm:"column:subject;type:text;not null"`
	Body      string                 `gorm:"column:body;type:text;not null"`
	SentAt    *time.Time             `gorm:"column:sent_at;type:timestamptz"`
	CreatedAt time.Time              `gorm:"column:created_at;autoCreateTime"`
}

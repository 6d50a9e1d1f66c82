package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/gatepasshq/gatepass-backend/pkg/enums"
	"github.com/gatepasshq/gatepass-backend/pkg/types"
)

// BookingAuditLog records before/after state for every mutating booking
// operation.
type BookingAuditLog struct {
	ID        uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BookingID uuid.UUID           `gorm:"column:booking_id;type:uuid;not null;index"`
	Action    enums.BookingAction `gorm:"column:action;type:text;not null"`
	Actor     string              `gorm:"column:actor;type:text;not null"`
	Before    types.JSONMap       `gorm:"column:before;type:jsonb;serializer:json"`
	After     types.JSONMap       `gorm:"column:after;type:jsonb;serializer:json"`
	CreatedAt time.Time           `gorm:"column:created_at;autoCreateTime"`
}

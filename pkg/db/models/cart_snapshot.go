package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/gatepasshq/gatepass-backend/pkg/types"
)

// CartSnapshot is an abandoned-cart record upserted while a customer edits
// their cart. One row per (event, customer email, session).
type CartSnapshot struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrgID         uuid.UUID       `gorm:"column:org_id;type:uuid;not null;index"`
	EventID       uuid.UUID       `gorm:"column:event_id;type:uuid;not null;index:idx_cart_snapshots_identity,unique"`
	CustomerEmail string          `gorm:"column:customer_email;type:text;not null;index:idx_cart_snapshots_identity,unique"`
	SessionID     string          `gorm:"column:session_id;type:text;not null;index:idx_cart_snapshots_identity,unique"`
	Items         json.RawMessage `gorm:"column:items;type:jsonb;not null"`
	Totals        types.JSONMap   `gorm:"column:totals;type:jsonb;serializer:json"`
	CompletedAt   *time.Time      `gorm:"column:completed_at;type:timestamptz"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

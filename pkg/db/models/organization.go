package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/gatepasshq/gatepass-backend/pkg/types"
)

// Organization is the tenant root. Billing carries the tax/fee knobs the
// checkout engine reads.
type Organization struct {
	ID        uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string              `gorm:"column:name;type:text;not null"`
	Slug      string              `gorm:"column:slug;type:text;not null;uniqueIndex"`
	Billing   types.BillingConfig `gorm:"column:billing;type:jsonb;serializer:json"`
	CreatedAt time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

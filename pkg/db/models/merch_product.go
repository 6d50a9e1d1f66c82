package models

import (
	"time"

	"github.com/google/uuid"
)

// MerchProduct is a merchandise item sold alongside event tickets.
type MerchProduct struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrgID      uuid.UUID  `gorm:"column:org_id;type:uuid;not null;index"`
	EventID    *uuid.UUID `gorm:"column:event_id;type:uuid;index"`
	Name       string     `gorm:"column:name;type:text;not null"`
	PriceCents int64      `gorm:"column:price_cents;not null"`
	Active     bool       `gorm:"column:active;not null;default:true"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

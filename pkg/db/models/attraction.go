package models

import (
	"time"

	"github.com/google/uuid"
)

// Attraction is a bookable experience with fixed-capacity time slots.
// Bookings are priced per head from BasePriceCents unless the slot
// overrides it.
type Attraction struct {
	ID                        uuid.UUID     `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrgID                     uuid.UUID     `gorm:"column:org_id;type:uuid;not null;index"`
	Name                      string        `gorm:"column:name;type:text;not null"`
	Description               *string       `gorm:"column:description;type:text"`
	BasePriceCents            int64         `gorm:"column:base_price_cents;not null"`
	ModificationDeadlineHours *int          `gorm:"column:modification_deadline_hours"`
	Active                    bool          `gorm:"column:active;not null;default:true"`
	Slots                     []BookingSlot `gorm:"foreignKey:AttractionID;constraint:OnDelete:CASCADE"`
	CreatedAt                 time.Time     `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt                 time.Time     `gorm:"column:updated_at;autoUpdateTime"`
}

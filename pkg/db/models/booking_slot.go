package models

import (
	"time"

	"github.com/google/uuid"
)

// BookingSlot is a fixed-capacity reservable window on an attraction.
// BookedCount must stay within [0, MaxCapacity]; mutations go through
// guarded SQL updates, never read-modify-write in application code.
type BookingSlot struct {
	ID                 uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AttractionID       uuid.UUID  `gorm:"column:attraction_id;type:uuid;not null;index"`
	StartsAt           time.Time  `gorm:"column:starts_at;type:timestamptz;not null"`
	EndsAt             time.Time  `gorm:"column:ends_at;type:timestamptz;not null"`
	MaxCapacity        int        `gorm:"column:max_capacity;not null"`
	BookedCount        int        `gorm:"column:booked_count;not null;default:0"`
	StaffID            *uuid.UUID `gorm:"column:staff_id;type:uuid"`
	PriceCentsOverride *int64     `gorm:"column:price_cents_override"`
	CreatedAt          time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// Remaining reports how many heads the slot can still take.
func (s BookingSlot) Remaining() int {
	remaining := s.MaxCapacity - s.BookedCount
	if remaining < 0 {
		return 0
	}
	return remaining
}

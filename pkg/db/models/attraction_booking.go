package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/gatepasshq/gatepass-backend/pkg/enums"
)

// AttractionBooking is a reservation against a booking slot.
type AttractionBooking struct {
	ID               uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrgID            uuid.UUID           `gorm:"column:org_id;type:uuid;not null;index"`
	AttractionID     uuid.UUID           `gorm:"column:attraction_id;type:uuid;not null;index"`
	BookingSlotID    uuid.UUID           `gorm:"column:booking_slot_id;type:uuid;not null;index"`
	BookingReference string              `gorm:"column:booking_reference;type:text;not null;uniqueIndex"`
	CustomerEmail    string              `gorm:"column:customer_email;type:text;not null"`
	CustomerName     string              `gorm:"column:customer_name;type:text;not null"`
	CustomerPhone    *string             `gorm:"column:customer_phone;type:text"`
	PartySize        int                 `gorm:"column:party_size;not null"`
	TotalCents       int64               `gorm:"column:total_cents;not null"`
	BookingStatus    enums.BookingStatus `gorm:"column:booking_status;type:text;not null;default:'pending'"`
	PaymentStatus    enums.PaymentStatus `gorm:"column:payment_status;type:text;not null;default:'pending'"`
	HoldExpiresAt    *time.Time          `gorm:"column:hold_expires_at;type:timestamptz"`
	ConfirmedAt      *time.Time          `gorm:"column:confirmed_at;type:timestamptz"`
	CancelledAt      *time.Time          `gorm:"column:cancelled_at;type:timestamptz"`
	CreatedAt        time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

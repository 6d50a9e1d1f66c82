package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/gatepasshq/gatepass-backend/pkg/enums"
)

// Order is a completed or pending checkout. The monetary columns mirror the
// quote that produced it so receipts can be rebuilt without re-pricing.
type Order struct {
	ID                    uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrgID                 uuid.UUID           `gorm:"column:org_id;type:uuid;not null;index"`
	EventID               *uuid.UUID          `gorm:"column:event_id;type:uuid;index"`
	SessionID             string              `gorm:"column:session_id;type:text;not null;index"`
	CustomerEmail         string              `gorm:"column:customer_email;type:text;not null"`
	CustomerName          *string             `gorm:"column:customer_name;type:text"`
	Currency              enums.Currency      `gorm:"column:currency;type:text;not null;default:'USD'"`
	SubtotalCents         int64               `gorm:"column:subtotal_cents;not null"`
	DiscountCents         int64               `gorm:"column:discount_cents;not null;default:0"`
	ProcessingFeeCents    int64               `gorm:"column:processing_fee_cents;not null;default:0"`
	TaxCents              int64               `gorm:"column:tax_cents;not null;default:0"`
	DonationCents         int64               `gorm:"column:donation_cents;not null;default:0"`
	TotalCents            int64               `gorm:"column:total_cents;not null"`
	TicketCount           int                 `gorm:"column:ticket_count;not null;default:0"`
	AttendeeCount         int                 `gorm:"column:attendee_count;not null;default:0"`
	PromoCodeID           *uuid.UUID          `gorm:"column:promo_code_id;type:uuid"`
	Status                enums.OrderStatus   `gorm:"column:status;type:text;not null;default:'pending'"`
	PaymentStatus         enums.PaymentStatus `gorm:"column:payment_status;type:text;not null;default:'pending'"`
	StripePaymentIntentID *string             `gorm:"column:stripe_payment_intent_id;type:text;index"`
	Items                 []OrderLineItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	PaidAt                *time.Time          `gorm:"column:paid_at;type:timestamptz"`
	CancelledAt           *time.Time          `gorm:"column:cancelled_at;type:timestamptz"`
	CreatedAt             time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

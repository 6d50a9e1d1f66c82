package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/gatepasshq/gatepass-backend/pkg/enums"
)

// BookingHeldEvent signals a pending hold on a slot.
type BookingHeldEvent struct {
	BookingID        uuid.UUID `json:"booking_id"`
	BookingReference string    `json:"booking_reference"`
	SlotID           uuid.UUID `json:"slot_id"`
	PartySize        int       `json:"party_size"`
	HoldExpiresAt    time.Time `json:"hold_expires_at"`
}

// BookingConfirmedEvent is emitted when payment lands and capacity commits.
type BookingConfirmedEvent struct {
	BookingID        uuid.UUID `json:"booking_id"`
	BookingReference string    `json:"booking_reference"`
	SlotID           uuid.UUID `json:"slot_id"`
	PartySize        int       `json:"party_size"`
	TotalCents       int64     `json:"total_cents"`
	CustomerEmail    string    `json:"customer_email"`
}

// BookingRescheduledEvent carries the slot transfer result.
type BookingRescheduledEvent struct {
	BookingID        uuid.UUID `json:"booking_id"`
	BookingReference string    `json:"booking_reference"`
	OldSlotID        uuid.UUID `json:"old_slot_id"`
	NewSlotID        uuid.UUID `json:"new_slot_id"`
	PartySize        int       `json:"party_size"`
}

// BookingResizedEvent reports a party-size change and any payment delta owed.
type BookingResizedEvent struct {
	BookingID        uuid.UUID `json:"booking_id"`
	BookingReference string    `json:"booking_reference"`
	OldPartySize     int       `json:"old_party_size"`
	NewPartySize     int       `json:"new_party_size"`
	PriceDeltaCents  int64     `json:"price_delta_cents"`
	PaymentRequired  bool      `json:"payment_required"`
}

// BookingCancelledEvent reports a cancellation and whether a refund is owed.
type BookingCancelledEvent struct {
	BookingID        uuid.UUID `json:"booking_id"`
	BookingReference string    `json:"booking_reference"`
	SlotID           uuid.UUID `json:"slot_id"`
	PartySize        int       `json:"party_size"`
	RefundOwed       bool      `json:"refund_owed"`
	CancelledAt      time.Time `json:"cancelled_at"`
}

// BookingExpiredEvent is emitted when the expiry sweep cancels a stale hold.
type BookingExpiredEvent struct {
	BookingID        uuid.UUID `json:"booking_id"`
	BookingReference string    `json:"booking_reference"`
	SlotID           uuid.UUID `json:"slot_id"`
	ExpiredAt        time.Time `json:"expired_at"`
}

// OrderCreatedEvent signals a new checkout order awaiting payment.
type OrderCreatedEvent struct {
	OrderID       uuid.UUID  `json:"order_id"`
	OrgID         uuid.UUID  `json:"org_id"`
	EventID       *uuid.UUID `json:"event_id,omitempty"`
	TotalCents    int64      `json:"total_cents"`
	CustomerEmail string     `json:"customer_email"`
}

// OrderPaidEvent is emitted when the payment intent settles.
type OrderPaidEvent struct {
	OrderID       uuid.UUID `json:"order_id"`
	OrgID         uuid.UUID `json:"org_id"`
	TotalCents    int64     `json:"total_cents"`
	CustomerEmail string    `json:"customer_email"`
	PaidAt        time.Time `json:"paid_at"`
}

// OrderCancelledEvent reports an abandoned or failed checkout order.
type OrderCancelledEvent struct {
	OrderID     uuid.UUID `json:"order_id"`
	OrgID       uuid.UUID `json:"org_id"`
	CancelledAt time.Time `json:"cancelled_at"`
	Reason      string    `json:"reason,omitempty"`
}

// CartConvertedEvent marks an abandoned-cart snapshot as converted.
type CartConvertedEvent struct {
	SnapshotID    uuid.UUID `json:"snapshot_id"`
	OrderID       uuid.UUID `json:"order_id"`
	CustomerEmail string    `json:"customer_email"`
}

// NotificationRequestedEvent tells the worker to send a customer email.
type NotificationRequestedEvent struct {
	OrgID       uuid.UUID              `json:"org_id"`
	AggregateID uuid.UUID              `json:"aggregate_id"`
	Type        enums.NotificationType `json:"type"`
	Recipient   string                 `json:"recipient"`
}

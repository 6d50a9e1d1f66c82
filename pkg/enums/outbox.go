package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type column on outbox_events.
type OutboxAggregateType string

const (
	AggregateBooking      OutboxAggregateType = "booking"
	AggregateOrder        OutboxAggregateType = "order"
	AggregateCartSnapshot OutboxAggregateType = "cart_snapshot"
	AggregateNotification OutboxAggregateType = "notification"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateBooking,
	AggregateOrder,
	AggregateCartSnapshot,
	AggregateNotification,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type column on outbox_events.
type OutboxEventType string

const (
	EventBookingHeld           OutboxEventType = "booking_held"
	EventBookingConfirmed      OutboxEventType = "booking_confirmed"
	EventBookingRescheduled    OutboxEventType = "booking_rescheduled"
	EventBookingResized        OutboxEventType = "booking_resized"
	EventBookingCancelled      OutboxEventType = "booking_cancelled"
	EventBookingExpired        OutboxEventType = "booking_expired"
	EventOrderCreated          OutboxEventType = "order_created"
	EventOrderPaid             OutboxEventType = "order_paid"
	EventOrderCancelled        OutboxEventType = "order_cancelled"
	EventCartConverted         OutboxEventType = "cart_converted"
	EventNotificationRequested OutboxEventType = "notification_requested"
)

var validOutboxEventTypes = []OutboxEventType{
	EventBookingHeld,
	EventBookingConfirmed,
	EventBookingRescheduled,
	EventBookingResized,
	EventBookingCancelled,
	EventBookingExpired,
	EventOrderCreated,
	EventOrderPaid,
	EventOrderCancelled,
	EventCartConverted,
	EventNotificationRequested,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}

package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/gatepasshq/gatepass-backend/pkg/db/models"
	"github.com/gatepasshq/gatepass-backend/pkg/enums"
	"github.com/gatepasshq/gatepass-backend/pkg/logger"
	"github.com/gatepasshq/gatepass-backend/pkg/outbox"
	"github.com/gatepasshq/gatepass-backend/pkg/outbox/idempotency"
	"github.com/gatepasshq/gatepass-backend/pkg/outbox/payloads"
)

const bookingNotificationConsumer = "booking-notifications"

type bookingLookup interface {
	GetBooking(ctx context.Context, id uuid.UUID) (*models.AttractionBooking, error)
}

// Consumer watches domain events and turns booking and order milestones
// into queued customer emails.
type Consumer struct {
	service      Service
	bookings     bookingLookup
	subscription *pubsub.Subscriber
	idempotency  *idempotency.Manager
	logg         *logger.Logger
}

// NewConsumer builds the notification consumer.
func NewConsumer(service Service, bookings bookingLookup, subscription *pubsub.Subscriber, manager *idempotency.Manager, logg *logger.Logger) (*Consumer, error) {
	if service == nil {
		return nil, fmt.Errorf("notifications service required")
	}
	if bookings == nil {
		return nil, fmt.Errorf("booking lookup required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("domain subscription required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		service:      service,
		bookings:     bookings,
		subscription: subscription,
		idempotency:  manager,
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	eventType := enums.OutboxEventType(msg.Attributes["event_type"])
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": msg.ID,
		"event_type": eventType,
	})

	if !notifiableEvent(eventType) {
		return processResult{ack: true}
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return processResult{ack: true}
	}

	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "invalid event id", err)
		return processResult{ack: true}
	}

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, bookingNotificationConsumer, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return processResult{ack: true}
	}

	if err := c.handle(ctx, eventType, envelope.Data, logCtx); err != nil {
		c.logg.Error(logCtx, "notification handling failed", err)
		_ = c.idempotency.Delete(ctx, bookingNotificationConsumer, eventID)
		return processResult{nack: true}
	}
	return processResult{ack: true}
}

func notifiableEvent(eventType enums.OutboxEventType) bool {
	switch eventType {
	case enums.EventBookingConfirmed,
		enums.EventBookingCancelled,
		enums.EventBookingRescheduled,
		enums.EventOrderPaid:
		return true
	default:
		return false
	}
}

func (c *Consumer) handle(ctx context.Context, eventType enums.OutboxEventType, data json.RawMessage, logCtx context.Context) error {
	switch eventType {
	case enums.EventBookingConfirmed:
		var payload payloads.BookingConfirmedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("parse booking confirmed payload: %w", err)
		}
		return c.bookingConfirmation(ctx, payload, logCtx)
	case enums.EventBookingCancelled:
		var payload payloads.BookingCancelledEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("parse booking cancelled payload: %w", err)
		}
		return c.bookingCancellation(ctx, payload, logCtx)
	case enums.EventBookingRescheduled:
		var payload payloads.BookingRescheduledEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("parse booking rescheduled payload: %w", err)
		}
		return c.bookingRescheduled(ctx, payload, logCtx)
	case enums.EventOrderPaid:
		var payload payloads.OrderPaidEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("parse order paid payload: %w", err)
		}
		return c.orderReceipt(ctx, payload, logCtx)
	default:
		return nil
	}
}

func (c *Consumer) bookingConfirmation(ctx context.Context, payload payloads.BookingConfirmedEvent, logCtx context.Context) error {
	booking, err := c.bookings.GetBooking(ctx, payload.BookingID)
	if err != nil {
		return fmt.Errorf("load booking %s: %w", payload.BookingID, err)
	}
	notification := &models.Notification{
		OrgID:     booking.OrgID,
		Type:      enums.NotificationTypeBookingConfirmation,
		Recipient: booking.CustomerEmail,
		Subject:   fmt.Sprintf("Booking %s confirmed", booking.BookingReference),
		Body: fmt.Sprintf("Your booking %s for a party of %d is confirmed. Total paid: %s.",
			booking.BookingReference, payload.PartySize, formatCents(payload.TotalCents)),
	}
	if err := c.service.Enqueue(ctx, notification); err != nil {
		return err
	}
	c.logg.Info(logCtx, "booking confirmation queued")
	return nil
}

func (c *Consumer) bookingCancellation(ctx context.Context, payload payloads.BookingCancelledEvent, logCtx context.Context) error {
	booking, err := c.bookings.GetBooking(ctx, payload.BookingID)
	if err != nil {
		return fmt.Errorf("load booking %s: %w", payload.BookingID, err)
	}
	body := fmt.Sprintf("Your booking %s has been cancelled.", booking.BookingReference)
	if payload.RefundOwed {
		body += " A refund will be issued to your original payment method."
	}
	notification := &models.Notification{
		OrgID:     booking.OrgID,
		Type:      enums.NotificationTypeBookingCancellation,
		Recipient: booking.CustomerEmail,
		Subject:   fmt.Sprintf("Booking %s cancelled", booking.BookingReference),
		Body:      body,
	}
	if err := c.service.Enqueue(ctx, notification); err != nil {
		return err
	}
	c.logg.Info(logCtx, "booking cancellation queued")
	return nil
}

func (c *Consumer) bookingRescheduled(ctx context.Context, payload payloads.BookingRescheduledEvent, logCtx context.Context) error {
	booking, err := c.bookings.GetBooking(ctx, payload.BookingID)
	if err != nil {
		return fmt.Errorf("load booking %s: %w", payload.BookingID, err)
	}
	notification := &models.Notification{
		OrgID:     booking.OrgID,
		Type:      enums.NotificationTypeBookingRescheduled,
		Recipient: booking.CustomerEmail,
		Subject:   fmt.Sprintf("Booking %s rescheduled", booking.BookingReference),
		Body: fmt.Sprintf("Your booking %s has been moved to a new time slot for a party of %d.",
			booking.BookingReference, payload.PartySize),
	}
	if err := c.service.Enqueue(ctx, notification); err != nil {
		return err
	}
	c.logg.Info(logCtx, "booking reschedule notice queued")
	return nil
}

func (c *Consumer) orderReceipt(ctx context.Context, payload payloads.OrderPaidEvent, logCtx context.Context) error {
	if payload.CustomerEmail == "" {
		return fmt.Errorf("order %s paid event missing customer email", payload.OrderID)
	}
	notification := &models.Notification{
		OrgID:     payload.OrgID,
		Type:      enums.NotificationTypeOrderReceipt,
		Recipient: payload.CustomerEmail,
		Subject:   "Your order is confirmed",
		Body: fmt.Sprintf("Thanks for your purchase. Order %s has been paid in full (%s).",
			payload.OrderID, formatCents(payload.TotalCents)),
	}
	if err := c.service.Enqueue(ctx, notification); err != nil {
		return err
	}
	c.logg.Info(logCtx, "order receipt queued")
	return nil
}

func formatCents(cents int64) string {
	return fmt.Sprintf("$%d.%02d", cents/100, cents%100)
}

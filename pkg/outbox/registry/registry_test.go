package registry

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/gatepasshq/gatepass-backend/pkg/config"
	"github.com/gatepasshq/gatepass-backend/pkg/db/models"
	"github.com/gatepasshq/gatepass-backend/pkg/enums"
	"github.com/gatepasshq/gatepass-backend/pkg/outbox"
	"github.com/gatepasshq/gatepass-backend/pkg/outbox/payloads"
)

func newTestRegistry(t *testing.T) *EventRegistry {
	t.Helper()
	reg, err := NewEventRegistry(config.PubSubConfig{DomainTopic: "gp-domain-events"})
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}
	return reg
}

func envelopeWith(t *testing.T, data interface{}) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	env := outbox.PayloadEnvelope{
		Version:    1,
		EventID:    uuid.NewString(),
		OccurredAt: time.Now(),
		Data:       raw,
	}
	out, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return out
}

func TestResolveBookingConfirmed(t *testing.T) {
	reg := newTestRegistry(t)
	bookingID := uuid.New()

	row := models.OutboxEvent{
		EventType:     enums.EventBookingConfirmed,
		AggregateType: enums.AggregateBooking,
		AggregateID:   bookingID,
		Payload: envelopeWith(t, payloads.BookingConfirmedEvent{
			BookingID:        bookingID,
			BookingReference: "GP-ABCD1234",
			PartySize:        4,
			TotalCents:       12000,
		}),
	}

	resolved, err := reg.Resolve(row)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if resolved.Descriptor.Topic != "gp-domain-events" {
		t.Fatalf("unexpected topic %s", resolved.Descriptor.Topic)
	}
	payload, ok := resolved.Payload.(*payloads.BookingConfirmedEvent)
	if !ok {
		t.Fatalf("unexpected payload type %T", resolved.Payload)
	}
	if payload.BookingReference != "GP-ABCD1234" || payload.PartySize != 4 {
		t.Fatalf("payload fields not preserved: %+v", payload)
	}
}

func TestResolveRejectsUnknownAndMismatched(t *testing.T) {
	reg := newTestRegistry(t)

	var nonRetryable NonRetryableError

	_, err := reg.Resolve(models.OutboxEvent{EventType: "made_up", AggregateType: enums.AggregateBooking, AggregateID: uuid.New()})
	if !errors.As(err, &nonRetryable) {
		t.Fatalf("expected non-retryable error for unknown type, got %v", err)
	}

	_, err = reg.Resolve(models.OutboxEvent{
		EventType:     enums.EventBookingConfirmed,
		AggregateType: enums.AggregateOrder,
		AggregateID:   uuid.New(),
		Payload:       envelopeWith(t, payloads.BookingConfirmedEvent{}),
	})
	if !errors.As(err, &nonRetryable) {
		t.Fatalf("expected non-retryable error for aggregate mismatch, got %v", err)
	}

	_, err = reg.Resolve(models.OutboxEvent{
		EventType:     enums.EventBookingConfirmed,
		AggregateType: enums.AggregateBooking,
		AggregateID:   uuid.Nil,
		Payload:       envelopeWith(t, payloads.BookingConfirmedEvent{}),
	})
	if !errors.As(err, &nonRetryable) {
		t.Fatalf("expected non-retryable error for nil aggregate id, got %v", err)
	}
}

func TestResolveRejectsEmptyPayload(t *testing.T) {
	reg := newTestRegistry(t)

	env, err := json.Marshal(outbox.PayloadEnvelope{Version: 1, EventID: uuid.NewString(), OccurredAt: time.Now(), Data: json.RawMessage("null")})
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}

	var nonRetryable NonRetryableError
	_, err = reg.Resolve(models.OutboxEvent{
		EventType:     enums.EventOrderPaid,
		AggregateType: enums.AggregateOrder,
		AggregateID:   uuid.New(),
		Payload:       env,
	})
	if !errors.As(err, &nonRetryable) {
		t.Fatalf("expected non-retryable error for null payload, got %v", err)
	}
}

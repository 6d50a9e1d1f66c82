package stripewebhook

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"

	"github.com/gatepasshq/gatepass-backend/pkg/db/models"
	pkgerrors "github.com/gatepasshq/gatepass-backend/pkg/errors"
	"github.com/gatepasshq/gatepass-backend/pkg/logger"
)

// metadata key that routes a payment intent to a booking instead of an
// order. Checkout sets order_id; booking holds set booking_id.
const bookingMetadataKey = "booking_id"

type orderService interface {
	MarkPaidByPaymentIntent(ctx context.Context, paymentIntentID string) (*models.Order, error)
	MarkFailedByPaymentIntent(ctx context.Context, paymentIntentID string) (*models.Order, error)
}

type bookingService interface {
	ConfirmPayment(ctx context.Context, bookingID uuid.UUID, actor string) (*models.AttractionBooking, error)
}

type ServiceParams struct {
	Orders   orderService
	Bookings bookingService
	Logger   *logger.Logger
}

// Service routes verified Stripe events to the order and booking flows.
type Service struct {
	orders   orderService
	bookings bookingService
	logg     *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Orders == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "order service required")
	}
	if params.Bookings == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "booking service required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	return &Service{
		orders:   params.Orders,
		bookings: params.Bookings,
		logg:     params.Logger,
	}, nil
}

// HandleEvent processes one verified Stripe event. Unrecognized event
// types are acknowledged without action so Stripe stops redelivering
// them.
func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil || event.Data == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}

	switch event.Type {
	case stripe.EventTypePaymentIntentSucceeded:
		intent, err := decodeIntent(event)
		if err != nil {
			return err
		}
		return s.handleSucceeded(ctx, intent)
	case stripe.EventTypePaymentIntentPaymentFailed:
		intent, err := decodeIntent(event)
		if err != nil {
			return err
		}
		return s.handleFailed(ctx, intent)
	default:
		return nil
	}
}

func (s *Service) handleSucceeded(ctx context.Context, intent *stripe.PaymentIntent) error {
	if raw, ok := intent.Metadata[bookingMetadataKey]; ok {
		bookingID, err := uuid.Parse(raw)
		if err != nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "malformed booking id in payment metadata").
				WithDetails(map[string]any{"booking_id": raw})
		}
		_, err = s.bookings.ConfirmPayment(ctx, bookingID, "stripe")
		return err
	}

	_, err := s.orders.MarkPaidByPaymentIntent(ctx, intent.ID)
	return err
}

func (s *Service) handleFailed(ctx context.Context, intent *stripe.PaymentIntent) error {
	if _, ok := intent.Metadata[bookingMetadataKey]; ok {
		// A failed charge leaves the hold pending; the expiry sweep
		// reclaims the capacity if no retry lands in time.
		s.logg.Warn(ctx, "booking payment failed, hold left for expiry sweep")
		return nil
	}

	_, err := s.orders.MarkFailedByPaymentIntent(ctx, intent.ID)
	if err != nil && pkgerrors.As(err) != nil && pkgerrors.As(err).Code() == pkgerrors.CodeNotFound {
		// Charges opened outside checkout have no order row. Ack them.
		s.logg.Warn(ctx, "payment failure for unknown intent, ignoring")
		return nil
	}
	return err
}

func decodeIntent(event *stripe.Event) (*stripe.PaymentIntent, error) {
	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode payment intent event")
	}
	return &intent, nil
}

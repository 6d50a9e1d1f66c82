package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gatepasshq/gatepass-backend/pkg/db/models"
	"github.com/gatepasshq/gatepass-backend/pkg/enums"
	pkgerrors "github.com/gatepasshq/gatepass-backend/pkg/errors"
	"github.com/gatepasshq/gatepass-backend/pkg/logger"
	"github.com/gatepasshq/gatepass-backend/pkg/outbox"
	"github.com/gatepasshq/gatepass-backend/pkg/outbox/payloads"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const defaultModificationDeadlineHours = 24

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// CreateHoldInput is the request to place a pending hold on a slot.
type CreateHoldInput struct {
	OrgID         uuid.UUID
	SlotID        uuid.UUID
	PartySize     int
	CustomerEmail string
	CustomerName  string
	CustomerPhone *string
}

// ResizeResult reports the party-size change outcome. PaymentRequired
// signals the caller that an additional charge must be collected; the
// service itself never touches the payment gateway.
type ResizeResult struct {
	Booking         *models.AttractionBooking
	PriceDeltaCents int64
	PaymentRequired bool
}

// CancelResult reports the cancellation outcome. RefundOwed signals
// that money was taken for this booking; issuing the refund is an
// external operation.
type CancelResult struct {
	Booking    *models.AttractionBooking
	RefundOwed bool
}

// Service is the slot capacity manager. Every mutating operation runs
// in one transaction, appends an audit-log entry, and emits an outbox
// event for downstream notification.
type Service interface {
	CreateHold(ctx context.Context, in CreateHoldInput) (*models.AttractionBooking, error)
	ConfirmPayment(ctx context.Context, bookingID uuid.UUID, actor string) (*models.AttractionBooking, error)
	Reschedule(ctx context.Context, bookingID, newSlotID uuid.UUID, actor string) (*models.AttractionBooking, error)
	ResizeParty(ctx context.Context, bookingID uuid.UUID, newPartySize int, actor string) (ResizeResult, error)
	Cancel(ctx context.Context, bookingID uuid.UUID, actor string) (CancelResult, error)
	ExpireHolds(ctx context.Context, now time.Time, limit int) (int, error)
	GetByReference(ctx context.Context, reference string) (*models.AttractionBooking, error)
	ListSlots(ctx context.Context, attractionID uuid.UUID, from time.Time, limit int) ([]models.BookingSlot, error)
}

type service struct {
	repo    BookingRepository
	tx      txRunner
	emitter eventEmitter
	logg    *logger.Logger
	holdTTL time.Duration
	now     func() time.Time
}

// NewService builds the slot capacity manager.
func NewService(repo BookingRepository, tx txRunner, emitter eventEmitter, logg *logger.Logger, holdTTL time.Duration) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("booking repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if emitter == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if holdTTL <= 0 {
		holdTTL = 30 * time.Minute
	}
	return &service{
		repo:    repo,
		tx:      tx,
		emitter: emitter,
		logg:    logg,
		holdTTL: holdTTL,
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

// CreateHold pre-checks capacity and inserts a pending booking. The
// slot counter is only committed at confirmation, so two racing holds
// can both pass this check; the guarded update at confirm time keeps
// the capacity invariant, and the expiry sweep cleans up the loser.
func (s *service) CreateHold(ctx context.Context, in CreateHoldInput) (*models.AttractionBooking, error) {
	if in.PartySize < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "party size must be at least 1")
	}
	if in.CustomerEmail == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer email required")
	}

	var booking *models.AttractionBooking
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		slot, err := repo.GetSlot(ctx, in.SlotID)
		if err != nil {
			return slotLoadError(err)
		}
		attraction, err := repo.GetAttraction(ctx, slot.AttractionID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load attraction")
		}
		if !attraction.Active {
			return pkgerrors.New(pkgerrors.CodeValidation, "attraction is not bookable")
		}
		if slot.BookedCount+in.PartySize > slot.MaxCapacity {
			return capacityError(slot, in.PartySize)
		}

		reference, err := NewBookingReference()
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate reference")
		}

		now := s.now()
		expires := now.Add(s.holdTTL)
		booking = &models.AttractionBooking{
			ID:               uuid.New(),
			OrgID:            in.OrgID,
			AttractionID:     attraction.ID,
			BookingSlotID:    slot.ID,
			BookingReference: reference,
			CustomerEmail:    in.CustomerEmail,
			CustomerName:     in.CustomerName,
			CustomerPhone:    in.CustomerPhone,
			PartySize:        in.PartySize,
			TotalCents:       unitPrice(attraction, slot) * int64(in.PartySize),
			BookingStatus:    enums.BookingStatusPending,
			PaymentStatus:    enums.PaymentStatusPending,
			HoldExpiresAt:    &expires,
		}
		if err := repo.CreateBooking(ctx, booking); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert booking")
		}

		if err := s.audit(ctx, repo, booking.ID, enums.BookingActionHold, in.CustomerEmail, nil, bookingState(booking)); err != nil {
			return err
		}
		return s.emitter.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventBookingHeld,
			AggregateType: enums.AggregateBooking,
			AggregateID:   booking.ID,
			Data: payloads.BookingHeldEvent{
				BookingID:        booking.ID,
				BookingReference: booking.BookingReference,
				SlotID:           slot.ID,
				PartySize:        booking.PartySize,
				HoldExpiresAt:    expires,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// ConfirmPayment moves a pending booking to confirmed/paid and commits
// the slot capacity with a guarded atomic update. Re-invoking on an
// already confirmed booking is a no-op, so payment-webhook retries
// never double-count.
func (s *service) ConfirmPayment(ctx context.Context, bookingID uuid.UUID, actor string) (*models.AttractionBooking, error) {
	var booking *models.AttractionBooking
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		var err error
		booking, err = repo.GetBooking(ctx, bookingID)
		if err != nil {
			return bookingLoadError(err)
		}

		if booking.BookingStatus == enums.BookingStatusConfirmed {
			return nil
		}
		if !booking.BookingStatus.CanTransitionTo(enums.BookingStatusConfirmed) {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("booking is %s and cannot be confirmed", booking.BookingStatus))
		}

		ok, err := repo.ReserveCapacity(ctx, booking.BookingSlotID, booking.PartySize)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reserve capacity")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeCapacity, "slot capacity exceeded")
		}

		before := bookingState(booking)
		now := s.now()
		booking.BookingStatus = enums.BookingStatusConfirmed
		booking.PaymentStatus = enums.PaymentStatusPaid
		booking.ConfirmedAt = &now
		booking.HoldExpiresAt = nil
		if err := repo.UpdateBooking(ctx, booking); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update booking")
		}

		if err := s.audit(ctx, repo, booking.ID, enums.BookingActionConfirm, actor, before, bookingState(booking)); err != nil {
			return err
		}
		return s.emitter.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventBookingConfirmed,
			AggregateType: enums.AggregateBooking,
			AggregateID:   booking.ID,
			Data: payloads.BookingConfirmedEvent{
				BookingID:        booking.ID,
				BookingReference: booking.BookingReference,
				SlotID:           booking.BookingSlotID,
				PartySize:        booking.PartySize,
				TotalCents:       booking.TotalCents,
				CustomerEmail:    booking.CustomerEmail,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// Reschedule moves a booking to another slot of the same attraction.
// The release of the old slot, the reserve of the new one, and the
// booking update commit or roll back together, so a failure can never
// leak capacity.
func (s *service) Reschedule(ctx context.Context, bookingID, newSlotID uuid.UUID, actor string) (*models.AttractionBooking, error) {
	var booking *models.AttractionBooking
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		var err error
		booking, err = repo.GetBooking(ctx, bookingID)
		if err != nil {
			return bookingLoadError(err)
		}
		if booking.BookingStatus == enums.BookingStatusCancelled {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "booking is cancelled")
		}
		if booking.BookingSlotID == newSlotID {
			return pkgerrors.New(pkgerrors.CodeValidation, "booking is already on this slot")
		}

		oldSlot, err := repo.GetSlot(ctx, booking.BookingSlotID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load current slot")
		}
		attraction, err := repo.GetAttraction(ctx, booking.AttractionID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load attraction")
		}
		// The deadline is measured against the original slot's start.
		if err := s.checkDeadline(oldSlot, attraction); err != nil {
			return err
		}

		newSlot, err := repo.GetSlot(ctx, newSlotID)
		if err != nil {
			return slotLoadError(err)
		}
		if newSlot.AttractionID != booking.AttractionID {
			return pkgerrors.New(pkgerrors.CodeValidation, "slot belongs to a different attraction")
		}

		confirmed := booking.BookingStatus == enums.BookingStatusConfirmed
		if confirmed {
			ok, err := repo.ReserveCapacity(ctx, newSlot.ID, booking.PartySize)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reserve new slot")
			}
			if !ok {
				return capacityError(newSlot, booking.PartySize)
			}
			if err := repo.ReleaseCapacity(ctx, oldSlot.ID, booking.PartySize); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "release old slot")
			}
		} else if newSlot.BookedCount+booking.PartySize > newSlot.MaxCapacity {
			return capacityError(newSlot, booking.PartySize)
		}

		before := bookingState(booking)
		oldSlotID := booking.BookingSlotID
		booking.BookingSlotID = newSlot.ID
		booking.TotalCents = unitPrice(attraction, newSlot) * int64(booking.PartySize)
		if err := repo.UpdateBooking(ctx, booking); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update booking")
		}

		if err := s.audit(ctx, repo, booking.ID, enums.BookingActionReschedule, actor, before, bookingState(booking)); err != nil {
			return err
		}
		return s.emitter.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventBookingRescheduled,
			AggregateType: enums.AggregateBooking,
			AggregateID:   booking.ID,
			Data: payloads.BookingRescheduledEvent{
				BookingID:        booking.ID,
				BookingReference: booking.BookingReference,
				OldSlotID:        oldSlotID,
				NewSlotID:        newSlot.ID,
				PartySize:        booking.PartySize,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// ResizeParty changes the party size, applying the capacity delta
// atomically and recomputing the total from the per-head price.
func (s *service) ResizeParty(ctx context.Context, bookingID uuid.UUID, newPartySize int, actor string) (ResizeResult, error) {
	if newPartySize < 1 {
		return ResizeResult{}, pkgerrors.New(pkgerrors.CodeValidation, "party size must be at least 1")
	}

	var result ResizeResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		booking, err := repo.GetBooking(ctx, bookingID)
		if err != nil {
			return bookingLoadError(err)
		}
		if booking.BookingStatus == enums.BookingStatusCancelled {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "booking is cancelled")
		}

		slot, err := repo.GetSlot(ctx, booking.BookingSlotID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load slot")
		}
		attraction, err := repo.GetAttraction(ctx, booking.AttractionID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load attraction")
		}
		if err := s.checkDeadline(slot, attraction); err != nil {
			return err
		}

		sizeDiff := newPartySize - booking.PartySize
		if sizeDiff == 0 {
			result = ResizeResult{Booking: booking}
			return nil
		}

		confirmed := booking.BookingStatus == enums.BookingStatusConfirmed
		switch {
		case confirmed && sizeDiff > 0:
			ok, err := repo.ReserveCapacity(ctx, slot.ID, sizeDiff)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reserve capacity")
			}
			if !ok {
				return capacityError(slot, sizeDiff)
			}
		case confirmed && sizeDiff < 0:
			if err := repo.ReleaseCapacity(ctx, slot.ID, -sizeDiff); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "release capacity")
			}
		case !confirmed && sizeDiff > 0:
			if slot.BookedCount+newPartySize > slot.MaxCapacity {
				return capacityError(slot, sizeDiff)
			}
		}

		before := bookingState(booking)
		oldSize := booking.PartySize
		oldTotal := booking.TotalCents
		booking.PartySize = newPartySize
		booking.TotalCents = unitPrice(attraction, slot) * int64(newPartySize)
		if err := repo.UpdateBooking(ctx, booking); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update booking")
		}

		delta := booking.TotalCents - oldTotal
		result = ResizeResult{
			Booking:         booking,
			PriceDeltaCents: delta,
			PaymentRequired: delta > 0 && booking.PaymentStatus == enums.PaymentStatusPaid,
		}

		if err := s.audit(ctx, repo, booking.ID, enums.BookingActionResize, actor, before, bookingState(booking)); err != nil {
			return err
		}
		return s.emitter.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventBookingResized,
			AggregateType: enums.AggregateBooking,
			AggregateID:   booking.ID,
			Data: payloads.BookingResizedEvent{
				BookingID:        booking.ID,
				BookingReference: booking.BookingReference,
				OldPartySize:     oldSize,
				NewPartySize:     newPartySize,
				PriceDeltaCents:  delta,
				PaymentRequired:  result.PaymentRequired,
			},
		})
	})
	if err != nil {
		return ResizeResult{}, err
	}
	return result, nil
}

// Cancel releases the booking's capacity and marks it cancelled. The
// refund itself is an external operation; the result only reports
// whether one is owed.
func (s *service) Cancel(ctx context.Context, bookingID uuid.UUID, actor string) (CancelResult, error) {
	var result CancelResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		booking, err := repo.GetBooking(ctx, bookingID)
		if err != nil {
			return bookingLoadError(err)
		}
		if !booking.BookingStatus.CanTransitionTo(enums.BookingStatusCancelled) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "booking is already cancelled")
		}

		slot, err := repo.GetSlot(ctx, booking.BookingSlotID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load slot")
		}
		attraction, err := repo.GetAttraction(ctx, booking.AttractionID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load attraction")
		}
		if err := s.checkDeadline(slot, attraction); err != nil {
			return err
		}

		if booking.BookingStatus == enums.BookingStatusConfirmed {
			if err := repo.ReleaseCapacity(ctx, slot.ID, booking.PartySize); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "release capacity")
			}
		}

		before := bookingState(booking)
		now := s.now()
		booking.BookingStatus = enums.BookingStatusCancelled
		booking.CancelledAt = &now
		if err := repo.UpdateBooking(ctx, booking); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update booking")
		}

		result = CancelResult{
			Booking:    booking,
			RefundOwed: booking.PaymentStatus == enums.PaymentStatusPaid,
		}

		if err := s.audit(ctx, repo, booking.ID, enums.BookingActionCancel, actor, before, bookingState(booking)); err != nil {
			return err
		}
		return s.emitter.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventBookingCancelled,
			AggregateType: enums.AggregateBooking,
			AggregateID:   booking.ID,
			Data: payloads.BookingCancelledEvent{
				BookingID:        booking.ID,
				BookingReference: booking.BookingReference,
				SlotID:           booking.BookingSlotID,
				PartySize:        booking.PartySize,
				RefundOwed:       result.RefundOwed,
				CancelledAt:      now,
			},
		})
	})
	if err != nil {
		return CancelResult{}, err
	}
	return result, nil
}

// ExpireHolds cancels pending bookings whose hold deadline passed.
// Pending holds never committed capacity, so nothing is released.
func (s *service) ExpireHolds(ctx context.Context, now time.Time, limit int) (int, error) {
	if now.IsZero() {
		now = s.now()
	}
	if limit <= 0 {
		limit = 100
	}

	stale, err := s.repo.ListExpiredHolds(ctx, now, limit)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list expired holds")
	}

	expired := 0
	for i := range stale {
		booking := stale[i]
		err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)

			current, err := repo.GetBooking(ctx, booking.ID)
			if err != nil {
				return err
			}
			if current.BookingStatus != enums.BookingStatusPending {
				return nil
			}

			before := bookingState(current)
			current.BookingStatus = enums.BookingStatusCancelled
			cancelledAt := now
			current.CancelledAt = &cancelledAt
			if err := repo.UpdateBooking(ctx, current); err != nil {
				return err
			}

			if err := s.audit(ctx, repo, current.ID, enums.BookingActionExpire, "system", before, bookingState(current)); err != nil {
				return err
			}
			return s.emitter.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventBookingExpired,
				AggregateType: enums.AggregateBooking,
				AggregateID:   current.ID,
				Data: payloads.BookingExpiredEvent{
					BookingID:        current.ID,
					BookingReference: current.BookingReference,
					SlotID:           current.BookingSlotID,
					ExpiredAt:        now,
				},
			})
		})
		if err != nil {
			s.logg.Error(ctx, "expire hold failed", err)
			continue
		}
		expired++
	}
	return expired, nil
}

func (s *service) GetByReference(ctx context.Context, reference string) (*models.AttractionBooking, error) {
	booking, err := s.repo.GetBookingByReference(ctx, reference)
	if err != nil {
		return nil, bookingLoadError(err)
	}
	return booking, nil
}

func (s *service) ListSlots(ctx context.Context, attractionID uuid.UUID, from time.Time, limit int) ([]models.BookingSlot, error) {
	if from.IsZero() {
		from = s.now()
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	slots, err := s.repo.ListSlots(ctx, attractionID, from, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list slots")
	}
	return slots, nil
}

// checkDeadline rejects modifications inside the attraction's
// modification window before the slot starts.
func (s *service) checkDeadline(slot *models.BookingSlot, attraction *models.Attraction) error {
	hours := defaultModificationDeadlineHours
	if attraction.ModificationDeadlineHours != nil {
		hours = *attraction.ModificationDeadlineHours
	}
	deadline := slot.StartsAt.Add(-time.Duration(hours) * time.Hour)
	if !s.now().Before(deadline) {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("booking can no longer be modified within %d hours of the slot start", hours))
	}
	return nil
}

func (s *service) audit(ctx context.Context, repo BookingRepository, bookingID uuid.UUID, action enums.BookingAction, actor string, before, after map[string]any) error {
	entry := &models.BookingAuditLog{
		ID:        uuid.New(),
		BookingID: bookingID,
		Action:    action,
		Actor:     actor,
		Before:    before,
		After:     after,
	}
	if err := repo.AppendAuditLog(ctx, entry); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append audit log")
	}
	return nil
}

func bookingState(b *models.AttractionBooking) map[string]any {
	return map[string]any{
		"booking_slot_id": b.BookingSlotID.String(),
		"party_size":      b.PartySize,
		"total_cents":     b.TotalCents,
		"booking_status":  b.BookingStatus.String(),
		"payment_status":  b.PaymentStatus.String(),
	}
}

func unitPrice(attraction *models.Attraction, slot *models.BookingSlot) int64 {
	if slot.PriceCentsOverride != nil {
		return *slot.PriceCentsOverride
	}
	return attraction.BasePriceCents
}

func capacityError(slot *models.BookingSlot, requested int) error {
	return pkgerrors.New(pkgerrors.CodeCapacity, "slot capacity exceeded").WithDetails(map[string]any{
		"slot_id":   slot.ID.String(),
		"remaining": slot.Remaining(),
		"requested": requested,
	})
}

func slotLoadError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "booking slot not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load slot")
}

func bookingLoadError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load booking")
}

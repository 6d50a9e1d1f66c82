package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/gatepasshq/gatepass-backend/api/responses"
	"github.com/gatepasshq/gatepass-backend/api/validators"
	"github.com/gatepasshq/gatepass-backend/internal/bookings"
	pkgerrors "github.com/gatepasshq/gatepass-backend/pkg/errors"
	"github.com/gatepasshq/gatepass-backend/pkg/logger"
)

const (
	customerActor   = "customer"
	defaultSlotPage = 50
	maxSlotPage     = 200
)

type createHoldRequest struct {
	OrgID         uuid.UUID `json:"org_id" validate:"required"`
	SlotID        uuid.UUID `json:"slot_id" validate:"required"`
	PartySize     int       `json:"party_size" validate:"required,min=1"`
	CustomerEmail string    `json:"customer_email" validate:"required,email"`
	CustomerName  string    `json:"customer_name" validate:"required"`
	CustomerPhone *string   `json:"customer_phone"`
}

type rescheduleRequest struct {
	NewSlotID uuid.UUID `json:"new_slot_id" validate:"required"`
}

type resizeRequest struct {
	PartySize int `json:"party_size" validate:"required,min=1"`
}

type resizeResponse struct {
	Booking         bookingResponse `json:"booking"`
	PaymentRequired bool            `json:"payment_required"`
	PriceDeltaCents int64           `json:"price_delta_cents"`
}

type cancelResponse struct {
	Booking    bookingResponse `json:"booking"`
	RefundOwed bool            `json:"refund_owed"`
}

// ListSlots returns upcoming slots for an attraction with remaining
// capacity per slot.
func ListSlots(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		attractionID, err := pathUUID(r, "attractionID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", defaultSlotPage, 1, maxSlotPage)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		from := time.Now().UTC()
		if raw := strings.TrimSpace(r.URL.Query().Get("from")); raw != "" {
			parsed, parseErr := time.Parse(time.RFC3339, raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid from timestamp"))
				return
			}
			from = parsed
		}

		slots, err := svc.ListSlots(r.Context(), attractionID, from, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]slotResponse, 0, len(slots))
		for _, slot := range slots {
			items = append(items, toSlotResponse(slot))
		}
		responses.WriteSuccess(w, map[string]any{"items": items})
	}
}

// CreateHold places a pending hold on a slot.
func CreateHold(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createHoldRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		booking, err := svc.CreateHold(r.Context(), bookings.CreateHoldInput{
			OrgID:         req.OrgID,
			SlotID:        req.SlotID,
			PartySize:     req.PartySize,
			CustomerEmail: validators.SanitizeString(req.CustomerEmail, 320),
			CustomerName:  validators.SanitizeString(req.CustomerName, 256),
			CustomerPhone: req.CustomerPhone,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, toBookingResponse(booking))
	}
}

// GetBookingByReference looks a booking up by its customer-facing
// reference code.
func GetBookingByReference(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reference := strings.TrimSpace(chi.URLParam(r, "reference"))
		if reference == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "booking reference is required"))
			return
		}

		booking, err := svc.GetByReference(r.Context(), reference)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, toBookingResponse(booking))
	}
}

// RescheduleBooking moves a confirmed booking to a different slot.
func RescheduleBooking(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bookingID, err := pathUUID(r, "bookingID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req rescheduleRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		booking, err := svc.Reschedule(r.Context(), bookingID, req.NewSlotID, customerActor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, toBookingResponse(booking))
	}
}

// ResizeBooking changes the party size on a confirmed booking.
func ResizeBooking(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bookingID, err := pathUUID(r, "bookingID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req resizeRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ResizeParty(r.Context(), bookingID, req.PartySize, customerActor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, resizeResponse{
			Booking:         toBookingResponse(result.Booking),
			PaymentRequired: result.PaymentRequired,
			PriceDeltaCents: result.PriceDeltaCents,
		})
	}
}

// CancelBooking cancels a booking and releases its slot capacity.
func CancelBooking(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bookingID, err := pathUUID(r, "bookingID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Cancel(r.Context(), bookingID, customerActor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, cancelResponse{
			Booking:    toBookingResponse(result.Booking),
			RefundOwed: result.RefundOwed,
		})
	}
}

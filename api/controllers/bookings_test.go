package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	bookingsvc "github.com/gatepasshq/gatepass-backend/internal/bookings"
	"github.com/gatepasshq/gatepass-backend/pkg/db/models"
	"github.com/gatepasshq/gatepass-backend/pkg/enums"
	pkgerrors "github.com/gatepasshq/gatepass-backend/pkg/errors"
)

type stubBookingService struct {
	createHold func(ctx context.Context, in bookingsvc.CreateHoldInput) (*models.AttractionBooking, error)
	byRef      func(ctx context.Context, reference string) (*models.AttractionBooking, error)
	resize     func(ctx context.Context, bookingID uuid.UUID, newPartySize int, actor string) (bookingsvc.ResizeResult, error)
	cancel     func(ctx context.Context, bookingID uuid.UUID, actor string) (bookingsvc.CancelResult, error)
}

func (s stubBookingService) CreateHold(ctx context.Context, in bookingsvc.CreateHoldInput) (*models.AttractionBooking, error) {
	if s.createHold != nil {
		return s.createHold(ctx, in)
	}
	return &models.AttractionBooking{}, nil
}

func (stubBookingService) ConfirmPayment(ctx context.Context, bookingID uuid.UUID, actor string) (*models.AttractionBooking, error) {
	panic("unimplemented")
}

func (stubBookingService) Reschedule(ctx context.Context, bookingID, newSlotID uuid.UUID, actor string) (*models.AttractionBooking, error) {
	panic("unimplemented")
}

func (s stubBookingService) ResizeParty(ctx context.Context, bookingID uuid.UUID, newPartySize int, actor string) (bookingsvc.ResizeResult, error) {
	if s.resize != nil {
		return s.resize(ctx, bookingID, newPartySize, actor)
	}
	return bookingsvc.ResizeResult{}, nil
}

func (s stubBookingService) Cancel(ctx context.Context, bookingID uuid.UUID, actor string) (bookingsvc.CancelResult, error) {
	if s.cancel != nil {
		return s.cancel(ctx, bookingID, actor)
	}
	return bookingsvc.CancelResult{}, nil
}

func (stubBookingService) ExpireHolds(ctx context.Context, now time.Time, limit int) (int, error) {
	panic("unimplemented")
}

func (s stubBookingService) GetByReference(ctx context.Context, reference string) (*models.AttractionBooking, error) {
	if s.byRef != nil {
		return s.byRef(ctx, reference)
	}
	return &models.AttractionBooking{}, nil
}

func (stubBookingService) ListSlots(ctx context.Context, attractionID uuid.UUID, from time.Time, limit int) ([]models.BookingSlot, error) {
	return nil, nil
}

func withRouteParam(req *http.Request, key, value string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func TestCreateHoldReturnsCreated(t *testing.T) {
	holdExpiry := time.Now().UTC().Add(30 * time.Minute)
	svc := stubBookingService{
		createHold: func(ctx context.Context, in bookingsvc.CreateHoldInput) (*models.AttractionBooking, error) {
			if in.PartySize != 4 {
				t.Fatalf("unexpected party size %d", in.PartySize)
			}
			return &models.AttractionBooking{
				ID:               uuid.New(),
				OrgID:            in.OrgID,
				BookingSlotID:    in.SlotID,
				BookingReference: "GP-AB12CD34",
				CustomerEmail:    in.CustomerEmail,
				PartySize:        in.PartySize,
				BookingStatus:    enums.BookingStatusPending,
				HoldExpiresAt:    &holdExpiry,
			}, nil
		},
	}
	handler := CreateHold(svc, nil)

	body := `{"org_id":"` + uuid.New().String() + `","slot_id":"` + uuid.New().String() + `","party_size":4,"customer_email":"guest@example.com","customer_name":"Guest"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings/holds", strings.NewReader(body))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data bookingResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.BookingReference != "GP-AB12CD34" {
		t.Fatalf("unexpected reference %q", envelope.Data.BookingReference)
	}
	if envelope.Data.HoldExpiresAt == nil {
		t.Fatal("expected hold expiry to be set")
	}
}

func TestCreateHoldCapacityConflict(t *testing.T) {
	svc := stubBookingService{
		createHold: func(ctx context.Context, in bookingsvc.CreateHoldInput) (*models.AttractionBooking, error) {
			return nil, pkgerrors.New(pkgerrors.CodeCapacity, "not enough capacity in the requested slot")
		},
	}
	handler := CreateHold(svc, nil)

	body := `{"org_id":"` + uuid.New().String() + `","slot_id":"` + uuid.New().String() + `","party_size":10,"customer_email":"guest@example.com","customer_name":"Guest"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings/holds", strings.NewReader(body))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
}

func TestGetBookingByReferenceNotFound(t *testing.T) {
	svc := stubBookingService{
		byRef: func(ctx context.Context, reference string) (*models.AttractionBooking, error) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
		},
	}
	handler := GetBookingByReference(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings/GP-MISSING", nil)
	req = withRouteParam(req, "reference", "GP-MISSING")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestResizeBookingReportsPaymentRequired(t *testing.T) {
	bookingID := uuid.New()
	svc := stubBookingService{
		resize: func(ctx context.Context, id uuid.UUID, newPartySize int, actor string) (bookingsvc.ResizeResult, error) {
			if id != bookingID {
				t.Fatalf("unexpected booking id %s", id)
			}
			if newPartySize != 6 {
				t.Fatalf("unexpected party size %d", newPartySize)
			}
			return bookingsvc.ResizeResult{
				Booking:         &models.AttractionBooking{ID: id, PartySize: newPartySize},
				PriceDeltaCents: 4400,
				PaymentRequired: true,
			}, nil
		},
	}
	handler := ResizeBooking(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings/"+bookingID.String()+"/resize", strings.NewReader(`{"party_size":6}`))
	req = withRouteParam(req, "bookingID", bookingID.String())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data resizeResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !envelope.Data.PaymentRequired {
		t.Fatal("expected payment required")
	}
	if envelope.Data.PriceDeltaCents != 4400 {
		t.Fatalf("unexpected delta %d", envelope.Data.PriceDeltaCents)
	}
}

func TestCancelBookingPastDeadline(t *testing.T) {
	bookingID := uuid.New()
	svc := stubBookingService{
		cancel: func(ctx context.Context, id uuid.UUID, actor string) (bookingsvc.CancelResult, error) {
			return bookingsvc.CancelResult{}, pkgerrors.New(pkgerrors.CodeStateConflict, "modification deadline has passed")
		},
	}
	handler := CancelBooking(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings/"+bookingID.String()+"/cancel", nil)
	req = withRouteParam(req, "bookingID", bookingID.String())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}
}

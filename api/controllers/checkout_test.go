package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	checkoutsvc "github.com/gatepasshq/gatepass-backend/internal/checkout"
	"github.com/gatepasshq/gatepass-backend/internal/pricing"
	"github.com/gatepasshq/gatepass-backend/pkg/db/models"
	"github.com/gatepasshq/gatepass-backend/pkg/enums"
	pkgerrors "github.com/gatepasshq/gatepass-backend/pkg/errors"
)

type stubCheckoutService struct {
	quote   func(ctx context.Context, in checkoutsvc.QuoteInput) (*checkoutsvc.Quote, error)
	execute func(ctx context.Context, in checkoutsvc.QuoteInput) (*checkoutsvc.ExecuteResult, error)
}

func (s stubCheckoutService) Quote(ctx context.Context, in checkoutsvc.QuoteInput) (*checkoutsvc.Quote, error) {
	if s.quote != nil {
		return s.quote(ctx, in)
	}
	return &checkoutsvc.Quote{}, nil
}

func (s stubCheckoutService) Execute(ctx context.Context, in checkoutsvc.QuoteInput) (*checkoutsvc.ExecuteResult, error) {
	if s.execute != nil {
		return s.execute(ctx, in)
	}
	return &checkoutsvc.ExecuteResult{}, nil
}

func checkoutBody(t *testing.T) string {
	t.Helper()
	payload := map[string]any{
		"org_id":         uuid.New().String(),
		"event_id":       uuid.New().String(),
		"session_id":     "sess-abc",
		"customer_email": "buyer@example.com",
		"tickets": []map[string]any{
			{"ticket_type_id": uuid.New().String(), "quantity": 2},
		},
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	return string(raw)
}

func TestCheckoutQuoteSuccess(t *testing.T) {
	svc := stubCheckoutService{
		quote: func(ctx context.Context, in checkoutsvc.QuoteInput) (*checkoutsvc.Quote, error) {
			if in.CustomerEmail != "buyer@example.com" {
				t.Fatalf("unexpected email %q", in.CustomerEmail)
			}
			return &checkoutsvc.Quote{
				Totals: pricing.Totals{TotalCents: 5200, TicketCount: 2},
			}, nil
		},
	}
	handler := CheckoutQuote(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout/quote", strings.NewReader(checkoutBody(t)))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data quoteResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Totals.TotalCents != 5200 {
		t.Fatalf("unexpected total %d", envelope.Data.Totals.TotalCents)
	}
}

func TestCheckoutQuoteRejectsMissingEmail(t *testing.T) {
	handler := CheckoutQuote(stubCheckoutService{}, nil)

	body := `{"org_id":"` + uuid.New().String() + `","event_id":"` + uuid.New().String() + `","session_id":"s1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout/quote", strings.NewReader(body))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCheckoutExecuteReturnsCreated(t *testing.T) {
	orderID := uuid.New()
	svc := stubCheckoutService{
		execute: func(ctx context.Context, in checkoutsvc.QuoteInput) (*checkoutsvc.ExecuteResult, error) {
			return &checkoutsvc.ExecuteResult{
				Order: &models.Order{
					ID:            orderID,
					CustomerEmail: in.CustomerEmail,
					Currency:      enums.CurrencyUSD,
					TotalCents:    5200,
				},
				ClientSecret: "pi_secret_123",
			}, nil
		},
	}
	handler := CheckoutExecute(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(checkoutBody(t)))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data executeResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Order.ID != orderID {
		t.Fatalf("unexpected order id %s", envelope.Data.Order.ID)
	}
	if envelope.Data.ClientSecret != "pi_secret_123" {
		t.Fatalf("unexpected client secret %q", envelope.Data.ClientSecret)
	}
}

func TestCheckoutExecuteMapsCapacityError(t *testing.T) {
	svc := stubCheckoutService{
		execute: func(ctx context.Context, in checkoutsvc.QuoteInput) (*checkoutsvc.ExecuteResult, error) {
			return nil, pkgerrors.New(pkgerrors.CodeCapacity, "not enough tickets remaining")
		},
	}
	handler := CheckoutExecute(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(checkoutBody(t)))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
}

package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/gatepasshq/gatepass-backend/api/middleware"
	ordersvc "github.com/gatepasshq/gatepass-backend/internal/orders"
	"github.com/gatepasshq/gatepass-backend/pkg/db/models"
	"github.com/gatepasshq/gatepass-backend/pkg/enums"
	"github.com/gatepasshq/gatepass-backend/pkg/pagination"
)

type stubOrdersService struct {
	get    func(ctx context.Context, id uuid.UUID) (*models.Order, error)
	list   func(ctx context.Context, orgID uuid.UUID, params pagination.Params) (ordersvc.Page, error)
	cancel func(ctx context.Context, id uuid.UUID, reason string) (*models.Order, error)
}

func (s stubOrdersService) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if s.get != nil {
		return s.get(ctx, id)
	}
	return &models.Order{ID: id}, nil
}

func (s stubOrdersService) List(ctx context.Context, orgID uuid.UUID, params pagination.Params) (ordersvc.Page, error) {
	if s.list != nil {
		return s.list(ctx, orgID, params)
	}
	return ordersvc.Page{}, nil
}

func (stubOrdersService) MarkPaidByPaymentIntent(ctx context.Context, paymentIntentID string) (*models.Order, error) {
	panic("unimplemented")
}

func (stubOrdersService) MarkFailedByPaymentIntent(ctx context.Context, paymentIntentID string) (*models.Order, error) {
	panic("unimplemented")
}

func (s stubOrdersService) Cancel(ctx context.Context, id uuid.UUID, reason string) (*models.Order, error) {
	if s.cancel != nil {
		return s.cancel(ctx, id, reason)
	}
	return &models.Order{ID: id, Status: enums.OrderStatusCancelled}, nil
}

func TestListOrdersRequiresOrgContext(t *testing.T) {
	handler := ListOrders(stubOrdersService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/org/orders", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without org context got %d", resp.Code)
	}
}

func TestListOrdersReturnsPage(t *testing.T) {
	orgID := uuid.New()
	svc := stubOrdersService{
		list: func(ctx context.Context, gotOrg uuid.UUID, params pagination.Params) (ordersvc.Page, error) {
			if gotOrg != orgID {
				t.Fatalf("unexpected org id %s", gotOrg)
			}
			return ordersvc.Page{
				Orders:     []models.Order{{ID: uuid.New(), OrgID: gotOrg}},
				NextCursor: "next-page",
			}, nil
		},
	}
	handler := ListOrders(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/org/orders", nil)
	req = req.WithContext(middleware.WithOrgID(req.Context(), orgID.String()))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data struct {
			Items  []orderResponse `json:"items"`
			Cursor string          `json:"cursor"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data.Items) != 1 {
		t.Fatalf("expected one order got %d", len(envelope.Data.Items))
	}
	if envelope.Data.Cursor != "next-page" {
		t.Fatalf("unexpected cursor %q", envelope.Data.Cursor)
	}
}

func TestGetOrderHidesForeignOrg(t *testing.T) {
	orderID := uuid.New()
	svc := stubOrdersService{
		get: func(ctx context.Context, id uuid.UUID) (*models.Order, error) {
			return &models.Order{ID: id, OrgID: uuid.New()}, nil
		},
	}
	handler := GetOrder(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/org/orders/"+orderID.String(), nil)
	req = withRouteParam(req, "orderID", orderID.String())
	req = req.WithContext(middleware.WithOrgID(req.Context(), uuid.New().String()))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for foreign order got %d", resp.Code)
	}
}

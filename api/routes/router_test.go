package routes

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gatepasshq/gatepass-backend/internal/bookings"
	"github.com/gatepasshq/gatepass-backend/internal/cart"
	"github.com/gatepasshq/gatepass-backend/internal/catalog"
	checkoutsvc "github.com/gatepasshq/gatepass-backend/internal/checkout"
	"github.com/gatepasshq/gatepass-backend/internal/notifications"
	"github.com/gatepasshq/gatepass-backend/internal/orders"
	"github.com/gatepasshq/gatepass-backend/internal/promos"
	pkgauth "github.com/gatepasshq/gatepass-backend/pkg/auth"
	"github.com/gatepasshq/gatepass-backend/pkg/config"
	"github.com/gatepasshq/gatepass-backend/pkg/db/models"
	"github.com/gatepasshq/gatepass-backend/pkg/enums"
	"github.com/gatepasshq/gatepass-backend/pkg/logger"
	"github.com/gatepasshq/gatepass-backend/pkg/pagination"
	"github.com/gatepasshq/gatepass-backend/pkg/redis"
	"github.com/gatepasshq/gatepass-backend/pkg/types"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubCatalogService struct {
	orgBySlug func(ctx context.Context, slug string) (*models.Organization, error)
}

func (s stubCatalogService) Organization(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	panic("unimplemented")
}

func (s stubCatalogService) OrganizationBySlug(ctx context.Context, slug string) (*models.Organization, error) {
	if s.orgBySlug != nil {
		return s.orgBySlug(ctx, slug)
	}
	return &models.Organization{Slug: slug}, nil
}

func (stubCatalogService) BillingFor(ctx context.Context, orgID uuid.UUID) (types.BillingConfig, error) {
	panic("unimplemented")
}

func (stubCatalogService) Event(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	panic("unimplemented")
}

func (stubCatalogService) Events(ctx context.Context, orgID uuid.UUID, params pagination.Params) (catalog.EventPage, error) {
	return catalog.EventPage{}, nil
}

func (stubCatalogService) Attraction(ctx context.Context, id uuid.UUID) (*models.Attraction, error) {
	panic("unimplemented")
}

func (stubCatalogService) Attractions(ctx context.Context, orgID uuid.UUID, params pagination.Params) (catalog.AttractionPage, error) {
	return catalog.AttractionPage{}, nil
}

func (stubCatalogService) TicketTypes(ctx context.Context, eventID uuid.UUID, ids []uuid.UUID) ([]models.TicketType, error) {
	panic("unimplemented")
}

func (stubCatalogService) MerchProducts(ctx context.Context, orgID uuid.UUID, ids []uuid.UUID) ([]models.MerchProduct, error) {
	panic("unimplemented")
}

type stubCartService struct{}

func (stubCartService) Save(ctx context.Context, in cart.SnapshotInput) (*models.CartSnapshot, error) {
	panic("unimplemented")
}

func (stubCartService) Complete(ctx context.Context, tx *gorm.DB, eventID uuid.UUID, customerEmail, sessionID string) error {
	panic("unimplemented")
}

type stubPromoService struct{}

func (stubPromoService) ResolveCode(ctx context.Context, in promos.ResolveInput) (promos.Resolution, error) {
	return promos.Resolution{}, nil
}

func (stubPromoService) ResolveGroupDiscount(ctx context.Context, eventID uuid.UUID, ticketCount int, ticketSubtotalCents int64) (promos.GroupResolution, error) {
	panic("unimplemented")
}

func (stubPromoService) ResolveTotalDiscount(ctx context.Context, in promos.ResolveInput) (promos.TotalDiscount, error) {
	panic("unimplemented")
}

func (stubPromoService) Redeem(ctx context.Context, tx *gorm.DB, promoCodeID uuid.UUID, sessionID string, orderID *uuid.UUID) (bool, error) {
	panic("unimplemented")
}

type stubCheckoutService struct{}

func (stubCheckoutService) Quote(ctx context.Context, in checkoutsvc.QuoteInput) (*checkoutsvc.Quote, error) {
	panic("unimplemented")
}

func (stubCheckoutService) Execute(ctx context.Context, in checkoutsvc.QuoteInput) (*checkoutsvc.ExecuteResult, error) {
	panic("unimplemented")
}

type stubBookingService struct {
	listSlots func(ctx context.Context, attractionID uuid.UUID, from time.Time, limit int) ([]models.BookingSlot, error)
}

func (stubBookingService) CreateHold(ctx context.Context, in bookings.CreateHoldInput) (*models.AttractionBooking, error) {
	panic("unimplemented")
}

func (stubBookingService) ConfirmPayment(ctx context.Context, bookingID uuid.UUID, actor string) (*models.AttractionBooking, error) {
	panic("unimplemented")
}

func (stubBookingService) Reschedule(ctx context.Context, bookingID, newSlotID uuid.UUID, actor string) (*models.AttractionBooking, error) {
	panic("unimplemented")
}

func (stubBookingService) ResizeParty(ctx context.Context, bookingID uuid.UUID, newPartySize int, actor string) (bookings.ResizeResult, error) {
	panic("unimplemented")
}

func (stubBookingService) Cancel(ctx context.Context, bookingID uuid.UUID, actor string) (bookings.CancelResult, error) {
	panic("unimplemented")
}

func (stubBookingService) ExpireHolds(ctx context.Context, now time.Time, limit int) (int, error) {
	panic("unimplemented")
}

func (stubBookingService) GetByReference(ctx context.Context, reference string) (*models.AttractionBooking, error) {
	panic("unimplemented")
}

func (s stubBookingService) ListSlots(ctx context.Context, attractionID uuid.UUID, from time.Time, limit int) ([]models.BookingSlot, error) {
	if s.listSlots != nil {
		return s.listSlots(ctx, attractionID, from, limit)
	}
	return nil, nil
}

type stubOrdersService struct {
	list func(ctx context.Context, orgID uuid.UUID, params pagination.Params) (orders.Page, error)
}

func (stubOrdersService) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	panic("unimplemented")
}

func (s stubOrdersService) List(ctx context.Context, orgID uuid.UUID, params pagination.Params) (orders.Page, error) {
	if s.list != nil {
		return s.list(ctx, orgID, params)
	}
	return orders.Page{}, nil
}

func (stubOrdersService) MarkPaidByPaymentIntent(ctx context.Context, paymentIntentID string) (*models.Order, error) {
	panic("unimplemented")
}

func (stubOrdersService) MarkFailedByPaymentIntent(ctx context.Context, paymentIntentID string) (*models.Order, error) {
	panic("unimplemented")
}

func (stubOrdersService) Cancel(ctx context.Context, id uuid.UUID, reason string) (*models.Order, error) {
	panic("unimplemented")
}

type stubNotificationsService struct{}

func (stubNotificationsService) List(ctx context.Context, params notifications.ListParams) (*notifications.ListResult, error) {
	return &notifications.ListResult{}, nil
}

func (stubNotificationsService) Enqueue(ctx context.Context, notification *models.Notification) error {
	return nil
}

func (stubNotificationsService) DispatchPending(ctx context.Context, limit int) (int, error) {
	return 0, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "secret",
			Issuer:            "issuer",
			ExpirationMinutes: 60,
		},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(RouterParams{
		Config:        cfg,
		Logger:        logg,
		DB:            stubPinger{},
		Redis:         (*redis.Client)(nil),
		Catalog:       stubCatalogService{},
		Cart:          stubCartService{},
		Promos:        stubPromoService{},
		Checkout:      stubCheckoutService{},
		Bookings:      stubBookingService{},
		Orders:        stubOrdersService{},
		Notifications: stubNotificationsService{},
	})
}

func buildToken(t *testing.T, cfg *config.Config, role enums.OrgRole) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), pkgauth.AccessTokenPayload{
		UserID: uuid.New(),
		OrgID:  uuid.New(),
		Role:   role,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLiveResponds(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for live probe got %d", resp.Code)
	}
}

func TestPublicOrganizationLookup(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/organizations/summer-fair", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for public org lookup got %d", resp.Code)
	}
	var envelope struct {
		Data map[string]any `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data["slug"] != "summer-fair" {
		t.Fatalf("expected slug echoed back got %v", envelope.Data["slug"])
	}
}

func TestOrgGroupRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/org/orders", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestOrgGroupSucceedsWithJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/org/notifications", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.OrgRoleAdmin))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for authed notifications got %d", resp.Code)
	}
}

func TestSlotListingIsPublic(t *testing.T) {
	cfg := testConfig()
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	attractionID := uuid.New()
	router := NewRouter(RouterParams{
		Config: cfg,
		Logger: logg,
		DB:     stubPinger{},
		Redis:  (*redis.Client)(nil),
		Bookings: stubBookingService{
			listSlots: func(ctx context.Context, id uuid.UUID, from time.Time, limit int) ([]models.BookingSlot, error) {
				if id != attractionID {
					t.Fatalf("unexpected attraction id %s", id)
				}
				return []models.BookingSlot{}, nil
			},
		},
		Catalog:       stubCatalogService{},
		Cart:          stubCartService{},
		Promos:        stubPromoService{},
		Checkout:      stubCheckoutService{},
		Orders:        stubOrdersService{},
		Notifications: stubNotificationsService{},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/attractions/"+attractionID.String()+"/slots", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for public slot listing got %d", resp.Code)
	}
}

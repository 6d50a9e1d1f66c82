package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gatepasshq/gatepass-backend/api/controllers"
	webhookcontrollers "github.com/gatepasshq/gatepass-backend/api/controllers/webhooks"
	"github.com/gatepasshq/gatepass-backend/api/middleware"
	"github.com/gatepasshq/gatepass-backend/internal/bookings"
	"github.com/gatepasshq/gatepass-backend/internal/cart"
	"github.com/gatepasshq/gatepass-backend/internal/catalog"
	checkoutsvc "github.com/gatepasshq/gatepass-backend/internal/checkout"
	"github.com/gatepasshq/gatepass-backend/internal/notifications"
	"github.com/gatepasshq/gatepass-backend/internal/orders"
	"github.com/gatepasshq/gatepass-backend/internal/promos"
	stripewebhook "github.com/gatepasshq/gatepass-backend/internal/webhooks/stripe"
	"github.com/gatepasshq/gatepass-backend/pkg/config"
	"github.com/gatepasshq/gatepass-backend/pkg/logger"
	"github.com/gatepasshq/gatepass-backend/pkg/redis"
	"github.com/gatepasshq/gatepass-backend/pkg/stripe"
)

type pinger interface {
	Ping(context.Context) error
}

// RouterParams carries everything the HTTP surface depends on.
type RouterParams struct {
	Config        *config.Config
	Logger        *logger.Logger
	DB            pinger
	Redis         *redis.Client
	Catalog       catalog.Service
	Cart          cart.Service
	Promos        promos.Service
	Checkout      checkoutsvc.Service
	Bookings      bookings.Service
	Orders        orders.Service
	Notifications notifications.Service
	Stripe        *stripe.Client
	StripeWebhook *stripewebhook.Service
	WebhookGuard  *stripewebhook.IdempotencyGuard
	CheckoutLimit middleware.RateLimitPolicy
	HoldLimit     middleware.RateLimitPolicy
}

func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.DB, p.Redis))
	})

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/stripe", webhookcontrollers.StripeWebhook(p.StripeWebhook, p.Stripe, p.WebhookGuard, logg))
	})

	// Public storefront surface. No auth; rate limits and the
	// Idempotency-Key middleware guard the write endpoints.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Idempotency(p.Redis, logg))

		r.Get("/organizations/{slug}", controllers.GetOrganization(p.Catalog, logg))
		r.Get("/events", controllers.ListEvents(p.Catalog, logg))
		r.Get("/events/{eventID}", controllers.GetEvent(p.Catalog, logg))
		r.Get("/attractions", controllers.ListAttractions(p.Catalog, logg))
		r.Get("/attractions/{attractionID}", controllers.GetAttraction(p.Catalog, logg))
		r.Get("/attractions/{attractionID}/slots", controllers.ListSlots(p.Bookings, logg))

		r.Put("/cart", controllers.SaveCartSnapshot(p.Cart, logg))
		r.Post("/promos/resolve", controllers.ResolvePromoCode(p.Promos, logg))

		r.Post("/checkout/quote", controllers.CheckoutQuote(p.Checkout, logg))
		r.With(middleware.RateLimit(p.CheckoutLimit, p.Redis, logg)).
			Post("/checkout", controllers.CheckoutExecute(p.Checkout, logg))

		r.Route("/bookings", func(r chi.Router) {
			r.With(middleware.RateLimit(p.HoldLimit, p.Redis, logg)).
				Post("/holds", controllers.CreateHold(p.Bookings, logg))
			r.Get("/{reference}", controllers.GetBookingByReference(p.Bookings, logg))
			r.Post("/{bookingID}/reschedule", controllers.RescheduleBooking(p.Bookings, logg))
			r.Post("/{bookingID}/resize", controllers.ResizeBooking(p.Bookings, logg))
			r.Post("/{bookingID}/cancel", controllers.CancelBooking(p.Bookings, logg))
		})
	})

	// Organizer dashboard surface.
	r.Route("/api/v1/org", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(p.Redis, logg))

		r.Get("/orders", controllers.ListOrders(p.Orders, logg))
		r.Get("/orders/{orderID}", controllers.GetOrder(p.Orders, logg))
		r.Post("/orders/{orderID}/cancel", controllers.CancelOrder(p.Orders, logg))
		r.Get("/notifications", controllers.ListNotifications(p.Notifications, logg))
	})

	return r
}

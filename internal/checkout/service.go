package checkout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	stripesdk "github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/gatepasshq/gatepass-backend/internal/cart"
	"github.com/gatepasshq/gatepass-backend/internal/catalog"
	"github.com/gatepasshq/gatepass-backend/internal/orders"
	"github.com/gatepasshq/gatepass-backend/internal/pricing"
	"github.com/gatepasshq/gatepass-backend/internal/promos"
	"github.com/gatepasshq/gatepass-backend/pkg/db/models"
	"github.com/gatepasshq/gatepass-backend/pkg/enums"
	pkgerrors "github.com/gatepasshq/gatepass-backend/pkg/errors"
	"github.com/gatepasshq/gatepass-backend/pkg/logger"
	"github.com/gatepasshq/gatepass-backend/pkg/outbox"
	"github.com/gatepasshq/gatepass-backend/pkg/outbox/payloads"
)

// TicketSelection is one requested ticket tier with quantity and any
// reserved seats.
type TicketSelection struct {
	TicketTypeID uuid.UUID
	Quantity     int
	SeatIDs      []string
}

// MerchSelection is one requested merchandise product.
type MerchSelection struct {
	ProductID uuid.UUID
	Quantity  int
}

// QuoteInput is everything needed to price a cart. Execute reuses the
// same input so the charged amount always matches the displayed quote.
type QuoteInput struct {
	OrgID         uuid.UUID
	EventID       uuid.UUID
	SessionID     string
	CustomerEmail string
	CustomerName  string
	Tickets       []TicketSelection
	Merch         []MerchSelection
	PromoCode     string
	DonationCents int64
}

// Quote is a priced cart. PromoMessage carries the reason a submitted
// code did not apply; the quote itself is still valid without it.
type Quote struct {
	Totals       pricing.Totals
	Discount     promos.TotalDiscount
	PromoMessage string
	Lines        []models.OrderLineItem
}

// ExecuteResult is a persisted order plus the Stripe client secret the
// frontend needs to collect payment.
type ExecuteResult struct {
	Order        *models.Order
	ClientSecret string
}

// Service prices carts and turns them into pending orders.
type Service interface {
	Quote(ctx context.Context, in QuoteInput) (*Quote, error)
	Execute(ctx context.Context, in QuoteInput) (*ExecuteResult, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type paymentClient interface {
	CreatePaymentIntent(ctx context.Context, amountCents int64, currency, customerEmail string, metadata map[string]string) (*stripesdk.PaymentIntent, error)
}

type service struct {
	catalog  catalog.Service
	promos   promos.Service
	carts    cart.Service
	orders   orders.OrderRepository
	tx       txRunner
	emitter  eventEmitter
	payments paymentClient
	logg     *logger.Logger
	now      func() time.Time
}

// NewService wires the checkout flow.
func NewService(
	catalogSvc catalog.Service,
	promoSvc promos.Service,
	cartSvc cart.Service,
	orderRepo orders.OrderRepository,
	tx txRunner,
	emitter eventEmitter,
	payments paymentClient,
	logg *logger.Logger,
) (Service, error) {
	if catalogSvc == nil {
		return nil, fmt.Errorf("catalog service required")
	}
	if promoSvc == nil {
		return nil, fmt.Errorf("promo service required")
	}
	if cartSvc == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if orderRepo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if emitter == nil {
		return nil, fmt.Errorf("event emitter required")
	}
	if payments == nil {
		return nil, fmt.Errorf("payment client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		catalog:  catalogSvc,
		promos:   promoSvc,
		carts:    cartSvc,
		orders:   orderRepo,
		tx:       tx,
		emitter:  emitter,
		payments: payments,
		logg:     logg,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

// Quote prices the cart without touching any state. Submitting the same
// input twice returns identical totals.
func (s *service) Quote(ctx context.Context, in QuoteInput) (*Quote, error) {
	return s.buildQuote(ctx, in)
}

// Execute persists the quoted cart as a pending order, records the
// promo redemption, seals the cart snapshot, and opens a Stripe payment
// intent for the charge amount. The order and its side effects commit
// in one transaction before Stripe is called; a payment intent failure
// leaves a pending order that the payment retry path can pick up.
func (s *service) Execute(ctx context.Context, in QuoteInput) (*ExecuteResult, error) {
	quote, err := s.buildQuote(ctx, in)
	if err != nil {
		return nil, err
	}

	order := s.orderFromQuote(in, quote)
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.orders.WithTx(tx).Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist order")
		}
		if quote.Discount.Promo.Applied() {
			already, err := s.promos.Redeem(ctx, tx, quote.Discount.Promo.Promo.ID, in.SessionID, &order.ID)
			if err != nil {
				return err
			}
			if already {
				s.logg.Info(ctx, "promo already redeemed for session, keeping discount")
			}
		}
		if err := s.carts.Complete(ctx, tx, in.EventID, in.CustomerEmail, in.SessionID); err != nil {
			return err
		}
		return s.emitter.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Data: payloads.OrderCreatedEvent{
				OrderID:       order.ID,
				OrgID:         order.OrgID,
				EventID:       order.EventID,
				TotalCents:    order.TotalCents,
				CustomerEmail: order.CustomerEmail,
			},
			Version:    1,
			OccurredAt: s.now(),
		})
	})
	if err != nil {
		return nil, err
	}

	intent, err := s.payments.CreatePaymentIntent(ctx, order.TotalCents, string(order.Currency), order.CustomerEmail, map[string]string{
		"order_id":   order.ID.String(),
		"org_id":     order.OrgID.String(),
		"session_id": order.SessionID,
	})
	if err != nil {
		s.logg.Error(ctx, "create payment intent", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "open payment intent")
	}

	order.StripePaymentIntentID = &intent.ID
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "attach payment intent to order")
	}

	return &ExecuteResult{Order: order, ClientSecret: intent.ClientSecret}, nil
}

func (s *service) buildQuote(ctx context.Context, in QuoteInput) (*Quote, error) {
	if err := validateQuoteInput(in); err != nil {
		return nil, err
	}

	event, err := s.catalog.Event(ctx, in.EventID)
	if err != nil {
		return nil, err
	}
	if event.OrgID != in.OrgID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "event not found")
	}
	if !event.Published {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "event is not open for sales")
	}

	billing, err := s.catalog.BillingFor(ctx, in.OrgID)
	if err != nil {
		return nil, err
	}

	items, lines, err := s.resolveLines(ctx, in)
	if err != nil {
		return nil, err
	}

	var ticketSubtotal, subtotal int64
	var ticketCount int
	for _, item := range items {
		subtotal += item.LineTotalCents()
		if item.Category != enums.ItemCategoryMerch {
			ticketSubtotal += item.LineTotalCents()
			ticketCount += item.Quantity
		}
	}

	discount := promos.TotalDiscount{}
	if ticketCount > 0 || in.PromoCode != "" {
		discount, err = s.promos.ResolveTotalDiscount(ctx, promos.ResolveInput{
			OrgID:               in.OrgID,
			EventID:             in.EventID,
			Code:                in.PromoCode,
			TicketCount:         ticketCount,
			TicketSubtotalCents: ticketSubtotal,
			SubtotalCents:       subtotal,
			Now:                 s.now(),
		})
		if err != nil {
			return nil, err
		}
	}

	totals := pricing.Compute(pricing.Input{
		Items:         items,
		DiscountCents: discount.DiscountCents,
		DonationCents: in.DonationCents,
		Billing:       billing,
	})

	return &Quote{
		Totals:       totals,
		Discount:     discount,
		PromoMessage: discount.Promo.ValidationMessage,
		Lines:        lines,
	}, nil
}

// resolveLines looks up every selected catalog item and prices it at
// the stored price, never at a client-supplied one.
func (s *service) resolveLines(ctx context.Context, in QuoteInput) ([]pricing.LineItem, []models.OrderLineItem, error) {
	var items []pricing.LineItem
	var lines []models.OrderLineItem

	if len(in.Tickets) > 0 {
		ids := make([]uuid.UUID, 0, len(in.Tickets))
		for _, sel := range in.Tickets {
			ids = append(ids, sel.TicketTypeID)
		}
		ticketTypes, err := s.catalog.TicketTypes(ctx, in.EventID, ids)
		if err != nil {
			return nil, nil, err
		}
		byID := make(map[uuid.UUID]models.TicketType, len(ticketTypes))
		for _, tt := range ticketTypes {
			byID[tt.ID] = tt
		}
		for _, sel := range in.Tickets {
			tt, ok := byID[sel.TicketTypeID]
			if !ok {
				return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown ticket type in cart").
					WithDetails(map[string]any{"ticket_type_id": sel.TicketTypeID})
			}
			if sel.Quantity <= 0 {
				return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "ticket quantity must be positive")
			}
			if tt.QuantityAvailable != nil && sel.Quantity > *tt.QuantityAvailable {
				return nil, nil, pkgerrors.New(pkgerrors.CodeCapacity, "not enough tickets remaining").
					WithDetails(map[string]any{
						"ticket_type_id": tt.ID,
						"remaining":      *tt.QuantityAvailable,
						"requested":      sel.Quantity,
					})
			}
			items = append(items, pricing.LineItem{
				ItemID:             tt.ID,
				Name:               tt.Name,
				Category:           enums.ItemCategoryTicket,
				UnitPriceCents:     tt.PriceCents,
				Quantity:           sel.Quantity,
				AttendeesPerTicket: tt.AttendeesPerTicket,
				SeatIDs:            sel.SeatIDs,
			})
			lines = append(lines, models.OrderLineItem{
				Category:           enums.ItemCategoryTicket,
				ItemID:             tt.ID,
				Name:               tt.Name,
				UnitPriceCents:     tt.PriceCents,
				Quantity:           sel.Quantity,
				AttendeesPerTicket: tt.AttendeesPerTicket,
				SeatIDs:            pq.StringArray(sel.SeatIDs),
				LineTotalCents:     tt.PriceCents * int64(sel.Quantity),
			})
		}
	}

	if len(in.Merch) > 0 {
		ids := make([]uuid.UUID, 0, len(in.Merch))
		for _, sel := range in.Merch {
			ids = append(ids, sel.ProductID)
		}
		products, err := s.catalog.MerchProducts(ctx, in.OrgID, ids)
		if err != nil {
			return nil, nil, err
		}
		byID := make(map[uuid.UUID]models.MerchProduct, len(products))
		for _, p := range products {
			byID[p.ID] = p
		}
		for _, sel := range in.Merch {
			p, ok := byID[sel.ProductID]
			if !ok {
				return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown merch product in cart").
					WithDetails(map[string]any{"product_id": sel.ProductID})
			}
			if sel.Quantity <= 0 {
				return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "merch quantity must be positive")
			}
			items = append(items, pricing.LineItem{
				ItemID:         p.ID,
				Name:           p.Name,
				Category:       enums.ItemCategoryMerch,
				UnitPriceCents: p.PriceCents,
				Quantity:       sel.Quantity,
			})
			lines = append(lines, models.OrderLineItem{
				Category:       enums.ItemCategoryMerch,
				ItemID:         p.ID,
				Name:           p.Name,
				UnitPriceCents: p.PriceCents,
				Quantity:       sel.Quantity,
				LineTotalCents: p.PriceCents * int64(sel.Quantity),
			})
		}
	}

	if len(items) == 0 {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	return items, lines, nil
}

// orderFromQuote snapshots the quote into an order row. The donation is
// added to the charged total here; the engine keeps it out of its own
// total so tax math stays on the discounted bases.
func (s *service) orderFromQuote(in QuoteInput, quote *Quote) *models.Order {
	eventID := in.EventID
	order := &models.Order{
		ID:                 uuid.New(),
		OrgID:              in.OrgID,
		EventID:            &eventID,
		SessionID:          in.SessionID,
		CustomerEmail:      strings.ToLower(strings.TrimSpace(in.CustomerEmail)),
		Currency:           quote.Totals.Currency,
		SubtotalCents:      quote.Totals.SubtotalCents,
		DiscountCents:      quote.Totals.DiscountCents,
		ProcessingFeeCents: quote.Totals.ProcessingFeeCents,
		TaxCents:           quote.Totals.TaxTotalCents,
		DonationCents:      in.DonationCents,
		TotalCents:         quote.Totals.TotalCents + in.DonationCents,
		TicketCount:        quote.Totals.TicketCount,
		AttendeeCount:      quote.Totals.AttendeeCount,
		Status:             enums.OrderStatusPending,
		PaymentStatus:      enums.PaymentStatusPending,
		Items:              quote.Lines,
	}
	if name := strings.TrimSpace(in.CustomerName); name != "" {
		order.CustomerName = &name
	}
	if quote.Discount.Promo.Applied() {
		id := quote.Discount.Promo.Promo.ID
		order.PromoCodeID = &id
	}
	for i := range order.Items {
		order.Items[i].ID = uuid.New()
		order.Items[i].OrderID = order.ID
	}
	return order
}

func validateQuoteInput(in QuoteInput) error {
	if in.OrgID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "organization id required")
	}
	if in.EventID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "event id required")
	}
	if strings.TrimSpace(in.CustomerEmail) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer email required")
	}
	if strings.TrimSpace(in.SessionID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session id required")
	}
	if in.DonationCents < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "donation cannot be negative")
	}
	return nil
}

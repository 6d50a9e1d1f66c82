package orders

import (
	"context"
	"testing"

	"github.com/gatepasshq/gatepass-backend/pkg/db/models"
	"github.com/gatepasshq/gatepass-backend/pkg/enums"
	pkgerrors "github.com/gatepasshq/gatepass-backend/pkg/errors"
	"github.com/gatepasshq/gatepass-backend/pkg/logger"
	"github.com/gatepasshq/gatepass-backend/pkg/outbox"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testTxRunner struct {
	db *gorm.DB
}

func (r *testTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

type stubEmitter struct {
	events []outbox.DomainEvent
}

func (e *stubEmitter) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	e.events = append(e.events, event)
	return nil
}

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file:orders_"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{
		`CREATE TABLE orders (
  id TEXT PRIMARY KEY,
  org_id TEXT NOT NULL,
  event_id TEXT,
  session_id TEXT NOT NULL DEFAULT '',
  customer_email TEXT NOT NULL,
  customer_name TEXT,
  currency TEXT NOT NULL DEFAULT 'USD',
  subtotal_cents INTEGER NOT NULL,
  discount_cents INTEGER NOT NULL DEFAULT 0,
  processing_fee_cents INTEGER NOT NULL DEFAULT 0,
  tax_cents INTEGER NOT NULL DEFAULT 0,
  donation_cents INTEGER NOT NULL DEFAULT 0,
  total_cents INTEGER NOT NULL,
  ticket_count INTEGER NOT NULL DEFAULT 0,
  attendee_count INTEGER NOT NULL DEFAULT 0,
  promo_code_id TEXT,
  status TEXT NOT NULL DEFAULT 'pending',
  payment_status TEXT NOT NULL DEFAULT 'pending',
  stripe_payment_intent_id TEXT,
  paid_at DATETIME,
  cancelled_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
)`,
		`CREATE TABLE order_line_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  category TEXT NOT NULL,
  item_id TEXT NOT NULL,
  name TEXT NOT NULL,
  unit_price_cents INTEGER NOT NULL,
  quantity INTEGER NOT NULL,
  attendees_per_ticket INTEGER NOT NULL DEFAULT 1,
  seat_ids TEXT,
  line_total_cents INTEGER NOT NULL,
  created_at DATETIME
)`,
	}
	for _, stmt := range statements {
		require.NoError(t, conn.Exec(stmt).Error)
	}
	return conn
}

func newOrdersService(t *testing.T, conn *gorm.DB) (Service, *stubEmitter) {
	t.Helper()
	emitter := &stubEmitter{}
	svc, err := NewService(NewRepository(conn), &testTxRunner{db: conn}, emitter,
		logger.New(logger.Options{ServiceName: "test"}))
	require.NoError(t, err)
	return svc, emitter
}

func seedOrder(t *testing.T, conn *gorm.DB, intentID string) *models.Order {
	t.Helper()
	order := &models.Order{
		ID:                    uuid.New(),
		OrgID:                 uuid.New(),
		SessionID:             "sess-1",
		CustomerEmail:         "guest@example.com",
		Currency:              enums.CurrencyUSD,
		SubtotalCents:         10000,
		TotalCents:            10300,
		Status:                enums.OrderStatusPending,
		PaymentStatus:         enums.PaymentStatusPending,
		StripePaymentIntentID: &intentID,
	}
	require.NoError(t, conn.Create(order).Error)
	return order
}

func TestMarkPaidByPaymentIntent(t *testing.T) {
	conn := setupOrdersTestDB(t)
	svc, emitter := newOrdersService(t, conn)
	seedOrder(t, conn, "pi_123")

	order, err := svc.MarkPaidByPaymentIntent(context.Background(), "pi_123")
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusCompleted, order.Status)
	assert.Equal(t, enums.PaymentStatusPaid, order.PaymentStatus)
	require.NotNil(t, order.PaidAt)
	require.Len(t, emitter.events, 1)
	assert.Equal(t, enums.EventOrderPaid, emitter.events[0].EventType)
}

func TestMarkPaidIsIdempotentOnRedelivery(t *testing.T) {
	conn := setupOrdersTestDB(t)
	svc, emitter := newOrdersService(t, conn)
	seedOrder(t, conn, "pi_123")

	_, err := svc.MarkPaidByPaymentIntent(context.Background(), "pi_123")
	require.NoError(t, err)
	_, err = svc.MarkPaidByPaymentIntent(context.Background(), "pi_123")
	require.NoError(t, err)

	// Only the first delivery emits.
	assert.Len(t, emitter.events, 1)
}

func TestMarkPaidUnknownIntent(t *testing.T) {
	conn := setupOrdersTestDB(t)
	svc, _ := newOrdersService(t, conn)

	_, err := svc.MarkPaidByPaymentIntent(context.Background(), "pi_missing")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestMarkFailedKeepsOrderPending(t *testing.T) {
	conn := setupOrdersTestDB(t)
	svc, _ := newOrdersService(t, conn)
	seedOrder(t, conn, "pi_123")

	order, err := svc.MarkFailedByPaymentIntent(context.Background(), "pi_123")
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusPending, order.Status)
	assert.Equal(t, enums.PaymentStatusFailed, order.PaymentStatus)
}

func TestCancelCompletedOrderRejected(t *testing.T) {
	conn := setupOrdersTestDB(t)
	svc, _ := newOrdersService(t, conn)
	order := seedOrder(t, conn, "pi_123")

	_, err := svc.MarkPaidByPaymentIntent(context.Background(), "pi_123")
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), order.ID, "customer changed mind")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
}

func TestCancelPendingOrder(t *testing.T) {
	conn := setupOrdersTestDB(t)
	svc, emitter := newOrdersService(t, conn)
	order := seedOrder(t, conn, "pi_123")

	cancelled, err := svc.Cancel(context.Background(), order.ID, "abandoned")
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelledAt)
	require.Len(t, emitter.events, 1)
	assert.Equal(t, enums.EventOrderCancelled, emitter.events[0].EventType)
}

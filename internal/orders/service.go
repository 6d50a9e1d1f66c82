package orders

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
	"github.com/gatepasshq/gatepass-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Page is one cursor page of orders.
type Page struct {
	Orders     []models.Order
	NextCursor string
}

// Service owns order state transitions after checkout created the row.
type Service interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, orgID uuid.UUID, params pagination.Params) (Page, error)
	MarkPaidByPaymentIntent(ctx context.Context, paymentIntentID string) (*models.Order, error)
	MarkFailedByPaymentIntent(ctx context.Context, paymentIntentID string) (*models.Order, error)
	Cancel(ctx context.Context, id uuid.UUID, reason string) (*models.Order, error)
}

type service struct {
	repo    OrderRepository
	tx      txRunner
	emitter eventEmitter
	logg    *logger.Logger
	now     func() time.Time
}

// NewService builds the order service.
func NewService(repo OrderRepository, tx txRunner, emitter eventEmitter, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
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
	return &service{
		repo:    repo,
		tx:      tx,
		emitter: emitter,
		logg:    logg,
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, orderLoadError(err)
	}
	return order, nil
}

func (s *service) List(ctx context.Context, orgID uuid.UUID, params pagination.Params) (Page, error) {
	rows, err := s.repo.ListByOrg(ctx, orgID, params)
	if err != nil {
		return Page{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}

	page := Page{Orders: rows}
	limit := pagination.NormalizeLimit(params.Limit)
	if len(rows) > limit {
		page.Orders = rows[:limit]
		last := page.Orders[limit-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return page, nil
}

// MarkPaidByPaymentIntent settles the order for a succeeded payment
// intent. Re-delivery of the same webhook finds the order already
// completed and returns it unchanged.
func (s *service) MarkPaidByPaymentIntent(ctx context.Context, paymentIntentID string) (*models.Order, error) {
	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		var err error
		order, err = repo.GetByPaymentIntentID(ctx, paymentIntentID)
		if err != nil {
			return orderLoadError(err)
		}
		if order.Status == enums.OrderStatusCompleted {
			return nil
		}
		if !order.Status.CanTransitionTo(enums.OrderStatusCompleted) {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("order is %s and cannot be completed", order.Status))
		}

		now := s.now()
		order.Status = enums.OrderStatusCompleted
		order.PaymentStatus = enums.PaymentStatusPaid
		order.PaidAt = &now
		if err := repo.Update(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order")
		}

		return s.emitter.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderPaid,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Data: payloads.OrderPaidEvent{
				OrderID:       order.ID,
				OrgID:         order.OrgID,
				TotalCents:    order.TotalCents,
				CustomerEmail: order.CustomerEmail,
				PaidAt:        now,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// MarkFailedByPaymentIntent records a failed charge. The order stays
// pending so the customer can retry payment.
func (s *service) MarkFailedByPaymentIntent(ctx context.Context, paymentIntentID string) (*models.Order, error) {
	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		var err error
		order, err = repo.GetByPaymentIntentID(ctx, paymentIntentID)
		if err != nil {
			return orderLoadError(err)
		}
		if order.Status != enums.OrderStatusPending {
			return nil
		}

		order.PaymentStatus = enums.PaymentStatusFailed
		if err := repo.Update(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// Cancel abandons a pending order.
func (s *service) Cancel(ctx context.Context, id uuid.UUID, reason string) (*models.Order, error) {
	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		var err error
		order, err = repo.GetByID(ctx, id)
		if err != nil {
			return orderLoadError(err)
		}
		if !order.Status.CanTransitionTo(enums.OrderStatusCancelled) {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("order is %s and cannot be cancelled", order.Status))
		}

		now := s.now()
		order.Status = enums.OrderStatusCancelled
		order.CancelledAt = &now
		if err := repo.Update(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order")
		}

		return s.emitter.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCancelled,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Data: payloads.OrderCancelledEvent{
				OrderID:     order.ID,
				OrgID:       order.OrgID,
				CancelledAt: now,
				Reason:      reason,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func orderLoadError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
}

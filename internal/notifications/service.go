package notifications

import (
	"context"
	"time"

	"github.com/gatepasshq/gatepass-backend/pkg/db/models"
	pkgerrors "github.com/gatepasshq/gatepass-backend/pkg/errors"
	"github.com/gatepasshq/gatepass-backend/pkg/logger"
	"github.com/gatepasshq/gatepass-backend/pkg/pagination"
	"github.com/google/uuid"
)

// EmailSender delivers one message. Implementations must be safe for
// concurrent use; delivery failures are logged, never fatal.
type EmailSender interface {
	Send(ctx context.Context, recipient, subject, body string) error
}

// Service defines notification list and dispatch operations.
type Service interface {
	List(ctx context.Context, params ListParams) (*ListResult, error)
	Enqueue(ctx context.Context, notification *models.Notification) error
	DispatchPending(ctx context.Context, limit int) (int, error)
}

// ListParams configures pagination for an organization's notifications.
type ListParams struct {
	OrgID      uuid.UUID
	Limit      int
	Cursor     string
	UnsentOnly bool
}

// ListResult wraps returned notifications and the cursor for the next page.
type ListResult struct {
	Items  []models.Notification `json:"items"`
	Cursor string                `json:"cursor"`
}

type service struct {
	repo   Repository
	sender EmailSender
	logg   *logger.Logger
	now    func() time.Time
}

// NewService wires notification dependencies.
func NewService(repo Repository, sender EmailSender, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	if sender == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "email sender required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	return &service{
		repo:   repo,
		sender: sender,
		logg:   logg,
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.OrgID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "organization id required")
	}

	query := listNotificationsParams{
		OrgID:      params.OrgID,
		Limit:      params.Limit,
		UnsentOnly: params.UnsentOnly,
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notifications")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &ListResult{Items: rows, Cursor: cursor}, nil
}

// Enqueue stores the notification and attempts immediate delivery.
// A send failure leaves the row unsent for DispatchPending to retry.
func (s *service) Enqueue(ctx context.Context, notification *models.Notification) error {
	if notification == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification required")
	}
	if notification.Recipient == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "recipient required")
	}
	if notification.ID == uuid.Nil {
		notification.ID = uuid.New()
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store notification")
	}

	if err := s.sender.Send(ctx, notification.Recipient, notification.Subject, notification.Body); err != nil {
		s.logg.Error(ctx, "notification delivery failed, left queued", err)
		return nil
	}
	if _, err := s.repo.MarkSent(ctx, notification.ID, s.now()); err != nil {
		s.logg.Error(ctx, "mark notification sent failed", err)
	}
	return nil
}

// DispatchPending retries undelivered notifications and returns how
// many went out.
func (s *service) DispatchPending(ctx context.Context, limit int) (int, error) {
	if limit <= 0 {
		limit = 100
	}
	pending, err := s.repo.ListUnsent(ctx, limit)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list unsent notifications")
	}

	sent := 0
	for i := range pending {
		n := pending[i]
		if err := s.sender.Send(ctx, n.Recipient, n.Subject, n.Body); err != nil {
			s.logg.Error(ctx, "notification delivery failed", err)
			continue
		}
		marked, err := s.repo.MarkSent(ctx, n.ID, s.now())
		if err != nil {
			s.logg.Error(ctx, "mark notification sent failed", err)
			continue
		}
		if marked {
			sent++
		}
	}
	return sent, nil
}

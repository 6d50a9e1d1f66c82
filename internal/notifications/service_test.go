package notifications

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gatepasshq/gatepass-backend/pkg/db/models"
	"github.com/gatepasshq/gatepass-backend/pkg/enums"
	pkgerrors "github.com/gatepasshq/gatepass-backend/pkg/errors"
	"github.com/gatepasshq/gatepass-backend/pkg/logger"
	paginationpkg "github.com/gatepasshq/gatepass-backend/pkg/pagination"
)

type fakeRepository struct {
	created    []*models.Notification
	marked     []uuid.UUID
	unsent     []models.Notification
	listFn     func(ctx context.Context, params listNotificationsParams) ([]models.Notification, *paginationpkg.Cursor, error)
	markSentFn func(ctx context.Context, id uuid.UUID, now time.Time) (bool, error)
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository {
	return f
}

func (f *fakeRepository) Create(ctx context.Context, notification *models.Notification) error {
	f.created = append(f.created, notification)
	return nil
}

func (f *fakeRepository) List(ctx context.Context, params listNotificationsParams) ([]models.Notification, *paginationpkg.Cursor, error) {
	if f.listFn != nil {
		return f.listFn(ctx, params)
	}
	return nil, nil, nil
}

func (f *fakeRepository) MarkSent(ctx context.Context, id uuid.UUID, now time.Time) (bool, error) {
	if f.markSentFn != nil {
		return f.markSentFn(ctx, id, now)
	}
	f.marked = append(f.marked, id)
	return true, nil
}

func (f *fakeRepository) ListUnsent(ctx context.Context, limit int) ([]models.Notification, error) {
	if limit < len(f.unsent) {
		return f.unsent[:limit], nil
	}
	return f.unsent, nil
}

type fakeSender struct {
	sent   []string
	failOn map[string]bool
}

func (f *fakeSender) Send(ctx context.Context, recipient, subject, body string) error {
	if f.failOn[recipient] {
		return errors.New("smtp unavailable")
	}
	f.sent = append(f.sent, recipient)
	return nil
}

func newServiceWith(repo Repository, sender EmailSender) Service {
	svc, _ := NewService(repo, sender, logger.New(logger.Options{ServiceName: "test"}))
	return svc
}

func TestService_ListNotifications(t *testing.T) {
	first := models.Notification{ID: uuid.New(), CreatedAt: time.Now().Add(-time.Hour)}
	next := models.Notification{ID: uuid.New(), CreatedAt: time.Now()}

	repo := &fakeRepository{
		listFn: func(ctx context.Context, params listNotificationsParams) ([]models.Notification, *paginationpkg.Cursor, error) {
			return []models.Notification{first}, &paginationpkg.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
		},
	}

	svc := newServiceWith(repo, &fakeSender{})
	result, err := svc.List(context.Background(), ListParams{OrgID: uuid.New(), Limit: 1})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(result.Items) != 1 || result.Items[0].ID != first.ID {
		t.Fatalf("unexpected items: %+v", result.Items)
	}
	if result.Cursor == "" {
		t.Fatal("expected next-page cursor")
	}
}

func TestService_ListRequiresOrg(t *testing.T) {
	svc := newServiceWith(&fakeRepository{}, &fakeSender{})
	_, err := svc.List(context.Background(), ListParams{})
	if err == nil {
		t.Fatal("expected error")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestService_EnqueueSendsImmediately(t *testing.T) {
	repo := &fakeRepository{}
	sender := &fakeSender{}
	svc := newServiceWith(repo, sender)

	err := svc.Enqueue(context.Background(), &models.Notification{
		OrgID:     uuid.New(),
		Type:      enums.NotificationTypeBookingConfirmation,
		Recipient: "guest@example.com",
		Subject:   "Booking GP-ABC confirmed",
		Body:      "See you soon.",
	})
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected row stored, got %d", len(repo.created))
	}
	if len(sender.sent) != 1 || sender.sent[0] != "guest@example.com" {
		t.Fatalf("expected immediate delivery, got %v", sender.sent)
	}
	if len(repo.marked) != 1 {
		t.Fatal("expected notification marked sent")
	}
}

func TestService_EnqueueSendFailureLeavesQueued(t *testing.T) {
	repo := &fakeRepository{}
	sender := &fakeSender{failOn: map[string]bool{"guest@example.com": true}}
	svc := newServiceWith(repo, sender)

	err := svc.Enqueue(context.Background(), &models.Notification{
		Recipient: "guest@example.com",
		Subject:   "subject",
		Body:      "body",
	})
	if err != nil {
		t.Fatalf("delivery failures must not fail enqueue: %v", err)
	}
	if len(repo.created) != 1 {
		t.Fatal("expected row stored despite send failure")
	}
	if len(repo.marked) != 0 {
		t.Fatal("failed send must not mark the row")
	}
}

func TestService_DispatchPendingRetries(t *testing.T) {
	repo := &fakeRepository{
		unsent: []models.Notification{
			{ID: uuid.New(), Recipient: "a@example.com"},
			{ID: uuid.New(), Recipient: "broken@example.com"},
			{ID: uuid.New(), Recipient: "b@example.com"},
		},
	}
	sender := &fakeSender{failOn: map[string]bool{"broken@example.com": true}}
	svc := newServiceWith(repo, sender)

	sent, err := svc.DispatchPending(context.Background(), 10)
	if err != nil {
		t.Fatalf("DispatchPending: %v", err)
	}
	if sent != 2 {
		t.Fatalf("expected 2 sent, got %d", sent)
	}
	if len(repo.marked) != 2 {
		t.Fatalf("expected 2 marked, got %d", len(repo.marked))
	}
}

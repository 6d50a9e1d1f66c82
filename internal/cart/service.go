package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gatepasshq/gatepass-backend/pkg/db/models"
	pkgerrors "github.com/gatepasshq/gatepass-backend/pkg/errors"
	"github.com/gatepasshq/gatepass-backend/pkg/logger"
	"github.com/gatepasshq/gatepass-backend/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SnapshotInput is one debounced cart save from the checkout widget.
type SnapshotInput struct {
	OrgID         uuid.UUID
	EventID       uuid.UUID
	CustomerEmail string
	SessionID     string
	Items         json.RawMessage
	Totals        types.JSONMap
}

// Service persists abandoned-cart snapshots. The client debounces; the
// server just upserts and refuses writes after checkout completed.
type Service interface {
	Save(ctx context.Context, in SnapshotInput) (*models.CartSnapshot, error)
	Complete(ctx context.Context, tx *gorm.DB, eventID uuid.UUID, customerEmail, sessionID string) error
}

type service struct {
	repo SnapshotRepository
	logg *logger.Logger
	now  func() time.Time
}

// NewService builds the snapshot service.
func NewService(repo SnapshotRepository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("snapshot repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo: repo,
		logg: logg,
		now:  func() time.Time { return time.Now().UTC() },
	}, nil
}

// Save upserts the snapshot for this (event, email, session). A save
// against a completed snapshot is dropped silently so a post-purchase
// debounce flush cannot resurrect the cart.
func (s *service) Save(ctx context.Context, in SnapshotInput) (*models.CartSnapshot, error) {
	email := strings.TrimSpace(strings.ToLower(in.CustomerEmail))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer email required")
	}
	if in.SessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id required")
	}
	if in.EventID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "event id required")
	}
	if len(in.Items) == 0 || string(in.Items) == "[]" || string(in.Items) == "null" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	existing, err := s.repo.Find(ctx, in.EventID, email, in.SessionID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart snapshot")
	}
	if existing != nil && existing.CompletedAt != nil {
		s.logg.Info(ctx, "cart snapshot already completed, skipping save")
		return existing, nil
	}

	snapshot := &models.CartSnapshot{
		ID:            uuid.New(),
		OrgID:         in.OrgID,
		EventID:       in.EventID,
		CustomerEmail: email,
		SessionID:     in.SessionID,
		Items:         in.Items,
		Totals:        in.Totals,
	}
	if err := s.repo.Upsert(ctx, snapshot); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart snapshot")
	}
	return snapshot, nil
}

// Complete stamps the snapshot inside the checkout transaction. Missing
// snapshots are fine: not every checkout had an abandoned-cart save.
func (s *service) Complete(ctx context.Context, tx *gorm.DB, eventID uuid.UUID, customerEmail, sessionID string) error {
	email := strings.TrimSpace(strings.ToLower(customerEmail))
	repo := s.repo.WithTx(tx)
	rows, err := repo.MarkCompleted(ctx, eventID, email, sessionID, s.now())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "complete cart snapshot")
	}
	if rows == 0 {
		s.logg.Info(ctx, "no open cart snapshot to complete")
	}
	return nil
}

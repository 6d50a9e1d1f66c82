package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/gatepasshq/gatepass-backend/pkg/db/models"
	pkgerrors "github.com/gatepasshq/gatepass-backend/pkg/errors"
	"github.com/gatepasshq/gatepass-backend/pkg/pagination"
	"github.com/gatepasshq/gatepass-backend/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EventPage is one cursor page of events.
type EventPage struct {
	Events     []models.Event
	NextCursor string
}

// AttractionPage is one cursor page of attractions.
type AttractionPage struct {
	Attractions []models.Attraction
	NextCursor  string
}

// Service exposes the catalog reads used by checkout, booking, and the
// public widgets.
type Service interface {
	Organization(ctx context.Context, id uuid.UUID) (*models.Organization, error)
	OrganizationBySlug(ctx context.Context, slug string) (*models.Organization, error)
	BillingFor(ctx context.Context, orgID uuid.UUID) (types.BillingConfig, error)
	Event(ctx context.Context, id uuid.UUID) (*models.Event, error)
	Events(ctx context.Context, orgID uuid.UUID, params pagination.Params) (EventPage, error)
	Attraction(ctx context.Context, id uuid.UUID) (*models.Attraction, error)
	Attractions(ctx context.Context, orgID uuid.UUID, params pagination.Params) (AttractionPage, error)
	TicketTypes(ctx context.Context, eventID uuid.UUID, ids []uuid.UUID) ([]models.TicketType, error)
	MerchProducts(ctx context.Context, orgID uuid.UUID, ids []uuid.UUID) ([]models.MerchProduct, error)
}

type service struct {
	repo CatalogRepository
}

// NewService builds the catalog read service.
func NewService(repo CatalogRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Organization(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	org, err := s.repo.GetOrganization(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "organization not found")
	}
	return org, nil
}

func (s *service) OrganizationBySlug(ctx context.Context, slug string) (*models.Organization, error) {
	org, err := s.repo.GetOrganizationBySlug(ctx, slug)
	if err != nil {
		return nil, notFoundOr(err, "organization not found")
	}
	return org, nil
}

// BillingFor returns the organization's billing knobs, falling back to
// defaults when the organization never configured them.
func (s *service) BillingFor(ctx context.Context, orgID uuid.UUID) (types.BillingConfig, error) {
	org, err := s.Organization(ctx, orgID)
	if err != nil {
		return types.BillingConfig{}, err
	}
	billing := org.Billing
	if billing.Currency == "" {
		billing = types.DefaultBillingConfig()
	}
	return billing, nil
}

func (s *service) Event(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	event, err := s.repo.GetEvent(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "event not found")
	}
	return event, nil
}

func (s *service) Events(ctx context.Context, orgID uuid.UUID, params pagination.Params) (EventPage, error) {
	rows, err := s.repo.ListEvents(ctx, orgID, params)
	if err != nil {
		return EventPage{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list events")
	}

	page := EventPage{Events: rows}
	limit := pagination.NormalizeLimit(params.Limit)
	if len(rows) > limit {
		page.Events = rows[:limit]
		last := page.Events[limit-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return page, nil
}

func (s *service) Attraction(ctx context.Context, id uuid.UUID) (*models.Attraction, error) {
	attraction, err := s.repo.GetAttraction(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "attraction not found")
	}
	return attraction, nil
}

func (s *service) Attractions(ctx context.Context, orgID uuid.UUID, params pagination.Params) (AttractionPage, error) {
	rows, err := s.repo.ListAttractions(ctx, orgID, params)
	if err != nil {
		return AttractionPage{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list attractions")
	}

	page := AttractionPage{Attractions: rows}
	limit := pagination.NormalizeLimit(params.Limit)
	if len(rows) > limit {
		page.Attractions = rows[:limit]
		last := page.Attractions[limit-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return page, nil
}

func (s *service) TicketTypes(ctx context.Context, eventID uuid.UUID, ids []uuid.UUID) ([]models.TicketType, error) {
	rows, err := s.repo.GetTicketTypes(ctx, eventID, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load ticket types")
	}
	return rows, nil
}

func (s *service) MerchProducts(ctx context.Context, orgID uuid.UUID, ids []uuid.UUID) ([]models.MerchProduct, error) {
	rows, err := s.repo.GetMerchProducts(ctx, orgID, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load merch products")
	}
	return rows, nil
}

func notFoundOr(err error, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, message)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "catalog read")
}

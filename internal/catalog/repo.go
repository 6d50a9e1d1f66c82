package catalog

import (
	"context"

	"github.com/gatepasshq/gatepass-backend/pkg/db/models"
	"github.com/gatepasshq/gatepass-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CatalogRepository defines the read surface checkout and the public
// widgets need.
type CatalogRepository interface {
	GetOrganization(ctx context.Context, id uuid.UUID) (*models.Organization, error)
	GetOrganizationBySlug(ctx context.Context, slug string) (*models.Organization, error)
	GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error)
	ListEvents(ctx context.Context, orgID uuid.UUID, params pagination.Params) ([]models.Event, error)
	GetTicketTypes(ctx context.Context, eventID uuid.UUID, ids []uuid.UUID) ([]models.TicketType, error)
	GetMerchProducts(ctx context.Context, orgID uuid.UUID, ids []uuid.UUID) ([]models.MerchProduct, error)
	GetAttraction(ctx context.Context, id uuid.UUID) (*models.Attraction, error)
	ListAttractions(ctx context.Context, orgID uuid.UUID, params pagination.Params) ([]models.Attraction, error)
}

// Repository is the GORM-backed CatalogRepository.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetOrganization loads an organization by id.
func (r *Repository) GetOrganization(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	var org models.Organization
	if err := r.db.WithContext(ctx).First(&org, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

// GetOrganizationBySlug loads an organization by its public slug.
func (r *Repository) GetOrganizationBySlug(ctx context.Context, slug string) (*models.Organization, error) {
	var org models.Organization
	if err := r.db.WithContext(ctx).First(&org, "slug = ?", slug).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

// GetEvent loads an event with its ticket types.
func (r *Repository) GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	var event models.Event
	err := r.db.WithContext(ctx).
		Preload("TicketTypes").
		First(&event, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// ListEvents returns events for an organization, newest first, using
// the shared (created_at, id) cursor.
func (r *Repository) ListEvents(ctx context.Context, orgID uuid.UUID, params pagination.Params) ([]models.Event, error) {
	query := r.db.WithContext(ctx).
		Where("org_id = ?", orgID).
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit))

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Event
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// GetTicketTypes loads the requested ticket types of one event.
func (r *Repository) GetTicketTypes(ctx context.Context, eventID uuid.UUID, ids []uuid.UUID) ([]models.TicketType, error) {
	var rows []models.TicketType
	query := r.db.WithContext(ctx).Where("event_id = ?", eventID)
	if len(ids) > 0 {
		query = query.Where("id IN ?", ids)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// GetMerchProducts loads the requested active merch products of one
// organization.
func (r *Repository) GetMerchProducts(ctx context.Context, orgID uuid.UUID, ids []uuid.UUID) ([]models.MerchProduct, error) {
	var rows []models.MerchProduct
	query := r.db.WithContext(ctx).Where("org_id = ? AND active = ?", orgID, true)
	if len(ids) > 0 {
		query = query.Where("id IN ?", ids)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// GetAttraction loads an attraction by id.
func (r *Repository) GetAttraction(ctx context.Context, id uuid.UUID) (*models.Attraction, error) {
	var attraction models.Attraction
	if err := r.db.WithContext(ctx).First(&attraction, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &attraction, nil
}

// ListAttractions returns active attractions for an organization.
func (r *Repository) ListAttractions(ctx context.Context, orgID uuid.UUID, params pagination.Params) ([]models.Attraction, error) {
	query := r.db.WithContext(ctx).
		Where("org_id = ? AND active = ?", orgID, true).
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit))

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Attraction
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

package promos

import (
	"context"

	"github.com/gatepasshq/gatepass-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PromoRepository defines the persistence surface required by the promo
// resolver.
type PromoRepository interface {
	WithTx(tx *gorm.DB) PromoRepository
	FindActiveByOrgAndCode(ctx context.Context, orgID uuid.UUID, code string) (*models.PromoCode, error)
	InsertRedemption(ctx context.Context, redemption *models.PromoRedemption) error
	IncrementUseCount(ctx context.Context, promoCodeID uuid.UUID) (int64, error)
	ListTiersForEvent(ctx context.Context, eventID uuid.UUID) ([]models.GroupDiscountTier, error)
}

// Repository is the GORM-backed PromoRepository.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a promo repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) PromoRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindActiveByOrgAndCode loads an active promo code. The caller is
// expected to pass an already-normalized code.
func (r *Repository) FindActiveByOrgAndCode(ctx context.Context, orgID uuid.UUID, code string) (*models.PromoCode, error) {
	var promo models.PromoCode
	err := r.db.WithContext(ctx).
		Where("org_id = ? AND code = ? AND active = ?", orgID, code, true).
		First(&promo).Error
	if err != nil {
		return nil, err
	}
	return &promo, nil
}

// InsertRedemption records one redemption per (promo, session). The
// unique index makes a duplicate insert fail, which callers treat as
// already-redeemed.
func (r *Repository) InsertRedemption(ctx context.Context, redemption *models.PromoRedemption) error {
	return r.db.WithContext(ctx).Create(redemption).Error
}

// IncrementUseCount bumps the usage counter without exceeding max_uses.
// A zero row count means the code is exhausted.
func (r *Repository) IncrementUseCount(ctx context.Context, promoCodeID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.PromoCode{}).
		Where("id = ? AND (max_uses IS NULL OR use_count < max_uses)", promoCodeID).
		Update("use_count", gorm.Expr("use_count + 1"))
	return res.RowsAffected, res.Error
}

// ListTiersForEvent returns group discount tiers, most demanding first.
func (r *Repository) ListTiersForEvent(ctx context.Context, eventID uuid.UUID) ([]models.GroupDiscountTier, error) {
	var tiers []models.GroupDiscountTier
	if err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("min_tickets DESC").
		Find(&tiers).Error; err != nil {
		return nil, err
	}
	return tiers, nil
}

package cart

import (
	"context"
	"time"

	"github.com/gatepasshq/gatepass-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SnapshotRepository defines the persistence surface for abandoned-cart
// snapshots.
type SnapshotRepository interface {
	WithTx(tx *gorm.DB) SnapshotRepository
	Upsert(ctx context.Context, snapshot *models.CartSnapshot) error
	Find(ctx context.Context, eventID uuid.UUID, customerEmail, sessionID string) (*models.CartSnapshot, error)
	MarkCompleted(ctx context.Context, eventID uuid.UUID, customerEmail, sessionID string, at time.Time) (int64, error)
	DeleteStale(ctx context.Context, cutoff time.Time) (int64, error)
	DeleteCompletedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Repository is the GORM-backed SnapshotRepository.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a snapshot repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) SnapshotRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Upsert inserts or refreshes the snapshot keyed by
// (event_id, customer_email, session_id).
func (r *Repository) Upsert(ctx context.Context, snapshot *models.CartSnapshot) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "event_id"},
				{Name: "customer_email"},
				{Name: "session_id"},
			},
			DoUpdates: clause.AssignmentColumns([]string{"items", "totals", "updated_at"}),
		}).
		Create(snapshot).Error
}

// Find loads a snapshot by its identity key.
func (r *Repository) Find(ctx context.Context, eventID uuid.UUID, customerEmail, sessionID string) (*models.CartSnapshot, error) {
	var snapshot models.CartSnapshot
	err := r.db.WithContext(ctx).
		Where("event_id = ? AND customer_email = ? AND session_id = ?", eventID, customerEmail, sessionID).
		First(&snapshot).Error
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// MarkCompleted stamps the snapshot at checkout so later writes are
// rejected. Already-completed rows are left untouched.
func (r *Repository) MarkCompleted(ctx context.Context, eventID uuid.UUID, customerEmail, sessionID string, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.CartSnapshot{}).
		Where("event_id = ? AND customer_email = ? AND session_id = ? AND completed_at IS NULL",
			eventID, customerEmail, sessionID).
		Update("completed_at", at)
	return res.RowsAffected, res.Error
}

// DeleteStale removes abandoned snapshots last touched before cutoff.
// Completed snapshots are kept for conversion reporting.
func (r *Repository) DeleteStale(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("completed_at IS NULL AND updated_at < ?", cutoff).
		Delete(&models.CartSnapshot{})
	return res.RowsAffected, res.Error
}

// DeleteCompletedBefore removes converted snapshots once the order has
// aged out of conversion reporting.
func (r *Repository) DeleteCompletedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("completed_at IS NOT NULL AND completed_at < ?", cutoff).
		Delete(&models.CartSnapshot{})
	return res.RowsAffected, res.Error
}

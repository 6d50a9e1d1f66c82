package bookings

import (
	"context"
	"time"

	"github.com/gatepasshq/gatepass-backend/pkg/db/models"
	"github.com/gatepasshq/gatepass-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BookingRepository defines the persistence surface required by the
// slot capacity manager.
type BookingRepository interface {
	WithTx(tx *gorm.DB) BookingRepository
	GetSlot(ctx context.Context, id uuid.UUID) (*models.BookingSlot, error)
	GetAttraction(ctx context.Context, id uuid.UUID) (*models.Attraction, error)
	GetBooking(ctx context.Context, id uuid.UUID) (*models.AttractionBooking, error)
	GetBookingByReference(ctx context.Context, reference string) (*models.AttractionBooking, error)
	CreateBooking(ctx context.Context, booking *models.AttractionBooking) error
	UpdateBooking(ctx context.Context, booking *models.AttractionBooking) error
	ReserveCapacity(ctx context.Context, slotID uuid.UUID, size int) (bool, error)
	ReleaseCapacity(ctx context.Context, slotID uuid.UUID, size int) error
	AppendAuditLog(ctx context.Context, entry *models.BookingAuditLog) error
	ListExpiredHolds(ctx context.Context, now time.Time, limit int) ([]models.AttractionBooking, error)
	ListSlots(ctx context.Context, attractionID uuid.UUID, from time.Time, limit int) ([]models.BookingSlot, error)
}

// Repository is the GORM-backed BookingRepository.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a booking repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) BookingRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// GetSlot loads a booking slot.
func (r *Repository) GetSlot(ctx context.Context, id uuid.UUID) (*models.BookingSlot, error) {
	var slot models.BookingSlot
	if err := r.db.WithContext(ctx).First(&slot, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &slot, nil
}

// GetAttraction loads an attraction.
func (r *Repository) GetAttraction(ctx context.Context, id uuid.UUID) (*models.Attraction, error) {
	var attraction models.Attraction
	if err := r.db.WithContext(ctx).First(&attraction, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &attraction, nil
}

// GetBooking loads a booking by id.
func (r *Repository) GetBooking(ctx context.Context, id uuid.UUID) (*models.AttractionBooking, error) {
	var booking models.AttractionBooking
	if err := r.db.WithContext(ctx).First(&booking, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

// GetBookingByReference loads a booking by its customer-facing reference.
func (r *Repository) GetBookingByReference(ctx context.Context, reference string) (*models.AttractionBooking, error) {
	var booking models.AttractionBooking
	if err := r.db.WithContext(ctx).First(&booking, "booking_reference = ?", reference).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

// CreateBooking inserts a booking row.
func (r *Repository) CreateBooking(ctx context.Context, booking *models.AttractionBooking) error {
	return r.db.WithContext(ctx).Create(booking).Error
}

// UpdateBooking saves the booking row.
func (r *Repository) UpdateBooking(ctx context.Context, booking *models.AttractionBooking) error {
	return r.db.WithContext(ctx).Save(booking).Error
}

// ReserveCapacity atomically takes size heads from the slot. The guard
// keeps booked_count within max_capacity under concurrent writers; a
// false return means the slot cannot take the party.
func (r *Repository) ReserveCapacity(ctx context.Context, slotID uuid.UUID, size int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.BookingSlot{}).
		Where("id = ? AND booked_count + ? <= max_capacity", slotID, size).
		Update("booked_count", gorm.Expr("booked_count + ?", size))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ReleaseCapacity returns size heads to the slot, flooring at zero.
func (r *Repository) ReleaseCapacity(ctx context.Context, slotID uuid.UUID, size int) error {
	return r.db.WithContext(ctx).
		Model(&models.BookingSlot{}).
		Where("id = ?", slotID).
		Update("booked_count", gorm.Expr(
			"CASE WHEN booked_count >= ? THEN booked_count - ? ELSE 0 END", size, size)).Error
}

// AppendAuditLog records a mutating operation.
func (r *Repository) AppendAuditLog(ctx context.Context, entry *models.BookingAuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// ListExpiredHolds returns pending bookings whose hold deadline passed.
func (r *Repository) ListExpiredHolds(ctx context.Context, now time.Time, limit int) ([]models.AttractionBooking, error) {
	var rows []models.AttractionBooking
	err := r.db.WithContext(ctx).
		Where("booking_status = ? AND hold_expires_at IS NOT NULL AND hold_expires_at < ?",
			enums.BookingStatusPending, now).
		Order("hold_expires_at ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListSlots returns upcoming slots for an attraction.
func (r *Repository) ListSlots(ctx context.Context, attractionID uuid.UUID, from time.Time, limit int) ([]models.BookingSlot, error) {
	var rows []models.BookingSlot
	err := r.db.WithContext(ctx).
		Where("attraction_id = ? AND starts_at >= ?", attractionID, from).
		Order("starts_at ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

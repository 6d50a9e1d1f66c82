package models

import (
	"time"

	"github.com/google/uuid"
)

// PromoRedemption pins one promo application per checkout session so retries
// never double-count usage.
type PromoRedemption struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PromoCodeID uuid.UUID  `gorm:"column:promo_code_id;type:uuid;not null;index:idx_promo_redemptions_code_session,unique"`
	SessionID   string     `gorm:"column:session_id;type:text;not null;index:idx_promo_redemptions_code_session,unique"`
	OrderID     *uuid.UUID `gorm:"column:order_id;type:uuid"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
}

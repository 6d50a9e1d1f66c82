package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gatepasshq/gatepass-backend/pkg/enums"
)

// PromoCode is an organizer-issued discount code. Codes are stored
// upper-cased; lookups normalize input the same way.
type PromoCode struct {
	ID             uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrgID          uuid.UUID          `gorm:"column:org_id;type:uuid;not null;index:idx_promo_codes_org_code,unique"`
	Code           string             `gorm:"column:code;type:text;not null;index:idx_promo_codes_org_code,unique"`
	DiscountType   enums.DiscountType `gorm:"column:discount_type;type:text;not null"`
	PercentOff     decimal.Decimal    `gorm:"column:percent_off;type:numeric;not null;default:0"`
	AmountOffCents int64              `gorm:"column:amount_off_cents;not null;default:0"`
	MaxUses        *int               `gorm:"column:max_uses"`
	UseCount       int                `gorm:"column:use_count;not null;default:0"`
	TicketOnly     bool               `gorm:"column:ticket_only;not null;default:false"`
	StartsAt       *time.Time         `gorm:"column:starts_at;type:timestamptz"`
	ExpiresAt      *time.Time         `gorm:"column:expires_at;type:timestamptz"`
	Active         bool               `gorm:"column:active;not null;default:true"`
	CreatedAt      time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GroupDiscountTier grants a percentage off the ticket subtotal once the
// cart reaches MinTickets. The highest qualifying tier wins.
type GroupDiscountTier struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	EventID    uuid.UUID       `gorm:"column:event_id;type:uuid;not null;index"`
	MinTickets int             `gorm:"column:min_tickets;not null"`
	PercentOff decimal.Decimal `gorm:"column:percent_off;type:numeric;not null"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
}

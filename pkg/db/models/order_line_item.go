package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/gatepasshq/gatepass-backend/pkg/enums"
)

// OrderLineItem is one priced line on an order.
type OrderLineItem struct {
	ID                 uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID            uuid.UUID          `gorm:"column:order_id;type:uuid;not null;index"`
	Category           enums.ItemCategory `gorm:"column:category;type:text;not null"`
	ItemID             uuid.UUID          `gorm:"column:item_id;type:uuid;not null"`
	Name               string             `gorm:"column:name;type:text;not null"`
	UnitPriceCents     int64              `gorm:"column:unit_price_cents;not null"`
	Quantity           int                `gorm:"column:quantity;not null"`
	AttendeesPerTicket int                `gorm:"column:attendees_per_ticket;not null;default:1"`
	SeatIDs            pq.StringArray     `gorm:"column:seat_ids;type:text[]"`
	LineTotalCents     int64              `gorm:"column:line_total_cents;not null"`
	CreatedAt          time.Time          `gorm:"column:created_at;autoCreateTime"`
}

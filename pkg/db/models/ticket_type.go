package models

import (
	"time"

	"github.com/google/uuid"
)

// TicketType is a purchasable ticket tier for an event. AttendeesPerTicket
// covers table or group tickets that admit more than one person.
type TicketType struct {
	ID                 uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	EventID            uuid.UUID `gorm:"column:event_id;type:uuid;not null;index"`
	Name               string    `gorm:"column:name;type:text;not null"`
	PriceCents         int64     `gorm:"column:price_cents;not null"`
	AttendeesPerTicket int       `gorm:"column:attendees_per_ticket;not null;default:1"`
	QuantityAvailable  *int      `gorm:"column:quantity_available"`
	CreatedAt          time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// Event is a ticketed happening owned by an organization.
type Event struct {
	ID          uuid.UUID    `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrgID       uuid.UUID    `gorm:"column:org_id;type:uuid;not null;index"`
	Name        string       `gorm:"column:name;type:text;not null"`
	Description *string      `gorm:"column:description;type:text"`
	Venue       *string      `gorm:"column:venue;type:text"`
	StartsAt    time.Time    `gorm:"column:starts_at;type:timestamptz;not null"`
	EndsAt      *time.Time   `gorm:"column:ends_at;type:timestamptz"`
	Published   bool         `gorm:"column:published;not null;default:false"`
	TicketTypes []TicketType `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time    `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time    `gorm:"column:updated_at;autoUpdateTime"`
}

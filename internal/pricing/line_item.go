package pricing

import (
	"github.com/gatepasshq/gatepass-backend/pkg/enums"
	"github.com/google/uuid"
)

// LineItem is one purchasable unit (ticket type or merchandise) in a
// pending order. Amounts are integer cents in the organization currency.
type LineItem struct {
	ItemID             uuid.UUID
	Name               string
	Category           enums.ItemCategory
	UnitPriceCents     int64
	Quantity           int
	AttendeesPerTicket int
	SeatIDs            []string
}

// LineTotalCents returns unit price times quantity.
func (li LineItem) LineTotalCents() int64 {
	if li.Quantity <= 0 {
		return 0
	}
	return li.UnitPriceCents * int64(li.Quantity)
}

// Attendees returns the headcount this line admits. A missing
// multiplier counts as one attendee per unit.
func (li LineItem) Attendees() int {
	if li.Quantity <= 0 {
		return 0
	}
	mult := li.AttendeesPerTicket
	if mult < 1 {
		mult = 1
	}
	return li.Quantity * mult
}

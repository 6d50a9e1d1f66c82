package controllers

import (
	"time"

	"github.com/google/uuid"

	"github.com/gatepasshq/gatepass-backend/pkg/db/models"
)

type orderResponse struct {
	ID                 uuid.UUID          `json:"id"`
	OrgID              uuid.UUID          `json:"org_id"`
	EventID            *uuid.UUID         `json:"event_id,omitempty"`
	CustomerEmail      string             `json:"customer_email"`
	CustomerName       *string            `json:"customer_name,omitempty"`
	Currency           string             `json:"currency"`
	SubtotalCents      int64              `json:"subtotal_cents"`
	DiscountCents      int64              `json:"discount_cents"`
	ProcessingFeeCents int64              `json:"processing_fee_cents"`
	TaxCents           int64              `json:"tax_cents"`
	DonationCents      int64              `json:"donation_cents"`
	TotalCents         int64              `json:"total_cents"`
	TicketCount        int                `json:"ticket_count"`
	AttendeeCount      int                `json:"attendee_count"`
	Status             string             `json:"status"`
	PaymentStatus      string             `json:"payment_status"`
	Items              []lineItemResponse `json:"items,omitempty"`
	PaidAt             *time.Time         `json:"paid_at,omitempty"`
	CancelledAt        *time.Time         `json:"cancelled_at,omitempty"`
	CreatedAt          time.Time          `json:"created_at"`
}

type lineItemResponse struct {
	ID                 uuid.UUID `json:"id"`
	Category           string    `json:"category"`
	ItemID             uuid.UUID `json:"item_id"`
	Name               string    `json:"name"`
	UnitPriceCents     int64     `json:"unit_price_cents"`
	Quantity           int       `json:"quantity"`
	AttendeesPerTicket int       `json:"attendees_per_ticket"`
	SeatIDs            []string  `json:"seat_ids,omitempty"`
	LineTotalCents     int64     `json:"line_total_cents"`
}

func toOrderResponse(order *models.Order) orderResponse {
	resp := orderResponse{
		ID:                 order.ID,
		OrgID:              order.OrgID,
		EventID:            order.EventID,
		CustomerEmail:      order.CustomerEmail,
		CustomerName:       order.CustomerName,
		Currency:           string(order.Currency),
		SubtotalCents:      order.SubtotalCents,
		DiscountCents:      order.DiscountCents,
		ProcessingFeeCents: order.ProcessingFeeCents,
		TaxCents:           order.TaxCents,
		DonationCents:      order.DonationCents,
		TotalCents:         order.TotalCents,
		TicketCount:        order.TicketCount,
		AttendeeCount:      order.AttendeeCount,
		Status:             string(order.Status),
		PaymentStatus:      string(order.PaymentStatus),
		PaidAt:             order.PaidAt,
		CancelledAt:        order.CancelledAt,
		CreatedAt:          order.CreatedAt,
	}
	for _, item := range order.Items {
		resp.Items = append(resp.Items, toLineItemResponse(item))
	}
	return resp
}

func toLineItemResponse(item models.OrderLineItem) lineItemResponse {
	return lineItemResponse{
		ID:                 item.ID,
		Category:           string(item.Category),
		ItemID:             item.ItemID,
		Name:               item.Name,
		UnitPriceCents:     item.UnitPriceCents,
		Quantity:           item.Quantity,
		AttendeesPerTicket: item.AttendeesPerTicket,
		SeatIDs:            item.SeatIDs,
		LineTotalCents:     item.LineTotalCents,
	}
}

type bookingResponse struct {
	ID               uuid.UUID  `json:"id"`
	OrgID            uuid.UUID  `json:"org_id"`
	AttractionID     uuid.UUID  `json:"attraction_id"`
	BookingSlotID    uuid.UUID  `json:"booking_slot_id"`
	BookingReference string     `json:"booking_reference"`
	CustomerEmail    string     `json:"customer_email"`
	CustomerName     string     `json:"customer_name"`
	PartySize        int        `json:"party_size"`
	TotalCents       int64      `json:"total_cents"`
	BookingStatus    string     `json:"booking_status"`
	PaymentStatus    string     `json:"payment_status"`
	HoldExpiresAt    *time.Time `json:"hold_expires_at,omitempty"`
	ConfirmedAt      *time.Time `json:"confirmed_at,omitempty"`
	CancelledAt      *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

func toBookingResponse(booking *models.AttractionBooking) bookingResponse {
	return bookingResponse{
		ID:               booking.ID,
		OrgID:            booking.OrgID,
		AttractionID:     booking.AttractionID,
		BookingSlotID:    booking.BookingSlotID,
		BookingReference: booking.BookingReference,
		CustomerEmail:    booking.CustomerEmail,
		CustomerName:     booking.CustomerName,
		PartySize:        booking.PartySize,
		TotalCents:       booking.TotalCents,
		BookingStatus:    string(booking.BookingStatus),
		PaymentStatus:    string(booking.PaymentStatus),
		HoldExpiresAt:    booking.HoldExpiresAt,
		ConfirmedAt:      booking.ConfirmedAt,
		CancelledAt:      booking.CancelledAt,
		CreatedAt:        booking.CreatedAt,
	}
}

type slotResponse struct {
	ID           uuid.UUID `json:"id"`
	AttractionID uuid.UUID `json:"attraction_id"`
	StartsAt     time.Time `json:"starts_at"`
	EndsAt       time.Time `json:"ends_at"`
	MaxCapacity  int       `json:"max_capacity"`
	Remaining    int       `json:"remaining"`
	PriceCents   *int64    `json:"price_cents_override,omitempty"`
}

func toSlotResponse(slot models.BookingSlot) slotResponse {
	return slotResponse{
		ID:           slot.ID,
		AttractionID: slot.AttractionID,
		StartsAt:     slot.StartsAt,
		EndsAt:       slot.EndsAt,
		MaxCapacity:  slot.MaxCapacity,
		Remaining:    slot.Remaining(),
		PriceCents:   slot.PriceCentsOverride,
	}
}

type eventResponse struct {
	ID          uuid.UUID            `json:"id"`
	OrgID       uuid.UUID            `json:"org_id"`
	Name        string               `json:"name"`
	Description *string              `json:"description,omitempty"`
	Venue       *string              `json:"venue,omitempty"`
	StartsAt    time.Time            `json:"starts_at"`
	EndsAt      *time.Time           `json:"ends_at,omitempty"`
	Published   bool                 `json:"published"`
	TicketTypes []ticketTypeResponse `json:"ticket_types,omitempty"`
}

type ticketTypeResponse struct {
	ID                 uuid.UUID `json:"id"`
	Name               string    `json:"name"`
	PriceCents         int64     `json:"price_cents"`
	AttendeesPerTicket int       `json:"attendees_per_ticket"`
	QuantityAvailable  *int      `json:"quantity_available,omitempty"`
}

func toEventResponse(event *models.Event) eventResponse {
	resp := eventResponse{
		ID:          event.ID,
		OrgID:       event.OrgID,
		Name:        event.Name,
		Description: event.Description,
		Venue:       event.Venue,
		StartsAt:    event.StartsAt,
		EndsAt:      event.EndsAt,
		Published:   event.Published,
	}
	for _, tt := range event.TicketTypes {
		resp.TicketTypes = append(resp.TicketTypes, ticketTypeResponse{
			ID:                 tt.ID,
			Name:               tt.Name,
			PriceCents:         tt.PriceCents,
			AttendeesPerTicket: tt.AttendeesPerTicket,
			QuantityAvailable:  tt.QuantityAvailable,
		})
	}
	return resp
}

type attractionResponse struct {
	ID                        uuid.UUID `json:"id"`
	OrgID                     uuid.UUID `json:"org_id"`
	Name                      string    `json:"name"`
	Description               *string   `json:"description,omitempty"`
	BasePriceCents            int64     `json:"base_price_cents"`
	ModificationDeadlineHours *int      `json:"modification_deadline_hours,omitempty"`
	Active                    bool      `json:"active"`
}

func toAttractionResponse(attraction *models.Attraction) attractionResponse {
	return attractionResponse{
		ID:                        attraction.ID,
		OrgID:                     attraction.OrgID,
		Name:                      attraction.Name,
		Description:               attraction.Description,
		BasePriceCents:            attraction.BasePriceCents,
		ModificationDeadlineHours: attraction.ModificationDeadlineHours,
		Active:                    attraction.Active,
	}
}

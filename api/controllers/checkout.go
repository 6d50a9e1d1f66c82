package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/gatepasshq/gatepass-backend/api/responses"
	"github.com/gatepasshq/gatepass-backend/api/validators"
	"github.com/gatepasshq/gatepass-backend/internal/checkout"
	"github.com/gatepasshq/gatepass-backend/internal/pricing"
	"github.com/gatepasshq/gatepass-backend/pkg/logger"
)

type checkoutRequest struct {
	OrgID         uuid.UUID             `json:"org_id" validate:"required"`
	EventID       uuid.UUID             `json:"event_id" validate:"required"`
	SessionID     string                `json:"session_id" validate:"required"`
	CustomerEmail string                `json:"customer_email" validate:"required,email"`
	CustomerName  string                `json:"customer_name"`
	Tickets       []ticketSelectionBody `json:"tickets" validate:"dive"`
	Merch         []merchSelectionBody  `json:"merch" validate:"dive"`
	PromoCode     string                `json:"promo_code"`
	DonationCents int64                 `json:"donation_cents" validate:"min=0"`
}

type ticketSelectionBody struct {
	TicketTypeID uuid.UUID `json:"ticket_type_id" validate:"required"`
	Quantity     int       `json:"quantity" validate:"required,min=1"`
	SeatIDs      []string  `json:"seat_ids"`
}

type merchSelectionBody struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
}

type quoteResponse struct {
	Totals       pricing.Totals     `json:"totals"`
	PromoApplied bool               `json:"promo_applied"`
	PromoMessage string             `json:"promo_message,omitempty"`
	Lines        []lineItemResponse `json:"lines"`
}

type executeResponse struct {
	Order        orderResponse `json:"order"`
	ClientSecret string        `json:"client_secret"`
}

func (req checkoutRequest) toInput() checkout.QuoteInput {
	in := checkout.QuoteInput{
		OrgID:         req.OrgID,
		EventID:       req.EventID,
		SessionID:     validators.SanitizeString(req.SessionID, 128),
		CustomerEmail: validators.SanitizeString(req.CustomerEmail, 320),
		CustomerName:  validators.SanitizeString(req.CustomerName, 256),
		PromoCode:     validators.SanitizeString(req.PromoCode, 64),
		DonationCents: req.DonationCents,
	}
	for _, t := range req.Tickets {
		in.Tickets = append(in.Tickets, checkout.TicketSelection{
			TicketTypeID: t.TicketTypeID,
			Quantity:     t.Quantity,
			SeatIDs:      t.SeatIDs,
		})
	}
	for _, m := range req.Merch {
		in.Merch = append(in.Merch, checkout.MerchSelection{
			ProductID: m.ProductID,
			Quantity:  m.Quantity,
		})
	}
	return in
}

// CheckoutQuote prices a cart without any side effects.
func CheckoutQuote(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req checkoutRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := svc.Quote(r.Context(), req.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, toQuoteResponse(quote))
	}
}

// CheckoutExecute converts the cart into a pending order and opens a
// payment intent.
func CheckoutExecute(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req checkoutRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Execute(r.Context(), req.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, executeResponse{
			Order:        toOrderResponse(result.Order),
			ClientSecret: result.ClientSecret,
		})
	}
}

func toQuoteResponse(quote *checkout.Quote) quoteResponse {
	resp := quoteResponse{
		Totals:       quote.Totals,
		PromoApplied: quote.Discount.Promo.Applied(),
		PromoMessage: quote.PromoMessage,
	}
	for _, line := range quote.Lines {
		resp.Lines = append(resp.Lines, toLineItemResponse(line))
	}
	return resp
}

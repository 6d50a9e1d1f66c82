package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/gatepasshq/gatepass-backend/api/responses"
	"github.com/gatepasshq/gatepass-backend/api/validators"
	"github.com/gatepasshq/gatepass-backend/internal/promos"
	"github.com/gatepasshq/gatepass-backend/pkg/logger"
)

type resolvePromoRequest struct {
	OrgID               uuid.UUID `json:"org_id" validate:"required"`
	EventID             uuid.UUID `json:"event_id" validate:"required"`
	Code                string    `json:"code" validate:"required"`
	TicketCount         int       `json:"ticket_count" validate:"min=0"`
	TicketSubtotalCents int64     `json:"ticket_subtotal_cents" validate:"min=0"`
	SubtotalCents       int64     `json:"subtotal_cents" validate:"min=0"`
}

type resolvePromoResponse struct {
	Applied       bool   `json:"applied"`
	DiscountCents int64  `json:"discount_cents"`
	Message       string `json:"message,omitempty"`
}

// ResolvePromoCode evaluates a code against the current cart so the
// widget can show the discount before checkout.
func ResolvePromoCode(svc promos.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req resolvePromoRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resolution, err := svc.ResolveCode(r.Context(), promos.ResolveInput{
			OrgID:               req.OrgID,
			EventID:             req.EventID,
			Code:                validators.SanitizeString(req.Code, 64),
			TicketCount:         req.TicketCount,
			TicketSubtotalCents: req.TicketSubtotalCents,
			SubtotalCents:       req.SubtotalCents,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, resolvePromoResponse{
			Applied:       resolution.Applied(),
			DiscountCents: resolution.DiscountCents,
			Message:       resolution.ValidationMessage,
		})
	}
}

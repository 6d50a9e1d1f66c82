package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/gatepasshq/gatepass-backend/api/responses"
	"github.com/gatepasshq/gatepass-backend/api/validators"
	"github.com/gatepasshq/gatepass-backend/internal/cart"
	"github.com/gatepasshq/gatepass-backend/pkg/logger"
	"github.com/gatepasshq/gatepass-backend/pkg/types"
)

type cartSnapshotRequest struct {
	OrgID         uuid.UUID       `json:"org_id" validate:"required"`
	EventID       uuid.UUID       `json:"event_id" validate:"required"`
	CustomerEmail string          `json:"customer_email" validate:"required,email"`
	SessionID     string          `json:"session_id" validate:"required"`
	Items         json.RawMessage `json:"items" validate:"required"`
	Totals        types.JSONMap   `json:"totals"`
}

// SaveCartSnapshot upserts one debounced abandoned-cart save.
func SaveCartSnapshot(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req cartSnapshotRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snapshot, err := svc.Save(r.Context(), cart.SnapshotInput{
			OrgID:         req.OrgID,
			EventID:       req.EventID,
			CustomerEmail: validators.SanitizeString(req.CustomerEmail, 320),
			SessionID:     validators.SanitizeString(req.SessionID, 128),
			Items:         req.Items,
			Totals:        req.Totals,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"id":         snapshot.ID,
			"updated_at": snapshot.UpdatedAt,
		})
	}
}

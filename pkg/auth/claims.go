package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/gatepasshq/gatepass-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID uuid.UUID
	OrgID  uuid.UUID
	Role   enums.OrgRole
	JTI    string
}

// AccessTokenClaims represents the typed JWT issued to organizer dashboards.
type AccessTokenClaims struct {
	UserID uuid.UUID     `json:"user_id"`
	OrgID  uuid.UUID     `json:"org_id"`
	Role   enums.OrgRole `json:"role"`
	jwt.RegisteredClaims
}

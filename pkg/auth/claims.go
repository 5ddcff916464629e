package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/localbasket/localbasket-backend/pkg/enums"
)

// AccessTokenPayload carries the identity facts minted into a token.
type AccessTokenPayload struct {
	UserID uuid.UUID
	Role   enums.Role
	JTI    string
}

// AccessTokenClaims is the typed JWT claim set used by the API.
type AccessTokenClaims struct {
	UserID uuid.UUID  `json:"uid"`
	Role   enums.Role `json:"role"`
	jwt.RegisteredClaims
}

package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID         uuid.UUID
	OrganizationID uuid.UUID
	IsAdmin        bool
	JTI            string
}

// AccessTokenClaims represents the typed JWT issued to clients. The subject
// carries the user id; org and adm scope every request to a tenant.
type AccessTokenClaims struct {
	OrganizationID uuid.UUID `json:"org"`
	IsAdmin        bool      `json:"adm"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim back into a uuid.
func (c *AccessTokenClaims) UserID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

package ports

import (
	"time"

	"github.com/google/uuid"
)

// AuthClaims is the bearer identity attached to authenticated requests.
type AuthClaims struct {
	UserID    uuid.UUID
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenVerifier validates bearer tokens minted by the platform auth
// service. This service never issues tokens.
type TokenVerifier interface {
	ParseAndValidate(raw string) (AuthClaims, error)
}

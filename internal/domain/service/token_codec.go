package service

import (
	"time"

	"vanguard/internal/domain/entity"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessClaims carries the authenticated identity inside an access token.
// The snapshot is taken at issue time; a stale email_verified flag lives at
// most one access-token lifetime.
type AccessClaims struct {
	UserID        uuid.UUID   `json:"-"`
	Email         string      `json:"user_email"`
	Role          entity.Role `json:"role"`
	EmailVerified bool        `json:"email_verified"`
	jwt.RegisteredClaims
}

// AccessTokenCodec issues and verifies short-lived access tokens.
type AccessTokenCodec interface {
	// Issue signs a new access token for the user.
	Issue(user *entity.User) (string, error)

	// Verify parses and validates a token string, returning its claims.
	// Expired, malformed, or wrongly-signed tokens all fail verification.
	Verify(tokenString string) (*AccessClaims, error)

	// DecodeExpiry extracts the expiry of a token WITHOUT validating it.
	// Used by the revocation registry to bound denylist entry lifetimes.
	DecodeExpiry(tokenString string) (time.Time, error)
}

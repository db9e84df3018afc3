package middleware

import (
	"strings"

	"vanguard/internal/delivery/http/response"
	"vanguard/internal/domain/service"

	"github.com/labstack/echo/v4"
)

// Context keys set by Authenticate for downstream handlers.
const (
	ContextKeyUserID      = "userID"
	ContextKeyClaims      = "claims"
	ContextKeyAccessToken = "accessToken"
)

// AuthMiddleware provides middleware for JWT authentication.
type AuthMiddleware struct {
	codec      service.AccessTokenCodec
	revocation service.RevocationRegistry
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(codec service.AccessTokenCodec, revocation service.RevocationRegistry) *AuthMiddleware {
	return &AuthMiddleware{codec: codec, revocation: revocation}
}

// Authenticate validates the bearer access token and rejects denylisted
// tokens. User identity lands on the echo context for handlers.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return response.Unauthorized(c, "ACCESS_TOKEN_INVALID", "Authorization header is missing")
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			return response.Unauthorized(c, "ACCESS_TOKEN_INVALID", "Invalid token format, must be Bearer token")
		}

		claims, err := m.codec.Verify(tokenString)
		if err != nil {
			return response.Unauthorized(c, "ACCESS_TOKEN_INVALID", "Invalid or expired token")
		}

		denied, err := m.revocation.IsDenied(c.Request().Context(), tokenString)
		if err != nil {
			return err
		}
		if denied {
			return response.Unauthorized(c, "ACCESS_TOKEN_INVALID", "Token has been revoked")
		}

		c.Set(ContextKeyUserID, claims.UserID)
		c.Set(ContextKeyClaims, claims)
		c.Set(ContextKeyAccessToken, tokenString)

		return next(c)
	}
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"vanguard/internal/domain/service"
	mocksvc "vanguard/internal/mocks/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newAuthTestContext(authorization string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()

	return e.NewContext(req, rec), rec
}

func TestAuthMiddleware_Authenticate(t *testing.T) {
	okHandler := func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}

	t.Run("valid token reaches the handler with identity set", func(t *testing.T) {
		codec := &mocksvc.MockAccessTokenCodec{}
		revocation := &mocksvc.MockRevocationRegistry{}
		m := NewAuthMiddleware(codec, revocation)

		userID := uuid.New()
		claims := &service.AccessClaims{
			UserID:           userID,
			Email:            "test@example.com",
			RegisteredClaims: jwt.RegisteredClaims{Subject: userID.String()},
		}
		codec.On("Verify", "valid-token").Return(claims, nil)
		revocation.On("IsDenied", mock.Anything, "valid-token").Return(false, nil)

		c, rec := newAuthTestContext("Bearer valid-token")
		err := m.Authenticate(okHandler)(c)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, userID, c.Get(ContextKeyUserID))
		assert.Equal(t, "valid-token", c.Get(ContextKeyAccessToken))
	})

	t.Run("missing authorization header", func(t *testing.T) {
		m := NewAuthMiddleware(&mocksvc.MockAccessTokenCodec{}, &mocksvc.MockRevocationRegistry{})

		c, rec := newAuthTestContext("")
		err := m.Authenticate(okHandler)(c)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("non-bearer header", func(t *testing.T) {
		m := NewAuthMiddleware(&mocksvc.MockAccessTokenCodec{}, &mocksvc.MockRevocationRegistry{})

		c, rec := newAuthTestContext("Basic dXNlcjpwYXNz")
		err := m.Authenticate(okHandler)(c)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		codec := &mocksvc.MockAccessTokenCodec{}
		codec.On("Verify", "bad-token").Return(nil, assert.AnError)
		m := NewAuthMiddleware(codec, &mocksvc.MockRevocationRegistry{})

		c, rec := newAuthTestContext("Bearer bad-token")
		err := m.Authenticate(okHandler)(c)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("revoked token", func(t *testing.T) {
		codec := &mocksvc.MockAccessTokenCodec{}
		revocation := &mocksvc.MockRevocationRegistry{}
		m := NewAuthMiddleware(codec, revocation)

		claims := &service.AccessClaims{UserID: uuid.New()}
		codec.On("Verify", "revoked-token").Return(claims, nil)
		revocation.On("IsDenied", mock.Anything, "revoked-token").Return(true, nil)

		c, rec := newAuthTestContext("Bearer revoked-token")
		err := m.Authenticate(okHandler)(c)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

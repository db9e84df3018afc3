// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"vanguard/config"
	"vanguard/internal/domain/entity"
	"vanguard/internal/domain/service"
)

const defaultAccessTTL = 15 * time.Minute

// jwtCodec is a concrete implementation of the AccessTokenCodec interface using the JWT standard.
type jwtCodec struct {
	secret    []byte
	accessTTL time.Duration
	now       func() time.Time
}

// NewJWTCodec is the constructor for jwtCodec.
func NewJWTCodec(cfg *config.Config) (service.AccessTokenCodec, error) {
	if cfg.JWT == nil || cfg.JWT.Secret == "" {
		return nil, errors.New("jwt secret must be provided")
	}

	ttl := cfg.JWT.AccessTTL
	if ttl <= 0 {
		ttl = defaultAccessTTL
	}

	return &jwtCodec{
		secret:    []byte(cfg.JWT.Secret),
		accessTTL: ttl,
		now:       time.Now,
	}, nil
}

// Issue signs a new HS256 access token carrying the user's identity snapshot.
func (c *jwtCodec) Issue(user *entity.User) (string, error) {
	now := c.now()
	claims := &service.AccessClaims{
		Email:         user.Email,
		Role:          user.Role,
		EmailVerified: user.EmailVerified,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.accessTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", errors.Wrap(err, "sign access token")
	}

	return signed, nil
}

// Verify parses and validates a token string, returning its claims.
func (c *jwtCodec) Verify(tokenString string) (*service.AccessClaims, error) {
	claims := &service.AccessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		// Ensure the signing method is what we expect.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}

		return c.secret, nil
	}, jwt.WithTimeFunc(c.now))
	if err != nil {
		return nil, errors.Wrap(err, "parse access token")
	}
	if !token.Valid {
		return nil, errors.New("invalid access token")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, errors.Wrap(err, "parse token subject")
	}
	claims.UserID = userID

	return claims, nil
}

// DecodeExpiry extracts the expiry claim without verifying the signature.
// Only used to bound denylist TTLs, never for authentication decisions.
func (c *jwtCodec) DecodeExpiry(tokenString string) (time.Time, error) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return time.Time{}, errors.Wrap(err, "decode access token")
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, errors.New("access token has no expiry")
	}

	return claims.ExpiresAt.Time, nil
}

package auth

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/fx"

	"vanguard/internal/domain/service"
)

// revocationRegistry denylists access tokens in the cache. Each entry's TTL
// equals the token's remaining lifetime, so the denylist never outlives the
// tokens it shadows.
type revocationRegistry struct {
	cache service.KeyValueCache
	codec service.AccessTokenCodec
	now   func() time.Time
}

// RevocationParams holds dependencies for the registry, injected by Fx.
type RevocationParams struct {
	fx.In

	Cache service.KeyValueCache `name:"denylistCache"`
	Codec service.AccessTokenCodec
}

// NewRevocationRegistry is the constructor for revocationRegistry.
func NewRevocationRegistry(params RevocationParams) service.RevocationRegistry {
	return &revocationRegistry{
		cache: params.Cache,
		codec: params.Codec,
		now:   time.Now,
	}
}

// Deny records a token as revoked until its embedded expiry.
// A token already past its expiry needs no denylist entry.
func (r *revocationRegistry) Deny(ctx context.Context, tokenString string) error {
	expiry, err := r.codec.DecodeExpiry(tokenString)
	if err != nil {
		return errors.Wrap(err, "deny access token")
	}

	remaining := expiry.Sub(r.now())
	if remaining <= 0 {
		return nil
	}

	return errors.Wrap(r.cache.Set(ctx, tokenString, []byte("1"), remaining), "deny access token")
}

// IsDenied reports whether a token has been revoked.
func (r *revocationRegistry) IsDenied(ctx context.Context, tokenString string) (bool, error) {
	_, err := r.cache.Get(ctx, tokenString)
	if err != nil {
		if errors.Is(err, service.ErrCacheMiss) {
			return false, nil
		}

		return false, errors.Wrap(err, "check access token revocation")
	}

	return true, nil
}

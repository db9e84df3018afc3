package service

import "context"

// RevocationRegistry denylists access tokens that were invalidated before
// their natural expiry (logout). Entries live exactly as long as the token
// they shadow, so the registry stays small without any sweep.
type RevocationRegistry interface {
	// Deny records a token as revoked until its embedded expiry. Tokens that
	// are already expired are ignored.
	Deny(ctx context.Context, tokenString string) error

	// IsDenied reports whether a token has been revoked.
	IsDenied(ctx context.Context, tokenString string) (bool, error)
}

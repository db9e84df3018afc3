package service

import (
	"context"

	"vanguard/internal/domain/entity"

	"github.com/google/uuid"
)

// RefreshTokenManager owns the lifecycle of opaque refresh tokens: issuing,
// lookup by raw token, expiry enforcement, and revocation. Raw tokens are
// never persisted; only their hashes are.
type RefreshTokenManager interface {
	// IssueFor rotates the user's refresh token: any existing token is
	// removed and a fresh one is created atomically. Returns the raw token
	// handed to the client together with the persisted record.
	IssueFor(ctx context.Context, user *entity.User) (string, *entity.RefreshToken, error)

	// RotateFrom consumes the presented token and issues its replacement in
	// one transaction. When the presented row is already gone, because a
	// concurrent rotation won or the token was revoked, it fails with
	// ErrRefreshTokenExpired so at most one caller per token succeeds.
	RotateFrom(ctx context.Context, presented *entity.RefreshToken, user *entity.User) (string, *entity.RefreshToken, error)

	// FindByToken resolves a raw refresh token to its stored record.
	FindByToken(ctx context.Context, rawToken string) (*entity.RefreshToken, error)

	// CheckNotExpired enforces the expiry rule. An expired token is deleted
	// on sight and reported as expired.
	CheckNotExpired(ctx context.Context, token *entity.RefreshToken) error

	// RevokeFor removes the user's refresh token, if any.
	RevokeFor(ctx context.Context, userID uuid.UUID) error
}

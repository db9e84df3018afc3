// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"

	"vanguard/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrRefreshTokenNotFound is returned when a refresh token is not found.
var ErrRefreshTokenNotFound = errors.New("refresh token not found")

// RefreshTokenRepository defines persistence for the single refresh token a
// user may hold. The user_id column carries a unique constraint, so the
// delete-then-insert rotation keeps at most one live row per user even under
// concurrent logins.
type RefreshTokenRepository interface {
	// Create persists a new refresh token row.
	Create(ctx context.Context, token *entity.RefreshToken) error

	// FindByTokenHash retrieves a refresh token record by its stored hash.
	// Expiry is NOT checked here; the refresh token manager owns that rule.
	FindByTokenHash(ctx context.Context, tokenHash string) (*entity.RefreshToken, error)

	// DeleteByID removes a refresh token row by its primary key.
	DeleteByID(ctx context.Context, id uuid.UUID) error

	// DeleteByUserID removes the user's refresh token row, if any.
	// Deleting a non-existent row is not an error.
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error

	// DeleteExpired removes all expired refresh tokens. Called periodically
	// by the retention sweep.
	DeleteExpired(ctx context.Context) (int64, error)
}

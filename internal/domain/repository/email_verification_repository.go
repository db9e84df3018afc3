// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"

	"vanguard/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrEmailVerificationNotFound is returned when no verification row matches the lookup.
var ErrEmailVerificationNotFound = errors.New("email verification not found")

// EmailVerificationRepository defines persistence for the one-time email
// verification codes. One row per user; only code hashes are stored.
type EmailVerificationRepository interface {
	// Create persists a new verification row for a user.
	Create(ctx context.Context, verification *entity.EmailVerification) error

	// FindByUserID retrieves the verification row owned by a user.
	FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.EmailVerification, error)

	// FindByTokenHashAndUserID retrieves a verification row by the pair the
	// client presents: the hash of the submitted code plus the user ID.
	FindByTokenHashAndUserID(ctx context.Context, tokenHash string, userID uuid.UUID) (*entity.EmailVerification, error)

	// Update modifies an existing verification row (verified_at stamp or a
	// regenerated code hash on resend).
	Update(ctx context.Context, verification *entity.EmailVerification) error
}

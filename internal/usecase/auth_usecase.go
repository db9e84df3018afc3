// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"vanguard/internal/domain/entity"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// RegisterInput defines the data required to register a new user.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// LoginInput defines the data required for a user to log in.
type LoginInput struct {
	Email    string
	Password string
}

// RefreshInput carries the raw refresh token presented by the client.
type RefreshInput struct {
	RefreshToken string
}

// LogoutInput carries everything needed to end a session: the access token
// to denylist and the user whose refresh token is revoked.
type LogoutInput struct {
	UserID      uuid.UUID
	AccessToken string
}

// --- Output DTOs ---

// RegisterOutput returns the newly created user's basic information.
type RegisterOutput struct {
	User *entity.User
}

// TokenPairOutput returns the credentials handed to the client after a
// successful login or refresh.
type TokenPairOutput struct {
	AccessToken  string
	RefreshToken string
	User         *entity.User
}

// ProfileOutput is the cached view of a user returned by GetProfile.
type ProfileOutput struct {
	ID            uuid.UUID   `json:"id"`
	Name          string      `json:"name"`
	Email         string      `json:"email"`
	Role          entity.Role `json:"role"`
	EmailVerified bool        `json:"email_verified"`
}

// AuthUsecase defines the interface for authentication business operations.
// This is the contract that the delivery layer (e.g., API handlers) will depend on.
type AuthUsecase interface {
	Register(ctx context.Context, input RegisterInput) (*RegisterOutput, error)
	Login(ctx context.Context, input LoginInput) (*TokenPairOutput, error)
	Refresh(ctx context.Context, input RefreshInput) (*TokenPairOutput, error)
	Logout(ctx context.Context, input LogoutInput) error
	GetProfile(ctx context.Context, userID uuid.UUID) (*ProfileOutput, error)
}

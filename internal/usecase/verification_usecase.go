package usecase

import (
	"context"

	"github.com/google/uuid"
)

// VerifyEmailInput carries the verification code a user received by mail.
type VerifyEmailInput struct {
	UserID uuid.UUID
	Token  string
}

// ResendVerificationInput identifies the account asking for a fresh code.
type ResendVerificationInput struct {
	Email string
}

// VerificationUsecase defines the email verification business operations.
type VerificationUsecase interface {
	// VerifyEmail consumes a verification code and marks the account verified.
	VerifyEmail(ctx context.Context, input VerifyEmailInput) error

	// ResendVerification regenerates the user's code and publishes a resend event.
	ResendVerification(ctx context.Context, input ResendVerificationInput) error
}

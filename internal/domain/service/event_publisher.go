package service

import "context"

// Routing keys carried as message attributes so the mail worker can tell a
// first verification email apart from a resend.
const (
	RoutingKeyEmailVerification       = "auth.user.email.verification"
	RoutingKeyEmailVerificationResend = "auth.user.email.verification.resend"
)

// EmailVerificationEvent is the payload published when a user needs a
// verification email. Token carries the RAW code; it crosses the broker once
// and is never persisted in clear anywhere.
type EmailVerificationEvent struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Token string `json:"token"`
}

// EventPublisher publishes domain events to the message broker.
type EventPublisher interface {
	// PublishEmailVerification announces a newly registered user needing a
	// verification email.
	PublishEmailVerification(ctx context.Context, event *EmailVerificationEvent) error

	// PublishEmailVerificationResend announces a re-requested verification
	// email with a freshly generated code.
	PublishEmailVerificationResend(ctx context.Context, event *EmailVerificationEvent) error

	// Close flushes outstanding publishes and releases broker resources.
	Close() error
}

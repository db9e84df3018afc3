// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// RefreshToken represents the single long-lived session a user may hold.
// The raw opaque token is only ever returned to the client; the database keeps
// a SHA-256 hash of it for lookup.
type RefreshToken struct {
	ID        uuid.UUID // The unique ID for this refresh token record.
	UserID    uuid.UUID // Links this session to the User it belongs to. Unique: one live token per user.
	TokenHash string    // SHA-256 hash of the raw opaque token.
	ExpiresAt time.Time // The exact time when this refresh token becomes invalid.
	CreatedAt time.Time // Timestamp of when this session was created.
}

// Expired reports whether the token's expiry has passed at the given instant.
func (t *RefreshToken) Expired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}

// EmailVerification tracks the one-time verification code issued to a user at
// registration. Only the hash of the code is persisted; the plaintext travels
// once through the email pipeline.
type EmailVerification struct {
	ID         uuid.UUID  // The unique ID for this verification record.
	UserID     uuid.UUID  // Links the verification to its user. Unique: one row per user.
	TokenHash  string     // SHA-256 hex hash of the 6-character verification code.
	VerifiedAt *time.Time // Set exactly once, when the code is successfully consumed.
	CreatedAt  time.Time  // Timestamp of when the code was issued.
}

// Consumed reports whether this verification code has already been used.
func (v *EmailVerification) Consumed() bool {
	return v.VerifiedAt != nil
}

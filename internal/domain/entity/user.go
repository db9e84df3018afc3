// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is the core identity entity. One row per account; the email column is
// unique and acts as the login identifier.
type User struct {
	ID            uuid.UUID // The unique, immutable identifier for the user.
	Name          string    // The user's display name.
	Email         string    // The user's primary email, unique across the system.
	PasswordHash  string    // The bcrypt hash of the user's password. Never the plaintext.
	Role          Role      // The system role assigned to this account.
	EmailVerified bool      // Whether the user has completed email verification.
	CreatedAt     time.Time // Timestamp of when this account was created.
	UpdatedAt     time.Time // Timestamp of the last modification to this account.
}

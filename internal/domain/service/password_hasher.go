// Package service defines domain-level service interfaces that encapsulate
// security primitives. Implementations live in the infrastructure layer.
package service

// PasswordHasher abstracts one-way password hashing so the application layer
// never touches the concrete algorithm.
type PasswordHasher interface {
	// Hash generates a salted hash of the given password.
	Hash(password string) (string, error)

	// Check compares a plaintext password against a stored hash.
	Check(password, hash string) bool

	// ValidateStrength checks a candidate password against the configured
	// strength policy before it is ever hashed.
	ValidateStrength(password string) error
}

package model

import (
	"time"

	"github.com/google/uuid"
)

// RefreshTokenModel mirrors the 'refresh_tokens' table. The unique index on
// user_id enforces the one-session-per-user rule at the storage level.
type RefreshTokenModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	TokenHash string    `gorm:"type:varchar(64);not null;uniqueIndex"`
	ExpiresAt time.Time `gorm:"not null;index"`
	CreatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (RefreshTokenModel) TableName() string {
	return "refresh_tokens"
}

// EmailVerificationModel mirrors the 'email_verifications' table. One row per
// user; only the hash of the verification code is stored.
type EmailVerificationModel struct {
	ID         uuid.UUID  `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	UserID     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex"`
	TokenHash  string     `gorm:"type:varchar(64);not null;index"`
	VerifiedAt *time.Time `gorm:""`
	CreatedAt  time.Time
}

// TableName explicitly sets the table name for GORM.
func (EmailVerificationModel) TableName() string {
	return "email_verifications"
}

package models

import (
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// User represents a registered user. Users sign up with an activation code and own
// any number of platform accounts.
type User struct {
	// ID is the unique identifier for the user.
	ID uint64 `gorm:"primaryKey"`
	// Active indicates whether the user can log in.
	Active bool `gorm:"not null;default:true"`
	// IsAdmin grants access to the activation code administration.
	IsAdmin bool `gorm:"not null;default:false"`
	// Username is the unique login name.
	Username string `gorm:"uniqueIndex;size:50;not null"`
	// Password is the Argon2id hashed password.
	Password string `gorm:"size:255;not null"`
	// Phone is an optional mobile number.
	Phone string `gorm:"size:20"`
	// Email is an optional email address.
	Email string `gorm:"size:255"`
	// ActivationCode is the code redeemed at registration.
	ActivationCode string `gorm:"size:50;index"`
	// ExpiresAt is the end of the membership bought with the activation code, nil for permanent.
	ExpiresAt *time.Time
	// CreatedAt is the timestamp when the user was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the user was last updated (managed by GORM).
	UpdatedAt time.Time
	// DeletedAt is the soft delete timestamp (managed by GORM).
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// Expired reports whether the membership of the user has ended at now.
func (u *User) Expired(now time.Time) bool {
	return u.ExpiresAt != nil && now.After(*u.ExpiresAt)
}

// HashPassword hashes a plaintext password using the Argon2id algorithm.
func HashPassword(password string) (string, error) {
	return argon2id.CreateHash(password, argon2id.DefaultParams)
}

// VerifyPassword verifies a plaintext password against the stored hash in constant time.
func (u *User) VerifyPassword(password string) bool {
	match, err := argon2id.ComparePasswordAndHash(password, u.Password)
	if err != nil {
		log.Error().Msgf("failed to verify password: %v", err)
		return false
	}

	return match
}

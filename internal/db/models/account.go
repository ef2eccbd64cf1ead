package models

import (
	"time"

	"gorm.io/gorm"
)

// Account is a platform account owned by exactly one user. Account level settings
// override the settings of the owning user.
type Account struct {
	// ID is the unique identifier for the account.
	ID uint64 `gorm:"primaryKey"`
	// UserID is the owning user.
	UserID uint64 `gorm:"index;not null"`
	// Name is the display name.
	Name string `gorm:"size:100;not null"`
	// PlatformAccount is the login of the account on the external platform.
	PlatformAccount string `gorm:"size:255"`
	// PlatformPassword is the password of the account on the external platform.
	PlatformPassword string `gorm:"size:255" json:"-"`
	// Description is a free form note.
	Description string `gorm:"size:500"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

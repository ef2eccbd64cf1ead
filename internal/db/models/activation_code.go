package models

import "time"

// ActivationCode is a redeemable code that grants a membership period at registration.
type ActivationCode struct {
	ID uint64 `gorm:"primaryKey"`
	// Code is the unique redeemable string.
	Code string `gorm:"uniqueIndex;size:50;not null"`
	// Type is the membership period: 0 day, 1 month, 2 year, 3 permanent.
	Type uint8 `gorm:"index;not null"`
	// Status is the lifecycle state: 0 unused, 1 distributed, 2 activated, 3 invalid.
	Status uint8 `gorm:"index;not null;default:0"`
	// DistributedAt is set when the code is handed out.
	DistributedAt *time.Time
	// ActivatedAt is set when the code is redeemed.
	ActivatedAt *time.Time
	// ExpireTime is the last moment the code can be redeemed, nil for no limit.
	ExpireTime *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

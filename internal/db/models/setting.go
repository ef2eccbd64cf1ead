// Package models contains database model definitions.
package models

import "time"

// SettingOverride stores one setting value for one owner. The value is kept as the
// canonical JSON text of the typed value together with its type tag.
type SettingOverride struct {
	ID uint64 `gorm:"primaryKey"`
	// OwnerType is 1 for users and 2 for accounts.
	OwnerType uint8 `gorm:"not null;uniqueIndex:idx_setting_override_key,priority:1"`
	// OwnerID is the user or account id.
	OwnerID uint64 `gorm:"not null;uniqueIndex:idx_setting_override_key,priority:2"`
	// SettingCode is the catalog code of the setting.
	SettingCode int `gorm:"not null;uniqueIndex:idx_setting_override_key,priority:3"`
	// ValueType is the type tag the value was checked against when written.
	ValueType string `gorm:"size:16;not null"`
	// Value is the canonical JSON encoding of the value.
	Value     string `gorm:"type:text;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

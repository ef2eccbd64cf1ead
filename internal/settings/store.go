package settings

import (
	"context"
	"time"
)

// Override is a stored value for one setting at one scope.
type Override struct {
	Scope     Scope
	Code      int
	Value     Value
	UpdatedAt time.Time
}

// Store persists overrides. Implementations must make Upsert and Remove atomic per
// (scope, code) key; nothing else is required of them.
type Store interface {
	// Get returns the override or nil when none is stored.
	Get(ctx context.Context, scope Scope, code int) (*Override, error)
	// GetAll returns every override of a scope keyed by setting code.
	GetAll(ctx context.Context, scope Scope) (map[int]Override, error)
	// Upsert creates or replaces the override.
	Upsert(ctx context.Context, scope Scope, code int, value Value) (*Override, error)
	// Remove deletes the override and reports whether one existed.
	Remove(ctx context.Context, scope Scope, code int) (bool, error)
}

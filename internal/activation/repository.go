package activation

import (
	"context"
	"time"

	"github.com/acctmgr/acctmgr/internal/db/models"
)

// Filter narrows listings. Zero fields do not filter.
type Filter struct {
	Type   *Type   `json:"type"`
	Status *Status `json:"status"`
	// Code matches exactly.
	Code string `json:"activation_code"`

	DistributedFrom *time.Time `json:"distributed_at_start"`
	DistributedTo   *time.Time `json:"distributed_at_end"`
	ActivatedFrom   *time.Time `json:"activated_at_start"`
	ActivatedTo     *time.Time `json:"activated_at_end"`
	ExpireFrom      *time.Time `json:"expire_time_start"`
	ExpireTo        *time.Time `json:"expire_time_end"`
}

// Validate checks the type, the status and every time range.
func (f Filter) Validate() error {
	if f.Type != nil && !f.Type.Valid() {
		return ErrUnknownType
	}

	if f.Status != nil && !f.Status.Valid() {
		return ErrUnknownStatus
	}

	ranges := []struct {
		name     string
		from, to *time.Time
	}{
		{"distributed_at", f.DistributedFrom, f.DistributedTo},
		{"activated_at", f.ActivatedFrom, f.ActivatedTo},
		{"expire_time", f.ExpireFrom, f.ExpireTo},
	}

	for _, r := range ranges {
		if r.from != nil && r.to != nil && r.from.After(*r.to) {
			return &RangeError{Field: r.name}
		}
	}

	return nil
}

// RangeError names the filter range that starts after it ends.
type RangeError struct {
	Field string
}

func (e *RangeError) Error() string {
	return e.Field + ": " + ErrInvalidTimeRange.Error()
}

func (e *RangeError) Unwrap() error { return ErrInvalidTimeRange }

// StatusChange is applied by Repository.Transition. Nil times are left untouched.
type StatusChange struct {
	To            Status
	DistributedAt *time.Time
	ActivatedAt   *time.Time
	ExpireTime    *time.Time
}

// Repository persists activation codes.
type Repository interface {
	// ExistingCodes returns the subset of codes already stored.
	ExistingCodes(ctx context.Context, codes []string) ([]string, error)
	// CreateBatch stores all rows or none.
	CreateBatch(ctx context.Context, rows []models.ActivationCode) error
	// GetByCode returns ErrCodeNotFound when the code does not exist.
	GetByCode(ctx context.Context, code string) (*models.ActivationCode, error)
	// ListUnused returns up to limit unused codes of a type, oldest first.
	ListUnused(ctx context.Context, t Type, limit int) ([]models.ActivationCode, error)
	// Transition applies change to the code only while it is still in status from and
	// reports whether it did.
	Transition(ctx context.Context, id uint64, from Status, change StatusChange) (bool, error)
	// List returns one page of matching codes, newest first, and the total match count.
	List(ctx context.Context, f Filter, offset, limit int) ([]models.ActivationCode, int64, error)
}

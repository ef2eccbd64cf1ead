package activation

import "errors"

var (
	// ErrDuplicateTypeInBatch is returned when a batch requests the same type twice.
	ErrDuplicateTypeInBatch = errors.New("activation code type appears more than once in batch")
	// ErrUnknownType is returned for a type code outside day, month, year and permanent.
	ErrUnknownType = errors.New("unknown activation code type")
	// ErrUnknownStatus is returned for a status code outside the lifecycle.
	ErrUnknownStatus = errors.New("unknown activation code status")
	// ErrInvalidBatch is returned when a batch has no items or too many.
	ErrInvalidBatch = errors.New("activation code batch must hold between 1 and 10 items")
	// ErrInvalidCount is returned when a requested code count is out of range.
	ErrInvalidCount = errors.New("activation code count out of range")
	// ErrCodeNotFound is returned when no code matches.
	ErrCodeNotFound = errors.New("activation code not found")
	// ErrCodeExpired is returned when a code is redeemed after its expire time.
	ErrCodeExpired = errors.New("activation code expired")
	// ErrCodeNotDistributed is returned when an unused code is redeemed.
	ErrCodeNotDistributed = errors.New("activation code has not been distributed")
	// ErrCodeAlreadyDistributed is returned when a distributed code is distributed again.
	ErrCodeAlreadyDistributed = errors.New("activation code already distributed")
	// ErrCodeAlreadyActivated is returned when a code is used twice.
	ErrCodeAlreadyActivated = errors.New("activation code already activated")
	// ErrCodeInvalid is returned for invalidated codes.
	ErrCodeInvalid = errors.New("activation code has been invalidated")
	// ErrNoCodesAvailable is returned when too few unused codes exist for a distribution.
	ErrNoCodesAvailable = errors.New("not enough unused activation codes")
	// ErrInvalidTimeRange is returned when a filter range starts after it ends.
	ErrInvalidTimeRange = errors.New("time range start is after its end")
	// ErrMintExhausted is returned when unique codes could not be minted.
	ErrMintExhausted = errors.New("could not mint unique activation codes")
	// ErrConcurrentUpdate is returned when a code changed between read and write and
	// its new state does not explain the conflict.
	ErrConcurrentUpdate = errors.New("activation code was modified concurrently")
)

package settings

import "errors"

var (
	// ErrUnknownSettingCode is returned when a setting code is not part of the catalog.
	ErrUnknownSettingCode = errors.New("unknown setting code")

	// ErrUnknownGroupCode is returned when a group code is not part of the catalog.
	ErrUnknownGroupCode = errors.New("unknown setting group code")

	// ErrTypeMismatch is returned when a value cannot be coerced to the declared type of a setting.
	ErrTypeMismatch = errors.New("setting value does not match the declared type")

	// ErrUnknownValueType is returned when a stored or requested value type tag is not supported.
	ErrUnknownValueType = errors.New("unknown setting value type")

	// ErrEmptyChain is returned when a resolution is requested without any owner scope.
	ErrEmptyChain = errors.New("scope chain is empty")
)

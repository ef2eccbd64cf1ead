package auth

import "errors"

var (
	// ErrInvalidOldPassword is returned when the provided old password does not match the user's current password.
	ErrInvalidOldPassword = errors.New("invalid old password")

	// ErrUserNameExists is returned when registering or renaming to a username that is taken.
	ErrUserNameExists = errors.New("username already exists")

	// ErrUserAccountDisabled is returned when attempting to authenticate a disabled user account.
	ErrUserAccountDisabled = errors.New("user account is disabled")

	// ErrMembershipExpired is returned when the membership bought with the activation code has ended.
	ErrMembershipExpired = errors.New("membership expired")

	// ErrInvalidPassword is returned when the provided password is incorrect during authentication.
	ErrInvalidPassword = errors.New("invalid password")

	// ErrUserNotFound is returned when a user cannot be found in the database.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidUsername is returned for usernames outside 2..50 word characters.
	ErrInvalidUsername = errors.New("username must be 2 to 50 letters, digits or underscores")

	// ErrWeakPassword is returned for passwords that fail the password policy.
	ErrWeakPassword = errors.New("password does not meet the password policy")

	// ErrInvalidPhone is returned for phone numbers that are not mainland mobile numbers.
	ErrInvalidPhone = errors.New("invalid phone number")

	// ErrEmptyProfileUpdate is returned when a profile update changes nothing.
	ErrEmptyProfileUpdate = errors.New("at least one profile field is required")

	// ErrUnauthorized is returned when a request carries no valid session.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden is returned when the session user lacks the required privilege.
	ErrForbidden = errors.New("forbidden")
)

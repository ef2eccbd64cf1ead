package auth

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

const (
	minUsernameLen = 2
	maxUsernameLen = 50
	minPasswordLen = 8
	maxPasswordLen = 20
)

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	phonePattern    = regexp.MustCompile(`^1[3-9]\d{9}$`)

	weakPasswords = map[string]struct{}{
		"123456":   {},
		"password": {},
		"admin123": {},
		"qwerty":   {},
		"abc123":   {},
	}
)

// ValidateUsername checks length and alphabet of a username.
func ValidateUsername(username string) error {
	if len(username) < minUsernameLen || len(username) > maxUsernameLen || !usernamePattern.MatchString(username) {
		return ErrInvalidUsername
	}

	return nil
}

// ValidatePassword enforces the password policy: 8 to 20 characters with at least one
// upper case letter, one lower case letter and one digit, and not a well known password.
func ValidatePassword(password string) error {
	n := len([]rune(password))
	if n < minPasswordLen || n > maxPasswordLen {
		return fmt.Errorf("%w: length must be %d to %d", ErrWeakPassword, minPasswordLen, maxPasswordLen)
	}

	var upper, lower, digit bool

	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}

	if !upper || !lower || !digit {
		return fmt.Errorf("%w: needs upper case, lower case and a digit", ErrWeakPassword)
	}

	if _, weak := weakPasswords[strings.ToLower(password)]; weak {
		return fmt.Errorf("%w: too common", ErrWeakPassword)
	}

	return nil
}

// ValidatePhone checks a mainland mobile number.
func ValidatePhone(phone string) error {
	if !phonePattern.MatchString(phone) {
		return ErrInvalidPhone
	}

	return nil
}

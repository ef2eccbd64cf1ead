package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/acctmgr/acctmgr/internal/activation"
	"github.com/acctmgr/acctmgr/internal/auth"
	"github.com/acctmgr/acctmgr/internal/db/controller/account"
	"github.com/acctmgr/acctmgr/internal/settings"
)

// ErrBadRequest marks malformed input that is not a validation failure.
var ErrBadRequest = errors.New("bad request")

const internalErrorMessage = "internal server error"

var statusByError = []struct {
	err    error
	status int
}{
	{settings.ErrUnknownSettingCode, fiber.StatusNotFound},
	{settings.ErrUnknownGroupCode, fiber.StatusNotFound},
	{activation.ErrCodeNotFound, fiber.StatusNotFound},
	{account.ErrAccountNotFound, fiber.StatusNotFound},
	{auth.ErrUserNotFound, fiber.StatusNotFound},

	{settings.ErrTypeMismatch, fiber.StatusBadRequest},
	{settings.ErrUnknownValueType, fiber.StatusBadRequest},
	{activation.ErrDuplicateTypeInBatch, fiber.StatusBadRequest},
	{activation.ErrUnknownType, fiber.StatusBadRequest},
	{activation.ErrUnknownStatus, fiber.StatusBadRequest},
	{activation.ErrInvalidBatch, fiber.StatusBadRequest},
	{activation.ErrInvalidCount, fiber.StatusBadRequest},
	{activation.ErrInvalidTimeRange, fiber.StatusBadRequest},
	{activation.ErrCodeExpired, fiber.StatusBadRequest},
	{account.ErrAccountNameEmpty, fiber.StatusBadRequest},
	{auth.ErrInvalidUsername, fiber.StatusBadRequest},
	{auth.ErrWeakPassword, fiber.StatusBadRequest},
	{auth.ErrInvalidPhone, fiber.StatusBadRequest},
	{auth.ErrEmptyProfileUpdate, fiber.StatusBadRequest},
	{auth.ErrInvalidOldPassword, fiber.StatusBadRequest},
	{ErrBadRequest, fiber.StatusBadRequest},

	{activation.ErrCodeNotDistributed, fiber.StatusConflict},
	{activation.ErrCodeAlreadyDistributed, fiber.StatusConflict},
	{activation.ErrCodeAlreadyActivated, fiber.StatusConflict},
	{activation.ErrCodeInvalid, fiber.StatusConflict},
	{activation.ErrNoCodesAvailable, fiber.StatusConflict},
	{activation.ErrConcurrentUpdate, fiber.StatusConflict},
	{auth.ErrUserNameExists, fiber.StatusConflict},

	{auth.ErrUnauthorized, fiber.StatusUnauthorized},
	{auth.ErrInvalidPassword, fiber.StatusUnauthorized},
	{auth.ErrForbidden, fiber.StatusForbidden},
	{auth.ErrUserAccountDisabled, fiber.StatusForbidden},
	{auth.ErrMembershipExpired, fiber.StatusForbidden},
}

// StatusFor maps an error to its HTTP status code, 500 for anything unknown.
func StatusFor(err error) int {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}

	var ve *ValidationError
	if errors.As(err, &ve) {
		return fiber.StatusBadRequest
	}

	for _, m := range statusByError {
		if errors.Is(err, m.err) {
			return m.status
		}
	}

	return fiber.StatusInternalServerError
}

// ErrorHandler is the fiber error handler writing the response envelope.
// Messages of unknown errors are not sent to the client.
func ErrorHandler(c *fiber.Ctx, err error) error {
	status := StatusFor(err)
	message := err.Error()

	var data any

	var ve *ValidationError
	if errors.As(err, &ve) {
		data = ve.Fields
	}

	if status == fiber.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Str("method", c.Method()).Msg("request failed")

		message = internalErrorMessage
	}

	return Fail(c, status, message, data)
}

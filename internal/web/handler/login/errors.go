package login

import "github.com/gofiber/fiber/v2"

// ErrInvalidCredentials is returned when the username or the password is wrong.
var ErrInvalidCredentials = fiber.NewError(fiber.StatusUnauthorized, "invalid username or password")

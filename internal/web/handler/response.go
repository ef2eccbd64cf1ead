package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// Response is the envelope of every JSON answer.
type Response struct {
	Success   bool   `json:"success"`
	Code      int    `json:"code"`
	Message   string `json:"message"`
	Data      any    `json:"data,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// OK writes data with status 200.
func OK(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusOK).JSON(Response{
		Success:   true,
		Code:      fiber.StatusOK,
		Message:   "success",
		Data:      data,
		Timestamp: time.Now().UnixMilli(),
	})
}

// Fail writes an error envelope with status.
func Fail(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(Response{
		Success:   false,
		Code:      status,
		Message:   message,
		Data:      data,
		Timestamp: time.Now().UnixMilli(),
	})
}

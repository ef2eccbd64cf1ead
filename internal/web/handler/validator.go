package handler

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type (
	// FieldError describes one failed validation rule.
	FieldError struct {
		FailedField string `json:"field"`
		Tag         string `json:"tag"`
		Param       string `json:"param,omitempty"`
		Value       any    `json:"value,omitempty"`
	}

	// ValidationError carries every failed rule of a request body.
	ValidationError struct {
		Fields []FieldError
	}
)

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		names = append(names, f.FailedField)
	}

	return "invalid request: " + strings.Join(names, ", ")
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks data against its validate tags.
func Validate(data any) error {
	errs := validate.Struct(data)
	if errs == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(errs, &verrs) {
		return errs
	}

	out := &ValidationError{Fields: make([]FieldError, 0, len(verrs))}
	for _, err := range verrs {
		out.Fields = append(out.Fields, FieldError{
			FailedField: err.Field(),
			Tag:         err.Tag(),
			Param:       err.Param(),
			Value:       err.Value(),
		})
	}

	return out
}

// Bind parses the request body into dst and validates it.
func Bind(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "malformed request body")
	}

	return Validate(dst)
}

package handlers

import (
	"fincoach/internal/validation"

	"github.com/labstack/echo/v4"
)

// CustomValidator plugs the shared rule set into echo's Validator hook, so
// request DTOs get the custom tags (analysis_status, extraction_method) and
// json-tag field names in error output
type CustomValidator struct {
	validate *validation.Validator
}

// NewValidator builds the echo validator used by the server
func NewValidator() echo.Validator {
	return &CustomValidator{validate: validation.GetValidator()}
}

// Validate checks i against its struct tags. The raw
// validator.ValidationErrors pass through so the error handler can render
// per-field details.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validate.GetValidate().Struct(i)
}

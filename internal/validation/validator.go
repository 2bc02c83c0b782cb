package validation

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator wraps the go-playground validator with custom rules and error formatting
type Validator struct {
	validate *validator.Validate
}

// GetValidate returns the underlying validator.Validate instance for use with Echo
func (v *Validator) GetValidate() *validator.Validate {
	return v.validate
}

// singleton instance of the validator
var instance *Validator

// GetValidator returns the singleton validator instance
func GetValidator() *Validator {
	if instance == nil {
		instance = NewValidator()
	}
	return instance
}

// NewValidator creates a new validator instance with custom rules and configuration
func NewValidator() *Validator {
	v := validator.New()

	_ = v.RegisterValidation("analysis_status", validateAnalysisStatus)
	_ = v.RegisterValidation("extraction_method", validateExtractionMethod)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{validate: v}
}

// Custom validation functions

// validateAnalysisStatus validates that a status is one of the allowed values
func validateAnalysisStatus(fl validator.FieldLevel) bool {
	status := strings.ToLower(fl.Field().String())
	validStatuses := map[string]bool{
		"completed": true,
		"degraded":  true,
		"failed":    true,
	}
	return validStatuses[status]
}

// validateExtractionMethod validates that a method tag is one the pipeline produces
func validateExtractionMethod(fl validator.FieldLevel) bool {
	method := strings.ToLower(fl.Field().String())
	validMethods := map[string]bool{
		"pdf_text":   true,
		"remote_ocr": true,
		"csv":        true,
		"text":       true,
	}
	return validMethods[method]
}

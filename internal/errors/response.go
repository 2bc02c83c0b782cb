package errors

import (
	"fmt"
	"net/http"
)

// ErrorResponse is the envelope every non-2xx endpoint returns
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries the code, a client-safe message, optional per-field
// details, and the trace ID the caller can quote to support
type ErrorDetail struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
	TraceID string   `json:"trace_id"`
}

// ErrorOption adjusts an ErrorResponse being built
type ErrorOption func(*ErrorResponse)

// WithDetails replaces the detail list
func WithDetails(details ...string) ErrorOption {
	return func(er *ErrorResponse) {
		er.Error.Details = details
	}
}

// WithMessage overrides the default message for the code
func WithMessage(message string) ErrorOption {
	return func(er *ErrorResponse) {
		er.Error.Message = message
	}
}

// NewErrorResponse builds a response for the given code, filling in the
// registered default message
func NewErrorResponse(code ErrorCode, traceID string, opts ...ErrorOption) *ErrorResponse {
	response := &ErrorResponse{
		Error: ErrorDetail{
			Code:    string(code),
			Message: GetErrorMessage(code),
			TraceID: traceID,
			Details: []string{},
		},
	}

	for _, opt := range opts {
		opt(response)
	}

	return response
}

// NewValidationError builds a VALIDATION_001 response from per-field
// messages, one "field: message" detail each
func NewValidationError(fieldErrors map[string]string, traceID string) *ErrorResponse {
	details := make([]string, 0, len(fieldErrors))
	for field, message := range fieldErrors {
		details = append(details, fmt.Sprintf("%s: %s", field, message))
	}
	return NewErrorResponse(ValidationGeneral, traceID, WithDetails(details...))
}

// WrapSystemError hides an internal error behind SYSTEM_001 so its text
// never reaches a client. The original error comes back for logging.
func WrapSystemError(err error, traceID string) (*ErrorResponse, error) {
	return NewErrorResponse(SystemInternalError, traceID), err
}

// GetHTTPStatus maps an error code onto the HTTP status it should travel with
func GetHTTPStatus(code ErrorCode) int {
	switch code {
	case ValidationGeneral, ValidationRequiredField, ValidationInvalidFormat,
		ValidationOutOfRange, ValidationInvalidDate,
		DocumentMissing, DocumentEmptyStatement, AnalysisInvalidID:
		return http.StatusBadRequest

	case AnalysisNotFound:
		return http.StatusNotFound

	case DocumentTooLarge:
		return http.StatusRequestEntityTooLarge

	case DocumentUnsupported:
		return http.StatusUnsupportedMediaType

	// Well-formed request, unworkable content
	case DocumentUnreadable, DocumentNoExtractor, AnalysisFailed:
		return http.StatusUnprocessableEntity

	case SystemRateLimitExceeded:
		return http.StatusTooManyRequests

	// Upstream reasoning provider failed
	case AnalysisAgentFailed:
		return http.StatusBadGateway

	case SystemServiceUnavailable:
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

// GetHTTPStatus returns the HTTP status for this response's code
func (er *ErrorResponse) GetHTTPStatus() int {
	return GetHTTPStatus(ErrorCode(er.Error.Code))
}

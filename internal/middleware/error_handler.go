package middleware

import (
	"fmt"
	"log/slog"
	"net/http"

	"fincoach/internal/errors"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var apiErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "api_errors_total",
		Help: "Total number of API errors by code, endpoint, and status",
	},
	[]string{"code", "endpoint", "status"},
)

// statusCodes maps raw HTTP statuses (echo routing errors, method checks)
// onto the error taxonomy
var statusCodes = map[int]errors.ErrorCode{
	http.StatusBadRequest:            errors.ValidationGeneral,
	http.StatusNotFound:              errors.AnalysisNotFound,
	http.StatusMethodNotAllowed:      errors.ValidationGeneral,
	http.StatusRequestEntityTooLarge: errors.DocumentTooLarge,
	http.StatusUnsupportedMediaType:  errors.DocumentUnsupported,
	http.StatusUnprocessableEntity:   errors.ValidationGeneral,
	http.StatusTooManyRequests:       errors.SystemRateLimitExceeded,
	http.StatusInternalServerError:   errors.SystemInternalError,
	http.StatusServiceUnavailable:    errors.SystemServiceUnavailable,
}

// CustomHTTPErrorHandler turns every error that escapes a handler into a
// standardized ErrorResponse, logs it, and counts it
func CustomHTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	traceID := GetTraceID(c)
	if traceID == "" {
		traceID = "unknown"
	}

	var response *errors.ErrorResponse
	var status int

	switch e := err.(type) {
	case *echo.HTTPError:
		code, ok := statusCodes[e.Code]
		if !ok {
			code = errors.SystemUnexpectedError
		}
		response = errors.NewErrorResponse(code, traceID,
			errors.WithMessage(fmt.Sprintf("%v", e.Message)))
		status = e.Code
	case validator.ValidationErrors:
		fields := make(map[string]string, len(e))
		for _, fieldErr := range e {
			fields[fieldErr.Field()] = describeFieldError(fieldErr)
		}
		response = errors.NewValidationError(fields, traceID)
		status = http.StatusBadRequest
	default:
		response, _ = errors.WrapSystemError(err, traceID)
		status = response.GetHTTPStatus()
	}

	level := slog.LevelWarn
	if status >= 500 {
		level = slog.LevelError
	}
	slog.Log(c.Request().Context(), level, "request failed",
		"trace_id", traceID,
		"error_code", response.Error.Code,
		"status", status,
		"path", c.Request().URL.Path,
		"method", c.Request().Method,
		"error", err.Error(),
	)

	apiErrorsTotal.WithLabelValues(response.Error.Code, c.Path(), fmt.Sprintf("%d", status)).Inc()

	if sendErr := c.JSON(status, response); sendErr != nil {
		slog.Error("could not write error response",
			"trace_id", traceID,
			"error", sendErr.Error())
	}
}

// describeFieldError renders the validation tags the request DTOs use;
// anything else falls back to naming the failed tag
func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "uuid":
		return "must be a valid UUID"
	case "analysis_status":
		return "must be a valid analysis status"
	case "extraction_method":
		return "must be a recognized extraction method"
	default:
		return fmt.Sprintf("failed validation for '%s'", fe.Tag())
	}
}

package handlers

import (
	"net/http"

	"fincoach/internal/errors"

	"github.com/labstack/echo/v4"
)

// Handlers reply through two shapes: SuccessResponse for 2xx payloads and
// the errors package ErrorResponse for everything else. SendError covers
// expected client failures with a specific code; SendSystemError hides the
// cause behind SYSTEM_001 and keeps the detail in the log.

const traceContextKey = "trace_id"

// SuccessResponse wraps successful API payloads with optional message and
// pagination metadata
type SuccessResponse struct {
	Data    interface{} `json:"data,omitempty" swaggertype:"object"`
	Message string      `json:"message,omitempty"`
	Meta    interface{} `json:"meta,omitempty" swaggertype:"object"`
}

func requestTraceID(c echo.Context) string {
	if id, ok := c.Get(traceContextKey).(string); ok {
		return id
	}
	return ""
}

// SendError responds with the status mapped from the error code
func SendError(c echo.Context, code errors.ErrorCode, opts ...errors.ErrorOption) error {
	response := errors.NewErrorResponse(code, requestTraceID(c), opts...)
	return c.JSON(response.GetHTTPStatus(), response)
}

// SendSystemError responds with a generic SYSTEM_001 and logs the cause
func SendSystemError(c echo.Context, err error) error {
	response, _ := errors.WrapSystemError(err, requestTraceID(c))
	return c.JSON(http.StatusInternalServerError, response)
}

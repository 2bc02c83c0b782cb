package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"fincoach/internal/errors"

	"github.com/labstack/echo/v4"
)

// PanicRecovery converts handler panics into SYSTEM_001 responses instead
// of tearing down the server mid-analysis
func PanicRecovery() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			defer func() {
				r := recover()
				if r == nil {
					return
				}

				traceID := GetTraceID(c)
				if traceID == "" {
					traceID = "unknown"
				}

				slog.Error("panic recovered",
					"trace_id", traceID,
					"panic", fmt.Sprint(r),
					"method", c.Request().Method,
					"path", c.Request().URL.Path,
					"stack", string(debug.Stack()),
				)

				response := errors.NewErrorResponse(errors.SystemInternalError, traceID)
				if writeErr := c.JSON(http.StatusInternalServerError, response); writeErr != nil {
					slog.Error("could not write panic response",
						"trace_id", traceID,
						"error", writeErr)
				}
			}()

			return next(c)
		}
	}
}

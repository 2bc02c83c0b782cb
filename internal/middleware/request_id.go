package middleware

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	// TraceIDHeader carries the trace ID on both request and response
	TraceIDHeader = "X-Trace-ID"
	// TraceIDContextKey stores the trace ID in the echo context
	TraceIDContextKey = "trace_id"
)

// RequestID propagates the caller's X-Trace-ID or mints a new one, then
// logs the request once it completes. Analysis runs can take seconds, so
// the completion log carries the trace ID for correlation with the
// pipeline's own stage logs.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			traceID := c.Request().Header.Get(TraceIDHeader)
			if traceID == "" {
				traceID = uuid.NewString()
			}
			c.Set(TraceIDContextKey, traceID)
			c.Response().Header().Set(TraceIDHeader, traceID)

			start := time.Now()
			err := next(c)

			slog.Info("request handled",
				"trace_id", traceID,
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"status", c.Response().Status,
				"duration_ms", time.Since(start).Milliseconds(),
			)
			return err
		}
	}
}

// GetTraceID returns the trace ID for the current request, empty when the
// middleware did not run
func GetTraceID(c echo.Context) string {
	if id, ok := c.Get(TraceIDContextKey).(string); ok {
		return id
	}
	return ""
}

package middleware

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"anna.local/annad/common/id"
	applogger "anna.local/annad/common/logger"
)

// RequestID stamps every request with a snowflake id before anything
// else runs, so downstream handlers and log lines share one
// correlation token for the life of the request.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := strconv.FormatInt(id.New(), 10)
		ctx := applogger.WithLogFields(c.Request.Context(), applogger.LogFields{
			RequestID: applogger.Ptr(reqID),
			Component: "annad.http",
		})
		c.Request = c.Request.WithContext(ctx)
		c.Set("request_id", reqID)
		c.Next()
	}
}

// Logger records method/path/status/latency for every request at a
// level keyed to the response status.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if c.Request.URL.RawQuery != "" {
			path = path + "?" + c.Request.URL.RawQuery
		}

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		ctx := c.Request.Context()

		attrs := []any{
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"latency_ms", latency.Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "errors", c.Errors.String())
		}

		switch {
		case status >= 500:
			slog.ErrorContext(ctx, "request failed", attrs...)
		case status >= 400:
			slog.WarnContext(ctx, "request error", attrs...)
		default:
			slog.InfoContext(ctx, "request", attrs...)
		}
	}
}

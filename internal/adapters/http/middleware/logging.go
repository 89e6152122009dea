package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/quote-oasis/internal/platform/logging"
)

// Logging writes one access line per request at a level chosen by status.
// Probe routes under /-/ and the exact paths in quiet are not logged.
func Logging(quiet ...string) gin.HandlerFunc {
	silent := make(map[string]bool, len(quiet))
	for _, p := range quiet {
		silent[p] = true
	}

	return func(c *gin.Context) {
		if p := c.Request.URL.Path; silent[p] || strings.HasPrefix(p, "/-/") {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
			ctx = logging.WithTraceID(ctx, sc.TraceID().String())
			c.Request = c.Request.WithContext(ctx)
		}

		start := time.Now()
		c.Next()
		took := time.Since(start)

		status := c.Writer.Status()
		logging.FromContext(ctx).Log(ctx, accessLevel(status), "request completed",
			slog.String("method", c.Request.Method),
			slog.String("uri", c.Request.URL.RequestURI()),
			slog.String("route", c.FullPath()),
			slog.Int("status", status),
			slog.Duration("latency", took),
			slog.Int("bytes", c.Writer.Size()),
			slog.String("client_ip", c.ClientIP()),
		)
	}
}

func accessLevel(status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quote-oasis/internal/platform/logging"
)

// Timeout bounds the request context. It does not abort the handler: the
// quotes client sees the deadline, fails, and the widget renders its fallback.
// A non-positive d leaves requests unbounded.
func Timeout(d time.Duration) gin.HandlerFunc {
	if d <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			logging.FromContext(ctx).WarnContext(ctx, "request outlived its deadline",
				slog.Duration("timeout", d),
				slog.String("path", c.FullPath()),
			)
		}
	}
}

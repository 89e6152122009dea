// Package middleware provides the gin middleware chain: IDs, logging,
// recovery, deadlines, CORS and rate limiting.
package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jsamuelsen/quote-oasis/internal/platform/logging"
)

const (
	HeaderRequestID     = "X-Request-ID"
	ContextKeyRequestID = "request_id"

	// HeaderCorrelationID spans every hop of one visitor action, while the
	// request ID names a single request.
	HeaderCorrelationID     = "X-Correlation-ID"
	ContextKeyCorrelationID = "correlation_id"
)

// maxInboundIDLen bounds caller-supplied IDs before they reach headers and logs.
const maxInboundIDLen = 128

type idKey struct{ name string }

var (
	requestIDKey     = idKey{"request_id"}
	correlationIDKey = idKey{"correlation_id"}
)

// propagatedID is one identifier carried from an inbound header to the
// response, the gin context, the request context and the context logger.
type propagatedID struct {
	header  string
	ginKey  string
	ctxKey  idKey
	withLog func(context.Context, string) context.Context
}

var (
	requestIDSpec     = propagatedID{HeaderRequestID, ContextKeyRequestID, requestIDKey, logging.WithRequestID}
	correlationIDSpec = propagatedID{HeaderCorrelationID, ContextKeyCorrelationID, correlationIDKey, logging.WithCorrelationID}
)

// RequestID adopts X-Request-ID or mints a UUID. The client adapter forwards
// it to the quotes API.
func RequestID() gin.HandlerFunc { return requestIDSpec.middleware() }

// CorrelationID adopts X-Correlation-ID or starts a new one.
func CorrelationID() gin.HandlerFunc { return correlationIDSpec.middleware() }

func (p propagatedID) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(p.header)
		if !acceptableID(id) {
			id = uuid.NewString()
		}

		c.Set(p.ginKey, id)
		c.Header(p.header, id)

		ctx := context.WithValue(c.Request.Context(), p.ctxKey, id)
		c.Request = c.Request.WithContext(p.withLog(ctx, id))

		c.Next()
	}
}

// acceptableID rejects empty, oversized and non-printable values.
func acceptableID(id string) bool {
	if id == "" || len(id) > maxInboundIDLen {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}

func GetRequestID(c *gin.Context) string     { return c.GetString(ContextKeyRequestID) }
func GetCorrelationID(c *gin.Context) string { return c.GetString(ContextKeyCorrelationID) }

func RequestIDFromContext(ctx context.Context) string     { return idFrom(ctx, requestIDKey) }
func CorrelationIDFromContext(ctx context.Context) string { return idFrom(ctx, correlationIDKey) }

func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey, id)
}

func idFrom(ctx context.Context, key idKey) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(key).(string)
	return id
}

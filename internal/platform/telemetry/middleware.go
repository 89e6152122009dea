package telemetry

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/jsamuelsen/quote-oasis/telemetry"

// HeaderTraceID carries the active trace ID on every traced response.
const HeaderTraceID = "X-Trace-ID"

// unmatchedRoute labels requests gin could not route, keeping raw paths out
// of metric labels.
const unmatchedRoute = "unmatched"

// probePrefix marks the liveness, readiness and metrics routes.
const probePrefix = "/-/"

type serverInstruments struct {
	duration metric.Float64Histogram
	total    metric.Int64Counter
	active   metric.Int64UpDownCounter
}

func newServerInstruments(meter metric.Meter) (*serverInstruments, error) {
	var (
		si  serverInstruments
		err error
	)
	if si.duration, err = meter.Float64Histogram("http.server.request.duration",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}
	if si.total, err = meter.Int64Counter("http.server.request.total",
		metric.WithDescription("Total number of HTTP requests"),
	); err != nil {
		return nil, err
	}
	if si.active, err = meter.Int64UpDownCounter("http.server.active_requests",
		metric.WithDescription("Number of active HTTP requests"),
	); err != nil {
		return nil, err
	}
	return &si, nil
}

func (si *serverInstruments) observe(c *gin.Context) {
	ctx := c.Request.Context()
	route := c.FullPath()
	if route == "" {
		route = unmatchedRoute
	}
	base := []attribute.KeyValue{
		attribute.String("http.method", c.Request.Method),
		attribute.String("http.route", route),
	}

	start := time.Now()
	si.active.Add(ctx, 1, metric.WithAttributes(base...))
	defer si.active.Add(ctx, -1, metric.WithAttributes(base...))

	c.Next()

	done := metric.WithAttributes(append(base, attribute.Int("http.status_code", c.Writer.Status()))...)
	si.duration.Record(ctx, time.Since(start).Seconds(), done)
	si.total.Add(ctx, 1, done)
}

// Middleware returns the gin handlers for tracing and server metrics. Probe
// routes are measured but not traced.
func Middleware(serviceName string) []gin.HandlerFunc {
	chain := []gin.HandlerFunc{
		otelgin.Middleware(serviceName, otelgin.WithFilter(func(r *http.Request) bool {
			return !strings.HasPrefix(r.URL.Path, probePrefix)
		})),
		echoTraceID,
	}

	si, err := newServerInstruments(otel.Meter(instrumentationName))
	if err != nil {
		otel.Handle(err)
		return chain
	}
	return append(chain, si.observe)
}

func echoTraceID(c *gin.Context) {
	if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
		c.Header(HeaderTraceID, sc.TraceID().String())
	}
	c.Next()
}

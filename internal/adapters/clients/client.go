package clients

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/quote-oasis/internal/adapters/http/middleware"
	"github.com/jsamuelsen/quote-oasis/internal/platform/config"
	"github.com/jsamuelsen/quote-oasis/internal/platform/logging"
)

const instrumentationName = "github.com/jsamuelsen/quote-oasis/internal/adapters/clients"

const (
	defaultTimeout             = 10 * time.Second
	defaultMaxIdleConns        = 20
	defaultMaxIdleConnsPerHost = 10
	defaultIdleConnTimeout     = 90 * time.Second
)

// Result labels on the client metrics.
const (
	resultCircuitOpen = "circuit_open"
	resultCanceled    = "context_canceled"
	resultError       = "error"
)

type Config struct {
	BaseURL     string
	ServiceName string

	// Timeout bounds one request. Calls are never retried.
	Timeout time.Duration

	Circuit   config.CircuitBreakerConfig
	Transport config.TransportConfig

	// AuthFunc adds credentials to every outgoing request.
	AuthFunc func(*http.Request)

	Logger *slog.Logger

	// HTTPClient replaces the pooled client built from Timeout and Transport.
	HTTPClient *http.Client
}

// Client sends single requests to one downstream service behind a circuit
// breaker. Each request carries the caller's request and correlation IDs and
// the trace context, and is recorded on the client span and metrics.
type Client struct {
	http    *http.Client
	base    *url.URL
	service string
	auth    func(*http.Request)
	logger  *slog.Logger
	breaker *CircuitBreaker
	tracer  trace.Tracer
	inst    instruments
}

func New(cfg *Config) (*Client, error) {
	switch {
	case cfg == nil:
		return nil, errors.New("config is required")
	case cfg.ServiceName == "":
		return nil, errors.New("service name is required")
	}

	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base url: %w", err)
	}
	base.Path = path.Clean("/" + base.Path)
	if base.Path == "/" {
		base.Path = ""
	}

	inst, err := newInstruments(otel.Meter(instrumentationName))
	if err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "clients.Client"), slog.String("downstream", cfg.ServiceName))

	breaker := NewCircuitBreaker(CircuitBreakerConfig{
		MaxFailures:   cfg.Circuit.MaxFailures,
		Timeout:       cfg.Circuit.Timeout,
		HalfOpenLimit: cfg.Circuit.HalfOpenLimit,
	})
	breaker.OnStateChange(func(from, to State) {
		logger.Warn("circuit breaker state changed", slog.String("from", from.String()), slog.String("to", to.String()))
	})

	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		hc = &http.Client{Timeout: timeout, Transport: newTransport(cfg.Transport)}
	}

	return &Client{
		http:    hc,
		base:    base,
		service: cfg.ServiceName,
		auth:    cfg.AuthFunc,
		logger:  logger,
		breaker: breaker,
		tracer:  otel.Tracer(instrumentationName),
		inst:    inst,
	}, nil
}

func newTransport(tc config.TransportConfig) *http.Transport {
	return &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        positiveOr(tc.MaxIdleConns, defaultMaxIdleConns),
		MaxIdleConnsPerHost: positiveOr(tc.MaxIdleConnsPerHost, defaultMaxIdleConnsPerHost),
		IdleConnTimeout:     positiveOr(tc.IdleConnTimeout, defaultIdleConnTimeout),
	}
}

func positiveOr[T int | time.Duration](v, fallback T) T {
	if v > 0 {
		return v
	}
	return fallback
}

// Do sends req once. Any HTTP status is handed back to the caller; the
// breaker only counts transport failures and 5xx answers against upstream.
// Requests whose ctx ends first are not counted at all.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	start := time.Now()
	log := logging.FromContext(ctx).With(
		slog.String("downstream", c.service),
		slog.String("method", req.Method),
		slog.String("path", req.URL.Path),
	)

	if !c.breaker.Allow() {
		c.inst.record(ctx, c.service, req.Method, 0, resultCircuitOpen, 0)
		log.WarnContext(ctx, "request blocked by circuit breaker")
		return nil, ErrCircuitOpen
	}

	ctx, span := c.tracer.Start(ctx, "HTTP "+req.Method+" "+c.service,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", req.Method),
			attribute.String("http.url", req.URL.Redacted()),
			attribute.String("peer.service", c.service),
		),
	)
	defer span.End()

	c.decorate(ctx, req)
	log.Log(ctx, logging.LevelTrace, "sending request", slog.String("query", req.URL.RawQuery))

	resp, err := c.http.Do(req.WithContext(ctx))
	elapsed := time.Since(start)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		result := resultError
		switch {
		case ctx.Err() != nil:
			// The caller went away; upstream may be fine.
			c.breaker.Abandon()
			result = resultCanceled
		case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
			c.breaker.RecordFailure()
			result = resultCanceled
		default:
			c.breaker.RecordFailure()
		}
		c.inst.record(ctx, c.service, req.Method, 0, result, elapsed)
		log.ErrorContext(ctx, "request failed", slog.Duration("duration", elapsed), slog.Any("error", err))
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		c.breaker.RecordFailure()
	} else {
		c.breaker.RecordSuccess()
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode >= http.StatusBadRequest {
		span.SetStatus(codes.Error, "HTTP "+strconv.Itoa(resp.StatusCode))
	}
	c.inst.record(ctx, c.service, req.Method, resp.StatusCode, statusClass(resp.StatusCode), elapsed)
	log.DebugContext(ctx, "request completed", slog.Int("status", resp.StatusCode), slog.Duration("duration", elapsed))

	return resp, nil
}

// Get requests p below the base URL with an optional query.
func (c *Client) Get(ctx context.Context, p string, query url.Values) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.resolve(p, query), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	return c.Do(ctx, req)
}

func (c *Client) CircuitState() State { return c.breaker.State() }

func (c *Client) ServiceName() string { return c.service }

// decorate forwards the caller's IDs and trace context, then applies auth.
func (c *Client) decorate(ctx context.Context, req *http.Request) {
	for header, id := range map[string]string{
		middleware.HeaderRequestID:     middleware.RequestIDFromContext(ctx),
		middleware.HeaderCorrelationID: middleware.CorrelationIDFromContext(ctx),
	} {
		if id != "" {
			req.Header.Set(header, id)
		}
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))
	if c.auth != nil {
		c.auth(req)
	}
}

func (c *Client) resolve(p string, query url.Values) string {
	u := *c.base
	u.Path = path.Join(c.base.Path, "/"+p)
	u.RawQuery = query.Encode()
	return u.String()
}

func statusClass(code int) string {
	return strconv.Itoa(code/100) + "xx"
}

// instruments are the OTel client metrics.
type instruments struct {
	duration metric.Float64Histogram
	total    metric.Int64Counter
}

func newInstruments(meter metric.Meter) (instruments, error) {
	duration, err := meter.Float64Histogram("http.client.request.duration",
		metric.WithDescription("Duration of HTTP client requests"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return instruments{}, fmt.Errorf("creating duration metric: %w", err)
	}
	total, err := meter.Int64Counter("http.client.request.total",
		metric.WithDescription("Total number of HTTP client requests"),
	)
	if err != nil {
		return instruments{}, fmt.Errorf("creating request counter: %w", err)
	}
	return instruments{duration: duration, total: total}, nil
}

func (i instruments) record(ctx context.Context, service, method string, status int, result string, elapsed time.Duration) {
	attrs := []attribute.KeyValue{
		attribute.String("http.method", method),
		attribute.String("peer.service", service),
		attribute.String("result", result),
	}
	if status > 0 {
		attrs = append(attrs, attribute.Int("http.status_code", status))
	}
	opt := metric.WithAttributes(attrs...)
	i.duration.Record(ctx, elapsed.Seconds(), opt)
	i.total.Add(ctx, 1, opt)
}

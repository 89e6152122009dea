//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jsamuelsen/quote-oasis/internal/adapters/clients/acl"
	adapthttp "github.com/jsamuelsen/quote-oasis/internal/adapters/http"
	"github.com/jsamuelsen/quote-oasis/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quote-oasis/internal/adapters/session"
	"github.com/jsamuelsen/quote-oasis/internal/app"
	"github.com/jsamuelsen/quote-oasis/internal/domain"
	"github.com/jsamuelsen/quote-oasis/internal/platform/config"
	"github.com/jsamuelsen/quote-oasis/internal/platform/telemetry"
	"github.com/jsamuelsen/quote-oasis/internal/ports"
)

const testAPIKey = "integration-key"

// upstreamResponse is what the fake quotes API answers for one category.
type upstreamResponse struct {
	status int
	body   string
	delay  time.Duration
}

// fakeUpstream is a scriptable stand-in for the quotes API.
type fakeUpstream struct {
	server *httptest.Server

	mu        sync.Mutex
	responses map[string]upstreamResponse
	calls     map[string]int
	total     atomic.Int32
	lastKey   atomic.Value
}

func newFakeUpstream() *fakeUpstream {
	u := &fakeUpstream{
		responses: make(map[string]upstreamResponse),
		calls:     make(map[string]int),
	}
	u.server = httptest.NewServer(http.HandlerFunc(u.serve))
	return u
}

func (u *fakeUpstream) serve(w http.ResponseWriter, r *http.Request) {
	u.total.Add(1)
	u.lastKey.Store(r.Header.Get(acl.APIKeyHeader))

	category := r.URL.Query().Get("category")

	u.mu.Lock()
	u.calls[category]++
	resp, ok := u.responses[category]
	u.mu.Unlock()

	if !ok {
		resp = upstreamResponse{status: http.StatusOK, body: quoteJSON("Default quote for "+category, "Oasis")}
	}

	if resp.delay > 0 {
		select {
		case <-time.After(resp.delay):
		case <-r.Context().Done():
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.status)
	_, _ = io.WriteString(w, resp.body)
}

func (u *fakeUpstream) set(category string, resp upstreamResponse) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.responses[category] = resp
}

func (u *fakeUpstream) callsFor(category string) int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.calls[category]
}

func (u *fakeUpstream) reset() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.responses = make(map[string]upstreamResponse)
	u.calls = make(map[string]int)
	u.total.Store(0)
}

func (u *fakeUpstream) close() {
	u.server.Close()
}

// quoteJSON renders a one-element upstream payload.
func quoteJSON(text, author string) string {
	b, _ := json.Marshal([]map[string]string{{"quote": text, "author": author, "category": "any"}})
	return string(b)
}

// stack is the whole service wired the way cmd/service does it, bound to a
// random local port.
type stack struct {
	baseURL  string
	server   *adapthttp.Server
	sessions *session.Store[*app.Widget]
	registry *prometheus.Registry
}

type stackOptions struct {
	clientTimeout time.Duration
	maxFailures   int
	rateLimit     config.RateLimitConfig
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newStack(upstreamURL string, opts stackOptions) (*stack, error) {
	if opts.clientTimeout == 0 {
		opts.clientTimeout = 2 * time.Second
	}
	if opts.maxFailures == 0 {
		opts.maxFailures = 5
	}

	logger := discardLogger()

	cfg := &config.Config{
		App: config.AppConfig{Name: "quote-oasis", Version: "integration", Environment: "test"},
		Server: config.ServerConfig{
			Host:            "127.0.0.1",
			Port:            0,
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    10 * time.Second,
			IdleTimeout:     30 * time.Second,
			ShutdownTimeout: 5 * time.Second,
			MaxRequestSize:  1 << 20,
		},
		Client: config.ClientConfig{
			Timeout: opts.clientTimeout,
			CircuitBreaker: config.CircuitBreakerConfig{
				MaxFailures:   opts.maxFailures,
				Timeout:       time.Minute,
				HalfOpenLimit: 1,
			},
			Transport: config.TransportConfig{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     30 * time.Second,
			},
		},
		Services: config.ServicesConfig{Quote: config.QuoteServiceConfig{
			BaseURL: upstreamURL,
			Path:    acl.DefaultPath,
			Name:    "quote-service",
			APIKey:  testAPIKey,
		}},
		Widget: config.WidgetConfig{
			DefaultCategory:   domain.DefaultCategory.String(),
			PageURL:           "http://localhost:8080/",
			AnimationDuration: 800 * time.Millisecond,
			SessionTTL:        time.Hour,
			CookieName:        "quote_oasis_session",
		},
		RateLimit: opts.rateLimit,
	}

	registry := prometheus.NewRegistry()
	fetchMetrics, err := telemetry.NewFetchMetrics(registry)
	if err != nil {
		return nil, err
	}

	quoteClient, err := acl.FromConfig(cfg, logger)
	if err != nil {
		return nil, err
	}
	healthRegistry := ports.NewHealthRegistry()
	if err := healthRegistry.Register(quoteClient); err != nil {
		return nil, err
	}

	quotes := app.NewQuoteService(app.QuoteServiceConfig{QuoteClient: quoteClient, Recorder: fetchMetrics, Logger: logger})
	sessions := session.NewStore[*app.Widget](session.Config{TTL: cfg.Widget.SessionTTL})

	widgetHandler := handlers.NewWidgetHandler(handlers.WidgetHandlerConfig{
		Sessions: sessions,
		NewWidget: func() *app.Widget {
			return app.NewWidget(app.WidgetConfig{
				Quotes:          quotes,
				InitialCategory: domain.Category(cfg.Widget.DefaultCategory),
				PageURL:         cfg.Widget.PageURL,
				Logger:          logger,
			})
		},
		CookieName:        cfg.Widget.CookieName,
		SessionTTL:        cfg.Widget.SessionTTL,
		AnimationDuration: cfg.Widget.AnimationDuration,
	})

	server := adapthttp.New(&cfg.Server, logger)
	adapthttp.SetupRouter(server.Engine(), adapthttp.NewRouterConfig(cfg, logger,
		handlers.NewHealthHandler(healthRegistry, handlers.NewBuildInfo("integration", "test", "now")).WithGatherer(registry),
		handlers.NewQuoteHandler(quotes, domain.DefaultCategory),
		widgetHandler,
	))

	errCh := server.Start()
	select {
	case err := <-errCh:
		if err != nil {
			return nil, err
		}
	default:
	}

	return &stack{
		baseURL:  "http://" + server.Addr(),
		server:   server,
		sessions: sessions,
		registry: registry,
	}, nil
}

func (s *stack) close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// startStack is newStack for plain tests.
func startStack(t *testing.T, upstreamURL string, opts stackOptions) *stack {
	t.Helper()
	s, err := newStack(upstreamURL, opts)
	if err != nil {
		t.Fatalf("starting stack: %v", err)
	}
	t.Cleanup(func() { _ = s.close() })
	return s
}

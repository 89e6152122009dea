package clients

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quote-oasis/internal/adapters/http/middleware"
	"github.com/jsamuelsen/quote-oasis/internal/platform/config"
)

func defaultConfig() *Config {
	return &Config{
		ServiceName: "quote-service",
		Timeout:     5 * time.Second,
		Circuit: config.CircuitBreakerConfig{
			MaxFailures:   5,
			Timeout:       time.Second,
			HalfOpenLimit: 2,
		},
		Transport: config.TransportConfig{
			MaxIdleConns:        4,
			MaxIdleConnsPerHost: 2,
			IdleConnTimeout:     time.Second,
		},
	}
}

func closeBody(t *testing.T, resp *http.Response) {
	t.Helper()
	if err := resp.Body.Close(); err != nil {
		t.Errorf("failed to close response body: %v", err)
	}
}

func TestNew_Validation(t *testing.T) {
	t.Run("nil config", func(t *testing.T) {
		_, err := New(nil)
		assert.ErrorContains(t, err, "config is required")
	})

	t.Run("missing service name", func(t *testing.T) {
		cfg := defaultConfig()
		cfg.ServiceName = ""
		_, err := New(cfg)
		assert.ErrorContains(t, err, "service name is required")
	})

	t.Run("trims trailing slash", func(t *testing.T) {
		cfg := defaultConfig()
		cfg.BaseURL = "https://api.api-ninjas.com/"
		client, err := New(cfg)
		require.NoError(t, err)
		assert.Equal(t, "https://api.api-ninjas.com", client.base.String())
		assert.Equal(t, "quote-service", client.ServiceName())
	})
}

func TestNewTransport_Defaults(t *testing.T) {
	tr := newTransport(config.TransportConfig{})
	assert.Equal(t, defaultMaxIdleConns, tr.MaxIdleConns)
	assert.Equal(t, defaultMaxIdleConnsPerHost, tr.MaxIdleConnsPerHost)
	assert.Equal(t, defaultIdleConnTimeout, tr.IdleConnTimeout)

	tr = newTransport(config.TransportConfig{MaxIdleConns: 3, MaxIdleConnsPerHost: 1, IdleConnTimeout: time.Minute})
	assert.Equal(t, 3, tr.MaxIdleConns)
	assert.Equal(t, 1, tr.MaxIdleConnsPerHost)
	assert.Equal(t, time.Minute, tr.IdleConnTimeout)
}

func TestClient_Get_QueryAndHeaders(t *testing.T) {
	var got *http.Request

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := defaultConfig()
	cfg.BaseURL = server.URL
	cfg.AuthFunc = func(r *http.Request) { r.Header.Set("X-Api-Key", "ninja-key") }

	client, err := New(cfg)
	require.NoError(t, err)

	ctx := middleware.ContextWithRequestID(context.Background(), "req-123")
	ctx = middleware.ContextWithCorrelationID(ctx, "corr-456")

	resp, err := client.Get(ctx, "v1/quotes", url.Values{"category": []string{"happiness"}})
	require.NoError(t, err)
	defer closeBody(t, resp)

	require.NotNil(t, got)
	assert.Equal(t, "/v1/quotes", got.URL.Path)
	assert.Equal(t, "happiness", got.URL.Query().Get("category"))
	assert.Equal(t, "ninja-key", got.Header.Get("X-Api-Key"))
	assert.Equal(t, "application/json", got.Header.Get("Accept"))
	assert.Equal(t, "req-123", got.Header.Get(middleware.HeaderRequestID))
	assert.Equal(t, "corr-456", got.Header.Get(middleware.HeaderCorrelationID))
}

func TestClient_SingleAttemptOnServerError(t *testing.T) {
	var attempts int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	cfg := defaultConfig()
	cfg.BaseURL = server.URL

	client, err := New(cfg)
	require.NoError(t, err)

	resp, err := client.Get(context.Background(), "/v1/quotes", nil)
	require.NoError(t, err)
	defer closeBody(t, resp)

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
}

func TestClient_CircuitBreakerOpensOnServerErrors(t *testing.T) {
	var calls int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	cfg := defaultConfig()
	cfg.BaseURL = server.URL
	cfg.Circuit.MaxFailures = 2

	client, err := New(cfg)
	require.NoError(t, err)

	for range 2 {
		resp, err := client.Get(context.Background(), "/v1/quotes", nil)
		require.NoError(t, err)
		closeBody(t, resp)
	}
	assert.Equal(t, StateOpen, client.CircuitState())

	_, err = client.Get(context.Background(), "/v1/quotes", nil)
	require.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestClient_ClientErrorsDoNotTripBreaker(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	cfg := defaultConfig()
	cfg.BaseURL = server.URL
	cfg.Circuit.MaxFailures = 1

	client, err := New(cfg)
	require.NoError(t, err)

	resp, err := client.Get(context.Background(), "/v1/quotes", nil)
	require.NoError(t, err)
	closeBody(t, resp)

	assert.Equal(t, StateClosed, client.CircuitState())
}

func TestClient_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := defaultConfig()
	cfg.BaseURL = server.URL
	cfg.Timeout = 50 * time.Millisecond

	client, err := New(cfg)
	require.NoError(t, err)

	_, err = client.Get(context.Background(), "/v1/quotes", nil)
	require.ErrorIs(t, err, ErrRequestFailed)
}

func TestClient_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer server.Close()

	cfg := defaultConfig()
	cfg.BaseURL = server.URL

	client, err := New(cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = client.Get(ctx, "/v1/quotes", nil)
	require.ErrorIs(t, err, context.Canceled)
}

func TestClient_Resolve(t *testing.T) {
	tests := []struct {
		base  string
		path  string
		query url.Values
		want  string
	}{
		{"https://api.api-ninjas.com", "/v1/quotes", nil, "https://api.api-ninjas.com/v1/quotes"},
		{"https://api.api-ninjas.com/", "v1/quotes", nil, "https://api.api-ninjas.com/v1/quotes"},
		{"https://api.api-ninjas.com", "/v1/quotes", url.Values{"category": {"life"}}, "https://api.api-ninjas.com/v1/quotes?category=life"},
		{"http://gateway.local/ninjas/", "/v1/quotes", nil, "http://gateway.local/ninjas/v1/quotes"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			cfg := defaultConfig()
			cfg.BaseURL = tt.base
			client, err := New(cfg)
			require.NoError(t, err)

			assert.Equal(t, tt.want, client.resolve(tt.path, tt.query))
		})
	}
}

func TestStatusClass(t *testing.T) {
	assert.Equal(t, "2xx", statusClass(http.StatusOK))
	assert.Equal(t, "4xx", statusClass(http.StatusTooManyRequests))
	assert.Equal(t, "5xx", statusClass(http.StatusBadGateway))
}

func TestClient_CallerCancellationDoesNotTripBreaker(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := defaultConfig()
	cfg.BaseURL = server.URL
	cfg.Circuit.MaxFailures = 2

	client, err := New(cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for range 5 {
		_, err := client.Get(ctx, "/v1/quotes", nil)
		require.ErrorIs(t, err, context.Canceled)
	}
	assert.Equal(t, StateClosed, client.CircuitState())

	resp, err := client.Get(context.Background(), "/v1/quotes", nil)
	require.NoError(t, err)
	closeBody(t, resp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

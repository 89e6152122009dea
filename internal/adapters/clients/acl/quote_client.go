package acl

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/jsamuelsen/quote-oasis/internal/adapters/clients"
	"github.com/jsamuelsen/quote-oasis/internal/domain"
	"github.com/jsamuelsen/quote-oasis/internal/platform/logging"
)

// APIKeyHeader carries the quotes API credential.
const APIKeyHeader = "X-Api-Key"

// DefaultPath is the quotes endpoint on the API host.
const DefaultPath = "/v1/quotes"

// QuoteClientConfig contains configuration for the quote client.
type QuoteClientConfig struct {
	// Client is the HTTP client; its BaseURL points at the quotes API host.
	Client *clients.Client

	// Path is the endpoint path. Defaults to DefaultPath.
	Path string

	Logger *slog.Logger
}

// QuoteClient implements ports.QuoteClient against the API Ninjas quotes endpoint.
type QuoteClient struct {
	client *clients.Client
	path   string
	logger *slog.Logger
}

// NewQuoteClient creates a new quote client adapter.
// Panics if Client is nil.
func NewQuoteClient(cfg QuoteClientConfig) *QuoteClient {
	if cfg.Client == nil {
		panic("QuoteClient: Client is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	path := cfg.Path
	if path == "" {
		path = DefaultPath
	}

	return &QuoteClient{
		client: cfg.Client,
		path:   path,
		logger: logger,
	}
}

// APIKeyAuth returns a clients.Config AuthFunc that sets the API key header.
func APIKeyAuth(apiKey string) func(*http.Request) {
	return func(r *http.Request) {
		r.Header.Set(APIKeyHeader, apiKey)
	}
}

// ninjaQuote is one element of the upstream response array.
type ninjaQuote struct {
	Quote    string `json:"quote"`
	Author   string `json:"author"`
	Category string `json:"category"`
}

// GetQuote issues exactly one request for the category and returns the
// first quote of the response array. An empty array is domain.ErrNoQuotes;
// a first element without both text and author is unavailable.
func (c *QuoteClient) GetQuote(ctx context.Context, category domain.Category) (*domain.Quote, error) {
	logger := c.logger.With(slog.String("category", category.String()))
	logger.DebugContext(ctx, "fetching quote")

	resp, err := c.client.Get(ctx, c.path, url.Values{"category": []string{category.String()}})
	if err != nil {
		return nil, mapClientError(err, c.client.ServiceName())
	}
	defer func() { _ = resp.Body.Close() }()

	logger.Log(ctx, logging.LevelTrace, "request complete", slog.Int("status", resp.StatusCode))

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		err := mapStatusError(resp, c.client.ServiceName())
		logger.WarnContext(ctx, "quote API error", slog.Int("status_code", resp.StatusCode), slog.Any("error", err))
		return nil, err
	}

	var payload []ninjaQuote
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, domain.NewUnavailableError(c.client.ServiceName(), fmt.Sprintf("decoding quote response: %v", err))
	}

	if len(payload) == 0 {
		return nil, domain.ErrNoQuotes
	}

	quote := translate(&payload[0])
	if !quote.Complete() {
		logger.WarnContext(ctx, "quote API returned an incomplete quote", slog.Int("results", len(payload)))
		return nil, domain.NewUnavailableError(c.client.ServiceName(), "malformed quote payload")
	}

	logger.Log(ctx, logging.LevelTrace, "translated upstream quote",
		slog.String("author", quote.Author),
		slog.Int("results", len(payload)))

	return quote, nil
}

func translate(ext *ninjaQuote) *domain.Quote {
	return &domain.Quote{
		Text:   strings.TrimSpace(ext.Quote),
		Author: strings.TrimSpace(ext.Author),
	}
}

// Name implements ports.HealthChecker.
func (c *QuoteClient) Name() string {
	return c.client.ServiceName()
}

// Check implements ports.HealthChecker. It reports the breaker position
// rather than calling the API, so readiness probes do not spend quota.
func (c *QuoteClient) Check(_ context.Context) error {
	if state := c.client.CircuitState(); state == clients.StateOpen {
		return domain.NewUnavailableError(c.client.ServiceName(), "circuit breaker "+state.String())
	}
	return nil
}

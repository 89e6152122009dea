package acl

import (
	"fmt"
	"log/slog"

	"github.com/jsamuelsen/quote-oasis/internal/adapters/clients"
	"github.com/jsamuelsen/quote-oasis/internal/platform/config"
)

// FromConfig builds the instrumented HTTP client for services.quote and wraps
// it in a QuoteClient. The server and quotectl share this wiring.
func FromConfig(cfg *config.Config, logger *slog.Logger) (*QuoteClient, error) {
	upstream := cfg.Services.Quote

	hc, err := clients.New(&clients.Config{
		BaseURL:     upstream.BaseURL,
		ServiceName: upstream.Name,
		Timeout:     cfg.Client.Timeout,
		Circuit:     cfg.Client.CircuitBreaker,
		Transport:   cfg.Client.Transport,
		AuthFunc:    APIKeyAuth(upstream.APIKey),
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating %s client: %w", upstream.Name, err)
	}

	return NewQuoteClient(QuoteClientConfig{Client: hc, Path: upstream.Path, Logger: logger}), nil
}

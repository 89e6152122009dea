// Package app contains the use cases: fetching quotes and driving the
// per-session widget state machine.
package app

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jsamuelsen/quote-oasis/internal/domain"
	"github.com/jsamuelsen/quote-oasis/internal/platform/telemetry"
	"github.com/jsamuelsen/quote-oasis/internal/ports"
)

// FetchRecorder observes completed fetches. telemetry.FetchMetrics implements it.
type FetchRecorder interface {
	RecordFetch(category, outcome string)
}

// QuoteService fetches quotes through the QuoteClient port and records
// every outcome.
type QuoteService struct {
	quoteClient ports.QuoteClient
	recorder    FetchRecorder
	logger      *slog.Logger
}

// QuoteServiceConfig contains configuration for the quote service.
type QuoteServiceConfig struct {
	QuoteClient ports.QuoteClient
	// Recorder is optional.
	Recorder FetchRecorder
	Logger   *slog.Logger
}

// NewQuoteService creates a new quote service. Panics if QuoteClient is nil.
func NewQuoteService(cfg QuoteServiceConfig) *QuoteService {
	if cfg.QuoteClient == nil {
		panic("QuoteService: QuoteClient is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &QuoteService{
		quoteClient: cfg.QuoteClient,
		recorder:    cfg.Recorder,
		logger:      logger,
	}
}

// FetchQuote performs one upstream fetch for category.
func (s *QuoteService) FetchQuote(ctx context.Context, category domain.Category) (*domain.Quote, error) {
	if !category.Valid() {
		return nil, domain.NewValidationErrorWithValue("category", "must be one of the supported categories", category.String())
	}

	quote, err := s.quoteClient.GetQuote(ctx, category)
	s.record(category, err)

	if err != nil {
		s.logger.ErrorContext(ctx, "failed to fetch quote",
			slog.String("category", category.String()),
			slog.Any("error", err),
		)
		return nil, err
	}

	s.logger.InfoContext(ctx, "fetched quote",
		slog.String("category", category.String()),
		slog.String("author", quote.Author),
	)

	return quote, nil
}

// FetchMany fetches one quote per category with at most limit requests in
// flight. Results are index-aligned with categories; failures do not cancel
// the remaining fetches.
func (s *QuoteService) FetchMany(ctx context.Context, categories []domain.Category, limit int) []PartialResult[*domain.Quote] {
	fns := make([]func(context.Context) (*domain.Quote, error), len(categories))
	for i, c := range categories {
		fns[i] = func(ctx context.Context) (*domain.Quote, error) {
			return s.FetchQuote(ctx, c)
		}
	}
	return ParallelPartialLimit(ctx, limit, fns...)
}

func (s *QuoteService) record(category domain.Category, err error) {
	if s.recorder == nil {
		return
	}
	s.recorder.RecordFetch(category.String(), outcome(err))
}

func outcome(err error) string {
	switch {
	case err == nil:
		return telemetry.OutcomeSuccess
	case errors.Is(err, domain.ErrNoQuotes):
		return telemetry.OutcomeEmpty
	case domain.IsUnavailable(err):
		return telemetry.OutcomeUnavailable
	default:
		return telemetry.OutcomeError
	}
}

package app

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"

	"github.com/jsamuelsen/quote-oasis/internal/domain"
)

// QuoteFetcher is the slice of QuoteService a Widget needs.
type QuoteFetcher interface {
	FetchQuote(ctx context.Context, category domain.Category) (*domain.Quote, error)
}

// WidgetConfig configures a Widget.
type WidgetConfig struct {
	Quotes QuoteFetcher

	// InitialCategory defaults to domain.DefaultCategory.
	InitialCategory domain.Category

	// PageURL is shared by the telegram target.
	PageURL string

	// Rand drives palette selection. Nil uses the global source.
	Rand *rand.Rand

	Logger *slog.Logger
}

// Widget is one browser session's quote display: a ViewState plus the
// operations that mutate it.
//
// State changes are serialized by mu, but the upstream call runs unlocked,
// so overlapping fetches race and each result is applied when it arrives.
// IsLoading stays true until every started fetch has finished.
type Widget struct {
	quotes  QuoteFetcher
	pageURL string
	logger  *slog.Logger

	mu       sync.Mutex
	rng      *rand.Rand
	state    domain.ViewState
	inFlight int
	mounted  bool
}

// NewWidget creates an idle widget. Panics if Quotes is nil.
func NewWidget(cfg WidgetConfig) *Widget {
	if cfg.Quotes == nil {
		panic("Widget: Quotes is required")
	}

	category := cfg.InitialCategory
	if !category.Valid() {
		category = domain.DefaultCategory
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Widget{
		quotes:  cfg.Quotes,
		pageURL: cfg.PageURL,
		logger:  logger,
		rng:     cfg.Rand,
		state:   domain.NewViewState(category),
	}
}

// Mount performs the initial fetch on first call. Later calls only return
// the current view.
func (w *Widget) Mount(ctx context.Context) domain.ViewState {
	w.mu.Lock()
	if w.mounted {
		defer w.mu.Unlock()
		return w.state.Clone()
	}
	w.mounted = true
	category := w.state.Category
	w.mu.Unlock()

	return w.fetch(ctx, category)
}

// SelectCategory validates raw, stores it as the current category and
// fetches a quote for it. Invalid input leaves the state untouched.
func (w *Widget) SelectCategory(ctx context.Context, raw string) (domain.ViewState, error) {
	category, err := domain.ParseCategory(raw)
	if err != nil {
		return w.View(), err
	}

	w.mu.Lock()
	w.state.Category = category
	w.mounted = true
	w.mu.Unlock()

	return w.fetch(ctx, category), nil
}

// NewQuote fetches another quote for the current category.
func (w *Widget) NewQuote(ctx context.Context) domain.ViewState {
	w.mu.Lock()
	category := w.state.Category
	w.mounted = true
	w.mu.Unlock()

	return w.fetch(ctx, category)
}

// View returns a snapshot of the current state.
func (w *Widget) View() domain.ViewState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state.Clone()
}

func (w *Widget) fetch(ctx context.Context, category domain.Category) domain.ViewState {
	w.mu.Lock()
	w.inFlight++
	w.state.IsLoading = true
	w.state.Phase = domain.PhaseLoading
	w.mu.Unlock()

	// A fetch, once started, always lands in the view even if the browser
	// request that triggered it is gone.
	quote, err := w.quotes.FetchQuote(context.WithoutCancel(ctx), category)
	if err == nil && !quote.Complete() {
		err = domain.NewUnavailableError("quotes", "incomplete quote")
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.inFlight--
	if err != nil {
		w.applyFailure(ctx, err)
	} else {
		w.applyQuote(quote)
	}

	w.state.IsLoading = w.inFlight > 0
	if w.state.IsLoading {
		w.state.Phase = domain.PhaseLoading
	}

	return w.state.Clone()
}

// applyQuote must be called with mu held. Share links tag the category
// selected now, which may differ from the one this quote was fetched for.
func (w *Widget) applyQuote(q *domain.Quote) {
	next := domain.PickColor(w.state.Color, w.rng)

	w.state.PreviousColor = w.state.Color
	w.state.Color = next
	w.state.Quote = q.Text
	w.state.Author = q.Author
	w.state.Error = ""
	w.state.Phase = domain.PhaseLoaded
	w.state.ShareTargets = domain.BuildShareTargets(domain.ShareInput{
		Quote:    q.Text,
		Author:   q.Author,
		Category: w.state.Category,
		PageURL:  w.pageURL,
	})
}

// applyFailure must be called with mu held.
func (w *Widget) applyFailure(ctx context.Context, err error) {
	w.logger.WarnContext(ctx, "showing fallback quote",
		slog.String("category", w.state.Category.String()),
		slog.Any("error", err),
	)

	fallback := domain.FallbackQuoteRecord()

	w.state.PreviousColor = w.state.Color
	w.state.Color = domain.ErrorColor
	w.state.Quote = fallback.Text
	w.state.Author = fallback.Author
	w.state.Error = err.Error()
	w.state.Phase = domain.PhaseFailed
	w.state.ShareTargets = nil
}

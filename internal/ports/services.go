// Package ports defines interfaces for external dependencies.
// The application layer depends on these contracts; adapters implement them.
//
// Conventions:
//   - context first on anything that may block
//   - return domain types, never upstream DTOs
//   - failures are domain errors (ErrNotFound, ErrUnavailable, ...)
package ports

import (
	"context"

	"github.com/jsamuelsen/quote-oasis/internal/domain"
)

// QuoteClient fetches quotes from the upstream quotes API.
type QuoteClient interface {
	// GetQuote performs exactly one upstream request for the category and
	// returns the first quote of the result.
	// Returns domain.ErrNoQuotes for an empty result and an
	// domain.UnavailableError for transport or status failures.
	GetQuote(ctx context.Context, category domain.Category) (*domain.Quote, error)
}

// SessionStore keeps per-browser-session values with expiry.
// Implementations must be safe for concurrent use.
type SessionStore[T any] interface {
	// Get returns the value for id and refreshes its expiry.
	Get(id string) (T, bool)

	// GetOrCreate returns the existing value for id, or stores and returns
	// create() atomically when none exists.
	GetOrCreate(id string, create func() T) T

	// Delete removes id. Missing ids are ignored.
	Delete(id string)

	// Len reports the number of live sessions.
	Len() int
}

package domain

import "strings"

// Quote is a single quotation returned by the quotes API.
// It is replaced wholesale on every fetch and never mutated.
type Quote struct {
	// Text is the body of the quote.
	Text string

	// Author is who said or wrote the quote.
	Author string
}

// IsZero reports whether the quote carries neither text nor author.
func (q Quote) IsZero() bool {
	return strings.TrimSpace(q.Text) == "" && strings.TrimSpace(q.Author) == ""
}

// Complete reports whether both text and author are present. Only complete
// quotes are shown; anything else counts as a failed fetch.
func (q *Quote) Complete() bool {
	return q != nil && strings.TrimSpace(q.Text) != "" && strings.TrimSpace(q.Author) != ""
}

// Fallback text shown when a fetch fails.
const (
	FallbackQuote  = "Something went wront. Please, try it later!"
	FallbackAuthor = "Customer Service"
)

// FallbackQuoteRecord returns the fixed quote displayed in the error view.
func FallbackQuoteRecord() Quote {
	return Quote{Text: FallbackQuote, Author: FallbackAuthor}
}

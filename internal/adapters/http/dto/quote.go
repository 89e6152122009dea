package dto

import (
	"github.com/jsamuelsen/quote-oasis/internal/domain"
)

// CategoryRequest selects a quote category. It binds from a JSON body,
// a form field or a query parameter.
type CategoryRequest struct {
	Category string `json:"category" form:"category" validate:"required,category"`
}

// OptionalCategoryRequest is CategoryRequest for endpoints with a default.
type OptionalCategoryRequest struct {
	Category string `json:"category" form:"category" validate:"omitempty,category"`
}

// QuoteResponse is a single fetched quote.
type QuoteResponse struct {
	Quote    string `json:"quote"`
	Author   string `json:"author"`
	Category string `json:"category"`
}

// NewQuoteResponse converts a domain quote.
func NewQuoteResponse(q *domain.Quote, category domain.Category) QuoteResponse {
	return QuoteResponse{
		Quote:    q.Text,
		Author:   q.Author,
		Category: category.String(),
	}
}

// CategoriesResponse lists the selectable categories.
type CategoriesResponse struct {
	Categories []string `json:"categories"`
	Default    string   `json:"default"`
}

// NewCategoriesResponse builds the list from the domain categories.
func NewCategoriesResponse(defaultCategory domain.Category) CategoriesResponse {
	all := domain.Categories()
	names := make([]string, len(all))
	for i, c := range all {
		names[i] = c.String()
	}
	return CategoriesResponse{Categories: names, Default: defaultCategory.String()}
}

// WidgetResponse is the widget view state as served by the JSON API.
type WidgetResponse struct {
	domain.ViewState
	AnimationMS int64 `json:"animationMs"`
}

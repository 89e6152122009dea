package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quote-oasis/internal/adapters/http/dto"
	"github.com/jsamuelsen/quote-oasis/internal/app"
	"github.com/jsamuelsen/quote-oasis/internal/domain"
)

// QuoteHandler serves the stateless quote API.
type QuoteHandler struct {
	service         *app.QuoteService
	defaultCategory domain.Category
}

// NewQuoteHandler creates a new quote handler. An invalid defaultCategory
// falls back to domain.DefaultCategory.
func NewQuoteHandler(service *app.QuoteService, defaultCategory domain.Category) *QuoteHandler {
	if !defaultCategory.Valid() {
		defaultCategory = domain.DefaultCategory
	}
	return &QuoteHandler{
		service:         service,
		defaultCategory: defaultCategory,
	}
}

// ListCategories handles GET /api/v1/categories.
func (h *QuoteHandler) ListCategories(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewCategoriesResponse(h.defaultCategory))
}

// GetQuote handles GET /api/v1/quotes?category=<c>. It performs one
// upstream fetch; an empty result is a 404.
func (h *QuoteHandler) GetQuote(c *gin.Context) {
	var req dto.OptionalCategoryRequest
	if err := dto.BindQueryAndValidate(c, &req); err != nil {
		dto.AbortWithValidationErrors(c, dto.ValidationErrors(err))
		return
	}

	category := h.defaultCategory
	if req.Category != "" {
		category = domain.Category(req.Category)
	}

	quote, err := h.service.FetchQuote(c.Request.Context(), category)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewQuoteResponse(quote, category))
}

// RegisterQuoteRoutes registers quote routes on the given router group.
func (h *QuoteHandler) RegisterQuoteRoutes(rg *gin.RouterGroup) {
	rg.GET("/categories", h.ListCategories)
	rg.GET("/quotes", h.GetQuote)
}

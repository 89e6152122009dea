package handlers

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quote-oasis/internal/adapters/http/dto"
	"github.com/jsamuelsen/quote-oasis/internal/adapters/session"
	"github.com/jsamuelsen/quote-oasis/internal/app"
	"github.com/jsamuelsen/quote-oasis/internal/domain"
	"github.com/jsamuelsen/quote-oasis/internal/platform/logging"
	"github.com/jsamuelsen/quote-oasis/internal/ports"
)

//go:embed templates/*.html
var templateFS embed.FS

// widgetTemplate is the gin template name of the widget page.
const widgetTemplate = "widget.html"

// sessionFingerprintLen is how much of the session ID reaches the logs.
const sessionFingerprintLen = 8

// WidgetHandlerConfig configures a WidgetHandler.
type WidgetHandlerConfig struct {
	Sessions ports.SessionStore[*app.Widget]

	// NewWidget builds the widget for a session seen for the first time.
	NewWidget func() *app.Widget

	CookieName        string
	SessionTTL        time.Duration
	SecureCookie      bool
	AnimationDuration time.Duration
}

// WidgetHandler binds one app.Widget to each browser session and serves
// it both as a server-rendered page and as JSON.
type WidgetHandler struct {
	cfg WidgetHandlerConfig
}

// NewWidgetHandler creates a widget handler. Panics if Sessions or
// NewWidget is nil.
func NewWidgetHandler(cfg WidgetHandlerConfig) *WidgetHandler {
	if cfg.Sessions == nil || cfg.NewWidget == nil {
		panic("WidgetHandler: Sessions and NewWidget are required")
	}
	if cfg.CookieName == "" {
		cfg.CookieName = "quote_oasis_session"
	}
	return &WidgetHandler{cfg: cfg}
}

// Templates parses the embedded page templates.
func Templates() *template.Template {
	return template.Must(template.ParseFS(templateFS, "templates/*.html"))
}

// widgetPage is the data the page template renders.
type widgetPage struct {
	// View is a pointer so the template can call its methods.
	View          *domain.ViewState
	Categories    []domain.Category
	Greeting      string
	AnimationMS   int64
	PopupFeatures string
}

// Page handles GET /. The first visit of a session performs the initial fetch.
func (h *WidgetHandler) Page(c *gin.Context) {
	w := h.widget(c)
	h.renderPage(c, http.StatusOK, w.Mount(c.Request.Context()))
}

// SelectCategoryForm handles POST /category with a form field "category".
func (h *WidgetHandler) SelectCategoryForm(c *gin.Context) {
	w := h.widget(c)

	view, err := w.SelectCategory(c.Request.Context(), c.PostForm("category"))
	if err != nil {
		logging.FromContext(c.Request.Context()).Warn("rejected category",
			slog.String("category", c.PostForm("category")),
		)
		h.renderPage(c, http.StatusBadRequest, view)
		return
	}

	c.Redirect(http.StatusSeeOther, "/")
}

// NewQuoteForm handles POST /new-quote.
func (h *WidgetHandler) NewQuoteForm(c *gin.Context) {
	h.widget(c).NewQuote(c.Request.Context())
	c.Redirect(http.StatusSeeOther, "/")
}

// GetWidget handles GET /api/v1/widget. Like the page it mounts the widget.
func (h *WidgetHandler) GetWidget(c *gin.Context) {
	w := h.widget(c)
	h.respondJSON(c, w.Mount(c.Request.Context()))
}

// SelectCategory handles POST /api/v1/widget/category with {"category": "..."}.
// A failed upstream fetch is still a 200: the failure is part of the state.
func (h *WidgetHandler) SelectCategory(c *gin.Context) {
	var req dto.CategoryRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		details := dto.ValidationErrors(err)
		if len(details) == 0 {
			dto.AbortWithErrorCode(c, dto.ErrorCodeBadRequest, "request body must be JSON")
			return
		}
		dto.AbortWithValidationErrors(c, details)
		return
	}

	view, err := h.widget(c).SelectCategory(c.Request.Context(), req.Category)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	h.respondJSON(c, view)
}

// NewQuote handles POST /api/v1/widget/new-quote.
func (h *WidgetHandler) NewQuote(c *gin.Context) {
	h.respondJSON(c, h.widget(c).NewQuote(c.Request.Context()))
}

// RegisterPageRoutes mounts the HTML routes. The engine must have
// Templates installed. Mutating routes get the extra handlers, typically
// a rate limiter.
func (h *WidgetHandler) RegisterPageRoutes(rg *gin.RouterGroup, mutating ...gin.HandlerFunc) {
	rg.GET("/", h.Page)
	rg.POST("/category", withHandlers(mutating, h.SelectCategoryForm)...)
	rg.POST("/new-quote", withHandlers(mutating, h.NewQuoteForm)...)
}

// RegisterAPIRoutes mounts the JSON routes on rg.
func (h *WidgetHandler) RegisterAPIRoutes(rg *gin.RouterGroup, mutating ...gin.HandlerFunc) {
	widget := rg.Group("/widget")
	widget.GET("", h.GetWidget)
	widget.POST("/category", withHandlers(mutating, h.SelectCategory)...)
	widget.POST("/new-quote", withHandlers(mutating, h.NewQuote)...)
}

func withHandlers(pre []gin.HandlerFunc, last gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(pre)+1)
	return append(append(out, pre...), last)
}

// widget returns the session's widget. A missing, malformed or unknown
// cookie gets a freshly minted session; client-chosen ids are never adopted.
// The cookie is refreshed on every call.
func (h *WidgetHandler) widget(c *gin.Context) *app.Widget {
	id, err := c.Cookie(h.cfg.CookieName)

	var w *app.Widget
	found := false
	if err == nil && session.ValidID(id) {
		w, found = h.cfg.Sessions.Get(id)
	}
	if !found {
		id = session.NewID()
		w = h.cfg.Sessions.GetOrCreate(id, h.cfg.NewWidget)
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cfg.CookieName, id, int(h.cfg.SessionTTL.Seconds()), "/", "", h.cfg.SecureCookie, true)

	ctx := logging.WithSessionID(c.Request.Context(), id[:sessionFingerprintLen])
	c.Request = c.Request.WithContext(ctx)

	return w
}

func (h *WidgetHandler) renderPage(c *gin.Context, status int, view domain.ViewState) {
	c.HTML(status, widgetTemplate, widgetPage{
		View:          &view,
		Categories:    domain.Categories(),
		Greeting:      domain.Greeting,
		AnimationMS:   h.cfg.AnimationDuration.Milliseconds(),
		PopupFeatures: domain.PopupFeatures,
	})
}

func (h *WidgetHandler) respondJSON(c *gin.Context, view domain.ViewState) {
	c.JSON(http.StatusOK, dto.WidgetResponse{
		ViewState:   view,
		AnimationMS: h.cfg.AnimationDuration.Milliseconds(),
	})
}

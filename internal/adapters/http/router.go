package http

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quote-oasis/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quote-oasis/internal/adapters/http/middleware"
	"github.com/jsamuelsen/quote-oasis/internal/platform/config"
	"github.com/jsamuelsen/quote-oasis/internal/platform/telemetry"
)

// DefaultRequestTimeout bounds page and API requests. It must exceed the
// upstream client timeout so a slow fetch fails in the client first.
const DefaultRequestTimeout = 30 * time.Second

// RouterConfig contains everything SetupRouter mounts.
type RouterConfig struct {
	Logger    *slog.Logger
	AppConfig *config.AppConfig
	CORS      config.CORSConfig
	RateLimit config.RateLimitConfig

	HealthHandler *handlers.HealthHandler
	QuoteHandler  *handlers.QuoteHandler
	WidgetHandler *handlers.WidgetHandler

	// Timeout is the request deadline for pages and the API. Zero disables it.
	Timeout time.Duration
}

// SetupRouter configures middleware and routes on the Gin engine.
// Global middleware, in order:
//  1. Recovery (also seeds the context logger)
//  2. Request ID
//  3. Correlation ID
//  4. OpenTelemetry tracing and HTTP metrics
//  5. Logging (skips /-/ probes)
//  6. CORS, when enabled; global so preflights for unrouted methods pass
//
// Route groups:
//   - /-/      probes, build info, metrics
//   - /        widget page and its form posts
//   - /api/v1/ categories, stateless quotes, widget JSON
//
// Widget mutations are rate limited per client when enabled.
func SetupRouter(engine *gin.Engine, cfg RouterConfig) {
	engine.Use(
		middleware.Recovery(cfg.Logger),
		middleware.RequestID(),
		middleware.CorrelationID(),
	)
	engine.Use(telemetry.Middleware(cfg.AppConfig.Name)...)
	engine.Use(middleware.Logging("/favicon.ico"))

	if cfg.CORS.Enabled {
		engine.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	}

	if cfg.HealthHandler != nil {
		cfg.HealthHandler.RegisterHealthRoutes(engine)
	}

	var mutating []gin.HandlerFunc
	if cfg.RateLimit.Enabled {
		mutating = append(mutating, middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	pages := engine.Group("/")
	apiV1 := engine.Group("/api/v1")
	if cfg.Timeout > 0 {
		pages.Use(middleware.Timeout(cfg.Timeout))
		apiV1.Use(middleware.Timeout(cfg.Timeout))
	}

	if cfg.QuoteHandler != nil {
		cfg.QuoteHandler.RegisterQuoteRoutes(apiV1)
	}

	if cfg.WidgetHandler != nil {
		engine.SetHTMLTemplate(handlers.Templates())
		cfg.WidgetHandler.RegisterPageRoutes(pages, mutating...)
		cfg.WidgetHandler.RegisterAPIRoutes(apiV1, mutating...)
	}
}

// NewRouterConfig builds a RouterConfig from the loaded configuration.
func NewRouterConfig(
	cfg *config.Config,
	logger *slog.Logger,
	health *handlers.HealthHandler,
	quotes *handlers.QuoteHandler,
	widget *handlers.WidgetHandler,
) RouterConfig {
	return RouterConfig{
		Logger:        logger,
		AppConfig:     &cfg.App,
		CORS:          cfg.CORS,
		RateLimit:     cfg.RateLimit,
		HealthHandler: health,
		QuoteHandler:  quotes,
		WidgetHandler: widget,
		Timeout:       DefaultRequestTimeout,
	}
}

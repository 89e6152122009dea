// Command service serves the Quote Oasis widget, its JSON API and the
// operational endpoints.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jsamuelsen/quote-oasis/internal/adapters/clients/acl"
	"github.com/jsamuelsen/quote-oasis/internal/adapters/http"
	"github.com/jsamuelsen/quote-oasis/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quote-oasis/internal/adapters/session"
	"github.com/jsamuelsen/quote-oasis/internal/app"
	"github.com/jsamuelsen/quote-oasis/internal/domain"
	"github.com/jsamuelsen/quote-oasis/internal/platform/config"
	"github.com/jsamuelsen/quote-oasis/internal/platform/logging"
	"github.com/jsamuelsen/quote-oasis/internal/platform/telemetry"
	"github.com/jsamuelsen/quote-oasis/internal/ports"
)

// Set with -ldflags "-X main.Version=... -X main.Commit=... -X main.BuildTime=...".
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := run(ctx)
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	profile := os.Getenv("APP_ENVIRONMENT")
	if profile == "" {
		profile = "local"
	}

	cfg, err := config.Load(profile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := newLogger(cfg)
	logging.SetDefault(logger)
	logger.Info("starting service",
		slog.String("version", Version),
		slog.String("commit", Commit),
		slog.String("environment", cfg.App.Environment),
		slog.String("profile", profile),
	)

	tel, err := telemetry.New(ctx, &telemetry.Config{
		Enabled:      cfg.Telemetry.Enabled,
		Endpoint:     cfg.Telemetry.Endpoint,
		ServiceName:  cfg.Telemetry.ServiceName,
		Version:      cfg.App.Version,
		Environment:  cfg.App.Environment,
		SamplingRate: cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}
	defer func() {
		if err := tel.Shutdown(context.WithoutCancel(ctx)); err != nil {
			logger.Error("telemetry shutdown error", slog.Any("error", err))
		}
	}()

	server, err := newServer(cfg, logger)
	if err != nil {
		return err
	}

	if err := server.Run(ctx); err != nil {
		return err
	}
	logger.Info("shutdown complete")
	return nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	f := cfg.Log.File
	return logging.New(&logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
		File: logging.FileConfig{
			Enabled:    f.Enabled,
			Path:       f.Path,
			MaxSizeMB:  f.MaxSizeMB,
			MaxBackups: f.MaxBackups,
			MaxAgeDays: f.MaxAgeDays,
			Compress:   f.Compress,
		},
	})
}

// newServer wires the quotes API client, the widget sessions and every
// handler onto a fresh server.
func newServer(cfg *config.Config, logger *slog.Logger) (*http.Server, error) {
	fetchMetrics, err := telemetry.NewFetchMetrics(prometheus.DefaultRegisterer)
	if err != nil {
		return nil, fmt.Errorf("registering fetch metrics: %w", err)
	}

	quoteClient, err := acl.FromConfig(cfg, logger)
	if err != nil {
		return nil, err
	}

	health := ports.NewHealthRegistry()
	if err := health.Register(quoteClient); err != nil {
		return nil, fmt.Errorf("registering health check: %w", err)
	}

	quotes := app.NewQuoteService(app.QuoteServiceConfig{
		QuoteClient: quoteClient,
		Recorder:    fetchMetrics,
		Logger:      logger,
	})

	defaultCategory := domain.Category(cfg.Widget.DefaultCategory)
	widgets := handlers.NewWidgetHandler(handlers.WidgetHandlerConfig{
		Sessions: session.NewStore[*app.Widget](session.Config{TTL: cfg.Widget.SessionTTL, Logger: logger}),
		NewWidget: func() *app.Widget {
			return app.NewWidget(app.WidgetConfig{
				Quotes:          quotes,
				InitialCategory: defaultCategory,
				PageURL:         cfg.Widget.PageURL,
				Logger:          logger,
			})
		},
		CookieName:        cfg.Widget.CookieName,
		SessionTTL:        cfg.Widget.SessionTTL,
		SecureCookie:      cfg.Widget.SecureCookie,
		AnimationDuration: cfg.Widget.AnimationDuration,
	})

	server := http.New(&cfg.Server, logger)
	http.SetupRouter(server.Engine(), http.NewRouterConfig(cfg, logger,
		handlers.NewHealthHandler(health, handlers.NewBuildInfo(Version, Commit, BuildTime)),
		handlers.NewQuoteHandler(quotes, defaultCategory),
		widgets,
	))
	return server, nil
}

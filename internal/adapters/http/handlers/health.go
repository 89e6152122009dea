// Package handlers provides the gin handlers: probes, the stateless quote
// API and the session-bound widget.
package handlers

import (
	"net/http"
	"runtime"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jsamuelsen/quote-oasis/internal/ports"
)

// BuildInfo is served on /-/build.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
}

func NewBuildInfo(version, commit, buildTime string) BuildInfo {
	return BuildInfo{Version: version, Commit: commit, BuildTime: buildTime, GoVersion: runtime.Version()}
}

// HealthHandler owns the operational routes under /-/. None of them touch
// widget sessions.
type HealthHandler struct {
	checks   ports.HealthRegistry
	build    BuildInfo
	gatherer prometheus.Gatherer
}

func NewHealthHandler(checks ports.HealthRegistry, build BuildInfo) *HealthHandler {
	return &HealthHandler{checks: checks, build: build, gatherer: prometheus.DefaultGatherer}
}

// WithGatherer serves metrics from g instead of the default registry.
func (h *HealthHandler) WithGatherer(g prometheus.Gatherer) *HealthHandler {
	h.gatherer = g
	return h
}

type readinessResponse struct {
	Status string                        `json:"status"`
	Checks map[string]*ports.CheckResult `json:"checks,omitempty"`
}

// RegisterHealthRoutes mounts live, ready, build and metrics under /-/.
func (h *HealthHandler) RegisterHealthRoutes(engine *gin.Engine) {
	probes := engine.Group("/-")

	// Liveness stays green while the process runs, whatever the quotes API does.
	probes.GET("/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	probes.GET("/ready", h.readiness)
	probes.GET("/build", func(c *gin.Context) {
		c.JSON(http.StatusOK, h.build)
	})
	probes.GET("/metrics", gin.WrapH(promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{})))
}

// readiness is 503 while any registered dependency, in practice the quotes
// API breaker, reports unhealthy.
func (h *HealthHandler) readiness(c *gin.Context) {
	result := h.checks.CheckAll(c.Request.Context())

	code := http.StatusOK
	if result.Status != ports.HealthStatusHealthy {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, readinessResponse{Status: string(result.Status), Checks: result.Checks})
}

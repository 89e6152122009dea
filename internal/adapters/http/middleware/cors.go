package middleware

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS returns middleware that applies cross-origin rules to the JSON API.
// Preflight requests are answered directly with 204; cross-origin requests
// from origins not listed are refused.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	cfg.AllowOrigins = allowedOrigins
	cfg.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	cfg.AllowHeaders = []string{"Origin", "Accept", "Content-Type", HeaderRequestID, HeaderCorrelationID}
	cfg.ExposeHeaders = []string{HeaderRequestID, HeaderCorrelationID}
	cfg.MaxAge = 5 * time.Minute

	return cors.New(cfg)
}

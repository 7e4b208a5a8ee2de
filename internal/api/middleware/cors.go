package middleware

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/ZeroHub/backend/internal/infrastructure/tracing"
)

// CORSConfig lists the browser origins allowed to drive the desktop
type CORSConfig struct {
	AllowOrigins []string
	MaxAge       time.Duration
}

// DefaultCORSConfig returns the desktop's CORS configuration for the given
// origins. An empty list, or one containing "*", allows every origin.
func DefaultCORSConfig(origins ...string) CORSConfig {
	return CORSConfig{
		AllowOrigins: origins,
		MaxAge:       12 * time.Hour,
	}
}

// CORS creates the CORS middleware. The front end reads trace ids from
// responses, so they are exposed.
func CORS(cfg CORSConfig) gin.HandlerFunc {
	c := cors.Config{
		AllowMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Accept",
			"Accept-Encoding",
			tracing.HeaderTraceID,
		},
		ExposeHeaders:   []string{tracing.HeaderTraceID, tracing.HeaderSpanID},
		AllowWebSockets: true,
		MaxAge:          cfg.MaxAge,
	}
	if len(cfg.AllowOrigins) == 0 || slices.Contains(cfg.AllowOrigins, "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = cfg.AllowOrigins
	}
	return cors.New(c)
}

package middleware

import (
	"net/http"
	"strings"

	"github.com/rs/cors"
	"go.uber.org/zap"
)

// DefaultAllowedOrigin is used when no origins are configured
const DefaultAllowedOrigin = "http://localhost:3000"

// CORSOptions configures cross-origin access for browser clients
type CORSOptions struct {
	AllowedOrigins   []string
	AllowCredentials bool
	MaxAge           int
}

// ParseOrigins splits a comma-separated origin list, dropping blanks and duplicates
func ParseOrigins(s string) []string {
	var origins []string
	seen := make(map[string]struct{})
	for _, part := range strings.Split(s, ",") {
		origin := strings.TrimSpace(part)
		if origin == "" {
			continue
		}
		if _, dup := seen[origin]; dup {
			continue
		}
		seen[origin] = struct{}{}
		origins = append(origins, origin)
	}
	return origins
}

// CORS wraps handlers with rs/cors. Preflight requests are answered directly.
func CORS(opts CORSOptions, logger *zap.Logger) func(http.Handler) http.Handler {
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{DefaultAllowedOrigin}
	}
	maxAge := opts.MaxAge
	if maxAge <= 0 {
		maxAge = 86400
	}

	logger.Info("cors_configured",
		zap.Strings("allowed_origins", origins),
		zap.Bool("allow_credentials", opts.AllowCredentials),
	)

	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", RequestIDHeader},
		ExposedHeaders:   []string{RequestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: opts.AllowCredentials,
		MaxAge:           maxAge,
	})
	return c.Handler
}

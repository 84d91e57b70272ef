package middleware

import (
	"net/http"

	"go.uber.org/zap"
)

const (
	// DefaultMaxRequestSize is the body limit for ordinary API requests (1MB)
	DefaultMaxRequestSize int64 = 1 << 20
	// ProfileSyncMaxRequestSize leaves room for an embedded profile picture (8MB)
	ProfileSyncMaxRequestSize int64 = 8 << 20
)

// MaxRequestSize limits request bodies to maxBytes, or to the override
// registered for the request path.
func MaxRequestSize(maxBytes int64, overrides map[string]int64, logger *zap.Logger) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxRequestSize
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			limit := maxBytes
			if override, ok := overrides[r.URL.Path]; ok && override > 0 {
				limit = override
			}

			// Reject early when the declared length is already too large
			if r.ContentLength > limit {
				respondErrorJSON(w, r, http.StatusRequestEntityTooLarge, "Request Entity Too Large", "Request body is too large", logger)
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, limit)
			defer r.Body.Close()

			next.ServeHTTP(w, r)
		})
	}
}

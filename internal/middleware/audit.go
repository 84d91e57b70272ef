package middleware

import (
	"net/http"

	logpkg "github.com/benvon/profile-sync/internal/logger"
	"github.com/benvon/profile-sync/internal/request"
	"go.uber.org/zap"
)

// Audit logs security-relevant outcomes: rejected credentials, ownership
// mismatches and rate limit hits.
func Audit(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			fields := func() []zap.Field {
				fs := []zap.Field{
					zap.String("method", r.Method),
					zap.String("path", logpkg.SanitizePath(r.URL.Path)),
					zap.String("ip", logpkg.SanitizeString(request.ClientIP(r), logpkg.MaxGeneralStringLength)),
					zap.String("request_id", request.RequestID(r.Context())),
				}
				if claims := request.ClaimsFromContext(r); claims != nil {
					fs = append(fs, zap.String("subject", logpkg.SanitizeUserID(claims.Subject)))
				}
				return fs
			}

			switch wrapped.statusCode {
			case http.StatusUnauthorized, http.StatusForbidden:
				logger.Warn("security_event", append(fields(), zap.Int("status_code", wrapped.statusCode))...)
			case http.StatusTooManyRequests:
				logger.Warn("rate_limit_violation", fields()...)
			}
		})
	}
}

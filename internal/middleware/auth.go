package middleware

import (
	"net/http"

	"github.com/benvon/profile-sync/internal/request"
	"github.com/benvon/profile-sync/internal/services/oidc"
	"go.uber.org/zap"
)

// RequireBearer rejects requests without a valid identity-provider access
// token and attaches the verified claims to the request context.
func RequireBearer(verifier oidc.TokenVerifier, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := request.BearerToken(r)
			if !ok {
				respondErrorJSON(w, r, http.StatusUnauthorized, "Unauthorized", "Missing bearer token", logger)
				return
			}

			claims, err := verifier.Verify(r.Context(), token)
			if err != nil {
				logger.Debug("token_rejected",
					zap.Error(err),
					zap.String("request_id", request.RequestID(r.Context())),
				)
				respondErrorJSON(w, r, http.StatusUnauthorized, "Unauthorized", "Invalid or expired token", logger)
				return
			}

			next.ServeHTTP(w, r.WithContext(request.WithClaims(r.Context(), claims)))
		})
	}
}

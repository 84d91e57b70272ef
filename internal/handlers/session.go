package handlers

import (
	"errors"
	"net/http"

	"github.com/benvon/profile-sync/internal/logger"
	"github.com/benvon/profile-sync/internal/models"
	"github.com/benvon/profile-sync/internal/request"
	"github.com/benvon/profile-sync/internal/services/oidc"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// SessionHandler syncs the profile of a user who has just signed in with the
// identity provider, using only their access token
type SessionHandler struct {
	verifier oidc.TokenVerifier
	users    oidc.UserFetcher
	profiles ProfileService
	logger   *zap.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(verifier oidc.TokenVerifier, users oidc.UserFetcher, profiles ProfileService, log *zap.Logger) *SessionHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &SessionHandler{verifier: verifier, users: users, profiles: profiles, logger: log}
}

// RegisterRoutes registers session routes on the given router
// The router should already have the /api/auth prefix
func (h *SessionHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/session", h.CreateSession).Methods("POST")
}

// CreateSession verifies the bearer token, loads the provider's user record
// and runs an identity sync from its metadata. A confirmed email is then
// recorded as verified.
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token, ok := request.BearerToken(r)
	if !ok {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Missing bearer token")
		return
	}

	claims, err := h.verifier.Verify(ctx, token)
	if err != nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Invalid or expired token")
		return
	}

	user, err := h.users.FetchUser(ctx, token)
	if err != nil {
		if errors.Is(err, oidc.ErrUnauthorized) {
			respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Invalid or expired token")
			return
		}
		h.logger.Error("identity_user_fetch_failed",
			zap.String("subject", logger.SanitizeUserID(claims.Subject)),
			zap.String("error", logger.SanitizeError(err)),
			zap.String("request_id", request.RequestID(ctx)),
		)
		respondJSONError(w, http.StatusBadGateway, "Bad Gateway", "Identity provider unavailable")
		return
	}
	if user.ID != claims.Subject {
		h.logger.Warn("identity_subject_mismatch",
			zap.String("subject", logger.SanitizeUserID(claims.Subject)),
			zap.String("user_id", logger.SanitizeUserID(user.ID)),
		)
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Token does not match user")
		return
	}

	event := user.IdentityEvent()
	if event.Email == "" {
		event.Email = claims.Email
	}

	result, err := h.profiles.SyncIdentity(ctx, event)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if user.EmailVerified() && !result.EmailVerified {
		result, err = h.profiles.ApplyEdit(ctx, models.UserEdit{
			UserID:        user.ID,
			EmailVerified: models.Some(true),
		})
		if err != nil {
			respondServiceError(w, err)
			return
		}
	}

	h.logger.Info("session_synced",
		zap.String("user_id", logger.SanitizeUserID(user.ID)),
		zap.String("email", logger.SanitizeEmail(result.Email)),
		zap.Bool("email_verified", result.EmailVerified),
	)
	respondJSON(w, http.StatusOK, ProfileResponse{User: result})
}

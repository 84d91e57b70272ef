package handlers

import (
	"context"
	"net/http"

	"github.com/benvon/profile-sync/internal/logger"
	"github.com/benvon/profile-sync/internal/models"
	"github.com/benvon/profile-sync/internal/request"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// ProfileService is the profile reconciliation surface the handlers depend on
type ProfileService interface {
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
	SyncIdentity(ctx context.Context, event models.IdentityEvent) (*models.Profile, error)
	ApplyEdit(ctx context.Context, edit models.UserEdit) (*models.Profile, error)
}

// ProfileResponse wraps a profile in the response data
type ProfileResponse struct {
	User *models.Profile `json:"user"`
}

// ProfileHandler handles profile sync and edit requests
type ProfileHandler struct {
	profiles     ProfileService
	authRequired bool
	logger       *zap.Logger
}

// NewProfileHandler creates a new profile handler. With authRequired the
// caller's verified token subject must match the userId being acted on.
func NewProfileHandler(profiles ProfileService, authRequired bool, log *zap.Logger) *ProfileHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProfileHandler{profiles: profiles, authRequired: authRequired, logger: log}
}

// RegisterRoutes registers profile routes on the given router
// The router should already have the /api/users prefix
func (h *ProfileHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/sync", h.SyncIdentity).Methods("POST")
	r.HandleFunc("/sync", h.EditProfile).Methods("PUT")
	r.HandleFunc("/profile", h.GetProfile).Methods("GET")
}

// SyncIdentity merges identity-provider metadata into the user's profile
func (h *ProfileHandler) SyncIdentity(w http.ResponseWriter, r *http.Request) {
	var event models.IdentityEvent
	if !decodeJSON(w, r, &event) {
		return
	}
	if !h.authorize(w, r, event.UserID) {
		return
	}

	result, err := h.profiles.SyncIdentity(r.Context(), event)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, ProfileResponse{User: result})
}

// EditProfile applies a user-initiated profile change
func (h *ProfileHandler) EditProfile(w http.ResponseWriter, r *http.Request) {
	var edit models.UserEdit
	if !decodeJSON(w, r, &edit) {
		return
	}
	if !h.authorize(w, r, edit.UserID) {
		return
	}

	result, err := h.profiles.ApplyEdit(r.Context(), edit)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, ProfileResponse{User: result})
}

// GetProfile returns the stored profile for ?userId=
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if !h.authorize(w, r, userID) {
		return
	}

	result, err := h.profiles.GetProfile(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, ProfileResponse{User: result})
}

// authorize enforces that an authenticated caller only acts on their own
// profile. An empty userId is left for the service to reject as invalid input.
func (h *ProfileHandler) authorize(w http.ResponseWriter, r *http.Request, userID string) bool {
	if !h.authRequired || userID == "" {
		return true
	}

	claims := request.ClaimsFromContext(r)
	if claims == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Authentication required")
		return false
	}
	if claims.Subject != userID {
		h.logger.Warn("profile_access_denied",
			zap.String("subject", logger.SanitizeUserID(claims.Subject)),
			zap.String("user_id", logger.SanitizeUserID(userID)),
			zap.String("request_id", request.RequestID(r.Context())),
		)
		respondJSONError(w, http.StatusForbidden, "Forbidden", "Cannot access another user's profile")
		return false
	}
	return true
}

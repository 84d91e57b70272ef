package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/benvon/profile-sync/internal/services/profile"
)

// maxErrorMessageLength caps client-visible error messages
const maxErrorMessageLength = 200

// respondJSON sends a success envelope
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]any{
		"success":   true,
		"data":      data,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// sanitizeErrorMessage bounds the length of a client-visible message
func sanitizeErrorMessage(message string) string {
	if len(message) > maxErrorMessageLength {
		return message[:maxErrorMessageLength] + "..."
	}
	return message
}

// respondJSONError sends an error envelope
func respondJSONError(w http.ResponseWriter, status int, errorType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]any{
		"success":   false,
		"error":     errorType,
		"message":   sanitizeErrorMessage(message),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// serviceErrorStatus maps profile service errors to HTTP status codes
func serviceErrorStatus(err error) int {
	switch {
	case profile.IsInvalidInput(err):
		return http.StatusBadRequest
	case profile.IsNotFound(err):
		return http.StatusNotFound
	case profile.IsStoreUnavailable(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondServiceError writes the envelope for an error returned by the profile service
func respondServiceError(w http.ResponseWriter, err error) {
	status := serviceErrorStatus(err)
	respondJSONError(w, status, http.StatusText(status), profile.UserMessage(err))
}

// decodeJSON decodes the request body into dst, writing the error response
// itself when the body is unusable
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil {
		return true
	}

	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		respondJSONError(w, http.StatusRequestEntityTooLarge, "Request Entity Too Large", "Request body is too large")
		return false
	}
	respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
	return false
}

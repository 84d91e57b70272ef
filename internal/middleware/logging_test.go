package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/benvon/profile-sync/internal/request"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogging(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		method        string
		path          string
		handlerStatus int
		wantLevel     string
	}{
		{"sync created", "POST", "/api/users/sync", http.StatusOK, "info"},
		{"edit rejected", "PUT", "/api/users/sync", http.StatusBadRequest, "info"},
		{"store down", "POST", "/api/users/sync", http.StatusServiceUnavailable, "warn"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			core, logs := observer.New(zap.DebugLevel)
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.handlerStatus)
			})

			w := httptest.NewRecorder()
			Logging(zap.New(core))(handler).ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))

			entries := logs.FilterMessage("http_request").All()
			if len(entries) != 1 {
				t.Fatalf("Expected 1 http_request entry, got %d", len(entries))
			}
			if got := entries[0].Level.String(); got != tt.wantLevel {
				t.Errorf("Expected level %s, got %s", tt.wantLevel, got)
			}
			if got := entries[0].ContextMap()["status_code"]; got != int64(tt.handlerStatus) {
				t.Errorf("Expected status_code %d, got %v", tt.handlerStatus, got)
			}
		})
	}
}

func TestLoggingResponseWriter_FirstStatusWins(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("body"))
		w.WriteHeader(http.StatusInternalServerError)
	})

	core, logs := observer.New(zap.DebugLevel)
	w := httptest.NewRecorder()
	Logging(zap.New(core))(handler).ServeHTTP(w, httptest.NewRequest("GET", "/version", nil))

	entries := logs.FilterMessage("http_request").All()
	if len(entries) != 1 {
		t.Fatalf("Expected 1 http_request entry, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["status_code"]; got != int64(http.StatusOK) {
		t.Errorf("Expected status_code 200, got %v", got)
	}
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	existing := uuid.NewString()
	tests := []struct {
		name   string
		header string
		reuse  bool
	}{
		{"generated when missing", "", false},
		{"reused when valid uuid", existing, true},
		{"replaced when malformed", "not-a-uuid\r\ninjected", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var seen string
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = request.RequestID(r.Context())
			})

			req := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				req.Header.Set(RequestIDHeader, tt.header)
			}
			w := httptest.NewRecorder()
			RequestID(handler).ServeHTTP(w, req)

			if _, err := uuid.Parse(seen); err != nil {
				t.Fatalf("Expected a UUID request id, got %q", seen)
			}
			if got := w.Header().Get(RequestIDHeader); got != seen {
				t.Errorf("Expected response header %q, got %q", seen, got)
			}
			if tt.reuse && seen != tt.header {
				t.Errorf("Expected client id %q to be reused, got %q", tt.header, seen)
			}
			if !tt.reuse && seen == tt.header {
				t.Errorf("Expected a fresh id, got client value %q", seen)
			}
		})
	}
}

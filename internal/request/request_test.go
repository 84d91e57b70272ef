package request

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/benvon/profile-sync/internal/services/oidc"
	"github.com/google/uuid"
)

func TestClientIP(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		wantIP  string
	}{
		{"x-forwarded-for", map[string]string{"X-Forwarded-For": "1.2.3.4"}, "", "1.2.3.4"},
		{"x-forwarded-for first", map[string]string{"X-Forwarded-For": " 1.2.3.4 , 5.6.7.8 "}, "", "1.2.3.4"},
		{"x-real-ip", map[string]string{"X-Real-IP": "9.9.9.9"}, "", "9.9.9.9"},
		{"remote addr", nil, "10.0.0.1:12345", "10.0.0.1"},
		{"remote addr ipv6", nil, "[2001:db8::1]:443", "2001:db8::1"},
		{"remote addr without port", nil, "10.0.0.1", "10.0.0.1"},
		{"xff over xri", map[string]string{"X-Forwarded-For": "1.2.3.4", "X-Real-IP": "9.9.9.9"}, "", "1.2.3.4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := httptest.NewRequest("GET", "/", nil)
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if tt.remote != "" {
				r.RemoteAddr = tt.remote
			}
			got := ClientIP(r)
			if got != tt.wantIP {
				t.Errorf("ClientIP() = %q, want %q", got, tt.wantIP)
			}
		})
	}
}

func TestBearerToken(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		header    string
		wantToken string
		wantOK    bool
	}{
		{"valid", "Bearer abc.def", "abc.def", true},
		{"lowercase scheme", "bearer abc", "abc", true},
		{"missing", "", "", false},
		{"basic scheme", "Basic dXNlcg==", "", false},
		{"empty token", "Bearer   ", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := httptest.NewRequest("POST", "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			got, ok := BearerToken(r)
			if ok != tt.wantOK || got != tt.wantToken {
				t.Errorf("BearerToken() = (%q, %v), want (%q, %v)", got, ok, tt.wantToken, tt.wantOK)
			}
		})
	}
}

func TestClaimsFromContext(t *testing.T) {
	t.Parallel()
	r := httptest.NewRequest("GET", "/", nil)
	if ClaimsFromContext(r) != nil {
		t.Error("ClaimsFromContext() on bare request should be nil")
	}

	claims := &oidc.Claims{Subject: uuid.New().String(), Email: "a@b.com"}
	r = r.WithContext(WithClaims(r.Context(), claims))
	if got := ClaimsFromContext(r); got != claims {
		t.Errorf("ClaimsFromContext() = %v, want %v", got, claims)
	}

	r = r.WithContext(context.WithValue(r.Context(), ClaimsContextKey(), "not-claims"))
	if ClaimsFromContext(r) != nil {
		t.Error("ClaimsFromContext() with wrong type should be nil")
	}
}

func TestRequestID(t *testing.T) {
	t.Parallel()
	if got := RequestID(context.Background()); got != "" {
		t.Errorf("RequestID() on empty context = %q, want empty", got)
	}
	id := uuid.NewString()
	if got := RequestID(WithRequestID(context.Background(), id)); got != id {
		t.Errorf("RequestID() = %q, want %q", got, id)
	}
}

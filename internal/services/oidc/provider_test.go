package oidc

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestResolveJWKSURL(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/.well-known/openid-configuration" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"issuer":"x","jwks_uri":"https://keys.example.com/jwks"}`))
	}))
	t.Cleanup(srv.Close)

	tests := []struct {
		name       string
		issuer     string
		configured string
		want       string
		wantErr    bool
	}{
		{name: "configured wins", issuer: srv.URL, configured: "https://configured/jwks", want: "https://configured/jwks"},
		{name: "discovered from issuer", issuer: srv.URL + "/", want: "https://keys.example.com/jwks"},
		{name: "nothing configured", wantErr: true},
		{name: "discovery fails", issuer: srv.URL + "/missing", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ResolveJWKSURL(context.Background(), srv.Client(), tt.issuer, tt.configured)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error, got %s", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

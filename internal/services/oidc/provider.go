package oidc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// discoveryDocument is the subset of the OpenID discovery document we read
type discoveryDocument struct {
	Issuer  string `json:"issuer"`
	JWKSURI string `json:"jwks_uri"`
}

// ResolveJWKSURL returns the configured JWKS URL, or discovers it from the
// issuer's openid-configuration document when none is configured.
func ResolveJWKSURL(ctx context.Context, client *http.Client, issuer, configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	if issuer == "" {
		return "", fmt.Errorf("either an issuer or a JWKS URL is required")
	}
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}

	discoveryURL := strings.TrimSuffix(issuer, "/") + "/.well-known/openid-configuration"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, discoveryURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create discovery request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to reach discovery endpoint: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("discovery endpoint returned status %d", resp.StatusCode)
	}

	var doc discoveryDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return "", fmt.Errorf("failed to decode discovery document: %w", err)
	}
	if doc.JWKSURI == "" {
		return "", fmt.Errorf("discovery document has no jwks_uri")
	}

	return doc.JWKSURI, nil
}

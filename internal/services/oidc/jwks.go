package oidc

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"
)

const (
	defaultJWKSTTL     = 1 * time.Hour
	defaultHTTPTimeout = 10 * time.Second
	maxJWKSBytes       = 1 << 20
)

// jwksEntry is a cached key set
type jwksEntry struct {
	keys    jwk.Set
	expires time.Time
}

// JWKSManager fetches and caches identity-provider signing keys
type JWKSManager struct {
	client *http.Client
	ttl    time.Duration

	mu    sync.RWMutex
	cache map[string]jwksEntry
}

// NewJWKSManager creates a new JWKS manager. A nil client gets a default
// client with a 10 second timeout.
func NewJWKSManager(client *http.Client, ttl time.Duration) *JWKSManager {
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	if ttl <= 0 {
		ttl = defaultJWKSTTL
	}
	return &JWKSManager{
		client: client,
		ttl:    ttl,
		cache:  make(map[string]jwksEntry),
	}
}

// GetJWKS retrieves the key set at jwksURL, using the cache while it is fresh
func (m *JWKSManager) GetJWKS(ctx context.Context, jwksURL string) (jwk.Set, error) {
	m.mu.RLock()
	entry, ok := m.cache[jwksURL]
	m.mu.RUnlock()

	if ok && time.Now().Before(entry.expires) {
		return entry.keys, nil
	}

	keys, err := m.fetchJWKS(ctx, jwksURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch JWKS: %w", err)
	}

	m.mu.Lock()
	m.cache[jwksURL] = jwksEntry{keys: keys, expires: time.Now().Add(m.ttl)}
	m.mu.Unlock()

	return keys, nil
}

func (m *JWKSManager) fetchJWKS(ctx context.Context, jwksURL string) (jwk.Set, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, jwksURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch JWKS: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("JWKS endpoint returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxJWKSBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read JWKS response: %w", err)
	}

	keys, err := jwk.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse JWKS: %w", err)
	}

	return keys, nil
}

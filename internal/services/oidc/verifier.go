package oidc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwt"
)

// ErrInvalidToken indicates a bearer token failed verification
var ErrInvalidToken = errors.New("invalid token")

// Claims holds the verified token fields the service relies on
type Claims struct {
	Subject   string
	Email     string
	Issuer    string
	Audience  []string
	ExpiresAt time.Time
}

// TokenVerifier verifies bearer tokens issued by the identity provider
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*Claims, error)
}

// Verifier verifies JWT access tokens against the provider's JWKS
type Verifier struct {
	jwksManager *JWKSManager
	jwksURL     string
	issuer      string
	audience    string
}

// NewVerifier creates a new JWT verifier. An empty audience skips the aud check.
func NewVerifier(jwksManager *JWKSManager, jwksURL, issuer, audience string) *Verifier {
	return &Verifier{
		jwksManager: jwksManager,
		jwksURL:     jwksURL,
		issuer:      issuer,
		audience:    audience,
	}
}

// Verify checks signature, expiry and issuer, and extracts the claims
func (v *Verifier) Verify(ctx context.Context, tokenString string) (*Claims, error) {
	token, err := v.parse(ctx, tokenString)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims := &Claims{
		Subject:   token.Subject(),
		Issuer:    token.Issuer(),
		Audience:  token.Audience(),
		ExpiresAt: token.Expiration(),
	}
	if email, ok := token.Get("email"); ok {
		if emailStr, ok := email.(string); ok {
			claims.Email = emailStr
		}
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: token missing subject claim", ErrInvalidToken)
	}

	return claims, nil
}

func (v *Verifier) parse(ctx context.Context, tokenString string) (jwt.Token, error) {
	keys, err := v.jwksManager.GetJWKS(ctx, v.jwksURL)
	if err != nil {
		return nil, fmt.Errorf("failed to get JWKS: %w", err)
	}

	opts := []jwt.ParseOption{
		jwt.WithKeySet(keys),
		jwt.WithValidate(true),
		jwt.WithAcceptableSkew(30 * time.Second),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	token, err := jwt.Parse([]byte(tokenString), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse/verify token: %w", err)
	}
	return token, nil
}

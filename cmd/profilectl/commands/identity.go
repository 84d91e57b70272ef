package commands

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/benvon/profile-sync/internal/services/oidc"
	"github.com/spf13/cobra"
)

// NewIdentityCmd creates the identity command
func NewIdentityCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "identity",
		Short: "Check the identity provider configuration",
	}
	cmd.AddCommand(newIdentityTestCmd(env))
	return cmd
}

func newIdentityTestCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Test issuer discovery and JWKS retrieval",
		Long:  "Resolves the JWKS URL for IDENTITY_ISSUER and fetches the signing keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := env.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if cfg.IdentityIssuer == "" {
				return fmt.Errorf("IDENTITY_ISSUER is not set")
			}

			out := cmd.OutOrStdout()
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			client := &http.Client{Timeout: 10 * time.Second}
			fmt.Fprintf(out, "Testing identity provider: %s\n", cfg.IdentityIssuer)

			jwksURL, err := oidc.ResolveJWKSURL(ctx, client, cfg.IdentityIssuer, cfg.IdentityJWKSURL)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "✓ JWKS URL: %s\n", jwksURL)

			keys, err := oidc.NewJWKSManager(client, time.Minute).GetJWKS(ctx, jwksURL)
			if err != nil {
				return err
			}
			if keys.Len() == 0 {
				return fmt.Errorf("JWKS at %s contains no keys", jwksURL)
			}
			fmt.Fprintf(out, "✓ JWKS endpoint returned %d key(s)\n", keys.Len())

			fmt.Fprintln(out, "\n✓ Identity provider configuration test passed")
			return nil
		},
	}
}

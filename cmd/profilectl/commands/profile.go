package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/benvon/profile-sync/internal/logger"
	"github.com/benvon/profile-sync/internal/models"
	"github.com/benvon/profile-sync/internal/services/profile"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewProfileCmd creates the profile command
func NewProfileCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Inspect and repair user profiles",
		Long:  "Read profiles and apply identity syncs or user edits through the same reconciliation rules as the API",
	}

	cmd.AddCommand(newProfileGetCmd(env))
	cmd.AddCommand(newProfileSyncCmd(env))
	cmd.AddCommand(newProfileEditCmd(env))

	return cmd
}

// withService runs fn against a profile service backed by the configured store
func withService(env *Env, fn func(ctx context.Context, svc *profile.Service) (*models.Profile, error)) (*models.Profile, error) {
	cfg, err := env.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	store, closeStore, err := env.OpenStore(cfg)
	if err != nil {
		return nil, err
	}
	if closeStore != nil {
		defer closeStore()
	}

	svc := profile.NewService(store, env.Logger)
	if cfg.RabbitMQURL != "" {
		broker, err := env.OpenBroker(cfg.RabbitMQURL)
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := broker.Close(); err != nil {
				env.Logger.Warn("failed_to_close_rabbitmq_connection", zap.String("error", logger.SanitizeError(err)))
			}
		}()
		svc.WithPublisher(broker)
	}

	return fn(context.Background(), svc)
}

func printProfile(cmd *cobra.Command, p *models.Profile) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(p)
}

func newProfileGetCmd(env *Env) *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "get",
		Short: "Print a stored profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := withService(env, func(ctx context.Context, svc *profile.Service) (*models.Profile, error) {
				return svc.GetProfile(ctx, userID)
			})
			if err != nil {
				return err
			}
			return printProfile(cmd, p)
		},
	}

	cmd.Flags().StringVar(&userID, "user-id", "", "User ID (required)")
	_ = cmd.MarkFlagRequired("user-id")

	return cmd
}

func newProfileSyncCmd(env *Env) *cobra.Command {
	var event models.IdentityEvent

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Apply identity-provider metadata to a profile",
		Long:  "Runs an identity sync. Name and picture are only filled when the profile has none.",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := withService(env, func(ctx context.Context, svc *profile.Service) (*models.Profile, error) {
				return svc.SyncIdentity(ctx, event)
			})
			if err != nil {
				return err
			}
			return printProfile(cmd, p)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&event.UserID, "user-id", "", "User ID (required)")
	flags.StringVar(&event.Email, "email", "", "Email address (required)")
	flags.StringVar(&event.FullName, "full-name", "", "Full name from the identity provider")
	flags.StringVar(&event.FirstName, "first-name", "", "First name")
	flags.StringVar(&event.LastName, "last-name", "", "Last name")
	flags.StringVar(&event.ProfilePictureURL, "profile-picture-url", "", "Picture URL from the identity provider")
	flags.StringVar(&event.ProviderID, "provider-id", "", "Provider-side user ID")
	flags.StringVar(&event.AuthProvider, "auth-provider", "", "email or google")
	_ = cmd.MarkFlagRequired("user-id")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func newProfileEditCmd(env *Env) *cobra.Command {
	var (
		userID              string
		fullName            string
		profilePicture      string
		emailVerified       bool
		clearFullName       bool
		clearProfilePicture bool
	)

	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Apply a user edit to a profile",
		Long:  "Applies an edit exactly as given. Only the flags you pass are written.",
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			edit := models.UserEdit{UserID: userID}

			switch {
			case flags.Changed("full-name"):
				edit.FullName = models.Some(fullName)
			case clearFullName:
				edit.FullName = models.Null[string]()
			}
			switch {
			case flags.Changed("profile-picture"):
				edit.ProfilePicture = models.Some(profilePicture)
			case clearProfilePicture:
				edit.ProfilePicture = models.Null[string]()
			}
			if flags.Changed("email-verified") {
				edit.EmailVerified = models.Some(emailVerified)
			}

			p, err := withService(env, func(ctx context.Context, svc *profile.Service) (*models.Profile, error) {
				return svc.ApplyEdit(ctx, edit)
			})
			if err != nil {
				return err
			}
			return printProfile(cmd, p)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&userID, "user-id", "", "User ID (required)")
	flags.StringVar(&fullName, "full-name", "", "New full name")
	flags.BoolVar(&clearFullName, "clear-full-name", false, "Set the full name to null")
	flags.StringVar(&profilePicture, "profile-picture", "", "New picture URL or image data URI")
	flags.BoolVar(&clearProfilePicture, "clear-profile-picture", false, "Remove the profile picture")
	flags.BoolVar(&emailVerified, "email-verified", false, "Mark the email verified (true) or unverified (false)")
	_ = cmd.MarkFlagRequired("user-id")
	cmd.MarkFlagsMutuallyExclusive("full-name", "clear-full-name")
	cmd.MarkFlagsMutuallyExclusive("profile-picture", "clear-profile-picture")

	return cmd
}

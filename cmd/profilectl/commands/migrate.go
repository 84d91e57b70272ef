package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewMigrateCmd creates the migrate command
func NewMigrateCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the profile store schema",
	}

	for _, direction := range []string{"up", "down"} {
		cmd.AddCommand(newMigrateDirectionCmd(env, direction))
	}

	return cmd
}

func newMigrateDirectionCmd(env *Env, direction string) *cobra.Command {
	short := "Apply all pending migrations"
	if direction == "down" {
		short = "Roll back all migrations"
	}

	return &cobra.Command{
		Use:   direction,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := env.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if cfg.UsesMemoryStore() {
				return fmt.Errorf("nothing to migrate for the memory store")
			}

			if err := env.Migrate(cfg.DatabaseURL, direction); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Migrations applied (%s)\n", direction)
			return nil
		},
	}
}

package main

import (
	"fmt"
	"os"

	"github.com/benvon/profile-sync/cmd/profilectl/commands"
	"github.com/spf13/cobra"
)

func main() {
	env := commands.DefaultEnv()

	var rootCmd = &cobra.Command{
		Use:           "profilectl",
		Short:         "Operator tool for the profile sync service",
		Long:          "CLI tool for running schema migrations, inspecting and repairing profiles, and checking the identity provider and event stream",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(commands.NewMigrateCmd(env))
	rootCmd.AddCommand(commands.NewProfileCmd(env))
	rootCmd.AddCommand(commands.NewIdentityCmd(env))
	rootCmd.AddCommand(commands.NewEventsCmd(env))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/benvon/profile-sync/internal/events"
	"github.com/spf13/cobra"
)

// NewEventsCmd creates the events command
func NewEventsCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Watch profile change events",
	}
	cmd.AddCommand(newEventsTailCmd(env))
	return cmd
}

func newEventsTailCmd(env *Env) *cobra.Command {
	var (
		bindingKey string
		count      int
	)

	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Print profile events as they are published",
		Long:  "Subscribes to the profile event exchange and prints one JSON event per line until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := env.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if cfg.RabbitMQURL == "" {
				return fmt.Errorf("RABBITMQ_URL is not set")
			}

			broker, err := env.OpenBroker(cfg.RabbitMQURL)
			if err != nil {
				return err
			}
			defer func() {
				if err := broker.Close(); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "Warning: failed to close broker: %v\n", err)
				}
			}()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return tailEvents(ctx, cmd, broker, bindingKey, count)
		},
	}

	cmd.Flags().StringVar(&bindingKey, "type", events.BindAll, "Routing key pattern, e.g. profile.edited")
	cmd.Flags().IntVar(&count, "count", 0, "Exit after this many events (0 = run until interrupted)")

	return cmd
}

func tailEvents(ctx context.Context, cmd *cobra.Command, broker events.Broker, bindingKey string, count int) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	eventChan, errChan, err := broker.Subscribe(ctx, bindingKey)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	seen := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-errChan:
			if !ok {
				return nil
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
		case event, ok := <-eventChan:
			if !ok {
				return nil
			}
			if err := enc.Encode(event); err != nil {
				return err
			}
			seen++
			if count > 0 && seen >= count {
				return nil
			}
		}
	}
}

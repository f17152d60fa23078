package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func (c *Cli) watchCommand() *cobra.Command {
	var every time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep the session alive in the foreground until interrupted",
		Long: "Run the background token monitor in the foreground.\n\n" +
			"The access token is renewed before it expires. The command exits when interrupted " +
			"or when the session ends because renewal kept failing.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runWatch(cmd.Context(), every)
		},
	}
	cmd.Flags().DurationVar(&every, "print-every", time.Minute, "how often to print the session state")

	return cmd
}

func (c *Cli) runWatch(ctx context.Context, every time.Duration) error {
	ok, err := c.session.IsAuthenticated(ctx)
	if err != nil {
		return fmt.Errorf("failed to check authentication: %w", describeStorageError(err))
	}
	if !ok {
		return ErrNotAuthenticated
	}
	if every <= 0 {
		every = time.Minute
	}

	c.session.Start(ctx)
	defer c.session.Stop()

	c.io.Println("Watching session, press Ctrl+C to stop.")
	c.printWatchLine(ctx)

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.io.Println("Stopped.")
			return nil
		case reason := <-c.ended:
			return fmt.Errorf("%w: %w", ErrSessionEnded, reason)
		case <-ticker.C:
			c.printWatchLine(ctx)
		}
	}
}

func (c *Cli) printWatchLine(ctx context.Context) {
	info, err := c.session.TokenDebugInfo(ctx)
	if err != nil {
		c.io.Printf("[%s] failed to read session: %v\n", time.Now().Format(time.TimeOnly), err)
		return
	}
	if !info.Authenticated {
		c.io.Printf("[%s] not authenticated\n", time.Now().Format(time.TimeOnly))
		return
	}
	c.io.Printf("[%s] access token valid until %s\n",
		time.Now().Format(time.TimeOnly), info.AccessExpiresAt.Format(time.TimeOnly))
}

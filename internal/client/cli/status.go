package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

const timeLayout = "2006-01-02 15:04:05 MST"

func (c *Cli) statusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the stored session without contacting the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runStatus(cmd.Context())
		},
	}
}

func (c *Cli) runStatus(ctx context.Context) error {
	c.io.Println("=== Authentication Status ===")
	c.io.Println()

	info, err := c.session.TokenDebugInfo(ctx)
	if err != nil {
		return fmt.Errorf("failed to read session: %w", describeStorageError(err))
	}

	if !info.Authenticated {
		c.io.Println("Status: Not authenticated")
		c.io.Println()
		c.io.Println("Run 'carelink login' to authenticate.")
		return nil
	}

	c.io.Println("Status: Authenticated")
	if info.UserID != "" {
		c.io.Printf("User ID: %s\n", info.UserID)
	}

	if info.AccessExpiresAt.IsZero() {
		c.io.Println("Access token: no expiry claim, will be renewed on next use")
	} else {
		c.io.Printf("Access token expires: %s\n", info.AccessExpiresAt.Format(timeLayout))
		if remaining := time.Until(info.AccessExpiresAt); remaining > 0 {
			c.io.Printf("Time remaining: %s\n", remaining.Round(time.Second))
		}
	}
	if info.AccessExpiring {
		c.io.Println("⚠️  Access token is expiring and will be renewed on next use.")
	}

	if !info.RefreshExpiresAt.IsZero() {
		c.io.Printf("Refresh token expires: %s\n", info.RefreshExpiresAt.Format(timeLayout))
	}

	return nil
}

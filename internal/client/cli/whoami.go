package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/iudanet/carelink/internal/client/auth"
	"github.com/iudanet/carelink/pkg/api"
)

func (c *Cli) whoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Fetch the profile of the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runWhoami(cmd.Context())
		},
	}
}

func (c *Cli) runWhoami(ctx context.Context) error {
	var profile api.ProfileResponse
	if err := c.session.DoJSON(ctx, http.MethodGet, api.PathProfile, nil, &profile); err != nil {
		if errors.Is(err, auth.ErrNoRefreshToken) {
			return ErrNotAuthenticated
		}
		return fmt.Errorf("failed to fetch profile: %w", describeStorageError(err))
	}

	c.io.Printf("Username: %s\n", profile.Username)
	c.io.Printf("User ID: %s\n", profile.UserID)
	return nil
}

package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iudanet/carelink/internal/validation"
	"github.com/iudanet/carelink/pkg/api"
)

func (c *Cli) registerCommand() *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a new account on the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRegister(cmd.Context(), username)
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "account name (prompted if empty)")

	return cmd
}

func (c *Cli) runRegister(ctx context.Context, username string) error {
	c.io.Println("=== Registration ===")
	c.io.Println()

	if username == "" {
		var err error
		username, err = c.io.ReadInput("Username: ")
		if err != nil {
			return fmt.Errorf("failed to read username: %w", err)
		}
	}
	if err := validation.ValidateUsername(username); err != nil {
		return fmt.Errorf("invalid username: %w", err)
	}

	password, err := c.io.ReadPassword(fmt.Sprintf("Password (min %d chars): ", validation.MinPasswordLength))
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	if err := validation.ValidatePassword(password); err != nil {
		return fmt.Errorf("invalid password: %w", err)
	}

	confirm, err := c.io.ReadPassword("Confirm password: ")
	if err != nil {
		return fmt.Errorf("failed to read confirmation: %w", err)
	}
	if password != confirm {
		return ErrPasswordsDoNotMatch
	}

	c.io.Println("Registering user...")

	resp, err := c.registrar.Register(ctx, api.RegisterRequest{Username: username, Password: password})
	if err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}

	c.io.Println()
	c.io.Println("✓ Registration successful!")
	c.io.Printf("User ID: %s\n", resp.UserID)
	c.io.Printf("Username: %s\n", username)
	c.io.Println()
	c.io.Println("Run 'carelink login' to start a session.")

	return nil
}

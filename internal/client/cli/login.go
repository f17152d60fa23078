package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// EnvPassword - переменная окружения с паролем для неинтерактивного login
const EnvPassword = "CARELINK_PASSWORD"

func (c *Cli) loginCommand() *cobra.Command {
	var username, passwordFile string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the token pair",
		Long: "Sign in and store the token pair.\n\n" +
			"Password priority: " + EnvPassword + " environment variable, --password-file, interactive prompt.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLogin(cmd.Context(), username, passwordFile)
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "account name (prompted if empty)")
	cmd.Flags().StringVar(&passwordFile, "password-file", "", "read the password from this file")

	return cmd
}

func (c *Cli) runLogin(ctx context.Context, username, passwordFile string) error {
	c.io.Println("=== Login ===")
	c.io.Println()

	if username == "" {
		var err error
		username, err = c.io.ReadInput("Username: ")
		if err != nil {
			return fmt.Errorf("failed to read username: %w", err)
		}
	}

	password, err := c.readSecret(EnvPassword, passwordFile, "Password: ")
	if err != nil {
		return err
	}

	c.io.Println("Authenticating...")

	if err := c.session.LoginWithPassword(ctx, username, password); err != nil {
		return fmt.Errorf("login failed: %w", describeStorageError(err))
	}

	c.io.Println()
	c.io.Println("✓ Login successful!")
	c.io.Printf("Username: %s\n", username)

	if info, err := c.session.TokenDebugInfo(ctx); err == nil && !info.AccessExpiresAt.IsZero() {
		c.io.Printf("Access token expires: %s\n", info.AccessExpiresAt.Format("2006-01-02 15:04:05 MST"))
	}

	return nil
}

package cli

import (
	"github.com/spf13/cobra"

	"github.com/iudanet/carelink/internal/client/config"
)

// RootCommand собирает дерево команд carelink
func (c *Cli) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "carelink",
		Short:         "CareLink session client",
		Long:          "carelink signs in to a CareLink server, keeps the access token fresh and sends authenticated requests.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
	}

	config.RegisterFlags(root.PersistentFlags())

	root.SetOut(c.io)
	root.SetErr(c.io)

	root.AddCommand(
		c.registerCommand(),
		c.loginCommand(),
		c.logoutCommand(),
		c.statusCommand(),
		c.whoamiCommand(),
		c.requestCommand(),
		c.watchCommand(),
		c.versionCommand(),
	)

	return root
}

package root

import (
	"github.com/spf13/cobra"
)

// rootCmd is the base command for the Orderdesk admin CLI. Subcommands
// (auth, tenant, member) are attached here.
var rootCmd = &cobra.Command{
	Use:           "orderdesk",
	Short:         "Orderdesk admin CLI",
	Long:          "Administrative utilities for Orderdesk (dev tokens, tenant management, staff roles).",
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

// Root returns the mutable root command for wiring from subpackages.
func Root() *cobra.Command {
	return rootCmd
}

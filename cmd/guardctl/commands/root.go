// Package commands implements the guardctl CLI.
package commands

import (
	"github.com/spf13/cobra"
)

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "guardctl",
		Short: "adminguard control - console user and token tooling",
		Long: `guardctl checks user directories and issues or inspects remember-me
tokens for the adminguard console.

Use "guardctl [command] --help" for more information about a command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("config", "", "Path to the adminguard configuration file")

	root.AddCommand(newDirectoryCmd())
	root.AddCommand(newTokenCmd())
	return root
}

// Execute runs the CLI.
func Execute() error {
	return NewRootCmd().Execute()
}

// Package commands implements the cask command-line interface.
package commands

import (
	"github.com/spf13/cobra"
)

// NewRootCommand creates the root command with the flags shared by every
// subcommand.
func NewRootCommand(version string) *cobra.Command {
	root := &cobra.Command{
		Use:           "cask [flags] command [flags]",
		Short:         "Encrypted container archives",
		Long:          "Packages directory trees into single encrypted container files\nand reads them back with random access.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringP("key", "k", "", "Encryption key (32 bytes, hex-encoded)")
	root.PersistentFlags().StringP("key-file", "f", "", "Path to a file holding the hex-encoded encryption key")

	root.AddCommand(
		NewCreateCommand(),
		NewExtractCommand(),
		NewListCommand(),
		NewCatCommand(),
		NewInspectCommand(),
		NewKeygenCommand(),
	)

	return root
}

// Execute runs the root command.
func Execute(version string) error {
	return NewRootCommand(version).Execute()
}

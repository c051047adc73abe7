package commands

import (
	"github.com/spf13/cobra"

	"github.com/caskfs/cask"
)

// NewCreateCommand creates the cobra command for the create subcommand.
func NewCreateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "create [flags] source-dir dest-container",
		Aliases: []string{"c"},
		Short:   "Package a directory into an encrypted container",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := resolveKey(cmd)
			if err != nil {
				return err
			}

			overwrite, err := cmd.Flags().GetBool("overwrite")
			if err != nil {
				return err
			}

			var opts []cask.CreateOption
			if overwrite {
				opts = append(opts, cask.WithOverwrite())
			}
			return cask.Create(cmd.Context(), args[0], args[1], key, opts...)
		},
	}

	cmd.Flags().BoolP("overwrite", "o", false, "Replace the destination container if it exists")

	return cmd
}

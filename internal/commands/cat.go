package commands

import (
	"github.com/spf13/cobra"

	"github.com/caskfs/cask"
)

// NewCatCommand creates the cobra command for the cat subcommand.
func NewCatCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cat [flags] container path",
		Short: "Decrypt one entry to stdout",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := resolveKey(cmd)
			if err != nil {
				return err
			}

			archive, err := cask.Open(args[0], key)
			if err != nil {
				return err
			}
			content, err := archive.ReadFile(args[1])
			if err != nil {
				return err
			}

			_, err = cmd.OutOrStdout().Write(content)
			return err
		},
	}
}

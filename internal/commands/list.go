package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/caskfs/cask"
)

// NewListCommand creates the cobra command for the ls subcommand.
func NewListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "ls [flags] container [dir]",
		Aliases: []string{"list"},
		Short:   "List container entries",
		Args:    cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := resolveKey(cmd)
			if err != nil {
				return err
			}

			dir := ""
			if len(args) == 2 {
				dir = args[1]
			}

			archive, err := cask.Open(args[0], key)
			if err != nil {
				return err
			}
			entries, err := archive.List(dir)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, entry := range entries {
				if entry.IsDir {
					fmt.Fprintf(out, "%12s  %s/\n", "-", entry.Path)
					continue
				}
				fmt.Fprintf(out, "%12d  %s\n", entry.Size, entry.Path)
			}
			return nil
		},
	}
}

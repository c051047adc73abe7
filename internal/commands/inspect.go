package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/caskfs/cask"
)

// NewInspectCommand creates the cobra command for the inspect subcommand.
// Inspection reads only the header, so no key is required.
func NewInspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect container",
		Short: "Show container metadata without decrypting anything",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := cask.Inspect(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "version:     %d\n", info.Version)
			fmt.Fprintf(out, "files:       %d\n", info.FileCount)
			fmt.Fprintf(out, "total size:  %d\n", info.TotalSize)
			fmt.Fprintf(out, "data offset: %d\n", info.DataOffset)
			fmt.Fprintf(out, "digest:      %s\n", info.Digest)
			return nil
		},
	}
}

package commands

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/caskfs/cask"
)

// NewKeygenCommand creates the cobra command for the keygen subcommand.
func NewKeygenCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "keygen",
		Aliases: []string{"gen"},
		Short:   "Generate a new encryption key",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := cask.GenerateKey()
			if err != nil {
				return fmt.Errorf("generating key: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(key))
			return nil
		},
	}
}

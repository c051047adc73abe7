package commands

import (
	"github.com/spf13/cobra"

	"github.com/caskfs/cask"
)

// NewExtractCommand creates the cobra command for the extract subcommand.
func NewExtractCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "extract [flags] container dest-dir",
		Aliases: []string{"x"},
		Short:   "Decrypt container entries into a directory",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := resolveKey(cmd)
			if err != nil {
				return err
			}
			prefix, err := cmd.Flags().GetString("prefix")
			if err != nil {
				return err
			}
			overwrite, err := cmd.Flags().GetBool("overwrite")
			if err != nil {
				return err
			}
			workers, err := cmd.Flags().GetInt("workers")
			if err != nil {
				return err
			}

			archive, err := cask.Open(args[0], key)
			if err != nil {
				return err
			}

			opts := []cask.ExtractOption{cask.ExtractWithWorkers(workers)}
			if overwrite {
				opts = append(opts, cask.ExtractWithOverwrite())
			}
			return archive.Extract(cmd.Context(), args[1], prefix, opts...)
		},
	}

	cmd.Flags().StringP("prefix", "p", "", "Extract only entries under this archive path")
	cmd.Flags().BoolP("overwrite", "o", false, "Replace existing destination files")
	cmd.Flags().IntP("workers", "j", 4, "Number of concurrent entry readers")

	return cmd
}

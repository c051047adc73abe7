package commands

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// resolveKey decodes the key from the --key flag or, failing that, from
// the file named by --key-file.
func resolveKey(cmd *cobra.Command) ([]byte, error) {
	keyHex, err := cmd.Flags().GetString("key")
	if err != nil {
		return nil, err
	}
	keyFile, err := cmd.Flags().GetString("key-file")
	if err != nil {
		return nil, err
	}

	if keyHex == "" && keyFile == "" {
		return nil, errors.New("a key is required: pass --key or --key-file")
	}
	if keyHex == "" {
		raw, err := os.ReadFile(keyFile) //nolint:gosec // User-provided path is intentional
		if err != nil {
			return nil, fmt.Errorf("read key file: %w", err)
		}
		keyHex = strings.TrimSpace(string(raw))
	}

	key, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, fmt.Errorf("decoding key: %w", err)
	}
	return key, nil
}

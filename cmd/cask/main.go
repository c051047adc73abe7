// Command cask packages directory trees into encrypted container files
// and reads them back.
package main

import (
	"fmt"
	"os"

	"github.com/caskfs/cask/internal/commands"
)

// version is set at build time.
var version = "dev"

func main() {
	if err := commands.Execute(version); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

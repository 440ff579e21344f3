// Command minerush is a terminal idle clicker with local and cloud saves.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/minerush/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "minerush: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}

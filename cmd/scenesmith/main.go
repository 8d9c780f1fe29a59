// Command scenesmith generates and places RPG Maker MZ map events from CUE
// templates.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/scenesmith/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}

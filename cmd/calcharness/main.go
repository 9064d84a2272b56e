// Command calcharness runs the headless calc scenario with flags,
// structured output and an optional run journal.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/calcharness/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	if err != nil && err.Error() != "" {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(cli.GetExitCode(err))
}

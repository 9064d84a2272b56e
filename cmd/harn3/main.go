// Command harn3 bootstraps the component runtime headlessly and runs the
// calc scenario. It takes no flags.
package main

import (
	"context"
	"os"

	"github.com/roach88/calcharness/internal/bootstrap"
	"github.com/roach88/calcharness/internal/calc"
	"github.com/roach88/calcharness/internal/harness"
)

func main() {
	h := harness.New(harness.Options{
		Framework:  bootstrap.NewRuntime(),
		InitModule: calc.Init,
	})
	os.Exit(h.RunFull(context.Background()).ExitCode)
}

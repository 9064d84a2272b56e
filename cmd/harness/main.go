// Command harness runs the calc scenario the way a test suite does: test
// setup first, then the scenario against the process service factory.
package main

import (
	"context"
	"os"

	"github.com/roach88/calcharness/internal/bootstrap"
	"github.com/roach88/calcharness/internal/calc"
	"github.com/roach88/calcharness/internal/harness"
)

func main() {
	rt := bootstrap.NewRuntime()
	h := harness.New(harness.Options{
		SetUp: func(ctx context.Context) error {
			return harness.SetUp(ctx, rt, calc.Init, os.Setenv, nil)
		},
	})
	os.Exit(h.RunDirect(context.Background()).ExitCode)
}

package harness

import (
	"context"
	"fmt"

	"github.com/roach88/calcharness/internal/bootstrap"
	"github.com/roach88/calcharness/internal/environ"
)

// ProgramName is the synthetic argv[0] the full entry point registers.
const ProgramName = "harn3"

// Bootstrap brings the component runtime up: command args, base
// directory, environment, component context, process service factory,
// headless graphics. baseDir is the executable directory as returned by
// environ.ExecutableDir.
func Bootstrap(ctx context.Context, fw Framework, args []string, baseDir string) (bootstrap.ServiceFactory, error) {
	fw.SetCommandArgs(args)
	fw.SetBootstrapVariable(bootstrap.VarBrandBaseDir, bootstrap.FileURL(baseDir))

	if err := fw.ExtendApplicationEnvironment(); err != nil {
		return nil, &BootstrapError{Stage: StageEnvironment, Err: err}
	}

	cctx, err := fw.InitialComponentContext(ctx)
	if err != nil {
		return nil, &BootstrapError{Stage: StageContext, Err: err}
	}
	if cctx == nil {
		return nil, &BootstrapError{Stage: StageContext, Err: fmt.Errorf("no component context")}
	}

	factory, ok := bootstrap.QueryServiceFactory(cctx.ServiceManager())
	if !ok {
		return nil, &BootstrapError{Stage: StageServiceManager}
	}
	fw.SetProcessServiceFactory(factory)

	fw.EnableHeadlessMode(false)
	if err := fw.InitGraphics(); err != nil {
		return nil, &BootstrapError{Stage: StageGraphics, Err: err}
	}
	return factory, nil
}

// SetUp performs the initialization RunDirect expects: environment
// flags, runtime bootstrap, calc module init. The flags go through setenv,
// which must write the same environment fw reads; nil means os.Setenv.
// exe nil means os.Executable. Unlike RunFull, SetUp reports environment
// failures as a StageEnvironment error instead of panicking.
func SetUp(ctx context.Context, fw Framework, initModule ModuleInitializer, setenv environ.Setter, exe func() (string, error)) error {
	if err := environ.Prepare(setenv); err != nil {
		return &BootstrapError{Stage: StageEnvironment, Err: err}
	}
	dir, err := environ.ExecutableDir(exe)
	if err != nil {
		return &BootstrapError{Stage: StageEnvironment, Err: err}
	}
	factory, err := Bootstrap(ctx, fw, []string{ProgramName}, dir)
	if err != nil {
		return err
	}
	if err := initModule(factory); err != nil {
		return &BootstrapError{Stage: StageModule, Err: err}
	}
	return nil
}

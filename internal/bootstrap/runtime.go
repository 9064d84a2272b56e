package bootstrap

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// fundamentalRC is the bootstrap ini the runtime expects next to the
// executable.
const fundamentalRC = "fundamentalrc"

// Runtime is the component runtime for the current process.
type Runtime struct {
	vars     *Variables
	args     []string
	getenv   func(string) string
	setenv   func(string, string) error
	logger   *slog.Logger
	graphics *Graphics
	manifest []byte
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithEnv replaces process environment access. Used by tests.
func WithEnv(getenv func(string) string, setenv func(string, string) error) Option {
	return func(r *Runtime) {
		r.getenv = getenv
		r.setenv = setenv
	}
}

// WithLogger sets the runtime logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runtime) { r.logger = l }
}

// WithManifest overrides manifest discovery with fixed CUE source.
func WithManifest(src []byte) Option {
	return func(r *Runtime) { r.manifest = src }
}

// NewRuntime creates a runtime bound to the process environment.
func NewRuntime(opts ...Option) *Runtime {
	r := &Runtime{
		vars:   NewVariables(),
		getenv: os.Getenv,
		setenv: os.Setenv,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.graphics = NewGraphics(r.getenv, r.logger)
	return r
}

// SetCommandArgs records the process arguments the runtime reports.
func (r *Runtime) SetCommandArgs(args []string) {
	r.args = append([]string(nil), args...)
}

// CommandArgs returns the registered process arguments.
func (r *Runtime) CommandArgs() []string {
	return append([]string(nil), r.args...)
}

// SetBootstrapVariable publishes a bootstrap variable.
func (r *Runtime) SetBootstrapVariable(name, value string) {
	r.vars.Set(name, value)
}

// Variables returns the runtime's bootstrap variables.
func (r *Runtime) Variables() *Variables {
	return r.vars
}

// ExtendApplicationEnvironment points URE_BOOTSTRAP at the base
// directory's fundamentalrc unless the caller already set it.
func (r *Runtime) ExtendApplicationEnvironment() error {
	if r.getenv(VarUREBootstrap) != "" {
		return nil
	}
	base, ok := r.vars.Get(VarBrandBaseDir)
	if !ok || base == "" {
		return fmt.Errorf("extend environment: %s not set", VarBrandBaseDir)
	}
	value := r.vars.Expand("${" + VarBrandBaseDir + "}" + fundamentalRC)
	if err := r.setenv(VarUREBootstrap, value); err != nil {
		return fmt.Errorf("extend environment: %w", err)
	}
	return nil
}

// InitialComponentContext loads the component manifest and returns a
// context whose service manager resolves through it.
func (r *Runtime) InitialComponentContext(ctx context.Context) (*ComponentContext, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m, err := r.loadManifest()
	if err != nil {
		return nil, err
	}

	r.logger.Debug("component context ready", "services", m.Services())
	return NewComponentContext(r.vars, NewServiceManager(m)), nil
}

func (r *Runtime) loadManifest() (*Manifest, error) {
	if r.manifest != nil {
		return ParseManifest(ManifestFile, r.manifest)
	}
	base, ok := r.vars.Get(VarBrandBaseDir)
	if !ok {
		return DefaultManifest()
	}
	dir, err := PathFromURL(base)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", VarBrandBaseDir, err)
	}
	return LoadManifest(dir)
}

// SetProcessServiceFactory publishes f process-wide.
func (r *Runtime) SetProcessServiceFactory(f ServiceFactory) {
	SetProcessServiceFactory(f)
}

// EnableHeadlessMode forwards to the graphics subsystem.
func (r *Runtime) EnableHeadlessMode(consoleOnly bool) {
	r.graphics.EnableHeadlessMode(consoleOnly)
}

// InitGraphics initializes the graphics subsystem.
func (r *Runtime) InitGraphics() error {
	return r.graphics.InitGraphics()
}

// Graphics exposes the graphics subsystem.
func (r *Runtime) Graphics() *Graphics {
	return r.graphics
}

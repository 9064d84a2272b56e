package bootstrap

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/calcharness/internal/environ"
)

// ErrNoDisplay is returned when a display backend is selected but the
// process has no display to connect to.
var ErrNoDisplay = errors.New("no display available")

// ErrUnknownBackend is returned for an unrecognised SAL_USE_VCLPLUGIN.
var ErrUnknownBackend = errors.New("unknown graphics backend")

var displayBackends = map[string]bool{
	"gen":  true,
	"x11":  true,
	"gtk3": true,
	"gtk4": true,
	"kf5":  true,
	"kf6":  true,
	"qt5":  true,
	"qt6":  true,
}

// DefaultBackend is used when no plugin is requested and the process is
// not headless.
const DefaultBackend = "gen"

// GraphicsSettings is what InitGraphics resolved from the environment.
type GraphicsSettings struct {
	Backend        string
	Headless       bool
	ConsoleOnly    bool
	PrinterList    bool
	DefaultPrinter bool
	FontLookup     bool
}

// Graphics is the graphical subsystem. It does not render; it selects a
// backend and records which device queries the process allows.
type Graphics struct {
	getenv func(string) string
	logger *slog.Logger

	headless    bool
	consoleOnly bool
	initialized bool
	settings    GraphicsSettings
}

// NewGraphics creates an uninitialized subsystem reading env via getenv.
func NewGraphics(getenv func(string) string, logger *slog.Logger) *Graphics {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Graphics{getenv: getenv, logger: logger}
}

// EnableHeadlessMode switches to non-graphical operation. consoleOnly
// additionally disables every device query.
func (g *Graphics) EnableHeadlessMode(consoleOnly bool) {
	g.headless = true
	g.consoleOnly = consoleOnly
}

// InitGraphics selects and initializes the backend. Calling it again
// after success is a no-op.
func (g *Graphics) InitGraphics() error {
	if g.initialized {
		return nil
	}

	backend := g.getenv(environ.VarPlugin)
	if g.headless {
		if backend != "" && backend != environ.HeadlessPlugin {
			g.logger.Debug("headless mode overrides backend", "requested", backend)
		}
		backend = environ.HeadlessPlugin
	}
	if backend == "" {
		backend = DefaultBackend
	}

	switch {
	case backend == environ.HeadlessPlugin:
	case displayBackends[backend]:
		if g.getenv("DISPLAY") == "" && g.getenv("WAYLAND_DISPLAY") == "" {
			return fmt.Errorf("backend %q: %w", backend, ErrNoDisplay)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}

	g.settings = GraphicsSettings{
		Backend:        backend,
		Headless:       g.headless,
		ConsoleOnly:    g.consoleOnly,
		PrinterList:    !g.consoleOnly && g.getenv(environ.VarDisablePrinterList) == "",
		DefaultPrinter: !g.consoleOnly && g.getenv(environ.VarDisableDefPrinter) == "",
		FontLookup:     !g.consoleOnly && g.getenv(environ.VarNoFontLookup) == "",
	}
	g.initialized = true

	g.logger.Debug("graphics initialized",
		"backend", g.settings.Backend,
		"headless", g.settings.Headless,
		"printer_list", g.settings.PrinterList,
		"default_printer", g.settings.DefaultPrinter,
		"font_lookup", g.settings.FontLookup,
	)
	return nil
}

// Settings returns the resolved settings; zero before InitGraphics.
func (g *Graphics) Settings() GraphicsSettings {
	return g.settings
}

// Initialized reports whether InitGraphics has succeeded.
func (g *Graphics) Initialized() bool {
	return g.initialized
}

package calc

import (
	"io"
	"log/slog"
	"os"
	"sync"

	"golang.org/x/text/language"

	"github.com/roach88/calcharness/internal/environ"
)

// Engine constructs document shells and tracks how many are open.
type Engine struct {
	getenv   func(string) string
	logger   *slog.Logger
	threaded bool

	mu   sync.Mutex
	open int
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithGetenv replaces environment lookup. Used by tests.
func WithGetenv(getenv func(string) string) EngineOption {
	return func(e *Engine) { e.getenv = getenv }
}

// WithLogger sets the engine logger.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

// NewEngine creates an engine. Threaded calculation is on unless
// SC_NO_THREADED_CALCULATION is set.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		getenv: os.Getenv,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.threaded = e.getenv(environ.VarNoThreadedCalc) == ""
	return e
}

// NewDocShell creates an uninitialized shell.
func (e *Engine) NewDocShell(flags ModelFlags) *DocShell {
	e.logger.Debug("new document shell", "flags", flags.String())
	return &DocShell{engine: e, flags: flags}
}

// Threaded reports whether threaded calculation was requested. This
// engine evaluates on the calling goroutine either way.
func (e *Engine) Threaded() bool {
	return e.threaded
}

// OpenDocuments returns the number of initialized, unclosed documents.
func (e *Engine) OpenDocuments() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.open
}

func (e *Engine) locale() language.Tag {
	return AmbientLocale(e.getenv)
}

func (e *Engine) opened() {
	e.mu.Lock()
	e.open++
	e.mu.Unlock()
}

func (e *Engine) released() {
	e.mu.Lock()
	e.open--
	e.mu.Unlock()
}

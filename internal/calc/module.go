package calc

import (
	"fmt"
	"sync"

	"github.com/roach88/calcharness/internal/bootstrap"
)

// Service and implementation names the module registers.
const (
	DocumentServiceName = "com.sun.star.sheet.SpreadsheetDocument"
	ImplementationName  = "ScDocShell"
)

// Module is the calc module's one-time initialization.
type Module struct {
	Options []EngineOption

	once   sync.Once
	engine *Engine
	err    error
}

var defaultModule Module

// Init initializes the process-wide calc module and registers it in f.
// Only the first call has any effect.
func Init(f bootstrap.ServiceFactory) error {
	return defaultModule.Init(f)
}

// Init creates the module's engine and registers a factory that hands
// it out for DocumentServiceName. Later calls return the first result.
func (m *Module) Init(f bootstrap.ServiceFactory) error {
	m.once.Do(func() {
		if f == nil {
			m.err = fmt.Errorf("calc init: no service factory")
			return
		}
		m.engine = NewEngine(m.Options...)
		if err := f.RegisterFactory(ImplementationName, func() (any, error) {
			return m.engine, nil
		}); err != nil {
			m.err = fmt.Errorf("calc init: %w", err)
		}
	})
	return m.err
}

// Engine returns the module's engine; nil before Init.
func (m *Module) Engine() *Engine {
	return m.engine
}

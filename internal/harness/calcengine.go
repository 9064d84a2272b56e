package harness

import (
	"fmt"

	"github.com/roach88/calcharness/internal/bootstrap"
	"github.com/roach88/calcharness/internal/calc"
)

type calcEngine struct {
	engine *calc.Engine
}

// NewCalcEngine adapts a calc engine to Engine.
func NewCalcEngine(e *calc.Engine) Engine {
	return calcEngine{engine: e}
}

func (c calcEngine) NewContainer(flags calc.ModelFlags) (Container, error) {
	return calcContainer{shell: c.engine.NewDocShell(flags)}, nil
}

type calcContainer struct {
	shell *calc.DocShell
}

func (c calcContainer) InitUnitTest() error { return c.shell.InitUnitTest() }
func (c calcContainer) Close() error        { return c.shell.Close() }

func (c calcContainer) Document() Document {
	if d := c.shell.Document(); d != nil {
		return d
	}
	return nil
}

// ResolveFrom creates the document service from f and asks the instance
// for the Engine capability.
func ResolveFrom(f bootstrap.ServiceFactory) (Engine, error) {
	inst, err := f.CreateInstance(calc.DocumentServiceName)
	if err != nil {
		return nil, err
	}
	switch e := inst.(type) {
	case *calc.Engine:
		return NewCalcEngine(e), nil
	case Engine:
		return e, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrNotAnEngine, inst)
	}
}

// ResolveProcessEngine resolves the engine through the process service
// factory.
func ResolveProcessEngine() (Engine, error) {
	f, ok := bootstrap.ProcessServiceFactory()
	if !ok {
		return nil, ErrNoProcessFactory
	}
	return ResolveFrom(f)
}

package harness

import (
	"errors"
	"fmt"
)

// Stage identifies the bootstrap step that failed.
type Stage string

const (
	StageEnvironment    Stage = "environment"
	StageContext        Stage = "component_context"
	StageServiceManager Stage = "service_manager"
	StageGraphics       Stage = "graphics"
	StageModule         Stage = "calc_module"
	StagePrecondition   Stage = "precondition"
)

// BootstrapError is a reportable failure before any document exists.
type BootstrapError struct {
	Stage Stage
	Err   error
}

func (e *BootstrapError) Error() string {
	switch e.Stage {
	case StageEnvironment, StageContext:
		return fmt.Sprintf("Failed to bootstrap UNO: %v", e.Err)
	case StageServiceManager:
		return withCause("Failed to get service manager", e.Err)
	case StageGraphics:
		return withCause("VCL init failed", e.Err)
	case StageModule:
		return fmt.Sprintf("Failed to initialize calc module: %v", e.Err)
	case StagePrecondition:
		return fmt.Sprintf("test environment not initialized: %v", e.Err)
	default:
		return withCause(fmt.Sprintf("bootstrap stage %s failed", e.Stage), e.Err)
	}
}

func (e *BootstrapError) Unwrap() error {
	return e.Err
}

// State returns the terminal state the failure leads to.
func (e *BootstrapError) State() State {
	switch e.Stage {
	case StageServiceManager, StagePrecondition:
		return StateServiceManagerUnavailable
	case StageGraphics:
		return StateGraphicsInitFailed
	default:
		return StateBootstrapFailed
	}
}

func withCause(msg string, err error) string {
	if err == nil {
		return msg
	}
	return fmt.Sprintf("%s: %v", msg, err)
}

// IsBootstrapError reports whether err is a BootstrapError at stage.
func IsBootstrapError(err error, stage Stage) bool {
	var be *BootstrapError
	return errors.As(err, &be) && be.Stage == stage
}

var (
	// ErrNoProcessFactory is returned when no process service factory
	// has been published.
	ErrNoProcessFactory = errors.New("no process service factory")

	// ErrNotAnEngine is returned when the document service resolves to
	// something that cannot create documents.
	ErrNotAnEngine = errors.New("document service is not an engine")
)

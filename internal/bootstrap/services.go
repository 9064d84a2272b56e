package bootstrap

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrUnknownService is returned for a service no component declares.
	ErrUnknownService = errors.New("unknown service")

	// ErrUnknownImplementation is returned when registering a factory for
	// an implementation the manifest does not declare.
	ErrUnknownImplementation = errors.New("unknown implementation")

	// ErrAlreadyRegistered is returned on a second registration.
	ErrAlreadyRegistered = errors.New("implementation already registered")

	// ErrNoFactory is returned when the implementation exists but no
	// module has registered a factory for it yet.
	ErrNoFactory = errors.New("no factory registered")
)

// Factory creates one instance of an implementation.
type Factory func() (any, error)

// ServiceFactory is the capability consumers need from a service manager.
type ServiceFactory interface {
	CreateInstance(service string) (any, error)
	RegisterFactory(implementation string, f Factory) error
}

// ServiceManager resolves service names through a manifest to factories
// registered by modules.
type ServiceManager struct {
	manifest *Manifest

	mu        sync.RWMutex
	factories map[string]Factory
}

// NewServiceManager creates a manager over m.
func NewServiceManager(m *Manifest) *ServiceManager {
	return &ServiceManager{
		manifest:  m,
		factories: make(map[string]Factory),
	}
}

// RegisterFactory binds f to implementation. Each implementation may be
// registered once.
func (sm *ServiceManager) RegisterFactory(implementation string, f Factory) error {
	if !sm.manifest.HasImplementation(implementation) {
		return fmt.Errorf("register %q: %w", implementation, ErrUnknownImplementation)
	}
	if f == nil {
		return fmt.Errorf("register %q: nil factory", implementation)
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()
	if _, dup := sm.factories[implementation]; dup {
		return fmt.Errorf("register %q: %w", implementation, ErrAlreadyRegistered)
	}
	sm.factories[implementation] = f
	return nil
}

// CreateInstance creates a new instance of the implementation that
// provides service.
func (sm *ServiceManager) CreateInstance(service string) (any, error) {
	impl, ok := sm.manifest.Implementation(service)
	if !ok {
		return nil, fmt.Errorf("create %q: %w", service, ErrUnknownService)
	}

	sm.mu.RLock()
	f, ok := sm.factories[impl]
	sm.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("create %q (%s): %w", service, impl, ErrNoFactory)
	}

	inst, err := f()
	if err != nil {
		return nil, fmt.Errorf("create %q (%s): %w", service, impl, err)
	}
	return inst, nil
}

// HasService reports whether service can currently be instantiated.
func (sm *ServiceManager) HasService(service string) bool {
	impl, ok := sm.manifest.Implementation(service)
	if !ok {
		return false
	}
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	_, ok = sm.factories[impl]
	return ok
}

// Manifest returns the manifest the manager resolves through.
func (sm *ServiceManager) Manifest() *Manifest {
	return sm.manifest
}

// QueryServiceFactory asks x for the ServiceFactory capability.
// A nil x, or a nil *ServiceManager, has no capability.
func QueryServiceFactory(x any) (ServiceFactory, bool) {
	if x == nil {
		return nil, false
	}
	if sm, isSM := x.(*ServiceManager); isSM && sm == nil {
		return nil, false
	}
	f, ok := x.(ServiceFactory)
	return f, ok
}

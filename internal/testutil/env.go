package testutil

import (
	"errors"
	"sync"
)

// Env is an in-memory process environment. Its Getenv and Setenv
// methods stand in for os.Getenv and os.Setenv.
type Env struct {
	mu   sync.Mutex
	vars map[string]string

	// FailOn makes Setenv fail for the named variable.
	FailOn string
}

// ErrSetenv is returned by Setenv for the FailOn variable.
var ErrSetenv = errors.New("setenv refused")

// NewEnv creates an environment holding the given pairs.
func NewEnv(pairs map[string]string) *Env {
	e := &Env{vars: make(map[string]string, len(pairs))}
	for k, v := range pairs {
		e.vars[k] = v
	}
	return e
}

// Getenv returns the value of name, or "".
func (e *Env) Getenv(name string) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.vars[name]
}

// Setenv sets name.
func (e *Env) Setenv(name, value string) error {
	if e.FailOn != "" && name == e.FailOn {
		return ErrSetenv
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.vars[name] = value
	return nil
}

// Lookup reports the value of name and whether it is set.
func (e *Env) Lookup(name string) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, ok := e.vars[name]
	return v, ok
}

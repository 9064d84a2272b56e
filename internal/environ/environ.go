// Package environ prepares the process environment for a headless run.
//
// Every flag must be in place before the component runtime is touched:
// the runtime and the graphics backend read them once at startup.
package environ

import (
	"fmt"
	"os"
	"strings"
)

// Flag is a single process environment assignment.
type Flag struct {
	Name  string
	Value string
}

// Environment variable names read by the runtime and the calc engine.
const (
	VarPlugin             = "SAL_USE_VCLPLUGIN"
	VarDisablePrinterList = "SAL_DISABLE_PRINTERLIST"
	VarDisableDefPrinter  = "SAL_DISABLE_DEFAULTPRINTER"
	VarNoFontLookup       = "SAL_NO_FONT_LOOKUP"
	VarNoThreadedCalc     = "SC_NO_THREADED_CALCULATION"
)

// HeadlessPlugin selects the headless rendering backend.
const HeadlessPlugin = "svp"

// HeadlessFlags is the fixed set applied by Prepare, in order.
var HeadlessFlags = []Flag{
	{Name: VarPlugin, Value: HeadlessPlugin},
	{Name: VarDisablePrinterList, Value: "1"},
	{Name: VarDisableDefPrinter, Value: "1"},
	{Name: VarNoFontLookup, Value: "1"},
	{Name: VarNoThreadedCalc, Value: "1"},
}

// Setter assigns one environment variable.
type Setter func(name, value string) error

// Prepare applies HeadlessFlags using set. A nil set means os.Setenv.
func Prepare(set Setter) error {
	if set == nil {
		set = os.Setenv
	}
	for _, f := range HeadlessFlags {
		if err := set(f.Name, f.Value); err != nil {
			return fmt.Errorf("set %s: %w", f.Name, err)
		}
	}
	return nil
}

// Error reports that the process cannot locate itself.
// There is no partial state to clean up when this happens.
type Error struct {
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("cannot determine executable path: %v", e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ExecutableDir returns the directory holding the running executable,
// truncated just after the last '/'. A nil resolve means os.Executable.
func ExecutableDir(resolve func() (string, error)) (string, error) {
	if resolve == nil {
		resolve = os.Executable
	}
	path, err := resolve()
	if err != nil {
		return "", &Error{Err: err}
	}
	if path == "" {
		return "", &Error{Err: fmt.Errorf("empty path")}
	}
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		path = path[:i+1]
	}
	return path, nil
}

// MustExecutableDir is ExecutableDir(nil) that panics on failure.
// Callers must not recover the panic.
func MustExecutableDir() string {
	dir, err := ExecutableDir(nil)
	if err != nil {
		panic(err)
	}
	return dir
}

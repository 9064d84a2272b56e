package bootstrap

import (
	"fmt"
	"net/url"
	"os"
	"sort"
	"strings"
	"sync"
)

// Well-known bootstrap variable names.
const (
	VarBrandBaseDir = "BRAND_BASE_DIR"
	VarUREBootstrap = "URE_BOOTSTRAP"
)

// Variables is the runtime's configuration mechanism: a flat set of
// name/value pairs published before the component context exists.
type Variables struct {
	mu   sync.RWMutex
	vals map[string]string
}

// NewVariables creates an empty variable set.
func NewVariables() *Variables {
	return &Variables{vals: make(map[string]string)}
}

// Set assigns name. Later assignments win.
func (v *Variables) Set(name, value string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.vals[name] = value
}

// Get returns the value of name and whether it was set.
func (v *Variables) Get(name string) (string, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	val, ok := v.vals[name]
	return val, ok
}

// Expand replaces ${NAME} and $NAME references. Unset names expand to "".
func (v *Variables) Expand(s string) string {
	return os.Expand(s, func(name string) string {
		val, _ := v.Get(name)
		return val
	})
}

// Names returns all set names, sorted.
func (v *Variables) Names() []string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	names := make([]string, 0, len(v.vals))
	for name := range v.vals {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FileURL converts an absolute directory path to a file URL,
// keeping a trailing separator if present.
func FileURL(dir string) string {
	return (&url.URL{Scheme: "file", Path: dir}).String()
}

// PathFromURL converts a file URL back to a local path.
func PathFromURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse %q: %w", raw, err)
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("not a file URL: %q", raw)
	}
	if u.Path == "" || !strings.HasPrefix(u.Path, "/") {
		return "", fmt.Errorf("file URL has no absolute path: %q", raw)
	}
	return u.Path, nil
}

package bootstrap

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

//go:embed schema.cue
var schemaCUE []byte

//go:embed services.cue
var defaultServicesCUE []byte

// ManifestFile is the name of the per-install manifest override.
const ManifestFile = "services.cue"

// Component is one manifest entry.
type Component struct {
	Implementation string   `json:"implementation"`
	Services       []string `json:"services"`
}

// Manifest maps service names to the implementation that provides them.
type Manifest struct {
	services map[string]string
	impls    map[string]bool
}

// ParseManifest compiles and validates manifest source against the
// component schema. filename is used in error positions only.
func ParseManifest(filename string, src []byte) (*Manifest, error) {
	cctx := cuecontext.New()

	schema := cctx.CompileBytes(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile manifest schema: %w", err)
	}

	data := cctx.CompileBytes(src, cue.Filename(filename))
	if err := data.Err(); err != nil {
		return nil, fmt.Errorf("compile %s: %w", filename, err)
	}

	merged := schema.Unify(data)
	if err := merged.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("validate %s: %w", filename, err)
	}

	var components map[string]Component
	if err := merged.LookupPath(cue.ParsePath("components")).Decode(&components); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filename, err)
	}
	if len(components) == 0 {
		return nil, fmt.Errorf("%s: no components declared", filename)
	}

	m := &Manifest{
		services: make(map[string]string),
		impls:    make(map[string]bool),
	}

	names := make([]string, 0, len(components))
	for name := range components {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		c := components[name]
		m.impls[c.Implementation] = true
		for _, svc := range c.Services {
			if prev, dup := m.services[svc]; dup && prev != c.Implementation {
				return nil, fmt.Errorf("%s: service %q provided by both %q and %q", filename, svc, prev, c.Implementation)
			}
			m.services[svc] = c.Implementation
		}
	}
	return m, nil
}

// DefaultManifest returns the embedded manifest.
func DefaultManifest() (*Manifest, error) {
	return ParseManifest(ManifestFile, defaultServicesCUE)
}

// LoadManifest reads dir/services.cue if present, else the embedded default.
func LoadManifest(dir string) (*Manifest, error) {
	if dir == "" {
		return DefaultManifest()
	}
	path := filepath.Join(dir, ManifestFile)
	src, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultManifest()
	}
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return ParseManifest(path, src)
}

// Implementation returns the implementation name for a service.
func (m *Manifest) Implementation(service string) (string, bool) {
	impl, ok := m.services[service]
	return impl, ok
}

// HasImplementation reports whether any component declares impl.
func (m *Manifest) HasImplementation(impl string) bool {
	return m.impls[impl]
}

// Services returns all declared service names, sorted.
func (m *Manifest) Services() []string {
	out := make([]string, 0, len(m.services))
	for svc := range m.services {
		out = append(out, svc)
	}
	sort.Strings(out)
	return out
}

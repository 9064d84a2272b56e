package bootstrap

// ComponentContext is the handle returned by bootstrap. It carries the
// bootstrap variables and an untyped service manager; callers obtain the
// factory capability through QueryServiceFactory.
type ComponentContext struct {
	vars    *Variables
	manager any
}

// NewComponentContext assembles a context. manager may be anything,
// including nil; capability is checked at query time.
func NewComponentContext(vars *Variables, manager any) *ComponentContext {
	if vars == nil {
		vars = NewVariables()
	}
	return &ComponentContext{vars: vars, manager: manager}
}

// ServiceManager returns the context's service manager.
func (c *ComponentContext) ServiceManager() any {
	return c.manager
}

// Variable looks up a bootstrap variable visible to the context.
func (c *ComponentContext) Variable(name string) (string, bool) {
	return c.vars.Get(name)
}

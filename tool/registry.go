package tool

import (
	"fmt"
	"sort"
	"strings"
)

// Registry is a pure lookup table from tool name to implementation, built
// once at startup. It is not written to after wiring, so reads need no
// locking at runtime.
type Registry struct {
	tools map[string]Tool
}

// NewRegistry creates a registry holding the given tools.
func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{tools: make(map[string]Tool, len(tools))}
	r.Register(tools...)
	return r
}

// Register adds tools to the registry. A later registration with the same
// name replaces the earlier one.
func (r *Registry) Register(tools ...Tool) {
	for _, t := range tools {
		r.tools[t.Name()] = t
	}
}

// Get returns the named tool, with ok=false when unknown.
func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Names returns all registered tool names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Subset resolves the named tools, failing on any unknown name. Binding an
// unbound name to an agent is a configuration error caught at wiring time,
// not at call time.
func (r *Registry) Subset(names ...string) ([]Tool, error) {
	out := make([]Tool, 0, len(names))
	for _, name := range names {
		t, ok := r.tools[name]
		if !ok {
			return nil, fmt.Errorf("unknown tool %q (registered: %s)", name, strings.Join(r.Names(), ", "))
		}
		out = append(out, t)
	}
	return out, nil
}

// Filter returns the tools whose name satisfies the predicate, in sorted
// name order. Used to split a remote catalog between specialists.
func (r *Registry) Filter(pred func(name string) bool) []Tool {
	var out []Tool
	for _, name := range r.Names() {
		if pred(name) {
			out = append(out, r.tools[name])
		}
	}
	return out
}

// Len returns the number of registered tools.
func (r *Registry) Len() int { return len(r.tools) }

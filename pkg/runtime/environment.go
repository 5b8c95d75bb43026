package runtime

import (
	"fmt"
	"sort"
)

// Environment is one lexical frame. Frames are shared by pointer, so a
// closure that captured a frame observes every later write to it.
type Environment struct {
	values map[string]Value
	parent *Environment
}

// NewEnvironment creates a new environment, optionally nested under a parent.
func NewEnvironment(parent *Environment) *Environment {
	return &Environment{
		values: make(map[string]Value),
		parent: parent,
	}
}

// Define inserts or shadows a binding in the current scope.
func (e *Environment) Define(name string, value Value) {
	e.values[name] = value
}

// Lookup reads a binding from this frame only.
func (e *Environment) Lookup(name string) (Value, bool) {
	v, ok := e.values[name]
	return v, ok
}

// Assign updates an existing binding in the first scope where it appears.
func (e *Environment) Assign(name string, value Value) error {
	if _, ok := e.values[name]; ok {
		e.values[name] = value
		return nil
	}
	if e.parent != nil {
		return e.parent.Assign(name, value)
	}
	return fmt.Errorf("Undefined variable '%s'.", name)
}

// Get retrieves a binding, searching outward through the scope chain.
func (e *Environment) Get(name string) (Value, error) {
	if v, ok := e.values[name]; ok {
		return v, nil
	}
	if e.parent != nil {
		return e.parent.Get(name)
	}
	return nil, fmt.Errorf("Undefined variable '%s'.", name)
}

// Ancestor walks exactly distance parent links.
func (e *Environment) Ancestor(distance int) (*Environment, error) {
	env := e
	for i := 0; i < distance; i++ {
		if env.parent == nil {
			return nil, fmt.Errorf("scope distance %d exceeds environment depth %d", distance, i)
		}
		env = env.parent
	}
	return env, nil
}

// GetAt reads name from the frame distance links out, without searching.
func (e *Environment) GetAt(distance int, name string) (Value, error) {
	env, err := e.Ancestor(distance)
	if err != nil {
		return nil, err
	}
	if v, ok := env.values[name]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("Undefined variable '%s'.", name)
}

// AssignAt writes name in the frame distance links out.
func (e *Environment) AssignAt(distance int, name string, value Value) error {
	env, err := e.Ancestor(distance)
	if err != nil {
		return err
	}
	env.values[name] = value
	return nil
}

// Keys returns the bindings in sorted order (useful for determinism in tests).
func (e *Environment) Keys() []string {
	keys := make([]string, 0, len(e.values))
	for k := range e.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

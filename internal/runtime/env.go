package runtime

import (
	"errors"
	"sort"
)

// Errors returned by Environment. The interpreter turns them into
// RuntimeErrors of the matching kind.
var (
	ErrRedeclared = errors.New("already declared in this scope")
	ErrUndeclared = errors.New("not declared")
	ErrImmutable  = errors.New("immutable binding")
)

type binding struct {
	value   Value
	mutable bool
}

// Environment represents a variable scope with a parent chain.
type Environment struct {
	values map[string]*binding
	parent *Environment
}

// NewEnvironment creates a new environment with an optional parent scope.
func NewEnvironment(parent *Environment) *Environment {
	return &Environment{
		values: make(map[string]*binding),
		parent: parent,
	}
}

// Parent returns the enclosing scope, or nil for the root.
func (e *Environment) Parent() *Environment {
	return e.parent
}

// Define declares a new variable in the current scope.
// Shadowing a name from an outer scope is allowed.
func (e *Environment) Define(name string, value Value, mutable bool) error {
	if _, exists := e.values[name]; exists {
		return ErrRedeclared
	}
	e.values[name] = &binding{value: value, mutable: mutable}
	return nil
}

// HasLocal reports whether name is declared in this frame itself.
func (e *Environment) HasLocal(name string) bool {
	_, exists := e.values[name]
	return exists
}

// Get looks up a variable by walking the scope chain.
func (e *Environment) Get(name string) (Value, bool) {
	if b := e.lookup(name); b != nil {
		return b.value, true
	}
	return nil, false
}

// Assign rebinds an existing mutable variable in the frame that declares it.
func (e *Environment) Assign(name string, value Value) error {
	b := e.lookup(name)
	if b == nil {
		return ErrUndeclared
	}
	if !b.mutable {
		return ErrImmutable
	}
	b.value = value
	return nil
}

func (e *Environment) lookup(name string) *binding {
	for env := e; env != nil; env = env.parent {
		if b, exists := env.values[name]; exists {
			return b
		}
	}
	return nil
}

// Names returns every name visible from e, sorted and without duplicates.
func (e *Environment) Names() []string {
	return e.collect(func(Value) bool { return true })
}

// FuncNames returns the visible names bound to functions.
func (e *Environment) FuncNames() []string {
	return e.collect(func(v Value) bool {
		_, ok := v.(*FuncVal)
		return ok
	})
}

func (e *Environment) collect(keep func(Value) bool) []string {
	seen := make(map[string]bool)
	var names []string
	for env := e; env != nil; env = env.parent {
		for name, b := range env.values {
			// an inner binding hides outer ones of the same name
			if seen[name] {
				continue
			}
			seen[name] = true
			if keep(b.value) {
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names
}

// Depth returns the number of frames from e to the root, inclusive.
func (e *Environment) Depth() int {
	n := 0
	for env := e; env != nil; env = env.parent {
		n++
	}
	return n
}

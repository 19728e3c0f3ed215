package evaluator

import (
	"sort"
	"sync"
)

// Binding is one named slot. Mutable records `let mut` but assignment is
// not restricted by it.
type Binding struct {
	Value   Object
	Mutable bool
}

// Environment is one lexical scope. Scopes are created for blocks, calls,
// loop iterations and match arms and chained by pointer; closures keep the
// pointer, so later assignments in the scope are visible to them.
type Environment struct {
	mu    sync.RWMutex
	store map[string]*Binding
	outer *Environment
}

func NewEnvironment() *Environment {
	return &Environment{store: make(map[string]*Binding)}
}

func NewEnclosedEnvironment(outer *Environment) *Environment {
	env := NewEnvironment()
	env.outer = outer
	return env
}

// Outer exposes the lexical parent (nil for the outermost scope).
func (e *Environment) Outer() *Environment {
	return e.outer
}

// Define inserts or shadows a binding in the current scope.
func (e *Environment) Define(name string, val Object) {
	e.DefineMutable(name, val, false)
}

func (e *Environment) DefineMutable(name string, val Object, mutable bool) {
	e.mu.Lock()
	e.store[name] = &Binding{Value: val, Mutable: mutable}
	e.mu.Unlock()
}

// Assign updates the nearest enclosing binding of name. It reports false
// when no scope defines it; assignment never creates a binding.
func (e *Environment) Assign(name string, val Object) bool {
	for env := e; env != nil; env = env.outer {
		env.mu.Lock()
		if b, ok := env.store[name]; ok {
			b.Value = val
			env.mu.Unlock()
			return true
		}
		env.mu.Unlock()
	}
	return false
}

// Get retrieves a binding, searching outward through the scope chain.
func (e *Environment) Get(name string) (Object, bool) {
	for env := e; env != nil; env = env.outer {
		env.mu.RLock()
		b, ok := env.store[name]
		env.mu.RUnlock()
		if ok {
			return b.Value, true
		}
	}
	return nil, false
}

// GetLocal looks only in the current scope.
func (e *Environment) GetLocal(name string) (Object, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if b, ok := e.store[name]; ok {
		return b.Value, true
	}
	return nil, false
}

// Lookup is Get with a NameError for unbound names.
func (e *Environment) Lookup(name string) (Object, *Error) {
	if v, ok := e.Get(name); ok {
		return v, nil
	}
	return nil, newError(NameError, "undefined variable '%s'", name)
}

// IsMutable reports whether the nearest binding of name was declared mut.
func (e *Environment) IsMutable(name string) bool {
	for env := e; env != nil; env = env.outer {
		env.mu.RLock()
		b, ok := env.store[name]
		env.mu.RUnlock()
		if ok {
			return b.Mutable
		}
	}
	return false
}

// Names returns the names bound in this scope only, sorted.
func (e *Environment) Names() []string {
	e.mu.RLock()
	keys := make([]string, 0, len(e.store))
	for k := range e.store {
		keys = append(keys, k)
	}
	e.mu.RUnlock()
	sort.Strings(keys)
	return keys
}

// Snapshot copies this scope's bindings (values are shared, not cloned).
func (e *Environment) Snapshot() map[string]Binding {
	e.mu.RLock()
	out := make(map[string]Binding, len(e.store))
	for k, b := range e.store {
		out[k] = *b
	}
	e.mu.RUnlock()
	return out
}

// Restore replaces this scope's bindings with snap. Existing Binding
// slots are reused so closures that resolved a name keep seeing it.
func (e *Environment) Restore(snap map[string]Binding) {
	e.mu.Lock()
	for k := range e.store {
		if _, ok := snap[k]; !ok {
			delete(e.store, k)
		}
	}
	for k, b := range snap {
		if slot, ok := e.store[k]; ok {
			*slot = b
			continue
		}
		nb := b
		e.store[k] = &nb
	}
	e.mu.Unlock()
}

// Clear removes every binding in this scope.
func (e *Environment) Clear() {
	e.mu.Lock()
	e.store = make(map[string]*Binding)
	e.mu.Unlock()
}

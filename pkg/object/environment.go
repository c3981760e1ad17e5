package object

import "maps"

// Environment is one scope: a name to value map plus a link to the
// enclosing scope. The global scope has no outer link.
type Environment struct {
	store map[string]Object
	outer *Environment
}

func NewEnvironment() *Environment {
	return &Environment{store: make(map[string]Object)}
}

func NewEnclosedEnvironment(outer *Environment) *Environment {
	env := NewEnvironment()
	env.outer = outer
	return env
}

// Get resolves name starting at e and walking outward.
func (e *Environment) Get(name string) (Object, bool) {
	obj, ok := e.store[name]
	if !ok && e.outer != nil {
		obj, ok = e.outer.Get(name)
	}
	return obj, ok
}

// Declare binds name in e itself, shadowing any outer binding.
func (e *Environment) Declare(name string, val Object) Object {
	e.store[name] = val
	return val
}

// Assign rebinds name in the nearest scope that holds it. A name bound
// nowhere is declared in e.
func (e *Environment) Assign(name string, val Object) Object {
	for env := e; env != nil; env = env.outer {
		if _, ok := env.store[name]; ok {
			env.store[name] = val
			return val
		}
	}
	e.store[name] = val
	return val
}

// Snapshot copies e's own bindings into a new scope that shares e's outer
// link. Later writes to e are not seen through the copy; writes further out
// are.
func (e *Environment) Snapshot() *Environment {
	return &Environment{store: maps.Clone(e.store), outer: e.outer}
}

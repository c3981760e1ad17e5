// Package object holds the runtime values of napkin programs and the
// scope chain they are bound in.
package object

import (
	"fmt"

	"napkin/pkg/ast"
)

// Object is the interface that all napkin values implement. Inspect returns
// the text written by output and by interactive echo.
type Object interface {
	Kind() ObjectKind
	Inspect() string
}

// Callable is implemented by closures and builtins.
type Callable interface {
	Object
	Arity() int
}

type Real struct {
	Value float64
}

func (r *Real) Kind() ObjectKind { return KindReal }
func (r *Real) Inspect() string  { return fmt.Sprintf("%f", r.Value) }

type Complex struct {
	Re float64
	Im float64
}

func (c *Complex) Kind() ObjectKind { return KindComplex }
func (c *Complex) Inspect() string  { return fmt.Sprintf("%f + j%f", c.Re, c.Im) }

type Boolean struct {
	Value bool
}

func (b *Boolean) Kind() ObjectKind { return KindBoolean }
func (b *Boolean) Inspect() string  { return fmt.Sprintf("%t", b.Value) }

type String struct {
	Value string
}

func (s *String) Kind() ObjectKind { return KindString }
func (s *String) Inspect() string  { return s.Value }

// Closure pairs a lambda with the scope it was created in. Env is a private
// copy of that scope's bindings, see Environment.Snapshot.
type Closure struct {
	Lambda *ast.LambdaLiteral
	Env    *Environment
}

func (c *Closure) Kind() ObjectKind { return KindClosure }
func (c *Closure) Inspect() string  { return "<closure>" }
func (c *Closure) Arity() int       { return len(c.Lambda.Parameters) }

// BuiltinFunction is a host function bound in the global scope.
type BuiltinFunction struct {
	Name    string
	NumArgs int
	Fn      func(args []Object) (Object, error)
}

func (b *BuiltinFunction) Kind() ObjectKind { return KindBuiltin }
func (b *BuiltinFunction) Inspect() string  { return "<native function " + b.Name + ">" }
func (b *BuiltinFunction) Arity() int       { return b.NumArgs }

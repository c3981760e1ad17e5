// Package eval walks napkin syntax trees and executes them against a
// persistent global scope.
package eval

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/oarkflow/log"

	"napkin/pkg/ast"
	"napkin/pkg/diag"
	"napkin/pkg/object"
	"napkin/pkg/operator"
)

type Interpreter struct {
	globals *object.Environment

	out         io.Writer
	in          *lineReader
	exit        func(code int)
	now         func() time.Time
	logger      *log.Logger
	interactive bool
}

// New returns an interpreter whose global scope holds the native
// functions millis, getline, exit and exit_status.
func New(opts ...Option) *Interpreter {
	in := &Interpreter{globals: object.NewEnvironment()}
	for _, opt := range append(defaults(), opts...) {
		opt(in)
	}
	in.registerBuiltins(in.globals)
	return in
}

// Interpret executes the program's statements in order and returns the
// value of the last one, or nil when it produced none. Execution stops at
// the first error.
func (in *Interpreter) Interpret(program *ast.Program) (object.Object, error) {
	in.logger.Debug().Int("statements", len(program.Statements)).Msg("interpreting program")

	var result object.Object
	for _, stmt := range program.Statements {
		val, err := in.Eval(stmt, in.globals)
		if err != nil {
			return nil, err
		}
		if _, ok := stmt.(*ast.ExpressionStatement); ok && in.interactive && val != nil {
			fmt.Fprintln(in.out, val.Inspect())
		}
		result = val
	}
	return result, nil
}

// Eval evaluates node in env. Statements that produce no value return a
// nil Object; expressions always return one.
func (in *Interpreter) Eval(node ast.Node, env *object.Environment) (object.Object, error) {
	switch node := node.(type) {
	// Statements
	case *ast.Program:
		var result object.Object
		for _, stmt := range node.Statements {
			val, err := in.Eval(stmt, env)
			if err != nil {
				return nil, err
			}
			result = val
		}
		return result, nil

	case *ast.ExpressionStatement:
		return in.Eval(node.Expression, env)

	case *ast.OutputStatement:
		val, err := in.Eval(node.Value, env)
		if err != nil {
			return nil, err
		}
		fmt.Fprintln(in.out, val.Inspect())
		return nil, nil

	case *ast.BlockStatement:
		return in.evalBlock(node, object.NewEnclosedEnvironment(env))

	case *ast.IfStatement:
		truthy, err := in.evalCondition(node.Condition, env)
		if err != nil {
			return nil, err
		}
		if truthy {
			return in.Eval(node.Consequence, env)
		} else if node.Alternative != nil {
			return in.Eval(node.Alternative, env)
		}
		return nil, nil

	case *ast.WhileStatement:
		for {
			truthy, err := in.evalCondition(node.Condition, env)
			if err != nil {
				return nil, err
			}
			if !truthy {
				return nil, nil
			}
			if _, err := in.Eval(node.Body, env); err != nil {
				return nil, err
			}
		}

	// Expressions
	case *ast.DeclareExpression:
		val, err := in.Eval(node.Value, env)
		if err != nil {
			return nil, err
		}
		return env.Declare(node.Name.Value, val), nil

	case *ast.AssignExpression:
		val, err := in.Eval(node.Value, env)
		if err != nil {
			return nil, err
		}
		return env.Assign(node.Name.Value, val), nil

	case *ast.InfixExpression:
		left, err := in.Eval(node.Left, env)
		if err != nil {
			return nil, err
		}
		right, err := in.Eval(node.Right, env)
		if err != nil {
			return nil, err
		}
		fn, ok := operator.Binary[node.Operator]
		if !ok {
			return nil, diag.Internalf("binary operator %q not handled", node.Operator)
		}
		return fn(left, right)

	case *ast.PrefixExpression:
		right, err := in.Eval(node.Right, env)
		if err != nil {
			return nil, err
		}
		fn, ok := operator.Unary[node.Operator]
		if !ok {
			return nil, diag.Internalf("unary operator %q not handled", node.Operator)
		}
		return fn(right)

	case *ast.GroupedExpression:
		return in.Eval(node.Inner, env)

	case *ast.CallExpression:
		return in.evalCall(node, env)

	case *ast.LambdaLiteral:
		return &object.Closure{Lambda: node, Env: env.Snapshot()}, nil

	case *ast.Identifier:
		val, ok := env.Get(node.Value)
		if !ok {
			return nil, diag.Runtimef("undefined variable '%s'", node.Value)
		}
		return val, nil

	case *ast.RealLiteral:
		return &object.Real{Value: node.Value}, nil

	case *ast.ImaginaryLiteral:
		return &object.Complex{Re: 0, Im: node.Value}, nil

	case *ast.StringLiteral:
		return &object.String{Value: node.Value}, nil

	case *ast.Boolean:
		return object.NativeBool(node.Value), nil

	case *ast.KeywordConstant:
		switch node.Name {
		case "pi":
			return &object.Real{Value: math.Pi}, nil
		case "euler":
			return &object.Real{Value: math.E}, nil
		}
		return nil, diag.Internalf("keyword constant %q not handled", node.Name)
	}

	return nil, diag.Internalf("unhandled node %T", node)
}

// evalBlock runs the block's statements in scope and returns the value of
// the last one.
func (in *Interpreter) evalBlock(block *ast.BlockStatement, scope *object.Environment) (object.Object, error) {
	var result object.Object
	for _, stmt := range block.Statements {
		val, err := in.Eval(stmt, scope)
		if err != nil {
			return nil, err
		}
		result = val
	}
	return result, nil
}

func (in *Interpreter) evalCondition(cond ast.Expression, env *object.Environment) (bool, error) {
	val, err := in.Eval(cond, env)
	if err != nil {
		return false, err
	}
	return operator.IsTruthy(val)
}

func (in *Interpreter) evalCall(node *ast.CallExpression, env *object.Environment) (object.Object, error) {
	callee, err := in.Eval(node.Function, env)
	if err != nil {
		return nil, err
	}

	args := make([]object.Object, 0, len(node.Arguments))
	for _, a := range node.Arguments {
		val, err := in.Eval(a, env)
		if err != nil {
			return nil, err
		}
		args = append(args, val)
	}

	fn, ok := callee.(object.Callable)
	if !ok {
		return nil, diag.Runtimef("object not callable")
	}
	if fn.Arity() != len(args) {
		return nil, diag.Runtimef("expected %d arguments but got %d", fn.Arity(), len(args))
	}

	switch fn := fn.(type) {
	case *object.Closure:
		return in.applyClosure(fn, args)
	case *object.BuiltinFunction:
		return fn.Fn(args)
	}
	return nil, diag.Internalf("callable %s not handled", callee.Kind())
}

// applyClosure binds the arguments in a fresh scope chained to the
// closure's captured scope and runs the body there.
func (in *Interpreter) applyClosure(fn *object.Closure, args []object.Object) (object.Object, error) {
	in.logger.Debug().Int("args", len(args)).Msg("calling closure")

	scope := object.NewEnclosedEnvironment(fn.Env)
	for i, param := range fn.Lambda.Parameters {
		scope.Declare(param.Value, args[i])
	}

	result, err := in.evalBlock(fn.Lambda.Body, scope)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, diag.Runtimef("closure produced no value")
	}
	return result, nil
}

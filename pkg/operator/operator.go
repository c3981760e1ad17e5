// Package operator implements napkin's arithmetic, comparison and logical
// operators over the numeric tower. A Real is promoted to a Complex with a
// zero imaginary part only when the other operand is Complex.
package operator

import (
	"math"

	"napkin/pkg/diag"
	"napkin/pkg/object"
)

// complexParts returns obj as (re, im). ok is false for non-numeric values.
func complexParts(obj object.Object) (re, im float64, ok bool) {
	switch v := obj.(type) {
	case *object.Real:
		return v.Value, 0, true
	case *object.Complex:
		return v.Re, v.Im, true
	}
	return 0, 0, false
}

func bothReal(left, right object.Object) (l, r float64, ok bool) {
	lv, lok := left.(*object.Real)
	rv, rok := right.(*object.Real)
	if !lok || !rok {
		return 0, 0, false
	}
	return lv.Value, rv.Value, true
}

func Add(left, right object.Object) (object.Object, error) {
	if ls, ok := left.(*object.String); ok {
		if rs, ok := right.(*object.String); ok {
			return &object.String{Value: ls.Value + rs.Value}, nil
		}
	}

	if l, r, ok := bothReal(left, right); ok {
		return &object.Real{Value: l + r}, nil
	}
	lre, lim, lok := complexParts(left)
	rre, rim, rok := complexParts(right)
	if !lok || !rok {
		return nil, diag.Runtimef("invalid operands for addition/subtraction")
	}
	return &object.Complex{Re: lre + rre, Im: lim + rim}, nil
}

// Subtract is Add with the right operand negated.
func Subtract(left, right object.Object) (object.Object, error) {
	if !left.Kind().IsNumeric() || !right.Kind().IsNumeric() {
		return nil, diag.Runtimef("invalid operands for addition/subtraction")
	}
	neg, err := Negate(right)
	if err != nil {
		return nil, err
	}
	return Add(left, neg)
}

func Negate(right object.Object) (object.Object, error) {
	switch v := right.(type) {
	case *object.Real:
		return &object.Real{Value: -v.Value}, nil
	case *object.Complex:
		return &object.Complex{Re: -v.Re, Im: -v.Im}, nil
	}
	return nil, diag.Runtimef("invalid operand for unary negation")
}

func Multiply(left, right object.Object) (object.Object, error) {
	if l, r, ok := bothReal(left, right); ok {
		return &object.Real{Value: l * r}, nil
	}
	a, b, lok := complexParts(left)
	c, d, rok := complexParts(right)
	if !lok || !rok {
		return nil, diag.Runtimef("invalid operands for multiplication/division")
	}
	return &object.Complex{Re: a*c - b*d, Im: a*d + b*c}, nil
}

// Divide follows IEEE semantics: dividing by zero, real or complex, yields
// an infinity or NaN rather than an error.
func Divide(left, right object.Object) (object.Object, error) {
	if l, r, ok := bothReal(left, right); ok {
		return &object.Real{Value: l / r}, nil
	}
	a, b, lok := complexParts(left)
	c, d, rok := complexParts(right)
	if !lok || !rok {
		return nil, diag.Runtimef("invalid operands for multiplication/division")
	}
	if _, ok := right.(*object.Real); ok {
		return &object.Complex{Re: a / c, Im: b / c}, nil
	}
	divisor := c*c + d*d
	return &object.Complex{Re: (a*c + b*d) / divisor, Im: (b*c - a*d) / divisor}, nil
}

// Power is defined for two reals only.
func Power(left, right object.Object) (object.Object, error) {
	l, r, ok := bothReal(left, right)
	if !ok {
		return nil, diag.Runtimef("invalid operands for exponentiation")
	}
	if l == 0 && r == 0 {
		return nil, diag.Runtimef("can't raise zero to the power of zero")
	}
	return &object.Real{Value: math.Pow(l, r)}, nil
}

// J multiplies the operand by the imaginary unit.
func J(right object.Object) (object.Object, error) {
	if !right.Kind().IsNumeric() {
		return nil, diag.Runtimef("invalid operand for 'j' operator")
	}
	return Multiply(&object.Complex{Re: 0, Im: 1}, right)
}

func Mag(right object.Object) (object.Object, error) {
	re, im, ok := complexParts(right)
	if !ok {
		return nil, diag.Runtimef("invalid operand for 'mag' operator")
	}
	return &object.Real{Value: math.Hypot(re, im)}, nil
}

func Re(right object.Object) (object.Object, error) {
	re, _, ok := complexParts(right)
	if !ok {
		return nil, diag.Runtimef("invalid operand for 're' operator")
	}
	return &object.Real{Value: re}, nil
}

func Im(right object.Object) (object.Object, error) {
	_, im, ok := complexParts(right)
	if !ok {
		return nil, diag.Runtimef("invalid operand for 'im' operator")
	}
	return &object.Real{Value: im}, nil
}

func AngleOf(right object.Object) (object.Object, error) {
	re, im, ok := complexParts(right)
	if !ok {
		return nil, diag.Runtimef("invalid operand for 'angleOf' operator")
	}
	return &object.Real{Value: math.Atan2(im, re)}, nil
}

// IsTruthy reports the truth value of obj. Zero, 0 + j0, false and the
// empty string are falsy. Callables have no truth value; asking for one
// is an internal error.
func IsTruthy(obj object.Object) (bool, error) {
	switch v := obj.(type) {
	case *object.Real:
		return v.Value != 0, nil
	case *object.Complex:
		return v.Re != 0 || v.Im != 0, nil
	case *object.Boolean:
		return v.Value, nil
	case *object.String:
		return v.Value != "", nil
	}
	return false, diag.Internalf("truthiness of %s is undefined", obj.Kind())
}

func Not(right object.Object) (object.Object, error) {
	truthy, err := IsTruthy(right)
	if err != nil {
		return nil, err
	}
	return object.NativeBool(!truthy), nil
}

// Or and And evaluate nothing themselves; both operands arrive already
// evaluated.
func Or(left, right object.Object) (object.Object, error) {
	l, lerr := IsTruthy(left)
	r, rerr := IsTruthy(right)
	if lerr != nil || rerr != nil {
		return nil, diag.Runtimef("invalid operands for logical 'or'")
	}
	return object.NativeBool(l || r), nil
}

func And(left, right object.Object) (object.Object, error) {
	l, lerr := IsTruthy(left)
	r, rerr := IsTruthy(right)
	if lerr != nil || rerr != nil {
		return nil, diag.Runtimef("invalid operands for logical 'and'")
	}
	return object.NativeBool(l && r), nil
}

// Equal compares truth values and is only defined when at least one side
// is a Boolean. Two numbers or two strings cannot be compared.
func Equal(left, right object.Object) (object.Object, error) {
	eq, err := equal(left, right, "==")
	if err != nil {
		return nil, err
	}
	return object.NativeBool(eq), nil
}

func NotEqual(left, right object.Object) (object.Object, error) {
	eq, err := equal(left, right, "!=")
	if err != nil {
		return nil, err
	}
	return object.NativeBool(!eq), nil
}

func equal(left, right object.Object, op string) (bool, error) {
	if left.Kind() != object.KindBoolean && right.Kind() != object.KindBoolean {
		return false, diag.Runtimef("invalid operands for '%s' operator", op)
	}
	l, err := IsTruthy(left)
	if err != nil {
		return false, err
	}
	r, err := IsTruthy(right)
	if err != nil {
		return false, err
	}
	return l == r, nil
}

func Less(left, right object.Object) (object.Object, error) {
	return compare(left, right, "<", func(l, r float64) bool { return l < r })
}

func Greater(left, right object.Object) (object.Object, error) {
	return compare(left, right, ">", func(l, r float64) bool { return l > r })
}

func LessEqual(left, right object.Object) (object.Object, error) {
	return compare(left, right, "<=", func(l, r float64) bool { return l <= r })
}

func GreaterEqual(left, right object.Object) (object.Object, error) {
	return compare(left, right, ">=", func(l, r float64) bool { return l >= r })
}

// compare orders two reals. Complex numbers are unordered.
func compare(left, right object.Object, op string, cmp func(l, r float64) bool) (object.Object, error) {
	if left.Kind() == object.KindComplex || right.Kind() == object.KindComplex {
		return nil, diag.Runtimef("'%s' operator does not support complex numbers", op)
	}
	l, r, ok := bothReal(left, right)
	if !ok {
		return nil, diag.Runtimef("invalid operands for '%s' operator", op)
	}
	return object.NativeBool(cmp(l, r)), nil
}

// Binary and Unary map operator spellings to their implementations.
var (
	Binary = map[string]func(left, right object.Object) (object.Object, error){
		"+":   Add,
		"-":   Subtract,
		"*":   Multiply,
		"/":   Divide,
		"**":  Power,
		"==":  Equal,
		"!=":  NotEqual,
		"<":   Less,
		">":   Greater,
		"<=":  LessEqual,
		">=":  GreaterEqual,
		"or":  Or,
		"and": And,
	}

	Unary = map[string]func(right object.Object) (object.Object, error){
		"-":       Negate,
		"!":       Not,
		"not":     Not,
		"j":       J,
		"mag":     Mag,
		"re":      Re,
		"im":      Im,
		"angleOf": AngleOf,
	}
)

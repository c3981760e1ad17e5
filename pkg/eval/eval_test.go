package eval

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"napkin/pkg/diag"
	"napkin/pkg/lexer"
	"napkin/pkg/object"
	"napkin/pkg/parser"
)

func run(t *testing.T, input string, opts ...Option) (string, object.Object, error) {
	t.Helper()
	p := parser.New(lexer.New(input))
	program := p.ParseProgram()
	if err := p.Err(); err != nil {
		t.Fatalf("parse %q: %v", input, err)
	}

	var out bytes.Buffer
	in := New(append([]Option{WithStdout(&out), WithExit(func(int) {})}, opts...)...)
	result, err := in.Interpret(program)
	return out.String(), result, err
}

func testOutput(t *testing.T, input, expected string) {
	t.Helper()
	out, _, err := run(t, input)
	if err != nil {
		t.Fatalf("input %q: unexpected error: %v", input, err)
	}
	if out != expected {
		t.Fatalf("input %q: output wrong. expected=%q, got=%q", input, expected, out)
	}
}

func testError(t *testing.T, input string, category diag.Category, msg string) {
	t.Helper()
	_, _, err := run(t, input)
	if err == nil {
		t.Fatalf("input %q: expected error %q, got none", input, msg)
	}
	de, ok := err.(*diag.Error)
	if !ok {
		t.Fatalf("input %q: error is not *diag.Error. got=%T (%v)", input, err, err)
	}
	if de.Category != category || de.Msg != msg {
		t.Fatalf("input %q: wrong error. want %s %q, got=%s %q", input, category, msg, de.Category, de.Msg)
	}
}

func TestOutputStatement(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`output "Hello"`, "Hello\n"},
		{"output 3 + 4", "7.000000\n"},
		{"output 1 + j2", "1.000000 + j2.000000\n"},
		{"output j 3", "0.000000 + j3.000000\n"},
		{"output 2 ** 3 ** 2", "512.000000\n"},
		{"output -2 ** 2", "4.000000\n"},
		{"output 1 + 2 * 3", "7.000000\n"},
		{"output (1 + 2) * 3", "9.000000\n"},
		{"output true", "true\n"},
		{"output not 0", "true\n"},
		{"output 1 < 2 and 3 >= 3", "true\n"},
		{`output "" or 0`, "false\n"},
		{`output "foo" + "bar"`, "foobar\n"},
		{"output mag (3 + j4)", "5.000000\n"},
		{"output re (3 + j4); output im (3 + j4)", "3.000000\n4.000000\n"},
		{"output -> (x) { x }", "<closure>\n"},
		{"output millis", "<native function millis>\n"},
		{"output pi > 3.14 and e < 2.72", "true\n"},
	}

	for _, tt := range tests {
		testOutput(t, tt.input, tt.expected)
	}
}

func TestDeclarationVersusAssignment(t *testing.T) {
	testOutput(t, "x := 1\n{\n  x = 2\n}\noutput x\n", "2.000000\n")
	testOutput(t, "x := 1\n{\n  x := 2\n  output x\n}\noutput x\n", "2.000000\n1.000000\n")
	testOutput(t, "x := 1\n{ { x = 3 } }\noutput x\n", "3.000000\n")
}

func TestAssignmentToUndeclaredNameIsLocal(t *testing.T) {
	testOutput(t, "y = 4\noutput y\n", "4.000000\n")
	testOutput(t, "{ z = 1; output z }\n", "1.000000\n")
	testError(t, "{ z = 1 }\noutput z\n", diag.Runtime, "undefined variable 'z'")
}

func TestAssignmentIsAnExpression(t *testing.T) {
	testOutput(t, "a := b := 5\noutput a + b\n", "10.000000\n")
	testOutput(t, "a := 1\noutput a = 7\noutput a\n", "7.000000\n7.000000\n")
}

func TestIfElse(t *testing.T) {
	input := `
classify := -> (n) {
  if n < 0 "negative"
  else if n < 10 "small"
  else "large"
}
output classify(-1)
output classify(5)
output classify(50)
`
	testOutput(t, input, "negative\nsmall\nlarge\n")
	testOutput(t, "if 0 output 1\noutput 2\n", "2.000000\n")
}

func TestWhileLoop(t *testing.T) {
	input := `
i := 0
total := 0
while i < 5 {
  i = i + 1
  total = total + i
}
output total
`
	testOutput(t, input, "15.000000\n")
}

func TestClosures(t *testing.T) {
	input := `
add := -> (a, b) { a + b }
output add(2, 3)
twice := -> (f, x) { f(f(x)) }
output twice(-> (n) { n * 2 }, 5)
`
	testOutput(t, input, "5.000000\n20.000000\n")

	// calls on call results
	testOutput(t, "adder := -> (a) { -> (b) { a + b } }\noutput adder(1)(2)\n", "3.000000\n")
}

func TestClosureSnapshotsEnclosingScope(t *testing.T) {
	// The closure copies the block scope it was created in, so a later
	// write to x in that scope is not visible.
	input := `
{
  x := 1
  f := -> { x }
  x = 2
  output f()
}
`
	testOutput(t, input, "1.000000\n")

	// Scopes further out stay shared: g lives in globals, outside the
	// copied block scope.
	input = `
g := 1
{
  f := -> { g }
  g = 2
  output f()
}
`
	testOutput(t, input, "2.000000\n")
}

func TestRecursionThroughOuterScope(t *testing.T) {
	input := `
fact := 0
{
  fact = -> (n) {
    if n < 2 1
    else n * fact(n - 1)
  }
}
output fact(5)
`
	testOutput(t, input, "120.000000\n")

	testError(t, "f := -> (n) { f(n) }\nf(1)\n", diag.Runtime, "undefined variable 'f'")
}

func TestRuntimeErrors(t *testing.T) {
	tests := []struct {
		input    string
		category diag.Category
		msg      string
	}{
		{"output x", diag.Runtime, "undefined variable 'x'"},
		{"f := -> (a, b) { a }\nf(1)", diag.Runtime, "expected 2 arguments but got 1"},
		{"millis(1)", diag.Runtime, "expected 0 arguments but got 1"},
		{"5(1)", diag.Runtime, "object not callable"},
		{`"a"()`, diag.Runtime, "object not callable"},
		{"1 == 1", diag.Runtime, "invalid operands for '==' operator"},
		{"0 ** 0", diag.Runtime, "can't raise zero to the power of zero"},
		{"j1 < 2", diag.Runtime, "'<' operator does not support complex numbers"},
		{`"a" * 2`, diag.Runtime, "invalid operands for multiplication/division"},
		{"-> { output 1 }()", diag.Runtime, "closure produced no value"},
		{"if millis output 1", diag.Internal, "truthiness of BUILTIN is undefined"},
		{"millis or true", diag.Runtime, "invalid operands for logical 'or'"},
		{`exit_status("x")`, diag.Runtime, "exit_status expects a real number, got STRING"},
		{"exit_status(1 / 0)", diag.Runtime, "exit_status expects a finite number"},
		{"exit_status(0 / 0)", diag.Runtime, "exit_status expects a finite number"},
	}

	for _, tt := range tests {
		testError(t, tt.input, tt.category, tt.msg)
	}
}

func TestErrorStopsExecution(t *testing.T) {
	out, _, err := run(t, "output 1\noutput y\noutput 3\n")
	if err == nil {
		t.Fatalf("expected error")
	}
	if out != "1.000000\n" {
		t.Fatalf("statements after the error ran. got=%q", out)
	}
}

func TestStrictLogicalOperators(t *testing.T) {
	// The right operand runs even though the left one decides the result.
	input := `
bump := -> { output "evaluated"; true }
r := true or bump()
output r
`
	testOutput(t, input, "evaluated\ntrue\n")
}

func TestInteractiveEcho(t *testing.T) {
	out, _, err := run(t, "x := 2\nx + 1\noutput \"shown\"\n{ 5 }\n", WithInteractive(true))
	if err != nil {
		t.Fatal(err)
	}
	expected := "2.000000\n3.000000\nshown\n"
	if out != expected {
		t.Fatalf("echo wrong. expected=%q, got=%q", expected, out)
	}
}

func TestInterpretReturnsLastValue(t *testing.T) {
	_, result, err := run(t, "1 + 1\n2 * 4\n")
	if err != nil {
		t.Fatal(err)
	}
	if r, ok := result.(*object.Real); !ok || r.Value != 8 {
		t.Fatalf("result wrong. got=%v", result)
	}
}

func TestGlobalsPersistAcrossPrograms(t *testing.T) {
	var out bytes.Buffer
	in := New(WithStdout(&out))

	for _, src := range []string{"x := 10", "x = x * 2", "output x"} {
		p := parser.New(lexer.New(src))
		if _, err := in.Interpret(p.ParseProgram()); err != nil {
			t.Fatalf("%q: %v", src, err)
		}
	}
	if out.String() != "20.000000\n" {
		t.Fatalf("output wrong. got=%q", out.String())
	}
}

func TestBuiltins(t *testing.T) {
	clock := func() time.Time { return time.UnixMilli(1234) }
	testOutputWith := func(input, expected string, opts ...Option) {
		t.Helper()
		out, _, err := run(t, input, opts...)
		if err != nil {
			t.Fatalf("input %q: %v", input, err)
		}
		if out != expected {
			t.Fatalf("input %q: expected=%q, got=%q", input, expected, out)
		}
	}

	testOutputWith("output millis()", "1234.000000\n", WithClock(clock))
	testOutputWith("output getline()\noutput getline()\noutput getline()",
		"first\nsecond\n\n", WithStdin(strings.NewReader("first\r\nsecond")))
}

func TestExitHook(t *testing.T) {
	var code = -1
	hook := WithExit(func(c int) { code = c })

	out, _, err := run(t, "output 1\nexit_status(3.9)\noutput 2\n", hook)
	status, ok := IsExit(err)
	if !ok || status != 3 || code != 3 {
		t.Fatalf("exit status wrong. err=%v code=%d", err, code)
	}
	if out != "1.000000\n" {
		t.Fatalf("execution continued after exit. got=%q", out)
	}

	tests := []struct {
		input    string
		expected int
	}{
		{"exit_status(-2.5)", -2},
		{"exit_status(2 ** 40)", math.MaxInt32},
		{"exit_status(-(2 ** 40))", math.MinInt32},
	}
	for _, tt := range tests {
		_, _, err = run(t, tt.input, hook)
		if status, ok := IsExit(err); !ok || status != tt.expected || code != tt.expected {
			t.Fatalf("input %q: exit status wrong. want %d, err=%v code=%d", tt.input, tt.expected, err, code)
		}
	}

	_, _, err = run(t, "exit()", hook)
	if status, ok := IsExit(err); !ok || status != 0 || code != 0 {
		t.Fatalf("exit() status wrong. err=%v code=%d", err, code)
	}
}

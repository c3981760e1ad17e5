package repl

import (
	"bytes"
	"strings"
	"testing"
)

func runSession(t *testing.T, input string) (string, int) {
	t.Helper()
	var out bytes.Buffer
	s := New(strings.NewReader(input), &out, Options{Prompt: "> "})
	code, err := s.Run()
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	return out.String(), code
}

func TestSessionEchoesExpressions(t *testing.T) {
	out, _ := runSession(t, "x := 2\nx * 3\noutput \"hi\"\n")

	expected := "> 2.000000\n> 6.000000\n> hi\n> \n"
	if out != expected {
		t.Fatalf("output wrong.\nexpected=%q\ngot=%q", expected, out)
	}
}

func TestSessionContinuesAfterErrors(t *testing.T) {
	out, _ := runSession(t, "output y\n1 == 1\n(1 + \noutput 5\n")

	for _, want := range []string{
		"napkin runtime error: undefined variable 'y'",
		"napkin runtime error: invalid operands for '==' operator",
		"napkin internal error at 1:6",
		"5.000000",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q.\ngot=%q", want, out)
		}
	}
}

func TestSessionMultiLineBlocks(t *testing.T) {
	out, _ := runSession(t, "f := -> (x) {\n  x * 2\n}\nf(4)\n")

	if !strings.Contains(out, ContinuationPrompt) {
		t.Fatalf("expected a continuation prompt. got=%q", out)
	}
	if !strings.Contains(out, "8.000000\n") {
		t.Fatalf("expected f(4) to echo 8. got=%q", out)
	}
}

func TestSessionUnclosedBlockAtEOF(t *testing.T) {
	out, _ := runSession(t, "{ output 1\n")

	if !strings.Contains(out, "expected '}' after block") {
		t.Fatalf("expected unclosed block error. got=%q", out)
	}
}

func TestSessionExit(t *testing.T) {
	var hooked = -1
	var out bytes.Buffer
	s := New(strings.NewReader("output 1\nexit_status(4)\noutput 2\n"), &out, Options{
		Exit: func(code int) { hooked = code },
	})

	code, err := s.Run()
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if code != 4 || hooked != 4 {
		t.Fatalf("exit status wrong. code=%d hooked=%d", code, hooked)
	}
	if strings.Contains(out.String(), "2.000000") {
		t.Fatalf("session continued after exit: %q", out.String())
	}
}

func TestSessionGetlineSharesInput(t *testing.T) {
	out, _ := runSession(t, "name := getline()\nAda\noutput \"hello \" + name\n")

	if !strings.Contains(out, "hello Ada\n") {
		t.Fatalf("getline did not read the next input line. got=%q", out)
	}
}

func TestBanner(t *testing.T) {
	var out bytes.Buffer
	s := New(strings.NewReader(""), &out, Options{Banner: true})
	if _, err := s.Run(); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out.String(), "napkin ") {
		t.Fatalf("banner missing. got=%q", out.String())
	}
}

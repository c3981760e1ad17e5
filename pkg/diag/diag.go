// Package diag defines the categorized errors produced while lexing, parsing
// and interpreting napkin source, and renders them with a caret under the
// offending column when a position is known.
package diag

import (
	"errors"
	"fmt"
	"strings"
)

// Category classifies an error by the stage that produced it.
type Category uint8

const (
	Lex Category = iota + 1
	Parse
	Runtime
	// Internal marks a broken invariant inside napkin itself rather than
	// a mistake in the user's program.
	Internal
)

func (c Category) String() string {
	switch c {
	case Lex:
		return "lexer"
	case Parse:
		return "parser"
	case Runtime:
		return "runtime"
	case Internal:
		return "internal"
	default:
		return "unknown"
	}
}

// Error is the single error type used across napkin. Line and Column are
// 1-based; zero means the position is unknown.
type Error struct {
	Category Category
	Msg      string
	Line     int
	Column   int
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("napkin %s error: %s (line %d, column %d)", e.Category, e.Msg, e.Line, e.Column)
	}
	return fmt.Sprintf("napkin %s error: %s", e.Category, e.Msg)
}

// HasPosition reports whether the error points at a source location.
func (e *Error) HasPosition() bool { return e.Line > 0 }

func Lexf(line, col int, format string, a ...any) *Error {
	return &Error{Category: Lex, Msg: fmt.Sprintf(format, a...), Line: line, Column: col}
}

func Parsef(line, col int, format string, a ...any) *Error {
	return &Error{Category: Parse, Msg: fmt.Sprintf(format, a...), Line: line, Column: col}
}

// Runtimef builds a runtime error. Runtime errors carry no position.
func Runtimef(format string, a ...any) *Error {
	return &Error{Category: Runtime, Msg: fmt.Sprintf(format, a...)}
}

func Internalf(format string, a ...any) *Error {
	return &Error{Category: Internal, Msg: fmt.Sprintf(format, a...)}
}

// IsCategory reports whether err, or anything it wraps, is a *Error of
// category c.
func IsCategory(err error, c Category) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Category == c
	}
	return false
}

// CategoryOf returns the category of err, or 0 when err is not a *Error.
func CategoryOf(err error) Category {
	var de *Error
	if errors.As(err, &de) {
		return de.Category
	}
	return 0
}

// Snippet renders err against src. Positioned errors get a header, up to one
// line of context on each side, and a caret under the column:
//
//	napkin parser error at 2:7: expected '}' after block
//
//	   1 | f := -> (x) {
//	   2 |   x * 2
//	     |       ^
//
// Errors without a position are rendered as err.Error().
func Snippet(err error, src string) string {
	var de *Error
	if !errors.As(err, &de) || !de.HasPosition() {
		return err.Error()
	}

	lines := strings.Split(src, "\n")
	line := de.Line
	if line > len(lines) {
		line = len(lines)
	}
	col := de.Column
	if col < 1 {
		col = 1
	}

	var b strings.Builder
	fmt.Fprintf(&b, "napkin %s error at %d:%d: %s\n\n", de.Category, de.Line, de.Column, de.Msg)
	if line > 1 {
		fmt.Fprintf(&b, "%4d | %s\n", line-1, lines[line-2])
	}
	fmt.Fprintf(&b, "%4d | %s\n", line, lines[line-1])
	fmt.Fprintf(&b, "     | %s^\n", strings.Repeat(" ", col-1))
	if line < len(lines) {
		fmt.Fprintf(&b, "%4d | %s\n", line+1, lines[line])
	}
	return b.String()
}

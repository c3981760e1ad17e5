package eval

import (
	"io"
	"os"
	"time"

	"github.com/oarkflow/log"
)

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithStdout sets where output statements and interactive echo write.
func WithStdout(w io.Writer) Option {
	return func(in *Interpreter) { in.out = w }
}

// WithStdin sets the reader behind getline.
func WithStdin(r io.Reader) Option {
	return func(in *Interpreter) { in.in = newLineReader(r) }
}

// WithExit sets the hook run by exit and exit_status. The CLI passes
// os.Exit; embedders that must survive a script's exit pass a hook that
// records the code and returns.
func WithExit(fn func(code int)) Option {
	return func(in *Interpreter) { in.exit = fn }
}

// WithClock replaces the wall clock read by millis.
func WithClock(now func() time.Time) Option {
	return func(in *Interpreter) { in.now = now }
}

func WithLogger(logger *log.Logger) Option {
	return func(in *Interpreter) { in.logger = logger }
}

// WithInteractive echoes the value of every top-level expression statement.
func WithInteractive(interactive bool) Option {
	return func(in *Interpreter) { in.interactive = interactive }
}

func defaults() []Option {
	return []Option{
		WithStdout(os.Stdout),
		WithStdin(os.Stdin),
		WithExit(os.Exit),
		WithClock(time.Now),
		WithLogger(defaultLogger()),
	}
}

// defaultLogger is the package default logger raised to info so debug
// tracing stays off unless a caller asks for it.
func defaultLogger() *log.Logger {
	logger := log.DefaultLogger
	logger.Level = log.InfoLevel
	return &logger
}

// Package repl implements napkin's interactive read-eval-print loop over
// any reader and writer, so the same session runs on a terminal or on a
// websocket.
package repl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/oarkflow/log"

	"napkin/pkg/diag"
	"napkin/pkg/eval"
	"napkin/pkg/lexer"
	"napkin/pkg/parser"
	"napkin/pkg/version"
)

const (
	DefaultPrompt      = "napkin> "
	ContinuationPrompt = "...     "
)

var (
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#06B6D4")).Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

type Options struct {
	Prompt string
	Color  bool
	Banner bool
	// Exit runs when the program calls exit or exit_status. Nil ends only
	// the session.
	Exit   func(code int)
	Logger *log.Logger
}

// Session owns one interpreter; globals persist across lines.
type Session struct {
	in     *bufio.Reader
	out    io.Writer
	opts   Options
	interp *eval.Interpreter
	logger *log.Logger
}

func New(in io.Reader, out io.Writer, opts Options) *Session {
	if opts.Prompt == "" {
		opts.Prompt = DefaultPrompt
	}
	if opts.Exit == nil {
		opts.Exit = func(int) {}
	}
	logger := opts.Logger
	if logger == nil {
		l := log.DefaultLogger
		l.Level = log.InfoLevel
		logger = &l
	}

	reader := bufio.NewReader(in)
	s := &Session{in: reader, out: out, opts: opts, logger: logger}
	// getline shares the session's buffered reader so input typed for the
	// program is not swallowed by the prompt loop.
	s.interp = eval.New(
		eval.WithStdout(out),
		eval.WithStdin(reader),
		eval.WithExit(opts.Exit),
		eval.WithInteractive(true),
		eval.WithLogger(logger),
	)
	return s
}

// Run reads until end of input or until the program exits. It returns the
// exit status requested by the program, or 0.
func (s *Session) Run() (int, error) {
	if s.opts.Banner {
		fmt.Fprintln(s.out, s.muted(version.String()))
		fmt.Fprintln(s.out, s.muted("Type statements and press Enter. Ctrl-D quits."))
	}

	var pending strings.Builder
	for {
		if pending.Len() == 0 {
			fmt.Fprint(s.out, s.prompt(s.opts.Prompt))
		} else {
			fmt.Fprint(s.out, s.prompt(ContinuationPrompt))
		}

		line, err := s.in.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return 0, err
		}
		if line == "" && errors.Is(err, io.EOF) {
			fmt.Fprintln(s.out)
			if pending.Len() > 0 {
				code, _, _ := s.eval(pending.String(), false)
				return code, nil
			}
			return 0, nil
		}
		pending.WriteString(line)
		if !strings.HasSuffix(line, "\n") {
			pending.WriteString("\n")
		}

		atEOF := errors.Is(err, io.EOF)
		code, done, needMore := s.eval(pending.String(), !atEOF)
		if needMore {
			continue
		}
		pending.Reset()
		if done {
			return code, nil
		}
		if atEOF {
			return 0, nil
		}
	}
}

// eval returns needMore instead of an error when the chunk stops inside an
// unclosed block and more input may follow.
func (s *Session) eval(src string, canContinue bool) (code int, done, needMore bool) {
	p := parser.New(lexer.New(src))
	program := p.ParseProgram()
	if err := p.Err(); err != nil {
		if canContinue && parser.IsUnclosedBlock(err) {
			return 0, false, true
		}
		s.report(err, src)
		return 0, false, false
	}

	if _, err := s.interp.Interpret(program); err != nil {
		if status, ok := eval.IsExit(err); ok {
			s.logger.Debug().Int("status", status).Msg("repl session exited")
			return status, true, false
		}
		s.report(err, src)
	}
	return 0, false, false
}

func (s *Session) report(err error, src string) {
	s.logger.Debug().Str("category", diag.CategoryOf(err).String()).Msg("statement failed")

	msg := diag.Snippet(err, src)
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	if s.opts.Color {
		msg = errorStyle.Render(strings.TrimSuffix(msg, "\n")) + "\n"
	}
	fmt.Fprint(s.out, msg)
}

func (s *Session) prompt(p string) string {
	if s.opts.Color {
		return promptStyle.Render(p)
	}
	return p
}

func (s *Session) muted(text string) string {
	if s.opts.Color {
		return mutedStyle.Render(text)
	}
	return text
}

// Start runs an interactive session on the process's terminal, exiting
// the process when the program calls exit.
func Start(opts Options) error {
	opts.Exit = os.Exit
	opts.Banner = true
	_, err := New(os.Stdin, os.Stdout, opts).Run()
	return err
}

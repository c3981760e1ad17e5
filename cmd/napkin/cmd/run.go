package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"napkin/pkg/ast"
	"napkin/pkg/diag"
	"napkin/pkg/eval"
	"napkin/pkg/lexer"
	"napkin/pkg/parser"
)

var (
	dumpTokens bool
	dumpAST    bool
)

var runCmd = &cobra.Command{
	Use:   "run <file>",
	Short: "Execute a napkin script",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFile(args[0], dumpTokens, dumpAST)
	},
}

var evalCmd = &cobra.Command{
	Use:   "eval <code>",
	Short: "Evaluate napkin source given on the command line",
	Long: `Evaluate napkin source given on the command line. The value of every
expression statement is printed, as in the REPL.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return execute(args[0], os.Stdout, true)
	},
}

var tokensCmd = &cobra.Command{
	Use:   "tokens <file>",
	Short: "Print the tokens of a script",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := readSource(args[0])
		if err != nil {
			return err
		}
		return printTokens(os.Stdout, src)
	},
}

var astCmd = &cobra.Command{
	Use:   "ast <file>",
	Short: "Print the syntax tree of a script",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := readSource(args[0])
		if err != nil {
			return err
		}
		program, err := parseSource(src)
		if err != nil {
			return err
		}
		printAST(os.Stdout, program)
		return nil
	},
}

func init() {
	runCmd.Flags().BoolVar(&dumpTokens, "dump-tokens", false, "print tokens before running")
	runCmd.Flags().BoolVar(&dumpAST, "dump-ast", false, "print the syntax tree before running")
	rootCmd.AddCommand(runCmd, evalCmd, tokensCmd, astCmd)
}

func readSource(filename string) (string, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return "", fmt.Errorf("could not open file: %w", err)
	}
	return string(data), nil
}

func runFile(filename string, withTokens, withAST bool) error {
	src, err := readSource(filename)
	if err != nil {
		return err
	}
	logger.Debug().Str("file", filename).Int("bytes", len(src)).Msg("running script")

	if withTokens {
		if err := printTokens(os.Stdout, src); err != nil {
			return err
		}
	}
	if withAST {
		program, err := parseSource(src)
		if err != nil {
			return err
		}
		printAST(os.Stdout, program)
	}
	return execute(src, os.Stdout, false)
}

// execute parses and runs src with a fresh interpreter. Diagnostics go to
// stderr and are reported as errReported.
func execute(src string, out io.Writer, interactive bool) error {
	program, err := parseSource(src)
	if err != nil {
		return err
	}

	interp := eval.New(
		eval.WithStdout(out),
		eval.WithInteractive(interactive),
		eval.WithLogger(logger),
		eval.WithExit(os.Exit),
	)
	if _, err := interp.Interpret(program); err != nil {
		if code, ok := eval.IsExit(err); ok {
			return &exitError{code: code}
		}
		if diag.IsCategory(err, diag.Internal) {
			logger.Error().Err(err).Msg("interpreter invariant broken")
		}
		fmt.Fprint(os.Stderr, withNewline(diag.Snippet(err, src)))
		return errReported
	}
	return nil
}

func parseSource(src string) (*ast.Program, error) {
	p := parser.New(lexer.New(src))
	program := p.ParseProgram()
	if err := p.Err(); err != nil {
		fmt.Fprint(os.Stderr, withNewline(diag.Snippet(err, src)))
		return nil, errReported
	}
	return program, nil
}

func printTokens(out io.Writer, src string) error {
	tokens, err := lexer.Tokenize(src)
	for _, tok := range tokens {
		fmt.Fprintf(out, "%s : %q line: %d col: %d\n", tok.Type, tok.Literal, tok.Line, tok.Column)
	}
	if err != nil {
		fmt.Fprint(os.Stderr, withNewline(diag.Snippet(err, src)))
		return errReported
	}
	return nil
}

func printAST(out io.Writer, program *ast.Program) {
	for _, stmt := range program.Statements {
		fmt.Fprintln(out, stmt.String())
	}
}

func withNewline(s string) string {
	if len(s) > 0 && s[len(s)-1] == '\n' {
		return s
	}
	return s + "\n"
}

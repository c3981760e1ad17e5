package eval

import (
	"bufio"
	"errors"
	"io"
	"math"
	"strconv"
	"strings"

	"napkin/pkg/diag"
	"napkin/pkg/object"
)

// ExitError is returned once a program calls exit or exit_status and the
// exit hook returned control instead of ending the process.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return "program exited with status " + strconv.Itoa(e.Code)
}

// IsExit reports whether err came from exit or exit_status and returns the
// status code.
func IsExit(err error) (int, bool) {
	var ee *ExitError
	if errors.As(err, &ee) {
		return ee.Code, true
	}
	return 0, false
}

type lineReader struct {
	r *bufio.Reader
}

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{r: bufio.NewReader(r)}
}

// ReadLine returns the next line without its terminator. At end of input
// it returns whatever was left, possibly the empty string.
func (lr *lineReader) ReadLine() (string, error) {
	line, err := lr.r.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (in *Interpreter) registerBuiltins(env *object.Environment) {
	builtins := []*object.BuiltinFunction{
		{
			Name:    "millis",
			NumArgs: 0,
			Fn: func(args []object.Object) (object.Object, error) {
				return &object.Real{Value: float64(in.now().UnixMilli())}, nil
			},
		},
		{
			Name:    "getline",
			NumArgs: 0,
			Fn: func(args []object.Object) (object.Object, error) {
				line, err := in.in.ReadLine()
				if err != nil {
					return nil, diag.Runtimef("getline: %v", err)
				}
				return &object.String{Value: line}, nil
			},
		},
		{
			Name:    "exit",
			NumArgs: 0,
			Fn: func(args []object.Object) (object.Object, error) {
				return nil, in.terminate(0)
			},
		},
		{
			Name:    "exit_status",
			NumArgs: 1,
			Fn: func(args []object.Object) (object.Object, error) {
				status, ok := args[0].(*object.Real)
				if !ok {
					return nil, diag.Runtimef("exit_status expects a real number, got %s", args[0].Kind())
				}
				code, err := exitCode(status.Value)
				if err != nil {
					return nil, err
				}
				return nil, in.terminate(code)
			},
		},
	}

	for _, b := range builtins {
		env.Declare(b.Name, b)
	}
}

// exitCode truncates v toward zero, clamped to the int32 range.
func exitCode(v float64) (int, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, diag.Runtimef("exit_status expects a finite number")
	}
	switch {
	case v > math.MaxInt32:
		return math.MaxInt32, nil
	case v < math.MinInt32:
		return math.MinInt32, nil
	}
	return int(v), nil
}

func (in *Interpreter) terminate(code int) error {
	in.logger.Debug().Int("status", code).Msg("program requested exit")
	in.exit(code)
	return &ExitError{Code: code}
}

package cmdutils

import (
	"os/exec"
	"strings"

	"github.com/pkg/errors"

	"portapack.dev/portapack/util/envutil"
)

// ExecError wraps an error from running an external tool together with the
// command line and any captured output, so that fatal tool failures surface
// with enough context to debug them.
type ExecError struct {
	err     error
	command string
	output  string
}

func (e *ExecError) Error() string {
	msg := e.err.Error() + "\nCommand: " + e.command
	if e.output != "" {
		msg += "\nOutput:\n" + strings.TrimRight(e.output, "\n")
	}
	return msg
}

func (e *ExecError) Unwrap() error {
	return e.err
}

// WrapExecError returns an ExecError for the given command. If err is an
// exec.ExitError, its captured stderr is included.
func WrapExecError(err error, cmd *exec.Cmd) error {
	if err == nil {
		return nil
	}

	var output string
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		output = string(exitErr.Stderr)
	}

	return &ExecError{
		err:     err,
		command: envutil.QuotedCommand(cmd.Args),
		output:  output,
	}
}

// IncorrectUsageError marks errors which are caused by incorrect usage of
// the command, so that the root command can print the usage message for
// them.
type IncorrectUsageError struct {
	err error
}

func (e *IncorrectUsageError) Error() string {
	return e.err.Error()
}

func (e *IncorrectUsageError) Unwrap() error {
	return e.err
}

func WrapIncorrectUsageError(err error) error {
	return &IncorrectUsageError{err: err}
}

func IsIncorrectUsageError(err error) bool {
	var usageErr *IncorrectUsageError
	return errors.As(err, &usageErr)
}

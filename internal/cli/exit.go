package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
)

// ExitError carries the process exit code for a failed invocation. A nil
// Err means the failure was already reported to the user.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit code %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCode returns the code main should exit with.
func (e *ExitError) ExitCode() int {
	return e.Code
}

var colorError = color.New(color.FgRed, color.Bold).SprintFunc()

// ReportError prints err to w unless it was already reported and returns
// the process exit code.
func ReportError(w io.Writer, err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Err != nil {
			fmt.Fprintf(w, "%s %v\n", colorError("error:"), exitErr.Err)
		}
		return exitErr.Code
	}
	fmt.Fprintf(w, "%s %v\n", colorError("error:"), err)
	return 1
}

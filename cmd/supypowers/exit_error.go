// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/supypowers/supypowers/internal/runtime"
)

// ExitError signals a non-zero exit code without forcing os.Exit in RunE handlers.
type ExitError struct {
	Code runtime.ExitCode
	Err  error
	// Reported is set when the failure was already written (as JSON on
	// stdout) and the error handler must stay quiet.
	Reported bool
}

// Error returns the error message for ExitError.
func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

// Unwrap returns the underlying error, if any.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
)

type (
	// ActionableError is a user-facing error that names what supypowers was
	// doing, which script:function invocation or file it was working on, and
	// how to recover. It may point at an issue catalog entry for longer
	// guidance.
	//
	//	err := issue.NewErrorContext().
	//		WithOperation("run").
	//		WithTarget("hello:hello").
	//		WithScript("/work/supypowers/hello.py").
	//		WithIssue(issue.LaunchFailedId).
	//		Wrap(launchErr).
	//		BuildError()
	ActionableError struct {
		// Operation is a verb phrase such as "run" or "load configuration".
		Operation string
		// Target is the script:function invocation, when there is one.
		Target string
		// Script is the resolved script path involved in the failure.
		Script string
		// Resource is any other file involved, such as a config file.
		Resource string
		// Issue selects the catalog entry rendered in verbose mode (0 for none).
		Issue Id
		// Suggestions are short recovery hints shown under the message.
		Suggestions []string
		// Cause is the underlying error.
		Cause error
	}

	// ErrorContext builds an ActionableError.
	ErrorContext struct {
		err ActionableError
	}
)

// NewErrorContext creates a new ErrorContext builder.
func NewErrorContext() *ErrorContext {
	return &ErrorContext{}
}

// Error returns the one-line form:
//
//	failed to <operation> [<target>]: <resource>: <cause>
func (e *ActionableError) Error() string {
	var msg strings.Builder

	msg.WriteString("failed to ")
	msg.WriteString(e.Operation)
	if e.Target != "" {
		msg.WriteString(" ")
		msg.WriteString(e.Target)
	}
	if e.Resource != "" {
		msg.WriteString(": ")
		msg.WriteString(e.Resource)
	}
	if e.Cause != nil {
		msg.WriteString(": ")
		msg.WriteString(e.Cause.Error())
	}
	return msg.String()
}

// Unwrap returns the underlying cause error for use with errors.Is/As.
func (e *ActionableError) Unwrap() error {
	return e.Cause
}

// Format returns the message, the script involved, and the suggestions. In
// verbose mode the chain of wrapped errors is appended.
func (e *ActionableError) Format(verbose bool) string {
	var msg strings.Builder

	msg.WriteString(e.Error())
	if e.Script != "" {
		msg.WriteString("\n  script: ")
		msg.WriteString(e.Script)
	}

	if len(e.Suggestions) > 0 {
		msg.WriteString("\n")
		for _, suggestion := range e.Suggestions {
			msg.WriteString("\n  • ")
			msg.WriteString(suggestion)
		}
	}

	if verbose && e.Cause != nil {
		msg.WriteString("\n\nError chain:")
		err := e.Cause
		for depth := 1; err != nil; depth++ {
			fmt.Fprintf(&msg, "\n  %d. %s", depth, err.Error())
			err = errors.Unwrap(err)
		}
	}

	return msg.String()
}

// IssueOf returns the catalog entry attached to the first ActionableError in
// err's chain that carries one.
func IssueOf(err error) (Id, bool) {
	for err != nil {
		var ae *ActionableError
		if !errors.As(err, &ae) {
			return 0, false
		}
		if ae.Issue != 0 {
			return ae.Issue, true
		}
		err = ae.Cause
	}
	return 0, false
}

// WithOperation sets the operation being performed, as a verb phrase.
func (c *ErrorContext) WithOperation(op string) *ErrorContext {
	c.err.Operation = op
	return c
}

// WithTarget sets the script:function invocation.
func (c *ErrorContext) WithTarget(target string) *ErrorContext {
	c.err.Target = target
	return c
}

// WithScript sets the resolved script path.
func (c *ErrorContext) WithScript(path string) *ErrorContext {
	c.err.Script = path
	return c
}

// WithResource sets another file involved, such as a config file.
func (c *ErrorContext) WithResource(res string) *ErrorContext {
	c.err.Resource = res
	return c
}

// WithIssue links the error to an issue catalog entry.
func (c *ErrorContext) WithIssue(id Id) *ErrorContext {
	c.err.Issue = id
	return c
}

// WithSuggestion adds a suggestion. Can be called multiple times.
func (c *ErrorContext) WithSuggestion(sug string) *ErrorContext {
	c.err.Suggestions = append(c.err.Suggestions, sug)
	return c
}

// Wrap sets the underlying cause.
func (c *ErrorContext) Wrap(err error) *ErrorContext {
	c.err.Cause = err
	return c
}

// Build returns the ActionableError, or nil when no operation was set.
func (c *ErrorContext) Build() *ActionableError {
	if c.err.Operation == "" {
		return nil
	}
	ae := c.err
	ae.Suggestions = append([]string(nil), c.err.Suggestions...)
	return &ae
}

// BuildError is Build returning the error interface, nil-safe.
func (c *ErrorContext) BuildError() error {
	if ae := c.Build(); ae != nil {
		return ae
	}
	return nil
}

// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestActionableError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *ActionableError
		expected string
	}{
		{
			name:     "operation only",
			err:      &ActionableError{Operation: "load configuration"},
			expected: "failed to load configuration",
		},
		{
			name:     "operation with resource",
			err:      &ActionableError{Operation: "load configuration", Resource: "./config.cue"},
			expected: "failed to load configuration: ./config.cue",
		},
		{
			name: "invocation target",
			err: &ActionableError{
				Operation: "run",
				Target:    "hello:hello",
				Script:    "/work/hello.py",
				Cause:     errors.New("`uv run` failed with exit code 3"),
			},
			expected: "failed to run hello:hello: `uv run` failed with exit code 3",
		},
		{
			name: "full context",
			err: &ActionableError{
				Operation: "write docs",
				Resource:  "docs.md",
				Cause:     errors.New("permission denied"),
			},
			expected: "failed to write docs: docs.md: permission denied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			if got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestActionableError_Format(t *testing.T) {
	root := errors.New("disk full")
	err := NewErrorContext().
		WithOperation("run").
		WithTarget("greet:greet").
		WithScript("/work/greet.py").
		WithSuggestion("Free some space").
		WithSuggestion("Lower execution.max_output_bytes").
		Wrap(fmt.Errorf("write failed: %w", root)).
		Build()

	plain := err.Format(false)
	if !strings.HasPrefix(plain, "failed to run greet:greet: write failed: disk full\n  script: /work/greet.py") {
		t.Errorf("Format(false) header:\n%s", plain)
	}
	if !strings.Contains(plain, "  • Free some space") || !strings.Contains(plain, "  • Lower execution.max_output_bytes") {
		t.Errorf("Format(false) missing suggestions:\n%s", plain)
	}
	if strings.Contains(plain, "Error chain") {
		t.Error("Format(false) should not include the error chain")
	}

	verbose := err.Format(true)
	if !strings.Contains(verbose, "1. write failed: disk full") || !strings.Contains(verbose, "2. disk full") {
		t.Errorf("Format(true) missing chain:\n%s", verbose)
	}
	if !errors.Is(err, root) {
		t.Error("ActionableError should unwrap to its cause")
	}
}

func TestErrorContext_Build(t *testing.T) {
	if NewErrorContext().WithResource("x").Build() != nil {
		t.Error("Build() without operation should return nil")
	}
	if NewErrorContext().BuildError() != nil {
		t.Error("BuildError() without operation should return nil")
	}

	ctx := NewErrorContext().WithOperation("scan folder").WithSuggestion("first")
	first := ctx.Build()
	ctx.WithSuggestion("second")
	if len(first.Suggestions) != 1 {
		t.Errorf("built error shares suggestions with its builder: %v", first.Suggestions)
	}
}

func TestIssueOf(t *testing.T) {
	inner := NewErrorContext().WithOperation("load configuration").WithIssue(ConfigLoadFailedId).BuildError()
	outer := NewErrorContext().WithOperation("run").WithTarget("a:b").Wrap(inner).BuildError()

	tests := []struct {
		name   string
		err    error
		want   Id
		wantOK bool
	}{
		{"nil", nil, 0, false},
		{"plain error", errors.New("boom"), 0, false},
		{"no issue attached", NewErrorContext().WithOperation("run").BuildError(), 0, false},
		{"direct", inner, ConfigLoadFailedId, true},
		{"nested under an error without one", outer, ConfigLoadFailedId, true},
		{"wrapped by fmt", fmt.Errorf("context: %w", inner), ConfigLoadFailedId, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := IssueOf(tt.err)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("IssueOf() = (%v, %v), want (%v, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

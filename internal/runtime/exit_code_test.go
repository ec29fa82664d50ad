// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"errors"
	"testing"
)

func TestExitCodeIsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		value     ExitCode
		wantValid bool
	}{
		{name: "zero is valid", value: ExitSuccess, wantValid: true},
		{name: "structural is valid", value: ExitStructural, wantValid: true},
		{name: "timeout is valid", value: ExitTimeout, wantValid: true},
		{name: "255 is valid", value: 255, wantValid: true},
		{name: "negative is invalid", value: -1, wantValid: false},
		{name: "256 is invalid", value: 256, wantValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			isValid, errs := tt.value.IsValid()
			if isValid != tt.wantValid {
				t.Errorf("ExitCode(%d).IsValid() = %v, want %v", tt.value, isValid, tt.wantValid)
			}
			if !tt.wantValid && (len(errs) == 0 || !errors.Is(errs[0], ErrInvalidExitCode)) {
				t.Errorf("expected ErrInvalidExitCode, got %v", errs)
			}
		})
	}
}

func TestFromProcess(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   int
		want ExitCode
	}{
		{0, ExitSuccess},
		{2, ExitStructural},
		{42, 42},
		{-1, ExitFailure},
	}

	for _, tt := range tests {
		if got := fromProcess(tt.in); got != tt.want {
			t.Errorf("fromProcess(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestExitCodePredicates(t *testing.T) {
	t.Parallel()

	if !ExitSuccess.IsSuccess() || ExitFailure.IsSuccess() {
		t.Error("IsSuccess() mismatch")
	}
	if !ExitStructural.IsStructural() || ExitFailure.IsStructural() {
		t.Error("IsStructural() mismatch")
	}
	if ExitTimeout.String() != "124" {
		t.Errorf("String() = %q", ExitTimeout.String())
	}
}

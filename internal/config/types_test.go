// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"testing"
	"time"
)

func TestColorScheme_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value ColorScheme
		want  bool
	}{
		{ColorSchemeAuto, true},
		{ColorSchemeDark, true},
		{ColorSchemeLight, true},
		{"", false},
		{"AUTO", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.value), func(t *testing.T) {
			t.Parallel()

			got, errs := tt.value.IsValid()
			if got != tt.want {
				t.Errorf("ColorScheme(%q).IsValid() = %v, want %v", tt.value, got, tt.want)
			}
			if !got && !errors.Is(errs[0], ErrInvalidColorScheme) {
				t.Errorf("error should wrap ErrInvalidColorScheme, got %v", errs[0])
			}
		})
	}
}

func TestExecutionConfig_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		cfg      ExecutionConfig
		wantErrs []error
	}{
		{"valid", ExecutionConfig{Timeout: time.Second, MaxOutputBytes: 1}, nil},
		{"zero timeout", ExecutionConfig{MaxOutputBytes: 1}, []error{ErrInvalidTimeout}},
		{"negative limit", ExecutionConfig{Timeout: time.Second, MaxOutputBytes: -1}, []error{ErrInvalidOutputLimit}},
		{"both", ExecutionConfig{}, []error{ErrInvalidTimeout, ErrInvalidOutputLimit}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			valid, errs := tt.cfg.IsValid()
			if valid != (len(tt.wantErrs) == 0) {
				t.Fatalf("IsValid() = %v, errs = %v", valid, errs)
			}
			if len(errs) != len(tt.wantErrs) {
				t.Fatalf("got %d errors, want %d: %v", len(errs), len(tt.wantErrs), errs)
			}
			for i, want := range tt.wantErrs {
				if !errors.Is(errs[i], want) {
					t.Errorf("errs[%d] = %v, want %v", i, errs[i], want)
				}
			}
		})
	}
}

func TestConfig_IsValid_CollectsFieldErrors(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.UV.Binary = " "
	cfg.UI.ColorScheme = "neon"

	valid, errs := cfg.IsValid()
	if valid {
		t.Fatal("expected invalid config")
	}

	var ice *InvalidConfigError
	if !errors.As(errs[0], &ice) {
		t.Fatalf("expected *InvalidConfigError, got %T", errs[0])
	}
	if len(ice.FieldErrors) != 2 {
		t.Errorf("FieldErrors = %v, want 2 entries", ice.FieldErrors)
	}
	for _, sentinel := range []error{ErrInvalidConfig, ErrInvalidBinaryName, ErrInvalidColorScheme} {
		if !errors.Is(errs[0], sentinel) {
			t.Errorf("errors.Is(err, %v) = false", sentinel)
		}
	}
}

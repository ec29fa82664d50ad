// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"maps"
	"slices"
	"testing"
)

func TestEnvBuilderBuild(t *testing.T) {
	t.Parallel()

	b := &EnvBuilder{Environ: func() []string {
		return []string{"PATH=/usr/bin", "API_KEY=host", "EQUALS=a=b", "MALFORMED", "=empty"}
	}}

	got := b.Build(map[string]string{"API_KEY": "secret", "EXTRA": "1"})
	want := map[string]string{
		"PATH":    "/usr/bin",
		"API_KEY": "secret",
		"EQUALS":  "a=b",
		"EXTRA":   "1",
	}
	if !maps.Equal(got, want) {
		t.Errorf("Build() = %v, want %v", got, want)
	}
}

func TestEnvBuilderNilUsesHost(t *testing.T) {
	t.Setenv("SUPYPOWERS_ENV_BUILDER_TEST", "present")

	var b *EnvBuilder
	if got := b.Build(nil)["SUPYPOWERS_ENV_BUILDER_TEST"]; got != "present" {
		t.Errorf("expected host variable, got %q", got)
	}
}

func TestEnvToSlice(t *testing.T) {
	t.Parallel()

	got := EnvToSlice(map[string]string{"B": "2", "A": "1"})
	if !slices.Equal(got, []string{"A=1", "B=2"}) {
		t.Errorf("EnvToSlice() = %v", got)
	}
}

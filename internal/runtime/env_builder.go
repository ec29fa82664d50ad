// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"maps"
	"os"
	"slices"
	"strings"
)

// EnvBuilder builds the child process environment: the host environment
// with an overlay applied on top (overlay wins).
type EnvBuilder struct {
	// Environ returns the host environment as "KEY=VALUE" strings.
	// When nil, os.Environ() is used.
	Environ func() []string
}

// NewEnvBuilder creates an EnvBuilder reading the real host environment.
func NewEnvBuilder() *EnvBuilder {
	return &EnvBuilder{}
}

// Build returns the merged environment as a map.
func (b *EnvBuilder) Build(overlay map[string]string) map[string]string {
	environ := os.Environ
	if b != nil && b.Environ != nil {
		environ = b.Environ
	}

	env := make(map[string]string)
	for _, entry := range environ() {
		name, value, found := strings.Cut(entry, "=")
		if !found || name == "" {
			continue
		}
		env[name] = value
	}
	maps.Copy(env, overlay)
	return env
}

// EnvToSlice converts a map of environment variables to a sorted slice.
func EnvToSlice(env map[string]string) []string {
	result := make([]string, 0, len(env))
	for _, k := range slices.Sorted(maps.Keys(env)) {
		result = append(result, k+"="+env[k])
	}
	return result
}

// SPDX-License-Identifier: MPL-2.0

// Package secrets turns --secrets arguments into an environment overlay for
// the isolated child process. Each argument is either an inline KEY=VALUE
// pair or the path of a dotenv file; later arguments override earlier keys.
package secrets

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"
)

// ErrInvalidSecretSpec is the sentinel error wrapped by InvalidSecretSpecError.
var ErrInvalidSecretSpec = errors.New("invalid secret spec")

type (
	// Overlay maps environment variable names to values. It is merged over the
	// host environment of the child process and never persisted.
	Overlay map[string]string

	// InvalidSecretSpecError is returned when an argument is neither an
	// existing file nor a KEY=VALUE pair.
	InvalidSecretSpecError struct {
		Arg string
	}
)

// Error implements the error interface.
func (e *InvalidSecretSpecError) Error() string {
	return fmt.Sprintf("--secrets value must be a .env path or KEY=VAL, got: %s", e.Arg)
}

// Unwrap returns ErrInvalidSecretSpec so callers can use errors.Is for programmatic detection.
func (e *InvalidSecretSpecError) Unwrap() error { return ErrInvalidSecretSpec }

// Resolve builds an overlay from the arguments in order.
func Resolve(args []string) (Overlay, error) {
	overlay := Overlay{}

	for _, arg := range args {
		info, statErr := os.Stat(arg)
		isFile := statErr == nil && info.Mode().IsRegular()

		switch {
		case isFile:
			content, err := os.ReadFile(arg)
			if err != nil {
				return nil, fmt.Errorf("failed to read secrets file '%s': %w", arg, err)
			}
			maps.Copy(overlay, ParseDotenv(content))
		case strings.Contains(arg, "="):
			key, value, _ := strings.Cut(arg, "=")
			key = strings.TrimSpace(key)
			if key == "" {
				return nil, &InvalidSecretSpecError{Arg: arg}
			}
			overlay[key] = trimQuotes(value)
		default:
			return nil, &InvalidSecretSpecError{Arg: arg}
		}
	}

	return overlay, nil
}

// ParseDotenv parses dotenv content leniently: blank lines, comments, lines
// without '=' and lines with an empty key are skipped.
func ParseDotenv(content []byte) Overlay {
	overlay := Overlay{}

	for line := range strings.SplitSeq(string(content), "\n") {
		line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if rest, ok := strings.CutPrefix(line, "export "); ok {
			line = strings.TrimSpace(rest)
		}

		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		overlay[key] = trimQuotes(strings.TrimSpace(value))
	}

	return overlay
}

// Keys returns the overlay's variable names in sorted order.
func (o Overlay) Keys() []string {
	return slices.Sorted(maps.Keys(o))
}

// trimQuotes strips surrounding double quotes, then single quotes.
func trimQuotes(s string) string {
	return strings.Trim(strings.Trim(s, `"`), `'`)
}

// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue/errors"
)

// DefaultMaxFileSize is the largest CUE file accepted (5MB).
const DefaultMaxFileSize int64 = 5 * 1024 * 1024

// FormatError formats a CUE error as "<file>: <json-path>: <message>", for
// example "config.cue: execution.timeout: conflicting values".
// Multiple errors are listed one per line.
func FormatError(err error, filePath string) error {
	if err == nil {
		return nil
	}

	cueErrors := errors.Errors(err)
	if len(cueErrors) == 0 {
		return fmt.Errorf("%s: %w", filePath, err)
	}

	lines := make([]string, 0, len(cueErrors))
	for _, e := range cueErrors {
		pathStr := formatPath(errors.Path(e))
		msg := e.Error()

		// CUE sometimes repeats the path in the message itself.
		if pathStr != "" {
			msg = strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(msg, pathStr), ":"))
			lines = append(lines, pathStr+": "+msg)
			continue
		}
		lines = append(lines, msg)
	}

	if len(lines) == 1 {
		return fmt.Errorf("%s: %s", filePath, lines[0])
	}
	return fmt.Errorf("%s: validation failed:\n  %s", filePath, strings.Join(lines, "\n  "))
}

// formatPath renders ["uv", "binary"] as "uv.binary" and numeric elements as
// indices: ["list", "0", "x"] becomes "list[0].x".
func formatPath(path []string) string {
	var result strings.Builder
	for i, part := range path {
		if i > 0 && isIndex(part) {
			result.WriteString("[" + part + "]")
			continue
		}
		if i > 0 {
			result.WriteByte('.')
		}
		result.WriteString(part)
	}
	return result.String()
}

func isIndex(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// CheckFileSize returns an error when data exceeds maxSize bytes.
func CheckFileSize(data []byte, maxSize int64, filename string) error {
	if int64(len(data)) > maxSize {
		return fmt.Errorf("%s: file size %d bytes exceeds maximum %d bytes",
			filename, len(data), maxSize)
	}
	return nil
}

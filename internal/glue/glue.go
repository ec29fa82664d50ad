// SPDX-License-Identifier: MPL-2.0

// Package glue holds the Python programs executed inside the isolated child
// interpreter. They are embedded into the binary and passed to the
// interpreter with -c, so nothing is written to disk.
package glue

import (
	_ "embed"
	"strings"

	"github.com/google/uuid"
)

// ModulePrefix starts every synthetic module name given to a loaded script.
const ModulePrefix = "__supypowers_"

var (
	//go:embed runner.py
	runnerSource string

	//go:embed introspect.py
	introspectSource string
)

// Program is a named piece of glue code.
type Program struct {
	// Name identifies the program in logs and dry-run output.
	Name string
	// Source is the Python code passed to the interpreter.
	Source string
}

// Runner returns the invocation runner. It reads an execution payload from
// stdin, calls one function, and prints a single result envelope.
func Runner() Program {
	return Program{Name: "runner", Source: runnerSource}
}

// Introspector returns the introspection runner. It reads an introspection
// payload from stdin and prints the descriptors of every candidate function.
func Introspector() Program {
	return Program{Name: "introspect", Source: introspectSource}
}

// NewModuleName returns a fresh module identity so scripts sharing a file
// name never collide in the child's module table.
func NewModuleName() string {
	return ModulePrefix + strings.ReplaceAll(uuid.New().String(), "-", "") + "__"
}

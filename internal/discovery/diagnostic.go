// SPDX-License-Identifier: MPL-2.0

package discovery

const (
	// SeverityWarning indicates a recoverable discovery warning.
	SeverityWarning Severity = "warning"
	// SeverityError indicates a non-fatal discovery error diagnostic.
	SeverityError Severity = "error"

	// CodeScriptSkipped is reported for *.py entries that are not regular files.
	CodeScriptSkipped = "script_skipped"
	// CodeDirUnreadable is reported when part of a recursive scan cannot be read.
	CodeDirUnreadable = "dir_unreadable"
)

type (
	// Severity represents discovery diagnostic severity.
	Severity string

	// Diagnostic represents a structured discovery diagnostic that is returned
	// to callers (rather than written to stderr) for consistent rendering policy.
	Diagnostic struct {
		// Severity is the diagnostic level (warning or error).
		Severity Severity
		// Code is a machine-readable identifier (e.g., "script_skipped").
		Code string
		// Message is the human-readable description.
		Message string
		// Path is the file path associated with this diagnostic (optional).
		Path string
		// Cause is the underlying error (optional, for programmatic inspection).
		Cause error
	}

	// ScanResult bundles the scripts found in a folder with diagnostics
	// produced along the way.
	ScanResult struct {
		Scripts     []ScriptRef
		Diagnostics []Diagnostic
	}
)

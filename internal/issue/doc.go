// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// ActionableError carries the failed operation, the resource involved, and
// remediation hints. The issue catalog maps well-known failure kinds (uv
// missing, launch failures, timeouts, bad configuration) to Markdown guidance
// rendered with glamour on stderr.
package issue

// SPDX-License-Identifier: MPL-2.0

// Package invoke runs one function of one script in an isolated child and
// maps what the child reports to the caller's JSON result and exit code.
//
// Everything that can be checked without a child process (folder, target,
// script path, secrets, input literal) is checked first by Prepare; a failure
// there never starts a child.
package invoke

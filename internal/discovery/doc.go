// SPDX-License-Identifier: MPL-2.0

// Package discovery locates scripts inside a supypowers folder.
//
// It resolves the folder argument, parses "script:function" targets, turns a
// script name into an absolute path, and scans a folder (optionally
// recursively) for *.py files in a stable, component-wise sorted order.
// Problems that do not stop a scan are reported as Diagnostics rather than
// written to stderr, so the CLI decides how to render them.
package discovery

// SPDX-License-Identifier: MPL-2.0

// Package render turns a docs inventory into its output formats: compact
// JSON, Markdown, and Markdown rendered for a terminal with glamour.
package render

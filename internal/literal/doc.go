// SPDX-License-Identifier: MPL-2.0

// Package literal normalizes caller-supplied input data into JSON.
//
// Input that is already valid JSON passes through untouched. Otherwise a
// restricted literal grammar is accepted: numbers, quoted strings (single,
// double and triple quoted, with escapes), True/False/None, lists, tuples and
// dicts with literal keys. The grammar is parsed, never evaluated; names,
// calls, operators, sets, bytes and formatted strings are rejected.
package literal

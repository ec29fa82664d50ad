// SPDX-License-Identifier: MPL-2.0

// Package metadata reads the inline script metadata block that declares the
// runtime dependencies of a script:
//
//	# /// script
//	# requires-python = ">=3.11"
//	# dependencies = [
//	#   "pydantic",
//	# ]
//	# ///
//
// The block body is decoded as TOML, a literal-only grammar, so nothing in a
// script is ever evaluated to learn its dependencies. Extraction never fails:
// a missing or malformed block yields no dependencies.
package metadata

// SPDX-License-Identifier: MPL-2.0

// Package runtime launches the isolated child interpreter through `uv run`.
//
// Each launch starts a fresh, project-independent environment built from the
// script's declared dependencies, writes a JSON payload to the child's stdin,
// and captures stdout, stderr and the exit status. Launches are synchronous:
// Launch blocks until the child exits or the context deadline kills it.
//
// The child environment is the host environment plus an overlay of secrets;
// overlay entries win on collision. See EnvBuilder.
package runtime

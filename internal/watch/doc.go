// SPDX-License-Identifier: MPL-2.0

// Package watch re-runs a callback when Python scripts in a folder change.
//
// Events are debounced: a burst of writes (editors commonly write a temp file
// then rename it) results in one callback carrying every changed path. A
// callback that is still running when the next burst settles is not
// re-entered; the pending paths are retried after another debounce period.
package watch

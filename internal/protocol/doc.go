// SPDX-License-Identifier: MPL-2.0

// Package protocol defines the JSON messages exchanged with the child
// interpreter: the payloads written to its stdin, the envelopes it prints on
// stdout, and the result shapes supypowers prints for its own callers.
package protocol

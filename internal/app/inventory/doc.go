// SPDX-License-Identifier: MPL-2.0

// Package inventory builds the docs inventory of a scripts folder and checks
// input against a function's published input schema.
//
// Scripts are introspected one at a time, in scan order, each in its own
// child. A script that cannot be introspected becomes an entry carrying the
// error; it never aborts the inventory.
package inventory

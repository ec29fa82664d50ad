// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helper functions for tests that handle errors
// appropriately, reducing boilerplate and ensuring consistent error handling.
//
// Helpers cover working-directory changes (MustChdir) and building script
// folders on disk (WriteFiles).
package testutil

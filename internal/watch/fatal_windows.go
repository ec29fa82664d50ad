// SPDX-License-Identifier: MPL-2.0

//go:build windows

package watch

import (
	"errors"
	"syscall"
)

// Win32 error codes that leave ReadDirectoryChangesW unusable.
const (
	errTooManyOpenFiles = syscall.Errno(4)
	errInvalidHandle    = syscall.Errno(6)
	errNotEnoughMemory  = syscall.Errno(8)
)

// isResourceExhausted reports handle or memory exhaustion, and a handle
// invalidated by the folder being removed.
func isResourceExhausted(err error) bool {
	return errors.Is(err, errTooManyOpenFiles) ||
		errors.Is(err, errInvalidHandle) ||
		errors.Is(err, errNotEnoughMemory)
}

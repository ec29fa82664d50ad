// SPDX-License-Identifier: MPL-2.0

//go:build !windows

package watch

import (
	"errors"
	"syscall"
)

// isResourceExhausted reports inotify limits (max_user_watches) and file
// descriptor exhaustion, after which the watcher cannot recover.
func isResourceExhausted(err error) bool {
	return errors.Is(err, syscall.ENOSPC) ||
		errors.Is(err, syscall.EMFILE) ||
		errors.Is(err, syscall.ENFILE)
}

// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ScriptExt is the extension of script files.
const ScriptExt = ".py"

var (
	// ErrFolderNotFound is the sentinel error wrapped by FolderNotFoundError.
	ErrFolderNotFound = errors.New("folder not found")
	// ErrInvalidTarget is returned when a target is not "script:function".
	ErrInvalidTarget = errors.New("target must be in the form script:function")
	// ErrScriptNotFound is the sentinel error wrapped by ScriptNotFoundError.
	ErrScriptNotFound = errors.New("script not found")
)

type (
	// FolderNotFoundError is returned when the folder is missing or not a directory.
	FolderNotFoundError struct {
		Folder string
	}

	// ScriptNotFoundError is returned when a script does not resolve to a regular file.
	ScriptNotFoundError struct {
		Path string
	}

	// ScriptRef identifies a resolved script. Path is absolute; Display is
	// the folder-relative form shown to users.
	ScriptRef struct {
		Path    string
		Display string
	}

	// Target is a parsed "script:function" reference.
	Target struct {
		Script   string
		Function string
	}
)

// Error implements the error interface.
func (e *FolderNotFoundError) Error() string {
	return fmt.Sprintf("folder not found: %s", e.Folder)
}

// Unwrap returns ErrFolderNotFound so callers can use errors.Is for programmatic detection.
func (e *FolderNotFoundError) Unwrap() error { return ErrFolderNotFound }

// Error implements the error interface.
func (e *ScriptNotFoundError) Error() string {
	return fmt.Sprintf("Script not found: %s", e.Path)
}

// Unwrap returns ErrScriptNotFound so callers can use errors.Is for programmatic detection.
func (e *ScriptNotFoundError) Unwrap() error { return ErrScriptNotFound }

// String returns the display form of the script.
func (r ScriptRef) String() string { return r.Display }

// String returns the target in "script:function" form.
func (t Target) String() string { return t.Script + ":" + t.Function }

// ResolveFolder checks that folder exists and is a directory.
func ResolveFolder(folder string) (string, error) {
	info, err := os.Stat(folder)
	if err != nil || !info.IsDir() {
		return "", &FolderNotFoundError{Folder: folder}
	}
	return folder, nil
}

// ParseTarget splits "script:function" at the first colon. Both halves must
// be non-empty.
func ParseTarget(target string) (Target, error) {
	script, function, _ := strings.Cut(target, ":")
	if script == "" || function == "" {
		return Target{}, ErrInvalidTarget
	}
	return Target{Script: script, Function: function}, nil
}

// ResolveScript resolves a script name inside folder, appending ".py" when
// missing, and requires the result to be an existing regular file.
func ResolveScript(folder, name string) (ScriptRef, error) {
	if !strings.HasSuffix(name, ScriptExt) {
		name += ScriptExt
	}
	display := filepath.Join(folder, name)

	abs, err := filepath.Abs(display)
	if err != nil {
		return ScriptRef{}, &ScriptNotFoundError{Path: display}
	}
	if resolved, evalErr := filepath.EvalSymlinks(abs); evalErr == nil {
		abs = resolved
	}

	info, err := os.Stat(abs)
	if err != nil || !info.Mode().IsRegular() {
		return ScriptRef{}, &ScriptNotFoundError{Path: abs}
	}
	return ScriptRef{Path: abs, Display: display}, nil
}

// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

const (
	shallowPattern   = "*" + ScriptExt
	recursivePattern = "**/*" + ScriptExt
)

// Scan lists the scripts in folder. Without recursive only the folder's own
// entries are considered. Results are sorted by path component.
func Scan(folder string, recursive bool) (*ScanResult, error) {
	if _, err := ResolveFolder(folder); err != nil {
		return nil, err
	}

	pattern := shallowPattern
	if recursive {
		pattern = recursivePattern
	}

	result := &ScanResult{}
	fsys := os.DirFS(folder)
	matches, err := doublestar.Glob(fsys, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", folder, err)
	}

	for _, rel := range matches {
		info, statErr := fs.Stat(fsys, rel)
		display := filepath.Join(folder, filepath.FromSlash(rel))
		if statErr != nil || !info.Mode().IsRegular() {
			result.Diagnostics = append(result.Diagnostics, Diagnostic{
				Severity: SeverityWarning,
				Code:     CodeScriptSkipped,
				Message:  fmt.Sprintf("skipping %s: not a regular file", display),
				Path:     display,
				Cause:    statErr,
			})
			continue
		}

		abs, absErr := filepath.Abs(display)
		if absErr != nil {
			abs = display
		}
		result.Scripts = append(result.Scripts, ScriptRef{Path: abs, Display: display})
	}

	if recursive {
		result.Diagnostics = append(result.Diagnostics, unreadableDirs(fsys, folder)...)
	}

	slices.SortFunc(result.Scripts, func(a, b ScriptRef) int {
		return comparePaths(a.Display, b.Display)
	})
	return result, nil
}

// unreadableDirs reports subdirectories the recursive glob silently skipped.
func unreadableDirs(fsys fs.FS, folder string) []Diagnostic {
	var diags []Diagnostic
	_ = fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil && p != "." {
			display := filepath.Join(folder, filepath.FromSlash(p))
			diags = append(diags, Diagnostic{
				Severity: SeverityWarning,
				Code:     CodeDirUnreadable,
				Message:  fmt.Sprintf("cannot read %s: %v", display, err),
				Path:     display,
				Cause:    err,
			})
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
		}
		return nil
	})
	return diags
}

// comparePaths orders paths component by component: "a/x.py" sorts before
// "a-b.py" even though '-' sorts before '/' bytewise.
func comparePaths(a, b string) int {
	pa := strings.Split(path.Clean(filepath.ToSlash(a)), "/")
	pb := strings.Split(path.Clean(filepath.ToSlash(b)), "/")
	return slices.Compare(pa, pb)
}

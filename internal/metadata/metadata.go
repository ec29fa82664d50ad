// SPDX-License-Identifier: MPL-2.0

package metadata

import (
	"bufio"
	"bytes"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

const (
	// BlockOpen is the line that opens a metadata block.
	BlockOpen = "# /// script"
	// BlockClose is the line that closes a metadata block.
	BlockClose = "# ///"

	dependenciesKey   = "dependencies"
	requiresPythonKey = "requires-python"
)

// Metadata is the subset of the script metadata block supypowers consumes.
type Metadata struct {
	// Dependencies are the declared dependency specifiers, in declaration order.
	Dependencies []string
	// RequiresPython is the declared interpreter constraint (may be empty).
	RequiresPython string
}

// Extract returns the dependency list declared in src. It returns an empty,
// non-nil slice when no valid block or no dependencies are present.
func Extract(src []byte) []string {
	return Parse(src).Dependencies
}

// ReadDependencies reads the script at path and extracts its dependencies.
// An unreadable file yields an empty list.
func ReadDependencies(path string) []string {
	return Read(path).Dependencies
}

// Read reads the script at path and parses its metadata block.
func Read(path string) Metadata {
	src, err := os.ReadFile(path)
	if err != nil {
		return Metadata{Dependencies: []string{}}
	}
	return Parse(src)
}

// Parse locates the first metadata block in src and decodes it.
func Parse(src []byte) Metadata {
	md := Metadata{Dependencies: []string{}}

	body, ok := blockBody(src)
	if !ok || strings.TrimSpace(body) == "" {
		return md
	}

	var doc map[string]any
	if err := toml.Unmarshal([]byte(body), &doc); err != nil {
		return md
	}

	if deps, ok := doc[dependenciesKey].([]any); ok {
		for _, item := range deps {
			if s, isString := item.(string); isString {
				md.Dependencies = append(md.Dependencies, s)
			}
		}
	}
	if rp, ok := doc[requiresPythonKey].(string); ok {
		md.RequiresPython = strings.TrimSpace(rp)
	}

	return md
}

// blockBody returns the comment-stripped text between the opening and closing
// marker lines. A second opening marker seen before a close restarts the block.
func blockBody(src []byte) (string, bool) {
	var (
		lines   []string
		inBlock bool
		closed  bool
	)

	scanner := bufio.NewScanner(bytes.NewReader(src))
	scanner.Buffer(make([]byte, 0, 64*1024), len(src)+1)
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)

		if trimmed == BlockOpen {
			inBlock = true
			lines = lines[:0]
			continue
		}
		if !inBlock {
			continue
		}
		if trimmed == BlockClose {
			closed = true
			break
		}
		lines = append(lines, stripCommentPrefix(line))
	}

	if !closed || len(lines) == 0 {
		return "", false
	}
	return strings.Join(lines, "\n"), true
}

// stripCommentPrefix removes leading whitespace, one '#', and one following space.
func stripCommentPrefix(line string) string {
	s := strings.TrimLeft(line, " \t")
	if rest, ok := strings.CutPrefix(s, "#"); ok {
		s = strings.TrimPrefix(rest, " ")
	}
	return s
}

// SPDX-License-Identifier: MPL-2.0

// Package marker finds top-level functions carrying a given decorator by
// scanning Python source text. Nothing is imported or executed: the scanner
// only tracks brackets, string literals and comments well enough to split the
// source into logical lines.
package marker

import (
	"regexp"
	"strings"
)

// Default is the decorator name that opts a function into the docs inventory.
const Default = "superpower"

var defPattern = regexp.MustCompile(`^(?:async\s+)?def\s+([\p{L}_][\p{L}\p{N}_]*)\s*\(`)

type logicalLine struct {
	text     string
	indented bool
}

// Marked returns the names of top-level functions decorated with marker,
// either as a bare name or as the last segment of a dotted name. Call forms
// such as @superpower() do not match. A source the scanner cannot split into
// logical lines yields an empty set.
func Marked(src []byte, marker string) map[string]bool {
	marked := map[string]bool{}
	if marker == "" {
		return marked
	}
	matcher := regexp.MustCompile(`^(?:[\p{L}_][\p{L}\p{N}_]*\s*\.\s*)*` + regexp.QuoteMeta(marker) + `$`)

	lines, ok := split(string(src))
	if !ok {
		return marked
	}

	var pending []string
	for _, line := range lines {
		text := strings.TrimSpace(line.text)
		switch {
		case text == "":
			// blank or comment-only lines keep pending decorators
		case line.indented:
			pending = nil
		case strings.HasPrefix(text, "@"):
			pending = append(pending, strings.TrimSpace(text[1:]))
		default:
			if m := defPattern.FindStringSubmatch(text); m != nil {
				for _, deco := range pending {
					if matcher.MatchString(deco) {
						marked[m[1]] = true
						break
					}
				}
			}
			pending = nil
		}
	}

	return marked
}

// split turns source into logical lines with comments removed. Bracketed and
// backslash continuations are joined with a single space; newlines inside
// triple-quoted strings are kept. It reports false on unterminated strings or
// unbalanced brackets.
func split(src string) ([]logicalLine, bool) {
	var (
		lines    []logicalLine
		cur      strings.Builder
		started  bool
		indented bool
		depth    int
		quote    byte
		triple   bool
	)

	flush := func() {
		if started {
			lines = append(lines, logicalLine{text: cur.String(), indented: indented})
		}
		cur.Reset()
		started = false
	}

	for i := 0; i < len(src); i++ {
		c := src[i]

		if !started && c != '\n' && c != '\r' {
			started = true
			indented = c == ' ' || c == '\t' || c == '\f'
		}

		if quote != 0 {
			switch {
			case c == '\\' && i+1 < len(src):
				cur.WriteByte(c)
				cur.WriteByte(src[i+1])
				i++
			case c == quote && !triple:
				cur.WriteByte(c)
				quote = 0
			case c == quote && triple && strings.HasPrefix(src[i:], strings.Repeat(string(quote), 3)):
				cur.WriteString(src[i : i+3])
				i += 2
				quote, triple = 0, false
			case c == '\n' && !triple:
				return nil, false
			default:
				cur.WriteByte(c)
			}
			continue
		}

		switch c {
		case '#':
			for i+1 < len(src) && src[i+1] != '\n' {
				i++
			}
		case '\'', '"':
			quote = c
			triple = strings.HasPrefix(src[i:], strings.Repeat(string(c), 3))
			if triple {
				cur.WriteString(src[i : i+3])
				i += 2
			} else {
				cur.WriteByte(c)
			}
		case '(', '[', '{':
			depth++
			cur.WriteByte(c)
		case ')', ']', '}':
			depth--
			if depth < 0 {
				return nil, false
			}
			cur.WriteByte(c)
		case '\\':
			if strings.HasPrefix(src[i+1:], "\r\n") {
				i += 2
				cur.WriteByte(' ')
			} else if strings.HasPrefix(src[i+1:], "\n") {
				i++
				cur.WriteByte(' ')
			} else {
				cur.WriteByte(c)
			}
		case '\r':
		case '\n':
			if depth > 0 {
				cur.WriteByte(' ')
				continue
			}
			flush()
		default:
			cur.WriteByte(c)
		}
	}

	if quote != 0 || depth != 0 {
		return nil, false
	}
	flush()
	return lines, true
}

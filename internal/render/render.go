// SPDX-License-Identifier: MPL-2.0

package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/supypowers/supypowers/internal/protocol"

	"github.com/charmbracelet/glamour"
)

const (
	// FormatJSON selects the JSON inventory.
	FormatJSON Format = "json"
	// FormatMarkdown selects the Markdown document.
	FormatMarkdown Format = "md"
)

// ErrInvalidFormat is returned for an unknown --format value.
var ErrInvalidFormat = errors.New("invalid format")

// Format names a docs output format.
type Format string

// IsValid returns whether the Format is json or md.
func (f Format) IsValid() (bool, []error) {
	switch f {
	case FormatJSON, FormatMarkdown:
		return true, nil
	default:
		return false, []error{fmt.Errorf("%w: %q (valid: json, md)", ErrInvalidFormat, f)}
	}
}

// JSON encodes v on one line without escaping <, > and &.
func JSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// Inventory renders inv in the given format. The result carries no trailing
// newline for JSON; Markdown always ends with exactly one.
func Inventory(inv protocol.Inventory, format Format) (string, error) {
	switch format {
	case FormatJSON:
		if inv == nil {
			inv = protocol.Inventory{}
		}
		return JSON(inv)
	case FormatMarkdown:
		return Markdown(inv), nil
	default:
		_, errs := format.IsValid()
		return "", errs[0]
	}
}

// Markdown renders the inventory as a "## Supypowers" document with one
// section per script and one subsection per function.
func Markdown(inv protocol.Inventory) string {
	lines := []string{"## Supypowers\n"}

	for _, entry := range inv {
		lines = append(lines, "### `"+entry.Script+"`\n")
		if entry.Error != "" {
			lines = append(lines, "**Error:** `"+entry.Error+"`\n")
			continue
		}
		if len(entry.Functions) == 0 {
			lines = append(lines, "_No supypowers found._\n")
			continue
		}
		for _, fn := range entry.Functions {
			lines = append(lines, "#### `"+fn.Name+"`\n")
			if desc := strings.TrimSpace(fn.Description); desc != "" {
				lines = append(lines, desc+"\n")
			}
			lines = append(lines,
				"**Input schema**\n", "```json", indentSchema(fn.InputSchema), "```\n",
				"**Output schema**\n", "```json", indentSchema(fn.OutputSchema), "```\n",
			)
		}
	}

	return strings.TrimRight(strings.Join(lines, "\n"), " \t\r\n") + "\n"
}

// indentSchema pretty-prints a schema with two-space indentation. Missing
// schemas render as null; malformed ones are emitted verbatim.
func indentSchema(schema json.RawMessage) string {
	trimmed := bytes.TrimSpace(schema)
	if len(trimmed) == 0 {
		return "null"
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, trimmed, "", "  "); err != nil {
		return string(trimmed)
	}
	return buf.String()
}

// TerminalOptions configures Terminal.
type TerminalOptions struct {
	// Style is "auto", "dark" or "light"; empty means auto.
	Style string
	// Width wraps text at this column; 0 disables wrapping.
	Width int
}

// Terminal renders Markdown for display with glamour.
func Terminal(markdown string, opts TerminalOptions) (string, error) {
	var rendererOpts []glamour.TermRendererOption
	switch opts.Style {
	case "", "auto":
		rendererOpts = append(rendererOpts, glamour.WithAutoStyle())
	default:
		rendererOpts = append(rendererOpts, glamour.WithStandardStyle(opts.Style))
	}
	rendererOpts = append(rendererOpts, glamour.WithWordWrap(opts.Width))

	renderer, err := glamour.NewTermRenderer(rendererOpts...)
	if err != nil {
		return "", fmt.Errorf("create markdown renderer: %w", err)
	}

	out, err := renderer.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return out, nil
}

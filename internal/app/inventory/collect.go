// SPDX-License-Identifier: MPL-2.0

package inventory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/supypowers/supypowers/internal/discovery"
	"github.com/supypowers/supypowers/internal/glue"
	"github.com/supypowers/supypowers/internal/marker"
	"github.com/supypowers/supypowers/internal/metadata"
	"github.com/supypowers/supypowers/internal/protocol"
	"github.com/supypowers/supypowers/internal/runtime"
	"github.com/supypowers/supypowers/internal/secrets"

	"github.com/sourcegraph/conc/panics"
)

type (
	// Request selects the scripts to document.
	Request struct {
		Folder    string
		Recursive bool
		// RequireMarker keeps only functions decorated with Marker.
		RequireMarker bool
		// Marker defaults to marker.Default.
		Marker  string
		Secrets []string
	}

	// Report is the result of Collect.
	Report struct {
		Inventory   protocol.Inventory
		Diagnostics []discovery.Diagnostic
	}

	// Collector introspects scripts through a Launcher.
	Collector struct {
		launcher runtime.Launcher
		timeout  time.Duration
		lenient  bool
	}

	// Option configures a Collector.
	Option func(*Collector)
)

// WithTimeout bounds each introspection child.
func WithTimeout(d time.Duration) Option {
	return func(c *Collector) { c.timeout = d }
}

// WithStrictInput makes Check accept JSON input only.
func WithStrictInput(strict bool) Option {
	return func(c *Collector) { c.lenient = !strict }
}

// NewCollector creates a Collector.
func NewCollector(launcher runtime.Launcher, opts ...Option) *Collector {
	c := &Collector{launcher: launcher, lenient: true}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Collect scans req.Folder and introspects every script in order. It fails
// only for problems that affect the whole run (missing folder, bad secrets,
// cancellation); per-script problems are recorded in the inventory.
func (c *Collector) Collect(ctx context.Context, req Request) (*Report, error) {
	scan, err := discovery.Scan(req.Folder, req.Recursive)
	if err != nil {
		return nil, err
	}

	overlay, err := secrets.Resolve(req.Secrets)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Inventory:   make(protocol.Inventory, 0, len(scan.Scripts)),
		Diagnostics: scan.Diagnostics,
	}

	for _, script := range scan.Scripts {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return report, fmt.Errorf("docs interrupted: %w", ctxErr)
		}

		docs := c.describeSafely(ctx, script, overlay)
		if req.RequireMarker && docs.Error == "" {
			docs = filterMarked(script, docs, req.Marker)
		}
		report.Inventory = append(report.Inventory, docs)
	}

	return report, nil
}

// describeSafely runs Describe, turning a panic into an error entry so one
// script cannot take down the inventory.
func (c *Collector) describeSafely(ctx context.Context, script discovery.ScriptRef, overlay secrets.Overlay) (docs protocol.ScriptDocs) {
	var catcher panics.Catcher
	catcher.Try(func() {
		docs = c.Describe(ctx, script, overlay)
	})
	if recovered := catcher.Recovered(); recovered != nil {
		slog.Warn("introspection panicked", "script", script.Display, "panic", recovered.Value)
		return protocol.ErrorEntry(script.Display, recovered.AsError())
	}
	return docs
}

// Describe introspects one script. The returned entry's script field is the
// display path; failures are reported in its error field.
func (c *Collector) Describe(ctx context.Context, script discovery.ScriptRef, overlay secrets.Overlay) protocol.ScriptDocs {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	meta := metadata.Read(script.Path)
	prog := glue.Introspector()

	res, err := c.launcher.Launch(ctx, runtime.LaunchRequest{
		Script:       script.Path,
		Dependencies: meta.Dependencies,
		Python:       meta.RequiresPython,
		Code:         prog.Source,
		CodeLabel:    prog.Name,
		Payload: protocol.IntrospectionPayload{
			ScriptPath: script.Path,
			ModuleName: glue.NewModuleName(),
		},
		Overlay: overlay,
	})
	if err != nil {
		var launchErr *runtime.LaunchError
		if errors.As(err, &launchErr) && launchErr.Stderr != "" {
			slog.Debug("introspection failed", "script", script.Display, "stderr", launchErr.Stderr)
			if reason := lastLine(launchErr.Stderr); reason != "" {
				err = fmt.Errorf("%w: %s", err, reason)
			}
		}
		return protocol.ErrorEntry(script.Display, err)
	}

	docs, err := protocol.DecodeScriptDocs(res.Stdout)
	if err != nil {
		return protocol.ErrorEntry(script.Display, err)
	}
	docs.Script = script.Display
	return docs
}

// filterMarked drops functions that are not decorated with the marker. An
// unreadable script keeps no functions.
func filterMarked(script discovery.ScriptRef, docs protocol.ScriptDocs, name string) protocol.ScriptDocs {
	if name == "" {
		name = marker.Default
	}
	src, err := os.ReadFile(script.Path)
	if err != nil {
		slog.Warn("cannot read script for marker scan", "script", script.Display, "error", err)
	}
	marked := marker.Marked(src, name)
	return docs.Filter(func(fn protocol.FunctionDescriptor) bool {
		return marked[fn.Name]
	})
}

// lastLine returns the last non-blank line of s, which for a Python
// traceback is the exception itself.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

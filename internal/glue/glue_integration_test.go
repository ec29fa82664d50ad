// SPDX-License-Identifier: MPL-2.0

package glue_test

import (
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/supypowers/supypowers/internal/glue"
	"github.com/supypowers/supypowers/internal/literal"
	"github.com/supypowers/supypowers/internal/protocol"

	"github.com/testcontainers/testcontainers-go"
	tcexec "github.com/testcontainers/testcontainers-go/exec"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	uvImage = "ghcr.io/astral-sh/uv:python3.12-bookworm-slim"

	// examplesDir holds the example scripts shipped with the repository.
	examplesDir = "../../examples"

	greetScript = `# /// script
# dependencies = ["pydantic>=2"]
# ///
from pydantic import BaseModel


class GreetInput(BaseModel):
    name: str


class GreetOutput(BaseModel):
    message: str


def greet(input: GreetInput) -> GreetOutput:
    """Say hello."""
    print("noise that must not reach stdout")
    return GreetOutput(message=f"Hello, {input.name}!")


def untyped(input):
    return input
`
)

// checkTestcontainersAvailable safely checks if testcontainers can be used.
// Returns true if containers are available, false otherwise.
func checkTestcontainersAvailable() (available bool) {
	defer func() {
		if r := recover(); r != nil {
			available = false
		}
	}()

	provider, err := testcontainers.ProviderDocker.GetProvider()
	if err != nil {
		return false
	}
	defer provider.Close()
	return true
}

// TestGlue_Integration runs the embedded programs under a real uv and Python.
// It requires Docker or Podman and network access for dependency installs.
func TestGlue_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	if !checkTestcontainersAvailable() {
		t.Skip("skipping glue integration tests: testcontainers provider not available")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	ctr, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:      uvImage,
			Entrypoint: []string{"sleep"},
			Cmd:        []string{"infinity"},
			Files: append([]testcontainers.ContainerFile{
				{Reader: strings.NewReader(greetScript), ContainerFilePath: "/work/greet.py", FileMode: 0o644},
				{Reader: strings.NewReader(glue.Runner().Source), ContainerFilePath: "/glue/runner.py", FileMode: 0o644},
				{Reader: strings.NewReader(glue.Introspector().Source), ContainerFilePath: "/glue/introspect.py", FileMode: 0o644},
			}, exampleFiles("exponents", "strings", "dates", "misc")...),
			WaitingFor: wait.ForExec([]string{"uv", "--version"}),
		},
		Started: true,
	})
	testcontainers.CleanupContainer(t, ctr)
	if err != nil {
		t.Fatalf("failed to start uv container: %v", err)
	}

	t.Run("RunnerSuccess", func(t *testing.T) {
		code, out := runGlue(ctx, t, ctr, "runner", protocol.ExecutionPayload{
			ScriptPath:   "/work/greet.py",
			FunctionName: "greet",
			InputData:    `{"name": "World"}`,
			ModuleName:   glue.NewModuleName(),
		})
		if code != 0 {
			t.Fatalf("runner exit code = %d, want 0\n%s", code, out)
		}
		env, decodeErr := protocol.DecodeEnvelope(out)
		if decodeErr != nil {
			t.Fatalf("DecodeEnvelope() error = %v\n%s", decodeErr, out)
		}
		if !env.OK || string(env.Data) != `{"message": "Hello, World!"}` {
			t.Errorf("envelope = %+v, data %s", env, env.Data)
		}
	})

	t.Run("RunnerValidationError", func(t *testing.T) {
		code, out := runGlue(ctx, t, ctr, "runner", protocol.ExecutionPayload{
			ScriptPath:   "/work/greet.py",
			FunctionName: "greet",
			InputData:    `{"nom": "World"}`,
			ModuleName:   glue.NewModuleName(),
		})
		if code != 1 {
			t.Errorf("runner exit code = %d, want 1\n%s", code, out)
		}
		env, decodeErr := protocol.DecodeEnvelope(out)
		if decodeErr != nil || env.OK {
			t.Errorf("envelope = %+v, err = %v, want ok=false", env, decodeErr)
		}
	})

	t.Run("RunnerStructuralError", func(t *testing.T) {
		code, out := runGlue(ctx, t, ctr, "runner", protocol.ExecutionPayload{
			ScriptPath:   "/work/greet.py",
			FunctionName: "untyped",
			InputData:    `{}`,
			ModuleName:   glue.NewModuleName(),
		})
		if code != 2 {
			t.Errorf("runner exit code = %d, want 2\n%s", code, out)
		}
		if !strings.Contains(out, "input must be a Pydantic BaseModel type annotation") {
			t.Errorf("output = %s", out)
		}
	})

	t.Run("Introspect", func(t *testing.T) {
		code, out := runGlue(ctx, t, ctr, "introspect", protocol.IntrospectionPayload{
			ScriptPath: "/work/greet.py",
			ModuleName: glue.NewModuleName(),
		})
		if code != 0 {
			t.Fatalf("introspect exit code = %d, want 0\n%s", code, out)
		}
		docs, decodeErr := protocol.DecodeScriptDocs(out)
		if decodeErr != nil {
			t.Fatalf("DecodeScriptDocs() error = %v\n%s", decodeErr, out)
		}
		fn, found := docs.Lookup("greet")
		if !found {
			t.Fatalf("greet not described: %+v", docs)
		}
		if fn.Description != "Say hello." || !fn.HasInputSchema() {
			t.Errorf("greet descriptor = %+v", fn)
		}
		var schema struct {
			Properties map[string]json.RawMessage `json:"properties"`
		}
		if err := json.Unmarshal(fn.InputSchema, &schema); err != nil || schema.Properties["name"] == nil {
			t.Errorf("input_schema = %s, want a name property", fn.InputSchema)
		}
		if untyped, ok := docs.Lookup("untyped"); !ok || untyped.HasInputSchema() {
			t.Errorf("untyped descriptor = %+v, found %v; want a null input schema", untyped, ok)
		}
	})

	t.Run("Examples", func(t *testing.T) {
		tests := []struct {
			target   string
			input    string
			wantData string
		}{
			{"exponents:compute_sqrt", "{'x': 9}", `{"result": 3.0}`},
			{"strings:reverse_string", "{'s': 'abc'}", `{"result": "cba"}`},
			{"dates:add_days", "{'d': '2025-01-01', 'days': 10}", `{"result": "2025-01-11"}`},
			{"misc:echo", "{'message': 'hi'}", `"hi"`},
		}

		for _, tt := range tests {
			t.Run(tt.target, func(t *testing.T) {
				script, function, _ := strings.Cut(tt.target, ":")
				input, ok := literal.Normalize(tt.input, true)
				if !ok {
					t.Fatalf("Normalize(%q) rejected the input", tt.input)
				}

				code, out := runGlue(ctx, t, ctr, "runner", protocol.ExecutionPayload{
					ScriptPath:   "/work/examples/" + script + ".py",
					FunctionName: function,
					InputData:    input,
					ModuleName:   glue.NewModuleName(),
				})
				if code != 0 {
					t.Fatalf("runner exit code = %d, want 0\n%s", code, out)
				}
				env, err := protocol.DecodeEnvelope(out)
				if err != nil {
					t.Fatalf("DecodeEnvelope() error = %v\n%s", err, out)
				}
				if !env.OK || string(env.Data) != tt.wantData {
					t.Errorf("envelope = %+v, data %s, want %s", env, env.Data, tt.wantData)
				}
			})
		}
	})

	t.Run("ExamplesIntrospect", func(t *testing.T) {
		code, out := runGlue(ctx, t, ctr, "introspect", protocol.IntrospectionPayload{
			ScriptPath: "/work/examples/exponents.py",
			ModuleName: glue.NewModuleName(),
		})
		if code != 0 {
			t.Fatalf("introspect exit code = %d, want 0\n%s", code, out)
		}
		docs, err := protocol.DecodeScriptDocs(out)
		if err != nil {
			t.Fatalf("DecodeScriptDocs() error = %v", err)
		}
		for _, name := range []string{"compute_different_power", "compute_sqrt"} {
			if fn, found := docs.Lookup(name); !found || !fn.HasInputSchema() {
				t.Errorf("%s missing or untyped in %+v", name, docs.Functions)
			}
		}
	})
}

// exampleFiles maps example scripts into /work/examples in the container.
func exampleFiles(names ...string) []testcontainers.ContainerFile {
	files := make([]testcontainers.ContainerFile, 0, len(names))
	for _, name := range names {
		files = append(files, testcontainers.ContainerFile{
			HostFilePath:      filepath.Join(examplesDir, name+".py"),
			ContainerFilePath: "/work/examples/" + name + ".py",
			FileMode:          0o644,
		})
	}
	return files
}

// runGlue feeds payload to one glue program through `uv run` and returns the
// exit code and stdout.
func runGlue(ctx context.Context, t *testing.T, ctr testcontainers.Container, program string, payload any) (int, string) {
	t.Helper()

	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatal(err)
	}
	if err = ctr.CopyToContainer(ctx, data, "/work/payload.json", 0o644); err != nil {
		t.Fatalf("failed to copy payload: %v", err)
	}

	script := `uv run --no-project -q --no-progress --with 'pydantic>=2' python -c "$(cat /glue/` + program + `.py)" < /work/payload.json 2>/dev/null`
	code, reader, err := ctr.Exec(ctx, []string{"sh", "-c", script}, tcexec.Multiplexed())
	if err != nil {
		t.Fatalf("exec failed: %v", err)
	}
	out, err := io.ReadAll(reader)
	if err != nil {
		t.Fatal(err)
	}
	return code, strings.TrimSpace(string(out))
}

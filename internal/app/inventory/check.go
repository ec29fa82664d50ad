// SPDX-License-Identifier: MPL-2.0

package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/supypowers/supypowers/internal/app/invoke"
	"github.com/supypowers/supypowers/internal/discovery"
	"github.com/supypowers/supypowers/internal/literal"
	"github.com/supypowers/supypowers/internal/runtime"
	"github.com/supypowers/supypowers/internal/secrets"

	"github.com/xeipuuv/gojsonschema"
)

// Messages shared with the invocation runner, so `check` and `run` report
// the same contract violations.
const (
	msgNotSchemaTyped = "input must be a Pydantic BaseModel type annotation"
	msgInvalidInput   = "input_data must be valid JSON or a literal-ish value"
	msgNotAnObject    = "input_data must be an object mapping for the input model"
	msgSchemaMismatch = "input_data does not match the input schema"
)

var (
	// ErrFunctionNotFound is returned when the target function is not a
	// candidate in its script.
	ErrFunctionNotFound = errors.New("function not found")
	// ErrSchemaMismatch is returned when input fails schema validation.
	ErrSchemaMismatch = errors.New(msgSchemaMismatch)
)

type (
	// CheckRequest names a function and the input to validate against it.
	CheckRequest struct {
		Folder    string
		Target    string
		InputData string
		Secrets   []string
	}

	// CheckResult is printed by `check`.
	CheckResult struct {
		OK     bool     `json:"ok"`
		Error  string   `json:"error,omitempty"`
		Errors []string `json:"errors,omitempty"`
	}
)

// Check introspects the target's script and validates the input against
// the function's input schema without invoking the function.
func (c *Collector) Check(ctx context.Context, req CheckRequest) *invoke.Outcome {
	folder, err := discovery.ResolveFolder(req.Folder)
	if err != nil {
		return invoke.Structural(err)
	}
	target, err := discovery.ParseTarget(req.Target)
	if err != nil {
		return invoke.Structural(err)
	}
	script, err := discovery.ResolveScript(folder, target.Script)
	if err != nil {
		return invoke.Structural(err)
	}
	overlay, err := secrets.Resolve(req.Secrets)
	if err != nil {
		return invoke.Structural(err)
	}

	docs := c.Describe(ctx, script, overlay)
	if docs.Error != "" {
		return checkFailure(runtime.ExitFailure, errors.New(docs.Error), nil)
	}

	fn, found := docs.Lookup(target.Function)
	if !found {
		return checkFailure(runtime.ExitStructural, fmt.Errorf("%w: %s", ErrFunctionNotFound, target.Function), nil)
	}
	if !fn.HasInputSchema() {
		return checkFailure(runtime.ExitStructural, errors.New(msgNotSchemaTyped), nil)
	}

	input, _ := literal.Normalize(req.InputData, c.lenient)
	var decoded any
	if err := json.Unmarshal([]byte(input), &decoded); err != nil {
		return checkFailure(runtime.ExitStructural, errors.New(msgInvalidInput), nil)
	}
	if _, isObject := decoded.(map[string]any); !isObject {
		return checkFailure(runtime.ExitStructural, errors.New(msgNotAnObject), nil)
	}

	problems, err := Validate(fn.InputSchema, []byte(input))
	if err != nil {
		return checkFailure(runtime.ExitFailure, err, nil)
	}
	if len(problems) > 0 {
		return checkFailure(runtime.ExitFailure, ErrSchemaMismatch, problems)
	}

	return &invoke.Outcome{ExitCode: runtime.ExitSuccess, Result: CheckResult{OK: true}}
}

// Validate checks document against schema and returns one message per
// violation. An error means the schema itself could not be used.
func Validate(schema, document []byte) ([]string, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schema),
		gojsonschema.NewBytesLoader(document),
	)
	if err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}
	if result.Valid() {
		return nil, nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, re := range result.Errors() {
		problems = append(problems, re.String())
	}
	return problems, nil
}

func checkFailure(code runtime.ExitCode, err error, problems []string) *invoke.Outcome {
	return &invoke.Outcome{
		ExitCode: code,
		Result:   CheckResult{OK: false, Error: err.Error(), Errors: problems},
		Err:      err,
	}
}

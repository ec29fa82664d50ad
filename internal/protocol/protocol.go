// SPDX-License-Identifier: MPL-2.0

package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// MsgInvalidRunnerOutput is the error reported when the child exits cleanly
// but its stdout is not a JSON envelope.
const MsgInvalidRunnerOutput = "runner did not emit valid JSON"

// ErrEnvelopeDecode is the sentinel error wrapped by EnvelopeDecodeError.
var ErrEnvelopeDecode = errors.New("invalid runner envelope")

type (
	// ExecutionPayload asks the invocation runner to call one function.
	ExecutionPayload struct {
		ScriptPath   string `json:"script_path"`
		FunctionName string `json:"function_name"`
		InputData    string `json:"input_data"`
		ModuleName   string `json:"module_name"`
	}

	// IntrospectionPayload asks the introspection runner to describe a script.
	IntrospectionPayload struct {
		ScriptPath string `json:"script_path"`
		ModuleName string `json:"module_name"`
	}

	// Envelope is the execution result. Exactly one of Data or Error is
	// meaningful, selected by OK.
	Envelope struct {
		OK    bool            `json:"ok"`
		Data  json.RawMessage `json:"data,omitempty"`
		Error string          `json:"error,omitempty"`
	}

	// LaunchFailure is printed when the child exits non-zero without a usable envelope.
	LaunchFailure struct {
		OK       bool   `json:"ok"`
		Error    string `json:"error"`
		ExitCode int    `json:"exit_code"`
		UVStdout string `json:"uv_stdout"`
		UVStderr string `json:"uv_stderr"`
	}

	// DecodeFailure is printed when the child exits zero but its output is not JSON.
	DecodeFailure struct {
		OK    bool   `json:"ok"`
		Error string `json:"error"`
		Raw   string `json:"raw"`
	}

	// Failure is the minimal ok=false result for errors raised before launch.
	Failure struct {
		OK    bool   `json:"ok"`
		Error string `json:"error"`
		Hint  string `json:"hint,omitempty"`
	}

	// EnvelopeDecodeError reports child output that is not a valid envelope.
	EnvelopeDecodeError struct {
		Raw    string
		Reason string
	}
)

// Error implements the error interface.
func (e *EnvelopeDecodeError) Error() string {
	return fmt.Sprintf("%s: %s", MsgInvalidRunnerOutput, e.Reason)
}

// Unwrap returns ErrEnvelopeDecode so callers can use errors.Is for programmatic detection.
func (e *EnvelopeDecodeError) Unwrap() error { return ErrEnvelopeDecode }

// Success builds an ok envelope around data.
func Success(data json.RawMessage) Envelope {
	return Envelope{OK: true, Data: data}
}

// Fail builds an error envelope.
func Fail(msg string) Envelope {
	return Envelope{OK: false, Error: msg}
}

// MarshalJSON emits data for ok envelopes (null when empty) and error otherwise.
func (e Envelope) MarshalJSON() ([]byte, error) {
	if e.OK {
		data := e.Data
		if len(bytes.TrimSpace(data)) == 0 {
			data = json.RawMessage("null")
		}
		return marshalUnescaped(struct {
			OK   bool            `json:"ok"`
			Data json.RawMessage `json:"data"`
		}{true, data})
	}
	return marshalUnescaped(struct {
		OK    bool   `json:"ok"`
		Error string `json:"error"`
	}{false, e.Error})
}

// marshalUnescaped encodes v like json.Marshal but keeps <, > and & literal.
func marshalUnescaped(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// DecodeEnvelope parses child stdout into an envelope. The output must be a
// JSON object with a boolean "ok"; failed envelopes must carry a string error.
func DecodeEnvelope(out string) (Envelope, error) {
	raw := strings.TrimSpace(out)

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return Envelope{}, &EnvelopeDecodeError{Raw: raw, Reason: "not a JSON object"}
	}

	var env Envelope
	okField, present := fields["ok"]
	if !present || json.Unmarshal(okField, &env.OK) != nil {
		return Envelope{}, &EnvelopeDecodeError{Raw: raw, Reason: `missing boolean "ok"`}
	}

	if env.OK {
		env.Data = fields["data"]
		return env, nil
	}

	if errField, has := fields["error"]; has {
		if err := json.Unmarshal(errField, &env.Error); err != nil {
			return Envelope{}, &EnvelopeDecodeError{Raw: raw, Reason: `"error" is not a string`}
		}
	}
	return env, nil
}

// NewDecodeFailure builds the result printed for undecodable child output.
func NewDecodeFailure(raw string) DecodeFailure {
	return DecodeFailure{OK: false, Error: MsgInvalidRunnerOutput, Raw: raw}
}

// NewFailure builds an ok=false result for a pre-launch error.
func NewFailure(err error) Failure {
	return Failure{OK: false, Error: err.Error()}
}

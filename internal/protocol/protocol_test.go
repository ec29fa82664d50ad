// SPDX-License-Identifier: MPL-2.0

package protocol

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestEnvelopeMarshalJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		env  Envelope
		want string
	}{
		{name: "success with data", env: Success(json.RawMessage(`{"value":3}`)), want: `{"ok":true,"data":{"value":3}}`},
		{name: "success without data", env: Success(nil), want: `{"ok":true,"data":null}`},
		{name: "failure drops data", env: Envelope{OK: false, Data: json.RawMessage(`1`), Error: "boom"}, want: `{"ok":false,"error":"boom"}`},
		{name: "failure helper", env: Fail("function not found: nope"), want: `{"ok":false,"error":"function not found: nope"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := json.Marshal(tt.env)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("Marshal() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDecodeEnvelope(t *testing.T) {
	t.Parallel()

	env, err := DecodeEnvelope(" {\"ok\": true, \"data\": [1, 2]}\n")
	if err != nil {
		t.Fatalf("DecodeEnvelope() error = %v", err)
	}
	if !env.OK || string(env.Data) != "[1, 2]" {
		t.Errorf("unexpected envelope %+v", env)
	}

	env, err = DecodeEnvelope(`{"ok": false, "error": "input must be a Pydantic BaseModel type annotation"}`)
	if err != nil {
		t.Fatalf("DecodeEnvelope() error = %v", err)
	}
	if env.OK || env.Error != "input must be a Pydantic BaseModel type annotation" {
		t.Errorf("unexpected envelope %+v", env)
	}
}

func TestDecodeEnvelopeErrors(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"",
		"Traceback (most recent call last):",
		`[1, 2]`,
		`{"data": 1}`,
		`{"ok": "yes"}`,
		`{"ok": false, "error": 42}`,
	}

	for _, in := range inputs {
		_, err := DecodeEnvelope(in)
		if err == nil {
			t.Errorf("DecodeEnvelope(%q) expected error", in)
			continue
		}
		if !errors.Is(err, ErrEnvelopeDecode) {
			t.Errorf("DecodeEnvelope(%q) error does not wrap ErrEnvelopeDecode: %v", in, err)
		}
		var decErr *EnvelopeDecodeError
		if !errors.As(err, &decErr) {
			t.Errorf("expected *EnvelopeDecodeError, got %T", err)
		}
	}
}

func TestFailureShapes(t *testing.T) {
	t.Parallel()

	launch, err := json.Marshal(LaunchFailure{Error: "`uv run` failed with exit code 3", ExitCode: 3, UVStdout: "", UVStderr: "boom"})
	if err != nil {
		t.Fatal(err)
	}
	want := "{\"ok\":false,\"error\":\"`uv run` failed with exit code 3\",\"exit_code\":3,\"uv_stdout\":\"\",\"uv_stderr\":\"boom\"}"
	if string(launch) != want {
		t.Errorf("LaunchFailure = %s, want %s", launch, want)
	}

	decode, err := json.Marshal(NewDecodeFailure("garbage"))
	if err != nil {
		t.Fatal(err)
	}
	if string(decode) != `{"ok":false,"error":"runner did not emit valid JSON","raw":"garbage"}` {
		t.Errorf("DecodeFailure = %s", decode)
	}

	pre, err := json.Marshal(NewFailure(errors.New("folder not found: nope")))
	if err != nil {
		t.Fatal(err)
	}
	if string(pre) != `{"ok":false,"error":"folder not found: nope"}` {
		t.Errorf("Failure = %s", pre)
	}
}

func TestMarshalJSON_KeepsHTMLCharacters(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value json.Marshaler
		want  string
	}{
		{name: "success data", value: Success(json.RawMessage(`"a<b&c>"`)), want: `{"ok":true,"data":"a<b&c>"}`},
		{name: "failure message", value: Fail("expected <int> & got <str>"), want: `{"ok":false,"error":"expected <int> & got <str>"}`},
		{
			name: "descriptor description",
			value: ScriptDocs{Script: "a&b.py", Functions: []FunctionDescriptor{{Name: "lt", Description: "a<b"}}},
			want:  `{"script":"a&b.py","functions":[{"name":"lt","description":"a<b","input_schema":null,"output_schema":null}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := tt.value.MarshalJSON()
			if err != nil {
				t.Fatalf("MarshalJSON() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("MarshalJSON() = %s, want %s", got, tt.want)
			}
		})
	}
}

// SPDX-License-Identifier: MPL-2.0

package protocol

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestScriptDocsMarshalJSON(t *testing.T) {
	t.Parallel()

	inv := Inventory{
		{Script: "a.py", Functions: []FunctionDescriptor{{Name: "f", Description: "Doc.", InputSchema: json.RawMessage(`{"type":"object"}`)}}},
		{Script: "b.py"},
		ErrorEntry("c.py", errors.New("`uv run` failed with exit code 1")),
	}

	got, err := json.Marshal(inv)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	want := `[{"script":"a.py","functions":[{"name":"f","description":"Doc.","input_schema":{"type":"object"},"output_schema":null}]},` +
		`{"script":"b.py","functions":[]},` +
		"{\"script\":\"c.py\",\"error\":\"`uv run` failed with exit code 1\",\"functions\":[]}]"
	if string(got) != want {
		t.Errorf("Marshal() =\n%s\nwant\n%s", got, want)
	}
	if inv[0].Functions[0].OutputSchema != nil {
		t.Error("MarshalJSON must not modify the receiver's descriptors")
	}
}

func TestDecodeScriptDocs(t *testing.T) {
	t.Parallel()

	docs, err := DecodeScriptDocs(`{"script": "/tmp/a.py", "functions": [
		{"name": "echo", "description": "", "input_schema": null, "output_schema": null},
		{"name": "sqrt", "description": "Square root.", "input_schema": {"type": "object"}, "output_schema": null}
	]}`)
	if err != nil {
		t.Fatalf("DecodeScriptDocs() error = %v", err)
	}
	if docs.Script != "/tmp/a.py" || len(docs.Functions) != 2 {
		t.Fatalf("unexpected docs %+v", docs)
	}
	if docs.Functions[0].HasInputSchema() {
		t.Error("expected echo to have no input schema")
	}
	fn, ok := docs.Lookup("sqrt")
	if !ok || !fn.HasInputSchema() {
		t.Errorf("Lookup(sqrt) = %+v, %v", fn, ok)
	}
	if _, ok := docs.Lookup("missing"); ok {
		t.Error("expected Lookup(missing) to fail")
	}

	filtered := docs.Filter(func(fn FunctionDescriptor) bool { return fn.Name == "sqrt" })
	if len(filtered.Functions) != 1 || len(docs.Functions) != 2 {
		t.Errorf("Filter() = %+v (original %d)", filtered.Functions, len(docs.Functions))
	}

	empty, err := DecodeScriptDocs(`{"script": "x.py"}`)
	if err != nil || empty.Functions == nil {
		t.Errorf("expected non-nil functions, got %+v, %v", empty, err)
	}

	if _, err := DecodeScriptDocs("not json"); !errors.Is(err, ErrEnvelopeDecode) {
		t.Errorf("expected ErrEnvelopeDecode, got %v", err)
	}
}

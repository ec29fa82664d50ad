// SPDX-License-Identifier: MPL-2.0

package protocol

import (
	"encoding/json"
	"strings"
)

type (
	// FunctionDescriptor documents one discovered function. Schemas are opaque
	// JSON documents, or JSON null when the type is not schema-typed.
	FunctionDescriptor struct {
		Name         string          `json:"name"`
		Description  string          `json:"description"`
		InputSchema  json.RawMessage `json:"input_schema"`
		OutputSchema json.RawMessage `json:"output_schema"`
	}

	// ScriptDocs is one inventory entry. Error is set, and Functions empty,
	// when the script could not be introspected.
	ScriptDocs struct {
		Script    string               `json:"script"`
		Error     string               `json:"error,omitempty"`
		Functions []FunctionDescriptor `json:"functions"`
	}

	// Inventory is the ordered docs result for a folder, one entry per script.
	Inventory []ScriptDocs
)

// MarshalJSON renders missing schemas as null and a nil function list as [].
func (s ScriptDocs) MarshalJSON() ([]byte, error) {
	type alias ScriptDocs
	out := alias(s)
	out.Functions = make([]FunctionDescriptor, len(s.Functions))
	for i, fn := range s.Functions {
		out.Functions[i] = fn.normalized()
	}
	return marshalUnescaped(out)
}

func (d FunctionDescriptor) normalized() FunctionDescriptor {
	if len(d.InputSchema) == 0 {
		d.InputSchema = json.RawMessage("null")
	}
	if len(d.OutputSchema) == 0 {
		d.OutputSchema = json.RawMessage("null")
	}
	return d
}

// HasInputSchema reports whether the descriptor carries a non-null input schema.
func (d FunctionDescriptor) HasInputSchema() bool {
	s := strings.TrimSpace(string(d.InputSchema))
	return s != "" && s != "null"
}

// ErrorEntry builds the inventory entry for a script that failed.
func ErrorEntry(script string, err error) ScriptDocs {
	return ScriptDocs{Script: script, Error: err.Error(), Functions: []FunctionDescriptor{}}
}

// DecodeScriptDocs parses the introspection runner's output.
func DecodeScriptDocs(out string) (ScriptDocs, error) {
	raw := strings.TrimSpace(out)

	var docs ScriptDocs
	if err := json.Unmarshal([]byte(raw), &docs); err != nil {
		return ScriptDocs{}, &EnvelopeDecodeError{Raw: raw, Reason: "not an introspection document"}
	}
	if docs.Functions == nil {
		docs.Functions = []FunctionDescriptor{}
	}
	return docs, nil
}

// Lookup returns the descriptor named name.
func (s ScriptDocs) Lookup(name string) (FunctionDescriptor, bool) {
	for _, fn := range s.Functions {
		if fn.Name == name {
			return fn, true
		}
	}
	return FunctionDescriptor{}, false
}

// Filter keeps only the descriptors for which keep returns true.
func (s ScriptDocs) Filter(keep func(FunctionDescriptor) bool) ScriptDocs {
	out := s
	out.Functions = make([]FunctionDescriptor, 0, len(s.Functions))
	for _, fn := range s.Functions {
		if keep(fn) {
			out.Functions = append(out.Functions, fn)
		}
	}
	return out
}

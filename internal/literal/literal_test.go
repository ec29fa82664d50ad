// SPDX-License-Identifier: MPL-2.0

package literal

import (
	"errors"
	"testing"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		lenient bool
		want    string
		wantOK  bool
	}{
		{name: "json object unchanged", input: ` {"x": 9} `, lenient: true, want: `{"x": 9}`, wantOK: true},
		{name: "json array unchanged strict", input: `[1, 2]`, lenient: false, want: `[1, 2]`, wantOK: true},
		{name: "single quoted dict", input: `{'x': 9}`, lenient: true, want: `{"x":9}`, wantOK: true},
		{name: "strict rejects literal", input: `{'x': 9}`, lenient: false, want: `{'x': 9}`, wantOK: false},
		{name: "python constants", input: `{'a': True, 'b': False, 'c': None}`, lenient: true, want: `{"a":true,"b":false,"c":null}`, wantOK: true},
		{name: "tuple becomes array", input: `{'p': (1, 2,)}`, lenient: true, want: `{"p":[1,2]}`, wantOK: true},
		{name: "trailing commas", input: `{'a': [1, 2,],}`, lenient: true, want: `{"a":[1,2]}`, wantOK: true},
		{name: "non-string keys", input: `{1: 'one', None: 0, True: 1}`, lenient: true, want: `{"1":"one","null":0,"true":1}`, wantOK: true},
		{name: "garbage returned trimmed", input: "  not json  ", lenient: true, want: "not json", wantOK: false},
		{name: "call rejected", input: `{'x': open('f')}`, lenient: true, want: `{'x': open('f')}`, wantOK: false},
		{name: "operator rejected", input: `{'x': 1 + 2}`, lenient: true, want: `{'x': 1 + 2}`, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := Normalize(tt.input, tt.lenient)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Normalize(%q, %v) = (%q, %v), want (%q, %v)", tt.input, tt.lenient, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestToJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{`42`, `42`},
		{`-7`, `-7`},
		{`+ 3`, `3`},
		{`1_000_000`, `1000000`},
		{`0x_ff`, `255`},
		{`0o17`, `15`},
		{`0b101`, `5`},
		{`000`, `0`},
		{`1.5`, `1.5`},
		{`1e5`, `100000.0`},
		{`.25`, `0.25`},
		{`2.`, `2.0`},
		{`-1.5e-3`, `-0.0015`},
		{`'it\'s'`, `"it's"`},
		{`"tab\there"`, `"tab\there"`},
		{`'\x41é\U0001F600'`, `"Aé😀"`},
		{`'\101'`, `"A"`},
		{`r'\d+'`, `"\\d+"`},
		{`u'unicode'`, `"unicode"`},
		{`'a' "b" 'c'`, `"abc"`},
		{`'''multi
line'''`, `"multi\nline"`},
		{`'<&>'`, `"<&>"`},
		{`'\q'`, `"\\q"`},
		{`[]`, `[]`},
		{`()`, `[]`},
		{`(5)`, `5`},
		{`('solo',)`, `["solo"]`},
		{`{}`, `{}`},
		{`[[1, [2]], {'k': {'n': null}}]`, `[[1,[2]],{"k":{"n":null}}]`},
		{"{\n  'a': 1,  # first\n  'b': 2,\n}", `{"a":1,"b":2}`},
	}

	for _, tt := range tests {
		got, err := ToJSON(tt.input)
		if err != nil {
			t.Errorf("ToJSON(%q) unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ToJSON(%q) = %s, want %s", tt.input, got, tt.want)
		}
	}
}

func TestToJSONRejects(t *testing.T) {
	t.Parallel()

	inputs := []string{
		``,
		`{1, 2}`,
		`{'only'}`,
		`b'bytes'`,
		`f'{x}'`,
		`__import__('os')`,
		`x`,
		`1j`,
		`3+4j`,
		`007`,
		`1__0`,
		`1_`,
		`1e`,
		`1e400`,
		`-True`,
		`'unterminated`,
		"'new\nline'",
		`'\N{BULLET}'`,
		`[1 2]`,
		`{'a' 1}`,
		`{[1]: 2}`,
		`{(1, 2): 3}`,
		`[1] [2]`,
		`12abc`,
	}

	for _, in := range inputs {
		_, err := ToJSON(in)
		if err == nil {
			t.Errorf("ToJSON(%q) expected error", in)
			continue
		}
		if !errors.Is(err, ErrNotLiteral) {
			t.Errorf("ToJSON(%q) error does not wrap ErrNotLiteral: %v", in, err)
		}
	}
}

func TestToJSONDepthLimit(t *testing.T) {
	t.Parallel()

	deep := ""
	for range maxDepth + 10 {
		deep += "["
	}
	if _, err := ToJSON(deep); err == nil {
		t.Error("expected error for excessive nesting")
	}
}

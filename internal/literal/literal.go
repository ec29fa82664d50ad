// SPDX-License-Identifier: MPL-2.0

package literal

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"unicode/utf8"
)

const maxDepth = 256

// ErrNotLiteral is the sentinel error wrapped by SyntaxError.
var ErrNotLiteral = errors.New("not a literal expression")

type (
	// SyntaxError reports where the literal grammar stopped matching.
	SyntaxError struct {
		Offset int
		Msg    string
	}

	kind int

	parser struct {
		src   string
		pos   int
		depth int
	}
)

const (
	kindScalar kind = iota
	kindString
	kindContainer
)

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	return fmt.Sprintf("invalid literal at offset %d: %s", e.Offset, e.Msg)
}

// Unwrap returns ErrNotLiteral so callers can use errors.Is for programmatic detection.
func (e *SyntaxError) Unwrap() error { return ErrNotLiteral }

// Normalize returns input as JSON text. Valid JSON is returned trimmed but
// otherwise unchanged. When lenient is set, input in the literal grammar is
// converted to compact JSON. The boolean reports whether the returned text is
// valid JSON; when it is false the trimmed input is returned as-is.
func Normalize(input string, lenient bool) (string, bool) {
	trimmed := strings.TrimSpace(input)
	if json.Valid([]byte(trimmed)) {
		return trimmed, true
	}
	if !lenient {
		return trimmed, false
	}
	out, err := ToJSON(trimmed)
	if err != nil {
		return trimmed, false
	}
	return out, true
}

// ToJSON parses src in the literal grammar and returns the equivalent JSON.
func ToJSON(src string) (string, error) {
	p := &parser{src: src}
	p.skipSpace()
	out, _, err := p.value()
	if err != nil {
		return "", err
	}
	p.skipSpace()
	if p.pos < len(p.src) {
		return "", p.errorf("unexpected trailing input %q", p.rest(8))
	}
	return out, nil
}

func (p *parser) errorf(format string, args ...any) error {
	return &SyntaxError{Offset: p.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) rest(n int) string {
	if p.pos+n > len(p.src) {
		return p.src[p.pos:]
	}
	return p.src[p.pos : p.pos+n]
}

func (p *parser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

// skipSpace skips whitespace, comments and backslash line continuations.
func (p *parser) skipSpace() {
	for p.pos < len(p.src) {
		switch c := p.src[p.pos]; {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f':
			p.pos++
		case c == '#':
			for p.pos < len(p.src) && p.src[p.pos] != '\n' {
				p.pos++
			}
		case c == '\\' && strings.HasPrefix(p.src[p.pos+1:], "\n"):
			p.pos += 2
		case c == '\\' && strings.HasPrefix(p.src[p.pos+1:], "\r\n"):
			p.pos += 3
		default:
			return
		}
	}
}

func (p *parser) value() (string, kind, error) {
	if p.depth > maxDepth {
		return "", 0, p.errorf("nesting exceeds %d levels", maxDepth)
	}

	c := p.peek()
	switch {
	case c == 0:
		return "", 0, p.errorf("unexpected end of input")
	case c == '[':
		return p.sequence('[', ']')
	case c == '(':
		return p.parenthesized()
	case c == '{':
		return p.mapping()
	case c == '\'' || c == '"':
		return p.concatStrings()
	case c == '-' || c == '+':
		return p.signed()
	case isDigit(c) || (c == '.' && isDigit(p.byteAt(p.pos+1))):
		num, err := p.number()
		return num, kindScalar, err
	case isIdentStart(c):
		return p.word()
	default:
		return "", 0, p.errorf("unexpected character %q", c)
	}
}

func (p *parser) byteAt(i int) byte {
	if i >= len(p.src) {
		return 0
	}
	return p.src[i]
}

func (p *parser) signed() (string, kind, error) {
	sign := p.src[p.pos]
	p.pos++
	p.skipSpace()
	c := p.peek()
	if !isDigit(c) && (c != '.' || !isDigit(p.byteAt(p.pos+1))) {
		return "", 0, p.errorf("sign must be followed by a number")
	}
	num, err := p.number()
	if err != nil {
		return "", 0, err
	}
	if sign == '-' {
		num = "-" + num
	}
	return num, kindScalar, nil
}

func (p *parser) word() (string, kind, error) {
	start := p.pos
	for p.pos < len(p.src) && isIdentPart(p.src[p.pos]) {
		p.pos++
	}
	w := p.src[start:p.pos]

	if q := p.peek(); q == '\'' || q == '"' {
		switch strings.ToLower(w) {
		case "r", "u":
			p.pos = start
			return p.concatStrings()
		default:
			p.pos = start
			return "", 0, p.errorf("unsupported string prefix %q", w)
		}
	}

	switch w {
	case "True", "true":
		return "true", kindScalar, nil
	case "False", "false":
		return "false", kindScalar, nil
	case "None", "null":
		return "null", kindScalar, nil
	}
	p.pos = start
	return "", 0, p.errorf("name %q is not a literal", w)
}

func (p *parser) sequence(open, closing byte) (string, kind, error) {
	p.pos++ // open
	p.depth++
	defer func() { p.depth-- }()

	var buf bytes.Buffer
	buf.WriteByte('[')
	first := true
	for {
		p.skipSpace()
		if p.peek() == closing {
			p.pos++
			break
		}
		if !first {
			buf.WriteByte(',')
		}
		item, _, err := p.value()
		if err != nil {
			return "", 0, err
		}
		buf.WriteString(item)
		first = false

		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case closing:
			p.pos++
			buf.WriteByte(']')
			return buf.String(), kindContainer, nil
		default:
			return "", 0, p.errorf("expected ',' or %q", closing)
		}
	}
	buf.WriteByte(']')
	return buf.String(), kindContainer, nil
}

// parenthesized handles both grouping and tuples: "(x)" is x, "(x,)" and "()"
// are tuples rendered as arrays.
func (p *parser) parenthesized() (string, kind, error) {
	start := p.pos
	p.pos++
	p.depth++
	p.skipSpace()
	if p.peek() == ')' {
		p.pos++
		p.depth--
		return "[]", kindContainer, nil
	}
	inner, k, err := p.value()
	p.depth--
	if err != nil {
		return "", 0, err
	}
	p.skipSpace()
	if p.peek() == ')' {
		p.pos++
		return inner, k, nil
	}
	p.pos = start
	return p.sequence('(', ')')
}

func (p *parser) mapping() (string, kind, error) {
	p.pos++ // {
	p.depth++
	defer func() { p.depth-- }()

	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for {
		p.skipSpace()
		if p.peek() == '}' {
			p.pos++
			buf.WriteByte('}')
			return buf.String(), kindContainer, nil
		}

		keyStart := p.pos
		key, k, err := p.value()
		if err != nil {
			return "", 0, err
		}
		p.skipSpace()
		if p.peek() != ':' {
			if first && (p.peek() == ',' || p.peek() == '}') {
				return "", 0, p.errorf("sets are not supported")
			}
			return "", 0, p.errorf("expected ':' after dict key")
		}
		p.pos++

		switch k {
		case kindString:
		case kindScalar:
			key = quote(key)
		default:
			p.pos = keyStart
			return "", 0, p.errorf("dict keys must be strings, numbers, booleans or None")
		}

		p.skipSpace()
		val, _, err := p.value()
		if err != nil {
			return "", 0, err
		}
		if !first {
			buf.WriteByte(',')
		}
		buf.WriteString(key)
		buf.WriteByte(':')
		buf.WriteString(val)
		first = false

		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case '}':
		default:
			return "", 0, p.errorf("expected ',' or '}'")
		}
	}
}

// concatStrings parses one or more adjacent string literals and concatenates them.
func (p *parser) concatStrings() (string, kind, error) {
	var sb strings.Builder
	for {
		s, err := p.stringLiteral()
		if err != nil {
			return "", 0, err
		}
		sb.WriteString(s)

		save := p.pos
		p.skipSpace()
		if !p.atString() {
			p.pos = save
			break
		}
	}
	return quote(sb.String()), kindString, nil
}

func (p *parser) atString() bool {
	c := p.peek()
	if c == '\'' || c == '"' {
		return true
	}
	if c == 'r' || c == 'R' || c == 'u' || c == 'U' {
		n := p.byteAt(p.pos + 1)
		return n == '\'' || n == '"'
	}
	return false
}

func (p *parser) stringLiteral() (string, error) {
	raw := false
	switch p.peek() {
	case 'r', 'R':
		raw = true
		p.pos++
	case 'u', 'U':
		p.pos++
	}

	q := p.peek()
	triple := strings.HasPrefix(p.src[p.pos:], strings.Repeat(string(q), 3))
	if triple {
		p.pos += 3
	} else {
		p.pos++
	}

	var sb strings.Builder
	for {
		if p.pos >= len(p.src) {
			return "", p.errorf("unterminated string")
		}
		c := p.src[p.pos]

		if c == q {
			if !triple {
				p.pos++
				return sb.String(), nil
			}
			if strings.HasPrefix(p.src[p.pos:], strings.Repeat(string(q), 3)) {
				p.pos += 3
				return sb.String(), nil
			}
		}
		if c == '\n' && !triple {
			return "", p.errorf("newline in single-quoted string")
		}
		if c == '\\' {
			if raw {
				sb.WriteByte(c)
				if p.pos+1 < len(p.src) {
					sb.WriteByte(p.src[p.pos+1])
					p.pos += 2
					continue
				}
				p.pos++
				continue
			}
			if err := p.escape(&sb); err != nil {
				return "", err
			}
			continue
		}

		r, size := utf8.DecodeRuneInString(p.src[p.pos:])
		sb.WriteRune(r)
		p.pos += size
	}
}

func (p *parser) escape(sb *strings.Builder) error {
	p.pos++ // backslash
	if p.pos >= len(p.src) {
		return p.errorf("unterminated escape")
	}
	c := p.src[p.pos]
	p.pos++

	switch c {
	case '\n':
	case '\r':
		if p.peek() == '\n' {
			p.pos++
		}
	case '\\', '\'', '"':
		sb.WriteByte(c)
	case 'a':
		sb.WriteByte('\a')
	case 'b':
		sb.WriteByte('\b')
	case 'f':
		sb.WriteByte('\f')
	case 'n':
		sb.WriteByte('\n')
	case 'r':
		sb.WriteByte('\r')
	case 't':
		sb.WriteByte('\t')
	case 'v':
		sb.WriteByte('\v')
	case '0', '1', '2', '3', '4', '5', '6', '7':
		start := p.pos - 1
		for p.pos < len(p.src) && p.pos-start < 3 && p.src[p.pos] >= '0' && p.src[p.pos] <= '7' {
			p.pos++
		}
		v, _ := strconv.ParseUint(p.src[start:p.pos], 8, 32)
		sb.WriteRune(rune(v))
	case 'x':
		return p.hexEscape(sb, 2)
	case 'u':
		return p.hexEscape(sb, 4)
	case 'U':
		return p.hexEscape(sb, 8)
	case 'N':
		return p.errorf("named unicode escapes are not supported")
	default:
		sb.WriteByte('\\')
		sb.WriteByte(c)
	}
	return nil
}

func (p *parser) hexEscape(sb *strings.Builder, digits int) error {
	if p.pos+digits > len(p.src) {
		return p.errorf("truncated escape")
	}
	v, err := strconv.ParseUint(p.src[p.pos:p.pos+digits], 16, 32)
	if err != nil || v > utf8.MaxRune {
		return p.errorf("invalid escape \\%s", p.src[p.pos-1:p.pos+digits])
	}
	p.pos += digits
	sb.WriteRune(rune(v))
	return nil
}

func (p *parser) number() (string, error) {
	start := p.pos

	if p.peek() == '0' {
		switch p.byteAt(p.pos + 1) {
		case 'x', 'X', 'o', 'O', 'b', 'B':
			p.pos += 2
			for p.pos < len(p.src) && (isHexDigit(p.src[p.pos]) || p.src[p.pos] == '_') {
				p.pos++
			}
			return p.finishInt(start, true)
		}
	}

	isFloat := false
	p.digits()
	if p.peek() == '.' {
		isFloat = true
		p.pos++
		p.digits()
	}
	if c := p.peek(); c == 'e' || c == 'E' {
		isFloat = true
		p.pos++
		if c := p.peek(); c == '+' || c == '-' {
			p.pos++
		}
		if !isDigit(p.peek()) {
			return "", p.errorf("malformed exponent")
		}
		p.digits()
	}

	if !isFloat {
		return p.finishInt(start, false)
	}
	text := p.src[start:p.pos]
	if err := p.checkTail(start); err != nil {
		return "", err
	}
	if !validUnderscores(text) {
		return "", &SyntaxError{Offset: start, Msg: fmt.Sprintf("malformed number %q", text)}
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(text, "_", ""), 64)
	if err != nil {
		return "", &SyntaxError{Offset: start, Msg: fmt.Sprintf("number %q out of range", text)}
	}
	out := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(out, ".eE") {
		out += ".0"
	}
	return out, nil
}

func (p *parser) digits() {
	for p.pos < len(p.src) && (isDigit(p.src[p.pos]) || p.src[p.pos] == '_') {
		p.pos++
	}
}

func (p *parser) finishInt(start int, prefixed bool) (string, error) {
	if err := p.checkTail(start); err != nil {
		return "", err
	}
	text := p.src[start:p.pos]
	bad := &SyntaxError{Offset: start, Msg: fmt.Sprintf("malformed integer %q", text)}

	if prefixed {
		n, ok := new(big.Int).SetString(text, 0)
		if !ok {
			return "", bad
		}
		return n.String(), nil
	}

	if !validUnderscores(text) {
		return "", bad
	}
	digits := strings.ReplaceAll(text, "_", "")
	if len(digits) > 1 && digits[0] == '0' {
		if strings.Trim(digits, "0") != "" {
			return "", bad
		}
		return "0", nil
	}
	return digits, nil
}

// checkTail rejects numbers glued to identifiers, including complex literals.
func (p *parser) checkTail(start int) error {
	if c := p.peek(); isIdentPart(c) {
		if c == 'j' || c == 'J' {
			return &SyntaxError{Offset: start, Msg: "complex numbers are not supported"}
		}
		return &SyntaxError{Offset: start, Msg: fmt.Sprintf("malformed number %q", p.src[start:p.pos+1])}
	}
	return nil
}

// validUnderscores reports whether every '_' sits between two digits.
func validUnderscores(s string) bool {
	for i := range len(s) {
		if s[i] != '_' {
			continue
		}
		if i == 0 || i == len(s)-1 || !isDigit(s[i-1]) || !isDigit(s[i+1]) {
			return false
		}
	}
	return true
}

func quote(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	return strings.TrimSuffix(buf.String(), "\n")
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= utf8.RuneSelf
}

func isIdentPart(c byte) bool { return isIdentStart(c) || isDigit(c) }

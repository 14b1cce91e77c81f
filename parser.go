package fieldmask

import (
	"strings"
	"unicode"

	"github.com/pkg/errors"
)

// Parse converts JSON text into a Value tree rooted at an Object.
//
// The accepted grammar is deliberately small: objects, arrays, quoted strings
// without escape decoding (a string cannot contain '"'), and unquoted scalar
// tokens captured verbatim up to the next ',', '}' or ']'. Nested containers
// are bounded by counting brackets, so braces or brackets inside string values
// are not supported.
//
// Malformed text yields an error wrapping ErrMalformedInput that carries the
// byte offset of the problem. Parse never panics.
func Parse(text string) (*Object, error) {
	start := len(text) - len(strings.TrimLeftFunc(text, unicode.IsSpace))
	end := len(strings.TrimRightFunc(text, unicode.IsSpace))
	if start >= end || text[start] != '{' {
		return nil, malformed(start, "expected '{' at start of document")
	}
	if end-start < 2 || text[end-1] != '}' {
		return nil, malformed(end, "expected '}' at end of document")
	}
	p := parser{src: text}
	root := NewObject()
	if err := p.parseObject(start+1, end-1, root); err != nil {
		return nil, err
	}
	return root, nil
}

// parser walks src with absolute byte offsets. Every method works inside an
// exclusive end bound set by the enclosing container.
type parser struct {
	src string
}

func malformed(offset int, format string, args ...any) error {
	return errors.Wrapf(ErrMalformedInput, "offset %d: "+format, append([]any{offset}, args...)...)
}

// parseObject reads the members found in src[i:end] into obj.
func (p *parser) parseObject(i, end int, obj *Object) error {
	for i < end {
		i = p.skipSpace(i, end)
		if i >= end {
			break
		}
		keyStart := p.indexByte('"', i, end)
		if keyStart < 0 {
			return malformed(i, "expected object key")
		}
		keyEnd := p.indexByte('"', keyStart+1, end)
		if keyEnd < 0 {
			return malformed(keyStart, "unterminated object key")
		}
		key := p.src[keyStart+1 : keyEnd]

		i = p.skipSpace(keyEnd+1, end)
		if i >= end || p.src[i] != ':' {
			return malformed(i, "expected ':' after key %q", key)
		}
		i = p.skipSpace(i+1, end)

		v, next, err := p.parseValue(i, end)
		if err != nil {
			return err
		}
		obj.Set(key, v)

		i = p.skipSpace(next, end)
		if i < end && p.src[i] == ',' {
			i++
		}
	}
	return nil
}

// parseArray reads the elements found in src[i:end].
func (p *parser) parseArray(i, end int) (Array, error) {
	arr := Array{}
	for i < end {
		i = p.skipSpace(i, end)
		if i >= end {
			break
		}
		v, next, err := p.parseValue(i, end)
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)

		i = p.skipSpace(next, end)
		if i < end && p.src[i] == ',' {
			i++
		}
	}
	return arr, nil
}

// parseValue dispatches on the first significant byte at i and returns the
// value together with the offset just past it.
func (p *parser) parseValue(i, end int) (Value, int, error) {
	if i >= end {
		return nil, i, malformed(i, "missing value")
	}
	switch p.src[i] {
	case '"':
		closing := p.indexByte('"', i+1, end)
		if closing < 0 {
			return nil, i, malformed(i, "unterminated string")
		}
		return String(p.src[i+1 : closing]), closing + 1, nil
	case '{':
		closing, err := p.matching(i, end, '{', '}')
		if err != nil {
			return nil, i, err
		}
		obj := NewObject()
		if err := p.parseObject(i+1, closing, obj); err != nil {
			return nil, i, err
		}
		return obj, closing + 1, nil
	case '[':
		closing, err := p.matching(i, end, '[', ']')
		if err != nil {
			return nil, i, err
		}
		arr, err := p.parseArray(i+1, closing)
		if err != nil {
			return nil, i, err
		}
		return arr, closing + 1, nil
	}
	j := p.valueEnd(i, end)
	token := strings.TrimSpace(p.src[i:j])
	if token == "" {
		return nil, i, malformed(i, "missing value")
	}
	return Scalar(token), j, nil
}

// matching returns the offset of the bracket closing the one at start.
// Brackets are counted by depth only; string contents are not skipped.
func (p *parser) matching(start, end int, left, right byte) (int, error) {
	depth := 1
	for i := start + 1; i < end; i++ {
		switch p.src[i] {
		case left:
			depth++
		case right:
			depth--
			if depth == 0 {
				return i, nil
			}
		}
	}
	return -1, malformed(start, "unmatched %q", left)
}

// valueEnd returns the offset of the next structural delimiter, or end.
func (p *parser) valueEnd(i, end int) int {
	for ; i < end; i++ {
		switch p.src[i] {
		case ',', '}', ']':
			return i
		}
	}
	return end
}

func (p *parser) indexByte(c byte, i, end int) int {
	if i >= end {
		return -1
	}
	j := strings.IndexByte(p.src[i:end], c)
	if j < 0 {
		return -1
	}
	return i + j
}

func (p *parser) skipSpace(i, end int) int {
	for i < end {
		switch p.src[i] {
		case ' ', '\t', '\n', '\r', '\f', '\v':
			i++
		default:
			return i
		}
	}
	return i
}

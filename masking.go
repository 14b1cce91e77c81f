package fieldmask

import (
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

// Masker applies full, partial and policy driven masking. A Masker is
// immutable after New and safe for concurrent use.
type Masker struct {
	maskChar rune
	marker   string
	log      *zap.Logger
}

// New returns a Masker configured by opts.
//
// Example:
//
//	m := fieldmask.New(fieldmask.WithMaskChar('#'))
func New(opts ...Option) *Masker {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return &Masker{
		maskChar: cfg.MaskChar,
		marker:   cfg.RedactionMarker,
		log:      newLogger(cfg),
	}
}

// MaskFull replaces every character of s with the mask character. Blank
// input (empty or only whitespace) is returned unchanged. The result has the
// same number of runes as s.
func (m *Masker) MaskFull(s string) string {
	return m.MaskFullWith(s, m.maskChar)
}

// MaskFullWith is MaskFull with an explicit mask character.
func (m *Masker) MaskFullWith(s string, c rune) string {
	if isBlank(s) {
		return s
	}
	return strings.Repeat(string(c), utf8.RuneCountInString(s))
}

// MaskPartial replaces the characters of s whose rune index falls inside rng.
// The range is clamped to the string, so it never fails on out of bounds
// indices. Blank input or a nil range returns s unchanged.
//
// Example:
//
//	r := fieldmask.MustRange(5, 10)
//	m.MaskPartial("+79999999999", &r) // "+7999*****99"
func (m *Masker) MaskPartial(s string, rng *Range) string {
	return m.MaskPartialWith(s, rng, m.maskChar)
}

// MaskPartialWith is MaskPartial with an explicit mask character.
func (m *Masker) MaskPartialWith(s string, rng *Range, c rune) string {
	if isBlank(s) || rng == nil {
		return s
	}
	runes := []rune(s)
	start, end := rng.clamp(len(runes))
	if start >= end {
		return s
	}
	for i := start; i < end; i++ {
		runes[i] = c
	}
	return string(runes)
}

// MaskJSON masks the fields of a JSON document listed in policy, at any
// depth, and returns the re-serialized document.
//
// String and scalar values of a listed key are masked by the key's mode;
// masked scalars are written as strings. Object values are always walked.
// Array elements that are strings or scalars take the mode of the key that
// holds the array, object elements are walked with the whole policy and
// nested arrays keep the same key's mode.
//
// Strings are masked in their raw form, where an escape sequence such as \n
// or \u00e9 counts as one character and is replaced whole.
//
// Blank text and text that Parse rejects are returned unchanged; MaskJSON
// never fails.
//
// Example:
//
//	m.MaskJSON(`{"name":"John","age":30}`, fieldmask.Policy{"name": fieldmask.ModeFull}, nil)
//	// Result: {"name":"****","age":30}
func (m *Masker) MaskJSON(text string, policy Policy, rng *Range) string {
	if isBlank(text) {
		return text
	}
	root, err := Parse(text)
	if err != nil {
		m.log.Debug("json left unmasked", zap.Error(err), zap.Int("length", len(text)))
		return text
	}
	m.walkObject(root, policy, rng)
	return Marshal(root)
}

// MaskValue runs the MaskJSON walk over an already parsed tree, modifying it
// in place, and returns it. Top level strings and scalars have no field name
// and are returned as is.
func (m *Masker) MaskValue(v Value, policy Policy, rng *Range) Value {
	switch v := v.(type) {
	case *Object:
		if v != nil {
			m.walkObject(v, policy, rng)
		}
	case Array:
		m.walkArray(v, ModeNone, policy, rng)
	}
	return v
}

// MaskHeaders masks every value of the headers listed in policy. Header names
// are matched ignoring case. A new map is returned; h is not modified.
//
// Example:
//
//	headers := map[string][]string{
//	    "Authorization": {"Bearer token123"},
//	    "Content-Type":  {"application/json"},
//	}
//	masked := m.MaskHeaders(headers, fieldmask.Policy{"authorization": fieldmask.ModeFull}, nil)
//	// Result: {"Authorization": ["***************"], "Content-Type": ["application/json"]}
func (m *Masker) MaskHeaders(h map[string][]string, policy Policy, rng *Range) map[string][]string {
	result := make(map[string][]string, len(h))
	for key, values := range h {
		mode, ok := policy.lookupFold(key)
		if !ok || len(values) == 0 {
			result[key] = values
			continue
		}
		masked := make([]string, len(values))
		for i, v := range values {
			masked[i] = m.apply(v, mode, rng)
		}
		result[key] = masked
	}
	return result
}

// walkObject masks the members of o in place.
func (m *Masker) walkObject(o *Object, policy Policy, rng *Range) {
	for i := range o.members {
		mem := &o.members[i]
		mode, listed := policy.Mode(mem.key)
		switch v := mem.value.(type) {
		case String, Scalar:
			if listed {
				mem.value = m.maskLeaf(v, mode, rng)
			}
		case *Object:
			if v != nil {
				m.walkObject(v, policy, rng)
			}
		case Array:
			m.walkArray(v, mode, policy, rng)
		}
	}
}

// walkArray masks the elements of arr in place. Leaf elements use mode, the
// mode of the field that holds the array.
func (m *Masker) walkArray(arr Array, mode Mode, policy Policy, rng *Range) {
	for i, elem := range arr {
		switch v := elem.(type) {
		case String, Scalar:
			if mode != ModeNone {
				arr[i] = m.maskLeaf(v, mode, rng)
			}
		case *Object:
			if v != nil {
				m.walkObject(v, policy, rng)
			}
		case Array:
			m.walkArray(v, mode, policy, rng)
		}
	}
}

// maskLeaf masks a String or Scalar. A changed scalar becomes a String so the
// document stays valid JSON.
func (m *Masker) maskLeaf(v Value, mode Mode, rng *Range) Value {
	var s, masked string
	switch v := v.(type) {
	case String:
		s = string(v)
		masked = m.applyRaw(s, mode, rng)
	case Scalar:
		s = string(v)
		masked = m.apply(s, mode, rng)
	default:
		return v
	}
	if masked == s {
		return v
	}
	return String(masked)
}

// applyRaw masks raw JSON string content. Each escape sequence counts as one
// character and is replaced whole, so masking never splits an escape.
func (m *Masker) applyRaw(s string, mode Mode, rng *Range) string {
	if !strings.Contains(s, `\`) {
		return m.apply(s, mode, rng)
	}
	if isBlank(s) {
		return s
	}
	units := escapeUnits(s)
	switch mode {
	case ModeFull:
		return strings.Repeat(string(m.maskChar), len(units))
	case ModePartial:
		if rng == nil {
			return s
		}
		start, end := rng.clamp(len(units))
		if start >= end {
			return s
		}
		for i := start; i < end; i++ {
			units[i] = string(m.maskChar)
		}
		return strings.Join(units, "")
	}
	return s
}

// escapeUnits splits raw JSON string content into runes and escape sequences
// (\uXXXX or a backslash with the following character).
func escapeUnits(s string) []string {
	units := make([]string, 0, len(s))
	for i := 0; i < len(s); {
		if s[i] == '\\' {
			n := 2
			if i+1 < len(s) && s[i+1] == 'u' && i+6 <= len(s) && isHex4(s[i+2:i+6]) {
				n = 6
			}
			n = min(n, len(s)-i)
			units = append(units, s[i:i+n])
			i += n
			continue
		}
		_, size := utf8.DecodeRuneInString(s[i:])
		units = append(units, s[i:i+size])
		i += size
	}
	return units
}

func isHex4(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F') {
			return false
		}
	}
	return true
}

func (m *Masker) apply(s string, mode Mode, rng *Range) string {
	switch mode {
	case ModeFull:
		return m.MaskFull(s)
	case ModePartial:
		return m.MaskPartial(s, rng)
	}
	return s
}

// lookupFold is Mode with a case-insensitive fallback.
func (p Policy) lookupFold(field string) (Mode, bool) {
	if mode, ok := p.Mode(field); ok {
		return mode, true
	}
	for name, mode := range p {
		if mode != ModeNone && strings.EqualFold(name, field) {
			return mode, true
		}
	}
	return ModeNone, false
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// Package fieldmask masks sensitive values in strings, JSON documents and
// records by replacing characters with a filler character, either entirely
// or within an index range.
//
// JSON documents are parsed into a small ordered value tree, masked field by
// field according to a Policy, and written back out. Text that cannot be
// parsed is returned unchanged.
//
// Basic Usage:
//
//	r := fieldmask.MustRange(2, 6)
//	policy := fieldmask.Policy{
//		"password": fieldmask.ModeFull,
//		"phone":    fieldmask.ModePartial,
//	}
//	masked := fieldmask.MaskJSON(`{"password":"secret","phone":"4212348689"}`, policy, &r)
//	// Result: {"password":"******","phone":"42****8689"}
package fieldmask

import (
	"sync/atomic"

	"go.uber.org/zap"
)

// defaultMasker backs the package-level functions.
var defaultMasker atomic.Pointer[Masker]

func init() {
	defaultMasker.Store(New())
}

// Default returns the Masker used by the package-level functions.
func Default() *Masker {
	return defaultMasker.Load()
}

// SetDefault replaces the Masker used by the package-level functions.
// A nil m is ignored.
func SetDefault(m *Masker) {
	if m != nil {
		defaultMasker.Store(m)
	}
}

// MaskFull masks every character of s using the default Masker.
func MaskFull(s string) string {
	return Default().MaskFull(s)
}

// MaskFullWith masks every character of s with c.
func MaskFullWith(s string, c rune) string {
	return Default().MaskFullWith(s, c)
}

// MaskPartial masks the characters of s inside rng using the default Masker.
func MaskPartial(s string, rng *Range) string {
	return Default().MaskPartial(s, rng)
}

// MaskPartialWith masks the characters of s inside rng with c.
func MaskPartialWith(s string, rng *Range, c rune) string {
	return Default().MaskPartialWith(s, rng, c)
}

// MaskJSON masks the fields of a JSON document using the default Masker.
func MaskJSON(text string, policy Policy, rng *Range) string {
	return Default().MaskJSON(text, policy, rng)
}

// MaskJSONBytes is MaskJSON for a byte slice.
func MaskJSONBytes(data []byte, policy Policy, rng *Range) string {
	return Default().MaskJSON(string(data), policy, rng)
}

// MaskValue masks a parsed tree in place using the default Masker.
func MaskValue(v Value, policy Policy, rng *Range) Value {
	return Default().MaskValue(v, policy, rng)
}

// MaskHeaders masks HTTP header values using the default Masker.
func MaskHeaders(h map[string][]string, policy Policy, rng *Range) map[string][]string {
	return Default().MaskHeaders(h, policy, rng)
}

// MaskObject renders a masked record using the default Masker.
func MaskObject(rec Record, policy Policy, rng *Range) string {
	return Default().MaskObject(rec, policy, rng)
}

// ObjectField returns a zap field logging a masked record using the default
// Masker.
func ObjectField(key string, rec Record, policy Policy, rng *Range) zap.Field {
	return Default().ObjectField(key, rec, policy, rng)
}

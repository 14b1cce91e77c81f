package fieldmask

import (
	"strconv"

	"github.com/pkg/errors"
)

// Range bounds partial masking to the rune indices [from, to).
// A Range is immutable; build one with NewRange or MustRange.
type Range struct {
	from int
	to   int
}

// NewRange returns the range [from, to). It fails with ErrInvalidRange when
// from is greater than to. Bounds outside a masked string are clamped at
// masking time, so negative or oversized bounds are accepted here.
//
// Example:
//
//	r, err := fieldmask.NewRange(5, 10)
//	masked := fieldmask.MaskPartial("+79999999999", &r)
//	// Result: "+7999*****99"
func NewRange(from, to int) (Range, error) {
	if from > to {
		return Range{}, errors.Wrapf(ErrInvalidRange, "start index %d is greater than end index %d", from, to)
	}
	return Range{from: from, to: to}, nil
}

// MustRange is like NewRange but panics on an invalid range.
func MustRange(from, to int) Range {
	r, err := NewRange(from, to)
	if err != nil {
		panic(err)
	}
	return r
}

// From returns the inclusive start index.
func (r Range) From() int { return r.from }

// To returns the exclusive end index.
func (r Range) To() int { return r.to }

// String implements fmt.Stringer.
func (r Range) String() string {
	return "[" + strconv.Itoa(r.from) + ", " + strconv.Itoa(r.to) + ")"
}

// clamp returns the bounds of r limited to a string of n runes.
func (r Range) clamp(n int) (start, end int) {
	start = max(0, r.from)
	end = min(n, r.to)
	return start, end
}

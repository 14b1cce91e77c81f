package fieldmask

import "github.com/pkg/errors"

var (
	// ErrInvalidRange is returned by NewRange when from is greater than to.
	ErrInvalidRange = errors.New("fieldmask: invalid range")
	// ErrMalformedInput is returned by Parse for text outside the supported JSON grammar.
	// MaskJSON never returns it; it degrades to returning the input unchanged.
	ErrMalformedInput = errors.New("fieldmask: malformed input")
	// ErrFieldRead marks a record field whose value could not be read.
	ErrFieldRead = errors.New("fieldmask: field read failed")
)

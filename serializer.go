package fieldmask

import "sync"

// encodeBufPool reuses byte slices across Marshal calls.
var encodeBufPool = sync.Pool{
	New: func() any {
		b := make([]byte, 0, 512)
		return &b
	},
}

// Marshal returns the compact JSON text of v.
//
// Keys and elements keep their order. String content is written back between
// quotes exactly as it was parsed, and scalars are written verbatim. A nil
// Value or nil *Object is written as null.
func Marshal(v Value) string {
	bp := encodeBufPool.Get().(*[]byte)
	b := AppendJSON((*bp)[:0], v)
	s := string(b)
	*bp = b[:0]
	encodeBufPool.Put(bp)
	return s
}

// AppendJSON appends the compact JSON text of v to dst and returns the
// extended slice.
func AppendJSON(dst []byte, v Value) []byte {
	switch v := v.(type) {
	case String:
		dst = append(dst, '"')
		dst = append(dst, v...)
		return append(dst, '"')
	case Scalar:
		return append(dst, v...)
	case Array:
		dst = append(dst, '[')
		for i, elem := range v {
			if i > 0 {
				dst = append(dst, ',')
			}
			dst = AppendJSON(dst, elem)
		}
		return append(dst, ']')
	case *Object:
		if v == nil {
			return append(dst, "null"...)
		}
		dst = append(dst, '{')
		for i, m := range v.members {
			if i > 0 {
				dst = append(dst, ',')
			}
			dst = append(dst, '"')
			dst = append(dst, m.key...)
			dst = append(dst, '"', ':')
			dst = AppendJSON(dst, m.value)
		}
		return append(dst, '}')
	}
	return append(dst, "null"...)
}

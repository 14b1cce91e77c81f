package fieldmask

import "iter"

// Kind identifies the variant of a Value.
type Kind uint8

const (
	KindString Kind = iota + 1 // Quoted string
	KindObject                 // Ordered key/value mapping
	KindArray                  // Ordered sequence
	KindScalar                 // Number, boolean or null kept as raw text
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	case KindScalar:
		return "scalar"
	}
	return "invalid"
}

// Value is a node of a parsed JSON document. The set of implementations is
// closed: String, Scalar, Array and *Object.
type Value interface {
	Kind() Kind
	isValue()
}

// String is the raw content of a quoted JSON string. Escape sequences are
// kept as written and are not decoded.
type String string

// Scalar is an unquoted literal token (number, true, false or null) carried
// verbatim.
type Scalar string

// Array is an ordered list of values.
type Array []Value

func (String) Kind() Kind { return KindString }
func (Scalar) Kind() Kind { return KindScalar }
func (Array) Kind() Kind  { return KindArray }

func (String) isValue()  {}
func (Scalar) isValue()  {}
func (Array) isValue()   {}
func (*Object) isValue() {}

// member is a single key/value pair of an Object.
type member struct {
	key   string
	value Value
}

// Object is an ordered mapping from unique keys to values. Keys keep the
// order in which they were first set.
//
// The zero value is an empty object ready to use.
type Object struct {
	members []member
	index   map[string]int
}

// NewObject returns an empty object.
func NewObject() *Object {
	return &Object{}
}

// Kind implements Value.
func (*Object) Kind() Kind { return KindObject }

// Set stores v under key. Setting an existing key replaces its value and
// keeps its position.
func (o *Object) Set(key string, v Value) {
	if i, ok := o.index[key]; ok {
		o.members[i].value = v
		return
	}
	if o.index == nil {
		o.index = make(map[string]int)
	}
	o.index[key] = len(o.members)
	o.members = append(o.members, member{key: key, value: v})
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (Value, bool) {
	if o == nil {
		return nil, false
	}
	i, ok := o.index[key]
	if !ok {
		return nil, false
	}
	return o.members[i].value, true
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	if o == nil {
		return false
	}
	_, ok := o.index[key]
	return ok
}

// Len returns the number of keys.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.members)
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	keys := make([]string, 0, o.Len())
	for _, m := range o.members {
		keys = append(keys, m.key)
	}
	return keys
}

// All iterates over the key/value pairs in insertion order.
func (o *Object) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		if o == nil {
			return
		}
		for _, m := range o.members {
			if !yield(m.key, m.value) {
				return
			}
		}
	}
}

// String returns the compact JSON text of the object.
func (o *Object) String() string {
	return Marshal(o)
}

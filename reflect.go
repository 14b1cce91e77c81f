package fieldmask

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"
)

// structMetaCache caches struct metadata to avoid repeated reflection.
// Key: reflect.Type, Value: *structMeta
var structMetaCache sync.Map

// fieldMeta contains cached metadata for a single struct field.
type fieldMeta struct {
	name  string       // Field name (json tag name when present)
	index int          // Field index in struct
	mode  Mode         // Mode from the mask tag
	typ   reflect.Type // Field type
}

// structMeta contains cached metadata for all rendered fields of a struct.
type structMeta struct {
	fields []fieldMeta
}

// getStructMeta retrieves or builds cached metadata for a struct type.
// Unexported fields and fields tagged json:"-" are left out.
func getStructMeta(t reflect.Type) *structMeta {
	if v, ok := structMetaCache.Load(t); ok {
		return v.(*structMeta)
	}
	m := &structMeta{
		fields: make([]fieldMeta, 0, t.NumField()),
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := f.Name
		if tag, ok := f.Tag.Lookup("json"); ok {
			if tag == "-" {
				continue
			}
			if idx := strings.Index(tag, ","); idx >= 0 {
				tag = tag[:idx]
			}
			if tag != "" {
				name = tag
			}
		}
		mode, _ := ParseMode(f.Tag.Get("mask"))
		m.fields = append(m.fields, fieldMeta{
			name:  name,
			index: i,
			mode:  mode,
			typ:   f.Type,
		})
	}
	v, _ := structMetaCache.LoadOrStore(t, m)
	return v.(*structMeta)
}

// structRecord adapts a struct value to Record.
type structRecord struct {
	rv reflect.Value
}

// Reflect returns a Record over the exported fields of the struct v (or the
// struct v points to), in declaration order. Field names come from the json
// tag, and fields tagged json:"-" are treated as transient and skipped. Nil
// pointer fields are omitted and time.Time is displayed in RFC 3339.
// Reflect returns nil when v is nil or not a struct.
//
// Example:
//
//	type User struct {
//	    Email    string `json:"email" mask:"partial"`
//	    Password string `json:"password" mask:"full"`
//	    Session  string `json:"-"`
//	}
//	out := fieldmask.MaskObject(fieldmask.Reflect(u), fieldmask.TagPolicy(u), &r)
func Reflect(v any) Record {
	rv, ok := structValue(v)
	if !ok {
		return nil
	}
	return structRecord{rv: rv}
}

// MaskFields implements Record.
func (r structRecord) MaskFields() []Field {
	meta := getStructMeta(r.rv.Type())
	fields := make([]Field, 0, len(meta.fields))
	for _, f := range meta.fields {
		fv := r.rv.Field(f.index)
		fields = append(fields, Field{Name: f.name, read: func() (string, bool, error) {
			return displayValue(fv)
		}})
	}
	return fields
}

// TagPolicy builds a Policy from the mask tags of the struct v, including the
// fields of nested structs. Field names follow the json tag as in Reflect.
func TagPolicy(v any) Policy {
	p := Policy{}
	rv, ok := structValue(v)
	if !ok {
		return p
	}
	collectTagPolicy(rv.Type(), p, map[reflect.Type]bool{})
	return p
}

func collectTagPolicy(t reflect.Type, p Policy, seen map[reflect.Type]bool) {
	if seen[t] {
		return
	}
	seen[t] = true
	for _, f := range getStructMeta(t).fields {
		if f.mode != ModeNone {
			p[f.name] = f.mode
		}
		if nested := elemStruct(f.typ); nested != nil {
			collectTagPolicy(nested, p, seen)
		}
	}
}

// elemStruct returns the struct type behind pointers, slices, arrays and
// maps, or nil.
func elemStruct(t reflect.Type) reflect.Type {
	for {
		switch t.Kind() {
		case reflect.Pointer, reflect.Slice, reflect.Array, reflect.Map:
			t = t.Elem()
		case reflect.Struct:
			if t == reflect.TypeOf(time.Time{}) {
				return nil
			}
			return t
		default:
			return nil
		}
	}
}

func structValue(v any) (reflect.Value, bool) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return reflect.Value{}, false
		}
		rv = rv.Elem()
	}
	return rv, rv.Kind() == reflect.Struct
}

// displayValue renders a field value as text. Nil values report ok false.
// String methods are called directly so that a panicking one surfaces as a
// read failure instead of being printed by fmt.
func displayValue(fv reflect.Value) (string, bool, error) {
	for fv.Kind() == reflect.Pointer || fv.Kind() == reflect.Interface {
		if fv.IsNil() {
			return "", false, nil
		}
		fv = fv.Elem()
	}
	switch fv.Kind() {
	case reflect.Map, reflect.Slice:
		if fv.IsNil() {
			return "", false, nil
		}
	case reflect.String:
		return fv.String(), true, nil
	}
	switch v := fv.Interface().(type) {
	case time.Time:
		return v.Format(time.RFC3339Nano), true, nil
	case fmt.Stringer:
		return v.String(), true, nil
	default:
		return fmt.Sprint(v), true, nil
	}
}

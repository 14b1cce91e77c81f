package fieldmask

import (
	"reflect"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Record is implemented by types that expose their fields for MaskObject.
// MaskFields returns the fields in display order; transient fields are left
// out by the implementation.
//
// Example:
//
//	type Customer struct {
//	    Name  string
//	    Phone string
//	    Age   *int
//	}
//
//	func (c Customer) MaskFields() []fieldmask.Field {
//	    return []fieldmask.Field{
//	        fieldmask.StringField("name", c.Name),
//	        fieldmask.StringField("phone", c.Phone),
//	        fieldmask.ValueField("age", c.Age),
//	    }
//	}
type Record interface {
	MaskFields() []Field
}

// Field is a named record field whose display value is read lazily.
type Field struct {
	Name string
	read func() (value string, ok bool, err error)
}

// StringField returns a field holding s.
func StringField(name, s string) Field {
	return Field{Name: name, read: func() (string, bool, error) {
		return s, true, nil
	}}
}

// ValueField returns a field displaying v. Pointers are followed, time.Time
// is shown in RFC 3339, fmt.Stringer is honoured and anything else goes
// through fmt. Nil values, including nil pointers, maps and slices, are
// omitted from the output.
func ValueField(name string, v any) Field {
	return Field{Name: name, read: func() (string, bool, error) {
		if isNil(v) {
			return "", false, nil
		}
		return displayValue(reflect.ValueOf(v))
	}}
}

// FuncField returns a field whose value is produced by fn when the record is
// masked. An error from fn renders the redaction marker for this field only.
func FuncField(name string, fn func() (string, error)) Field {
	return Field{Name: name, read: func() (string, bool, error) {
		s, err := fn()
		return s, err == nil, err
	}}
}

// value reads the field, turning a panic into an ErrFieldRead error.
func (f Field) value() (s string, ok bool, err error) {
	if f.read == nil {
		return "", false, nil
	}
	defer func() {
		if r := recover(); r != nil {
			s, ok, err = "", false, errors.Wrapf(ErrFieldRead, "field %q: %v", f.Name, r)
		}
	}()
	s, ok, err = f.read()
	if err != nil {
		return "", false, errors.Wrapf(ErrFieldRead, "field %q: %v", f.Name, err)
	}
	return s, ok, nil
}

// recordEncoderConfig has no entry keys, so encoded entries hold only the
// record's fields.
var recordEncoderConfig = zapcore.EncoderConfig{SkipLineEnding: true}

// MaskObject renders rec as a JSON object. Fields listed in policy are masked
// by their mode, other fields keep their display value and nil values are
// omitted. A field that cannot be read is rendered as the redaction marker
// and the remaining fields are still masked. A nil record renders as "null".
//
// Example:
//
//	m.MaskObject(customer, fieldmask.Policy{"phone": fieldmask.ModePartial}, &r)
//	// Result: {"name":"John","phone":"+7999*****99","age":"30"}
func (m *Masker) MaskObject(rec Record, policy Policy, rng *Range) string {
	if isNil(rec) {
		return "null"
	}
	fields, err := collectFields(rec)
	if err != nil {
		m.log.Debug("record left unrendered", zap.Error(err))
		return "{}"
	}

	enc := zapcore.NewJSONEncoder(recordEncoderConfig)
	buf, err := enc.EncodeEntry(zapcore.Entry{}, []zapcore.Field{
		zap.Inline(maskedRecord{m: m, fields: fields, policy: policy, rng: rng}),
	})
	if err != nil {
		m.log.Debug("record left unrendered", zap.Error(err))
		return "{}"
	}
	defer buf.Free()
	return buf.String()
}

// ObjectField returns a zap field that logs rec masked by policy. A nil
// record is skipped.
//
// Example:
//
//	logger.Info("customer updated", m.ObjectField("customer", customer, policy, &r))
func (m *Masker) ObjectField(key string, rec Record, policy Policy, rng *Range) zap.Field {
	if isNil(rec) {
		return zap.Skip()
	}
	fields, err := collectFields(rec)
	if err != nil {
		return zap.String(key, m.marker)
	}
	return zap.Object(key, maskedRecord{m: m, fields: fields, policy: policy, rng: rng})
}

// maskedRecord implements zapcore.ObjectMarshaler over masked record fields.
type maskedRecord struct {
	m      *Masker
	fields []Field
	policy Policy
	rng    *Range
}

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (r maskedRecord) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	for _, f := range r.fields {
		s, ok, err := f.value()
		if err != nil {
			r.m.log.Debug("record field redacted", zap.String("field", f.Name), zap.Error(err))
			enc.AddString(f.Name, r.m.marker)
			continue
		}
		if !ok {
			continue
		}
		if mode, listed := r.policy.Mode(f.Name); listed {
			s = r.m.apply(s, mode, r.rng)
		}
		enc.AddString(f.Name, s)
	}
	return nil
}

// collectFields calls rec.MaskFields, recovering from a panicking
// implementation.
func collectFields(rec Record) (fields []Field, err error) {
	defer func() {
		if r := recover(); r != nil {
			fields, err = nil, errors.Wrapf(ErrFieldRead, "enumerate fields: %v", r)
		}
	}()
	return rec.MaskFields(), nil
}

// isNil reports whether v is nil or a typed nil pointer, map, slice,
// interface, channel or func.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Chan, reflect.Func:
		return rv.IsNil()
	}
	return false
}

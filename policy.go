package fieldmask

import (
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// Mode selects how the value of a listed field is masked.
type Mode uint8

const (
	ModeNone    Mode = iota // Field is left as is
	ModeFull                // Every character replaced
	ModePartial             // Characters inside the call's Range replaced
)

// String implements fmt.Stringer.
func (m Mode) String() string {
	switch m {
	case ModeFull:
		return "full"
	case ModePartial:
		return "partial"
	}
	return "none"
}

// ParseMode parses "full", "partial" or "partially", ignoring case.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "full":
		return ModeFull, nil
	case "partial", "partially":
		return ModePartial, nil
	}
	return ModeNone, errors.Errorf("unknown mask mode %q", s)
}

// Policy maps field names to their mask mode. A field matches at any depth of
// a document; names are compared exactly.
//
// Example:
//
//	policy := fieldmask.Policy{
//	    "password": fieldmask.ModeFull,
//	    "phone":    fieldmask.ModePartial,
//	}
type Policy map[string]Mode

// Mode returns the mode for field and whether the field is masked at all.
func (p Policy) Mode(field string) (Mode, bool) {
	m, ok := p[field]
	return m, ok && m != ModeNone
}

// Common field names, matched exactly by CommonPolicy.
var (
	// partialMaskFields show their unmasked prefix and suffix around the range.
	partialMaskFields = []string{
		"username", "user_name", "email", "phone", "mobile",
		"access_key", "api_key", "client_id", "user_id",
	}
	// fullMaskFields are completely hidden.
	fullMaskFields = []string{
		"password", "passwd", "pwd", "secret", "secret_key",
		"token", "auth", "authorization", "bearer", "credential",
		"private_key", "api_secret",
	}
)

// CommonPolicy returns a policy covering frequently used credential and
// personal data field names. The returned map is a fresh copy.
func CommonPolicy() Policy {
	p := make(Policy, len(fullMaskFields)+len(partialMaskFields))
	for _, f := range partialMaskFields {
		p[f] = ModePartial
	}
	for _, f := range fullMaskFields {
		p[f] = ModeFull
	}
	return p
}

// Rules is a policy together with the range used for its partial masks.
type Rules struct {
	Policy Policy
	Range  *Range
}

// rulesFile is the YAML layout read by ParseRules:
//
//	range:
//	  from: 2
//	  to: 6
//	fields:
//	  password: full
//	  phone: partial
type rulesFile struct {
	Range *struct {
		From int `yaml:"from"`
		To   int `yaml:"to"`
	} `yaml:"range"`
	Fields map[string]string `yaml:"fields"`
}

// ParseRules decodes a YAML rules document. Every invalid field mode and an
// invalid range are reported together in the returned error.
func ParseRules(data []byte) (Rules, error) {
	var f rulesFile
	if err := yaml.UnmarshalWithOptions(data, &f, yaml.DisallowUnknownField()); err != nil {
		return Rules{}, errors.Wrap(err, "decode rules")
	}

	var errs error
	rules := Rules{Policy: make(Policy, len(f.Fields))}
	for _, name := range slices.Sorted(maps.Keys(f.Fields)) {
		m, err := ParseMode(f.Fields[name])
		if err != nil {
			errs = multierr.Append(errs, errors.Wrapf(err, "field %q", name))
			continue
		}
		rules.Policy[name] = m
	}
	if f.Range != nil {
		r, err := NewRange(f.Range.From, f.Range.To)
		if err != nil {
			errs = multierr.Append(errs, err)
		} else {
			rules.Range = &r
		}
	}
	if errs != nil {
		return Rules{}, errs
	}
	return rules, nil
}

// LoadRules reads a YAML rules document from r. See ParseRules.
func LoadRules(r io.Reader) (Rules, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Rules{}, errors.Wrap(err, "read rules")
	}
	return ParseRules(data)
}

// Package fieldformat implements the typed field validators: Text, Integer,
// Decimal, DateTime, Choice, Pattern, RegEx, and Constant. Each kind embeds
// base for the common empty/length/charset algorithm and implements
// ValidatedValue for its own typed parsing.
//
// Each kind is a distinct type sharing one set of header fields through
// struct embedding plus a common interface, rather than a class hierarchy.
package fieldformat

import (
	"strings"
	"unicode"

	"github.com/invertedv/cidcheck/ciderrors"
	"github.com/invertedv/cidcheck/dataformat"
	"github.com/invertedv/cidcheck/rangeval"
)

// FieldFormat is the common contract every field kind satisfies.
type FieldFormat interface {
	Name() string
	IsAllowedToBeEmpty() bool
	Length() rangeval.Range
	Rule() string
	EmptyValue() any
	// Validated runs the full algorithm: empty check, length check,
	// character-set check, then the kind's own parsing.
	Validated(text string) (any, error)
}

// ValueValidator is implemented by each concrete kind to parse non-empty,
// length- and charset-checked text into a typed value.
type ValueValidator interface {
	ValidatedValue(text string) (any, error)
}

// base holds the attributes common to every field kind.
type base struct {
	name                string
	isAllowedToBeEmpty  bool
	length              rangeval.Range
	rule                string
	example             string
	emptyValue          any
	dataFormat          *dataformat.Format
}

func (b *base) Name() string               { return b.name }
func (b *base) IsAllowedToBeEmpty() bool   { return b.isAllowedToBeEmpty }
func (b *base) Length() rangeval.Range     { return b.length }
func (b *base) Rule() string               { return b.rule }
func (b *base) EmptyValue() any            { return b.emptyValue }

// validatedCommon runs the empty/length/charset checks shared by every
// field kind, then delegates to vv.ValidatedValue for the kind-specific
// parse.
func validatedCommon(b *base, vv ValueValidator, text string) (any, error) {
	if text == "" {
		if b.isAllowedToBeEmpty {
			return b.emptyValue, nil
		}
		return nil, ciderrors.FieldValue(nil, "value must not be empty")
	}

	if err := b.length.Validate("length of field "+quote(b.name), float64(len([]rune(text)))); err != nil {
		return nil, err
	}

	if !b.dataFormat.AllowedCharacters.IsEmpty() {
		for i, r := range []rune(text) {
			if err := b.dataFormat.AllowedCharacters.Validate("character", float64(r)); err != nil {
				return nil, ciderrors.FieldValue(nil, "value %s contains character %q (code point %d) at column %d which is not allowed",
					quote(text), r, r, i+1)
			}
		}
	}

	return vv.ValidatedValue(text)
}

func quote(s string) string { return "'" + s + "'" }

// isValidFieldName reports whether name is a lower-case identifier made of
// ASCII letters, digits and underscores, and is not a Go reserved word.
func isValidFieldName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		if unicode.IsDigit(r) && i == 0 {
			return false
		}
		isLower := r >= 'a' && r <= 'z'
		isDigit := r >= '0' && r <= '9'
		if !isLower && !isDigit && r != '_' {
			return false
		}
	}
	return !goKeywords[name]
}

var goKeywords = map[string]bool{
	"break": true, "default": true, "func": true, "interface": true, "select": true,
	"case": true, "defer": true, "go": true, "map": true, "struct": true,
	"chan": true, "else": true, "goto": true, "package": true, "switch": true,
	"const": true, "fallthrough": true, "if": true, "range": true, "type": true,
	"continue": true, "for": true, "import": true, "return": true, "var": true,
}

// Constructor is the signature used by the registry:
// (name, is_empty_allowed, length, rule, example, data_format) -> FieldFormat.
type Constructor func(name string, isAllowedToBeEmpty bool, lengthText, rule, example string, df *dataformat.Format) (FieldFormat, error)

func newBase(name string, isAllowedToBeEmpty bool, lengthText, rule, example string, df *dataformat.Format) (base, error) {
	if !isValidFieldName(name) {
		return base{}, ciderrors.Interface(nil, "field name %q must be a lower-case identifier using only ASCII letters, digits and underscores, and must not be a reserved word", name)
	}
	if !df.Sealed() {
		return base{}, ciderrors.Interface(nil, "data format must be sealed before field %q can be constructed", name)
	}
	length, err := rangeval.Parse(lengthText)
	if err != nil {
		return base{}, err
	}
	if df.Family == dataformat.Fixed {
		lo, hasLo := length.LowerLimit()
		hi, hasHi := length.UpperLimit()
		if !hasLo || !hasHi || lo != hi || lo < 1 {
			return base{}, ciderrors.Interface(nil, "field %q has format fixed and so its length must be a single exact value of at least 1", name)
		}
	}
	return base{
		name:               strings.ToLower(name),
		isAllowedToBeEmpty: isAllowedToBeEmpty,
		length:             length,
		rule:               rule,
		example:            example,
		dataFormat:         df,
	}, nil
}

// validateExample checks a non-empty example through ff.Validated: an
// example must pass validation at construction time.
func validateExample(ff FieldFormat, example string) error {
	if example == "" {
		return nil
	}
	_, err := ff.Validated(example)
	if err != nil {
		return ciderrors.Interface(nil, "example %q for field %q is invalid: %v", example, ff.Name(), err)
	}
	return nil
}

package fieldformat

import (
	"regexp"

	"github.com/invertedv/cidcheck/ciderrors"
	"github.com/invertedv/cidcheck/dataformat"
)

// RegExFormat compiles its rule as a case-insensitive, multi-line regular
// expression, matched prefix-anchored at the start of the value.
type RegExFormat struct {
	base
	Regex *regexp.Regexp
}

// NewRegEx constructs a RegEx field format.
func NewRegEx(name string, isAllowedToBeEmpty bool, lengthText, rule, example string, df *dataformat.Format) (*RegExFormat, error) {
	b, err := newBase(name, isAllowedToBeEmpty, lengthText, rule, example, df)
	if err != nil {
		return nil, err
	}
	re, err := regexp.Compile("(?im)" + rule)
	if err != nil {
		return nil, ciderrors.Interface(nil, "regular expression rule %q does not compile: %v", rule, err)
	}
	b.emptyValue = ""
	rf := &RegExFormat{base: b, Regex: re}
	if err := validateExample(rf, example); err != nil {
		return nil, err
	}
	return rf, nil
}

func (r *RegExFormat) Validated(text string) (any, error) { return validatedCommon(&r.base, r, text) }

func (r *RegExFormat) ValidatedValue(text string) (any, error) {
	if !matchesAtStart(r.Regex, text) {
		return nil, ciderrors.FieldValue(nil, "value %s must match regular expression: %q", quote(text), r.rule)
	}
	return text, nil
}

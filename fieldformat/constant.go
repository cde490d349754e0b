package fieldformat

import (
	"strings"

	"github.com/invertedv/cidcheck/ciderrors"
	"github.com/invertedv/cidcheck/dataformat"
)

// ConstantFormat requires the value to equal the rule's rendered text
// exactly. A constant allowed to be empty must have an empty rule; a
// non-empty rule on an empty-allowed constant is an interface error.
type ConstantFormat struct {
	base
	Literal string
}

// NewConstant constructs a Constant field format.
func NewConstant(name string, isAllowedToBeEmpty bool, lengthText, rule, example string, df *dataformat.Format) (*ConstantFormat, error) {
	b, err := newBase(name, isAllowedToBeEmpty, lengthText, rule, example, df)
	if err != nil {
		return nil, err
	}

	literal := unquoteToken(strings.TrimSpace(rule))
	if isAllowedToBeEmpty && literal != "" {
		return nil, ciderrors.Interface(nil, "field %q is allowed to be empty so its rule must be empty, but is %q", name, rule)
	}
	if !isAllowedToBeEmpty && literal == "" {
		return nil, ciderrors.Interface(nil, "field %q of type Constant must have a non-empty rule unless it is allowed to be empty", name)
	}

	b.emptyValue = ""
	cf := &ConstantFormat{base: b, Literal: literal}
	if err := validateExample(cf, example); err != nil {
		return nil, err
	}
	return cf, nil
}

// unquoteToken strips a single layer of matching quotes from a string or
// integer/float/bare-name token, rendering it to its literal text form.
func unquoteToken(token string) string {
	if len(token) >= 2 && (token[0] == '"' || token[0] == '\'') && token[len(token)-1] == token[0] {
		return token[1 : len(token)-1]
	}
	return token
}

func (c *ConstantFormat) Validated(text string) (any, error) { return validatedCommon(&c.base, c, text) }

func (c *ConstantFormat) ValidatedValue(text string) (any, error) {
	if text != c.Literal {
		return nil, ciderrors.FieldValue(nil, "value %s must equal constant: %s", quote(text), quote(c.Literal))
	}
	return text, nil
}

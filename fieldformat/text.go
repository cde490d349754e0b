package fieldformat

import "github.com/invertedv/cidcheck/dataformat"

// TextFormat returns the text unchanged; its rule is ignored.
type TextFormat struct{ base }

// NewText constructs a Text field format.
func NewText(name string, isAllowedToBeEmpty bool, lengthText, rule, example string, df *dataformat.Format) (*TextFormat, error) {
	b, err := newBase(name, isAllowedToBeEmpty, lengthText, rule, example, df)
	if err != nil {
		return nil, err
	}
	b.emptyValue = ""
	tf := &TextFormat{base: b}
	if err := validateExample(tf, example); err != nil {
		return nil, err
	}
	return tf, nil
}

func (t *TextFormat) Validated(text string) (any, error) { return validatedCommon(&t.base, t, text) }

func (t *TextFormat) ValidatedValue(text string) (any, error) { return text, nil }

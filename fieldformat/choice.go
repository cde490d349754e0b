package fieldformat

import (
	"strings"

	"github.com/invertedv/cidcheck/ciderrors"
	"github.com/invertedv/cidcheck/dataformat"
)

// ChoiceFormat requires the value to exactly equal one of a comma-separated
// list of atoms, each either a bare identifier or a quoted string (which may
// contain non-ASCII content). Matching is exact, not case-folded: the value
// must equal one choice literally.
type ChoiceFormat struct {
	base
	Choices []string
}

// NewChoice constructs a Choice field format.
func NewChoice(name string, isAllowedToBeEmpty bool, lengthText, rule, example string, df *dataformat.Format) (*ChoiceFormat, error) {
	b, err := newBase(name, isAllowedToBeEmpty, lengthText, rule, example, df)
	if err != nil {
		return nil, err
	}
	choices, err := parseChoiceRule(rule)
	if err != nil {
		return nil, err
	}
	b.emptyValue = ""
	cf := &ChoiceFormat{base: b, Choices: choices}
	if err := validateExample(cf, example); err != nil {
		return nil, err
	}
	return cf, nil
}

func parseChoiceRule(rule string) ([]string, error) {
	trimmed := strings.TrimSpace(rule)
	if trimmed == "" {
		return nil, ciderrors.Interface(nil, "choice rule must not be empty")
	}
	var parts []string
	start, quote := 0, byte(0)
	for i := 0; i < len(trimmed); i++ {
		switch c := trimmed[i]; {
		case c == quote:
			quote = 0
		case quote == 0 && (c == '"' || c == '\''):
			quote = c
		case quote == 0 && c == ',':
			parts = append(parts, trimmed[start:i])
			start = i + 1
		}
	}
	parts = append(parts, trimmed[start:])
	choices := make([]string, 0, len(parts))
	for i, part := range parts {
		atom := strings.TrimSpace(part)
		if atom == "" {
			return nil, ciderrors.Interface(nil, "choice rule has an empty item at position %d (leading, trailing, or doubled comma)", i+1)
		}
		if len(atom) >= 2 && (atom[0] == '"' || atom[0] == '\'') && atom[len(atom)-1] == atom[0] {
			atom = atom[1 : len(atom)-1]
		}
		choices = append(choices, atom)
	}
	return choices, nil
}

func (c *ChoiceFormat) Validated(text string) (any, error) { return validatedCommon(&c.base, c, text) }

func (c *ChoiceFormat) ValidatedValue(text string) (any, error) {
	for _, choice := range c.Choices {
		if text == choice {
			return text, nil
		}
	}
	return nil, ciderrors.FieldValue(nil, "value %s must be one of: %s", quote(text), ciderrors.HumanReadableList(c.Choices))
}

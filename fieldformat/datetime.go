package fieldformat

import (
	"strings"
	"time"

	"github.com/invertedv/cidcheck/ciderrors"
	"github.com/invertedv/cidcheck/dataformat"
)

// humanReadableToGoLayout translates the human-readable DateTime tokens
// (YYYY, MM, DD, hh, mm, ss) into Go's reference-time layout, checked
// longest-token-first so e.g. "YYYY" is replaced before "YY" and the
// literal-percent escape "%" is replaced before any other substitution
// happens inside it.
var humanReadableToGoLayout = []struct{ token, layout string }{
	{"%", "%"},
	{"YYYY", "2006"},
	{"YY", "06"},
	{"MM", "01"},
	{"DD", "02"},
	{"hh", "15"},
	{"mm", "04"},
	{"ss", "05"},
}

func compileDateTimeLayout(rule string) string {
	var b strings.Builder
	runes := []rune(rule)
	for i := 0; i < len(runes); {
		matched := false
		for _, entry := range humanReadableToGoLayout {
			tok := []rune(entry.token)
			if i+len(tok) <= len(runes) && string(runes[i:i+len(tok)]) == entry.token {
				if entry.token == "%" {
					b.WriteRune('%')
				} else {
					b.WriteString(entry.layout)
				}
				i += len(tok)
				matched = true
				break
			}
		}
		if !matched {
			b.WriteRune(runes[i])
			i++
		}
	}
	return b.String()
}

// DateTimeFormat parses a strict date/time pattern compiled from the
// human-readable rule tokens.
type DateTimeFormat struct {
	base
	Layout string
}

// NewDateTime constructs a DateTime field format.
func NewDateTime(name string, isAllowedToBeEmpty bool, lengthText, rule, example string, df *dataformat.Format) (*DateTimeFormat, error) {
	b, err := newBase(name, isAllowedToBeEmpty, lengthText, rule, example, df)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(rule) == "" {
		return nil, ciderrors.Interface(nil, "field %q of type DateTime must have a non-empty rule describing the date pattern", name)
	}
	b.emptyValue = time.Time{}
	dt := &DateTimeFormat{base: b, Layout: compileDateTimeLayout(rule)}
	if err := validateExample(dt, example); err != nil {
		return nil, err
	}
	return dt, nil
}

func (d *DateTimeFormat) Validated(text string) (any, error) { return validatedCommon(&d.base, d, text) }

func (d *DateTimeFormat) ValidatedValue(text string) (any, error) {
	t, err := time.Parse(d.Layout, text)
	if err != nil {
		return nil, ciderrors.FieldValue(nil, "value %s must match date pattern %q (%s)", quote(text), d.rule, d.Layout)
	}
	return t, nil
}

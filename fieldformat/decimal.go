package fieldformat

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/invertedv/cidcheck/ciderrors"
	"github.com/invertedv/cidcheck/dataformat"
)

// defaultDecimalIntegerDigits and defaultDecimalFractionDigits give the
// default precision when a Decimal field's rule is empty: up to 19 integer
// and 12 fractional digits.
const defaultDecimalIntegerDigits = 19
const defaultDecimalFractionDigits = 12

// DecimalFormat parses using DataFormat.decimal_separator and, if set,
// thousands_separator, returning a shopspring/decimal fixed-precision
// value.
type DecimalFormat struct {
	base
	MaxIntegerDigits  int
	MaxFractionDigits int
}

// NewDecimal constructs a Decimal field format. rule, when non-empty, is
// "<integerDigits>,<fractionDigits>".
func NewDecimal(name string, isAllowedToBeEmpty bool, lengthText, rule, example string, df *dataformat.Format) (*DecimalFormat, error) {
	b, err := newBase(name, isAllowedToBeEmpty, lengthText, rule, example, df)
	if err != nil {
		return nil, err
	}

	intDigits, fracDigits := defaultDecimalIntegerDigits, defaultDecimalFractionDigits
	if trimmed := strings.TrimSpace(rule); trimmed != "" {
		parts := strings.Split(trimmed, ",")
		if len(parts) != 2 {
			return nil, ciderrors.Interface(nil, "decimal rule %q must be \"<integer digits>,<fraction digits>\"", rule)
		}
		intDigits, err = strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil || intDigits < 1 {
			return nil, ciderrors.Interface(nil, "decimal rule %q has an invalid integer-digit count", rule)
		}
		fracDigits, err = strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil || fracDigits < 0 {
			return nil, ciderrors.Interface(nil, "decimal rule %q has an invalid fraction-digit count", rule)
		}
	}

	b.emptyValue = decimal.Zero
	dec := &DecimalFormat{base: b, MaxIntegerDigits: intDigits, MaxFractionDigits: fracDigits}
	if err := validateExample(dec, example); err != nil {
		return nil, err
	}
	return dec, nil
}

func (d *DecimalFormat) Validated(text string) (any, error) { return validatedCommon(&d.base, d, text) }

func (d *DecimalFormat) ValidatedValue(text string) (any, error) {
	dsep := d.dataFormat.DecimalSeparator
	if dsep == 0 {
		dsep = '.'
	}
	tsep := d.dataFormat.ThousandsSeparator

	normalized, err := normalizeDecimalText(text, dsep, tsep)
	if err != nil {
		return nil, err
	}

	value, err := decimal.NewFromString(normalized)
	if err != nil {
		return nil, ciderrors.FieldValue(nil, "value %s must be a decimal number", quote(text))
	}

	intDigits := digitsBeforePoint(normalized)
	fracDigits := digitsAfterPoint(normalized)
	if intDigits > d.MaxIntegerDigits || fracDigits > d.MaxFractionDigits {
		return nil, ciderrors.FieldValue(nil, "value %s has %d integer and %d fraction digits but at most %d and %d are allowed",
			quote(text), intDigits, fracDigits, d.MaxIntegerDigits, d.MaxFractionDigits)
	}

	return value, nil
}

// normalizeDecimalText rewrites text using dsep/tsep into Go/decimal's
// expected '.'-separated form, rejecting a doubled decimal separator and a
// thousands separator appearing after the decimal separator.
func normalizeDecimalText(text string, dsep, tsep rune) (string, error) {
	runes := []rune(text)
	var b strings.Builder
	seenDecimal := false
	decimalCount := 0
	for _, r := range runes {
		switch {
		case r == dsep:
			decimalCount++
			if decimalCount > 1 {
				return "", ciderrors.FieldValue(nil, "value %s has more than one decimal separator", quote(text))
			}
			seenDecimal = true
			b.WriteRune('.')
		case tsep != 0 && r == tsep:
			if seenDecimal {
				return "", ciderrors.FieldValue(nil, "value %s has a thousands separator after the decimal separator", quote(text))
			}
			// thousands separator is dropped, not written
		default:
			b.WriteRune(r)
		}
	}
	return b.String(), nil
}

func digitsBeforePoint(s string) int {
	s = strings.TrimPrefix(s, "-")
	if i := strings.IndexByte(s, '.'); i >= 0 {
		return i
	}
	return len(s)
}

func digitsAfterPoint(s string) int {
	if i := strings.IndexByte(s, '.'); i >= 0 {
		return len(s) - i - 1
	}
	return 0
}

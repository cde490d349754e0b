package fieldformat

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/invertedv/cidcheck/ciderrors"
	"github.com/invertedv/cidcheck/dataformat"
	"github.com/invertedv/cidcheck/rangeval"
)

// defaultIntegerLow/defaultIntegerHigh give the 32-bit default range used
// when no rule overrides it: -2^31 .. 2^31-1.
const defaultIntegerLow = -(1 << 31)
const defaultIntegerHigh = (1 << 31) - 1

// IntegerFormat parses a signed decimal integer and validates it against a
// ValidRange derived from the rule, or from the field length, or the
// 32-bit default.
type IntegerFormat struct {
	base
	ValidRange rangeval.Range
}

// NewInteger constructs an Integer field format.
func NewInteger(name string, isAllowedToBeEmpty bool, lengthText, rule, example string, df *dataformat.Format) (*IntegerFormat, error) {
	b, err := newBase(name, isAllowedToBeEmpty, lengthText, rule, example, df)
	if err != nil {
		return nil, err
	}

	hasLength, lengthValue := singleExactValue(b.length)
	var validRange rangeval.Range
	switch {
	case strings.TrimSpace(rule) != "":
		validRange, err = rangeval.Parse(rule)
		if err != nil {
			return nil, err
		}
		if df.Family == dataformat.Fixed && hasLength {
			if err := checkRuleFitsLength(validRange, lengthValue); err != nil {
				return nil, err
			}
		}
	case hasLength && lengthValue >= 1:
		validRange = rangeFromLength(int(lengthValue))
	default:
		validRange, _ = rangeval.Parse(fmt.Sprintf("%d…%d", defaultIntegerLow, defaultIntegerHigh))
	}

	b.emptyValue = int64(0)
	intFmt := &IntegerFormat{base: b, ValidRange: validRange}
	if err := validateExample(intFmt, example); err != nil {
		return nil, err
	}
	return intFmt, nil
}

func singleExactValue(r rangeval.Range) (bool, float64) {
	lo, hasLo := r.LowerLimit()
	hi, hasHi := r.UpperLimit()
	if hasLo && hasHi && lo == hi {
		return true, lo
	}
	return false, 0
}

// rangeFromLength derives the default range for a field with no explicit
// rule but an explicit character length, e.g. length 3 => -99…999, length
// 2 => -9…99.
func rangeFromLength(length int) rangeval.Range {
	hi := pow10(length) - 1
	lo := -(pow10(length-1) - 1)
	r, _ := rangeval.Parse(fmt.Sprintf("%d…%d", lo, hi))
	return r
}

func pow10(n int) int64 {
	if n <= 0 {
		return 1
	}
	v := int64(1)
	for i := 0; i < n; i++ {
		v *= 10
	}
	return v
}

// checkRuleFitsLength enforces that, when both rule and length are present
// for a fixed format, the rule's digit-widths fit the field length;
// otherwise it is an interface error.
func checkRuleFitsLength(r rangeval.Range, length float64) error {
	lo, hasLo := r.LowerLimit()
	hi, hasHi := r.UpperLimit()
	needed := 0
	negative := false
	if hasLo {
		needed = max(needed, digitWidth(lo))
		if lo < 0 {
			negative = true
		}
	}
	if hasHi {
		needed = max(needed, digitWidth(hi))
		if hi < 0 {
			negative = true
		}
	}
	if negative {
		needed++
	}
	if float64(needed) > length {
		return ciderrors.Interface(nil, "rule %q needs %d characters but field length is only %v", r.Description(), needed, length)
	}
	return nil
}

func digitWidth(v float64) int {
	n := int64(v)
	if n < 0 {
		n = -n
	}
	return len(strconv.FormatInt(n, 10))
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func (i *IntegerFormat) Validated(text string) (any, error) { return validatedCommon(&i.base, i, text) }

func (i *IntegerFormat) ValidatedValue(text string) (any, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil {
		return nil, ciderrors.FieldValue(nil, "value %s must be an integer number", quote(text))
	}
	if err := i.ValidRange.Validate("value", float64(v)); err != nil {
		return nil, ciderrors.FieldValue(nil, "%v", err)
	}
	return v, nil
}

// Package rangeval implements the range grammar used throughout the engine
// to express length and value constraints: a non-empty set of closed
// integer or decimal intervals parsed from a compact text syntax.
//
// Grammar (after normalizing "…" and ":" to the ellipsis token "…", and
// "...." to "…" when neither neighbour is a digit):
//
//	range       := interval ("," interval)*
//	interval    := atom | atom "…" | "…" atom | atom "…" atom
//	atom        := signed-integer | signed-decimal | hex | symbolic-name | single-char-literal
//
// Parse hand-rolls a small scanner over runes rather than reaching
// for a parser-combinator library: the grammar is small and specific
// enough that a scanner is the more direct fit.
package rangeval

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/invertedv/cidcheck/ciderrors"
)

// symbolicNames maps the case-insensitive symbolic tokens to their code
// point.
var symbolicNames = map[string]int64{
	"cr":  13,
	"ff":  12,
	"lf":  10,
	"tab": 9,
	"vt":  11,
}

// interval is a closed interval [Lo, Hi]; either bound may be unbounded
// (represented by HasLo/HasHi false).
type interval struct {
	Lo, Hi       float64
	HasLo, HasHi bool
}

// Range is a set of non-overlapping closed intervals. The zero value (via
// Parse("")) accepts every value.
type Range struct {
	description string
	items       []interval
}

// Description returns the original text used to construct the range.
func (r Range) Description() string { return r.description }

// IsEmpty reports whether the range carries no constraint (was parsed from
// an empty or whitespace-only description).
func (r Range) IsEmpty() bool { return r.items == nil }

// LowerLimit returns the minimum lo across all items, and whether it is
// bounded (false lower bound anywhere makes the whole range unbounded below).
func (r Range) LowerLimit() (float64, bool) {
	if len(r.items) == 0 {
		return 0, false
	}
	lo, hasLo := r.items[0].Lo, r.items[0].HasLo
	for _, it := range r.items[1:] {
		if !it.HasLo {
			hasLo = false
		} else if hasLo && it.Lo < lo {
			lo = it.Lo
		}
	}
	return lo, hasLo
}

// UpperLimit returns the maximum hi across all items, and whether it is
// bounded.
func (r Range) UpperLimit() (float64, bool) {
	if len(r.items) == 0 {
		return 0, false
	}
	hi, hasHi := r.items[0].Hi, r.items[0].HasHi
	for _, it := range r.items[1:] {
		if !it.HasHi {
			hasHi = false
		} else if hasHi && it.Hi > hi {
			hi = it.Hi
		}
	}
	return hi, hasHi
}

// Parse builds a Range from a textual expression. An empty or
// whitespace-only description yields a Range that accepts every value.
func Parse(description string) (Range, error) {
	return parseWithLocation(description, nil)
}

// ParseAt is Parse but attaches loc to any interface error raised.
func ParseAt(description string, loc *ciderrors.Location) (Range, error) {
	return parseWithLocation(description, loc)
}

func parseWithLocation(description string, loc *ciderrors.Location) (Range, error) {
	trimmed := strings.TrimSpace(description)
	if trimmed == "" {
		return Range{}, nil
	}

	normalized := normalize(description)
	toks, err := tokenize(normalized, loc)
	if err != nil {
		return Range{}, err
	}

	var items []interval
	pos := 0
	for pos < len(toks) {
		it, next, err := parseInterval(toks, pos, loc)
		if err != nil {
			return Range{}, err
		}
		for _, existing := range items {
			if overlaps(existing, it) {
				return Range{}, ciderrors.Interface(loc,
					"range items must not overlap: %s and %s", describeInterval(existing), describeInterval(it))
			}
		}
		items = append(items, it)
		pos = next
		if pos < len(toks) {
			if toks[pos].kind != tokComma {
				return Range{}, ciderrors.Interface(loc, "expected comma between range items but found: %q", toks[pos].text)
			}
			pos++
			if pos >= len(toks) {
				return Range{}, ciderrors.Interface(loc, "range must not end with a trailing comma")
			}
		}
	}

	if len(items) == 0 {
		return Range{}, ciderrors.Interface(loc, "range description must contain at least one item: %q", description)
	}

	return Range{description: description, items: items}, nil
}

// Validate reports whether v lies in any interval. name is used in the
// error message to identify what is being validated.
func (r Range) Validate(name string, v float64) error {
	return r.ValidateAt(name, v, nil)
}

// ValidateAt is Validate but attaches loc to the raised error.
func (r Range) ValidateAt(name string, v float64, loc *ciderrors.Location) error {
	if r.IsEmpty() {
		return nil
	}
	for _, it := range r.items {
		if (!it.HasLo || v >= it.Lo) && (!it.HasHi || v <= it.Hi) {
			return nil
		}
	}
	return ciderrors.RangeValue(loc, "%s is %s but must be within range: %s", name, formatNumber(v), r.description)
}

func formatNumber(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func overlaps(a, b interval) bool {
	aLo, aHi := effectiveLo(a), effectiveHi(a)
	bLo, bHi := effectiveLo(b), effectiveHi(b)
	return aLo <= bHi && bLo <= aHi
}

func effectiveLo(i interval) float64 {
	if !i.HasLo {
		return -1e308
	}
	return i.Lo
}

func effectiveHi(i interval) float64 {
	if !i.HasHi {
		return 1e308
	}
	return i.Hi
}

func describeInterval(i interval) string {
	lo, hi := "…", "…"
	if i.HasLo {
		lo = formatNumber(i.Lo)
	}
	if i.HasHi {
		hi = formatNumber(i.Hi)
	}
	if i.HasLo && i.HasHi && i.Lo == i.Hi {
		return formatNumber(i.Lo)
	}
	return fmt.Sprintf("%s…%s", lo, hi)
}

package rangeval

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/invertedv/cidcheck/ciderrors"
)

const ellipsis = "…"

// normalize turns the various textual spellings of the ellipsis token into
// the single rune "…": a literal ellipsis and ":" pass through unchanged in
// effect, "..." always becomes "…", and "...." becomes "…" unless a digit
// sits on either side of it (in which case it is almost certainly meant as
// two adjacent tokens rather than a quadruple-dot ellipsis).
func normalize(description string) string {
	result := strings.ReplaceAll(description, ":", ellipsis)
	if strings.Contains(result, "....") {
		idx := strings.Index(result, "....")
		before := idx > 0 && isDigitByte(result[idx-1])
		after := idx+4 < len(result) && isDigitByte(result[idx+4])
		if !before && !after {
			result = strings.ReplaceAll(result, "....", ellipsis)
		}
	}
	result = strings.ReplaceAll(result, "...", ellipsis)
	return result
}

func isDigitByte(b byte) bool { return b >= '0' && b <= '9' }

type tokenKind int

const (
	tokNumber tokenKind = iota
	tokEllipsis
	tokComma
	tokHyphen
	tokSymbol
	tokQuoted
)

type token struct {
	kind tokenKind
	text string
}

// tokenize scans a normalized range description into a flat token stream.
func tokenize(s string, loc *ciderrors.Location) ([]token, error) {
	var toks []token
	runes := []rune(s)
	i := 0
	for i < len(runes) {
		c := runes[i]
		switch {
		case unicode.IsSpace(c):
			i++
		case c == ',':
			toks = append(toks, token{tokComma, ","})
			i++
		case string(c) == ellipsis:
			toks = append(toks, token{tokEllipsis, ellipsis})
			i++
		case c == '-':
			toks = append(toks, token{tokHyphen, "-"})
			i++
		case c == '"' || c == '\'':
			quote := c
			if i+2 >= len(runes) || runes[i+2] != quote {
				return nil, ciderrors.Interface(loc, "text for range must contain a single quoted character but found: %q", string(runes[i:]))
			}
			toks = append(toks, token{tokQuoted, string(runes[i+1])})
			i += 3
		case unicode.IsDigit(c):
			j := i
			isHex := false
			if c == '0' && i+1 < len(runes) && (runes[i+1] == 'x' || runes[i+1] == 'X') {
				isHex = true
				j = i + 2
				for j < len(runes) && isHexDigit(runes[j]) {
					j++
				}
			} else {
				for j < len(runes) && (unicode.IsDigit(runes[j]) || runes[j] == '.') {
					j++
				}
			}
			text := string(runes[i:j])
			if !isHex && strings.Count(text, ".") > 1 {
				return nil, ciderrors.Interface(loc, "number must be an integer or decimal but is: %q", text)
			}
			toks = append(toks, token{tokNumber, text})
			i = j
		case unicode.IsLetter(c):
			j := i
			for j < len(runes) && (unicode.IsLetter(runes[j]) || unicode.IsDigit(runes[j])) {
				j++
			}
			toks = append(toks, token{tokSymbol, string(runes[i:j])})
			i = j
		default:
			return nil, ciderrors.Interface(loc, "range must be specified using integer numbers, text, symbols and ellipsis (…) but found: %q", string(c))
		}
	}
	return toks, nil
}

func isHexDigit(r rune) bool {
	return unicode.IsDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

// parseAtom resolves a single atom (possibly preceded by a hyphen) to its
// numeric value, returning the index just past the atom.
func parseAtom(toks []token, pos int, loc *ciderrors.Location) (float64, int, error) {
	negative := false
	if pos < len(toks) && toks[pos].kind == tokHyphen {
		negative = true
		pos++
		if pos >= len(toks) {
			return 0, pos, ciderrors.Interface(loc, "hyphen (-) at end must be followed by number")
		}
	}
	t := toks[pos]
	var value float64
	switch t.kind {
	case tokNumber:
		if strings.HasPrefix(strings.ToLower(t.text), "0x") {
			n, err := strconv.ParseInt(t.text[2:], 16, 64)
			if err != nil {
				return 0, pos, ciderrors.Interface(loc, "number must be an integer or float but is: %q", t.text)
			}
			value = float64(n)
		} else {
			f, err := strconv.ParseFloat(t.text, 64)
			if err != nil {
				return 0, pos, ciderrors.Interface(loc, "number must be an integer or float but is: %q", t.text)
			}
			value = f
		}
	case tokSymbol:
		code, ok := symbolicNames[strings.ToLower(t.text)]
		if !ok {
			var names []string
			for n := range symbolicNames {
				names = append(names, n)
			}
			return 0, pos, ciderrors.Interface(loc, "symbolic name %q must be one of: %s", t.text, ciderrors.HumanReadableList(names))
		}
		value = float64(code)
	case tokQuoted:
		r := []rune(t.text)
		value = float64(r[0])
	default:
		return 0, pos, ciderrors.Interface(loc, "expected a number, symbol or quoted character but found: %q", t.text)
	}
	if negative {
		value = -value
	}
	return value, pos + 1, nil
}

// isAtomStart reports whether the token at pos can begin an atom.
func isAtomStart(toks []token, pos int) bool {
	if pos >= len(toks) {
		return false
	}
	switch toks[pos].kind {
	case tokNumber, tokSymbol, tokQuoted, tokHyphen:
		return true
	}
	return false
}

// parseInterval parses a single interval starting at pos and returns the
// index just past it.
func parseInterval(toks []token, pos int, loc *ciderrors.Location) (interval, int, error) {
	if pos >= len(toks) {
		return interval{}, pos, ciderrors.Interface(loc, "expected a range item but found end of input")
	}

	if toks[pos].kind == tokEllipsis {
		pos++
		upper, next, err := parseAtom(toks, pos, loc)
		if err != nil {
			return interval{}, pos, err
		}
		return interval{Hi: upper, HasHi: true}, next, nil
	}

	lo, next, err := parseAtom(toks, pos, loc)
	if err != nil {
		return interval{}, pos, err
	}
	pos = next

	if pos < len(toks) && toks[pos].kind == tokEllipsis {
		pos++
		if isAtomStart(toks, pos) {
			hi, next2, err := parseAtom(toks, pos, loc)
			if err != nil {
				return interval{}, pos, err
			}
			if lo > hi {
				return interval{}, pos, ciderrors.Interface(loc, "lower limit %s must be less than or equal to upper limit %s", formatNumber(lo), formatNumber(hi))
			}
			return interval{Lo: lo, HasLo: true, Hi: hi, HasHi: true}, next2, nil
		}
		return interval{Lo: lo, HasLo: true}, pos, nil
	}

	return interval{Lo: lo, HasLo: true, Hi: lo, HasHi: true}, pos, nil
}

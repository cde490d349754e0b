// Package dataformat implements the DataFormat model: a typed, validated
// bag of properties for one of the delimited/fixed/excel/ods families,
// sealed by an explicit Validate() after which it is immutable. The four
// families are collapsed into a single struct gated by Family, with a
// switch on Family inside Validate rather than a class hierarchy.
package dataformat

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/ianaindex"

	"github.com/invertedv/cidcheck/ciderrors"
	"github.com/invertedv/cidcheck/rangeval"
)

// Family identifies which of the four supported data format kinds a Format
// describes.
type Family string

const (
	Delimited Family = "delimited"
	Fixed     Family = "fixed"
	Excel     Family = "excel"
	ODS       Family = "ods"
)

// LineDelimiter names the recognized line-terminator modes.
type LineDelimiter string

const (
	LineLF   LineDelimiter = "lf"
	LineCR   LineDelimiter = "cr"
	LineCRLF LineDelimiter = "crlf"
	LineAny  LineDelimiter = "any"
	LineNone LineDelimiter = "none"
)

// QuotingMode controls how the delimited reader/writer treats quote
// characters.
type QuotingMode string

const (
	QuoteMinimal QuotingMode = "minimal"
	QuoteAll     QuotingMode = "all"
	QuoteNone    QuotingMode = "none"
)

// Format carries the family-dependent properties of a data format. It is
// built with SetProperty calls and frozen by Validate.
type Format struct {
	Family Family

	Encoding           string
	Header             int
	AllowedCharacters  rangeval.Range
	hasAllowedChars    bool
	LineDelimiter      LineDelimiter
	hasLineDelimiter   bool
	DecimalSeparator   rune
	ThousandsSeparator rune
	hasDecimalSep      bool
	hasThousandsSep    bool

	// delimited-only
	ItemDelimiter    rune
	QuoteCharacter   rune
	EscapeCharacter  rune
	SkipInitialSpace bool
	Quoting          QuotingMode
	hasItemDelimiter bool
	hasQuoteChar     bool
	hasEscapeChar    bool

	// spreadsheet-only
	Sheet    int
	hasSheet bool

	set    map[string]bool
	sealed bool
}

// New creates an unsealed Format for the given family with the engine's
// defaults (encoding "utf-8", header 0, decimal separator '.').
func New(family Family) *Format {
	return &Format{
		Family:             family,
		Encoding:           "utf-8",
		DecimalSeparator:   '.',
		QuoteCharacter:     '"',
		EscapeCharacter:    '"',
		Quoting:            QuoteMinimal,
		set:                map[string]bool{},
	}
}

// Sealed reports whether Validate has succeeded.
func (f *Format) Sealed() bool { return f.sealed }

func (f *Format) markSet(name string) error {
	if f.sealed {
		return ciderrors.Interface(nil, "data format is sealed and property %q can no longer be set", name)
	}
	if f.set[name] {
		return ciderrors.Interface(nil, "data format property %q has already been set", name)
	}
	f.set[name] = true
	return nil
}

// SetProperty assigns a named property from its raw textual representation
// through a single entry point. A property once set cannot be set again,
// and nothing can be set once the format is sealed.
func (f *Format) SetProperty(name, raw string) error {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "encoding":
		if err := f.markSet(name); err != nil {
			return err
		}
		f.Encoding = raw
	case "header":
		if err := f.markSet(name); err != nil {
			return err
		}
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil || n < 0 {
			return ciderrors.Interface(nil, "value for data format property %q is %q but must be a non-negative integer", name, raw)
		}
		f.Header = n
	case "allowed_characters", "allowed characters":
		if err := f.markSet("allowed_characters"); err != nil {
			return err
		}
		r, err := rangeval.Parse(raw)
		if err != nil {
			return ciderrors.Interface(nil, "value for property %q must be a valid range: %v", name, err)
		}
		f.AllowedCharacters = r
		f.hasAllowedChars = true
	case "line_delimiter", "line delimiter":
		if err := f.markSet("line_delimiter"); err != nil {
			return err
		}
		ld := LineDelimiter(strings.ToLower(strings.TrimSpace(raw)))
		switch ld {
		case LineLF, LineCR, LineCRLF, LineAny:
		case LineNone:
			if f.Family != Fixed {
				return ciderrors.Interface(nil, "line delimiter %q is only valid for fixed data formats", raw)
			}
		default:
			return ciderrors.Interface(nil, "line delimiter is %q but must be one of: lf, cr, crlf, any, none", raw)
		}
		f.LineDelimiter = ld
		f.hasLineDelimiter = true
	case "decimal_separator", "decimal separator":
		if err := f.markSet("decimal_separator"); err != nil {
			return err
		}
		c, err := parseChar(raw)
		if err != nil {
			return err
		}
		f.DecimalSeparator = c
		f.hasDecimalSep = true
	case "thousands_separator", "thousands separator":
		if err := f.markSet("thousands_separator"); err != nil {
			return err
		}
		c, err := parseChar(raw)
		if err != nil {
			return err
		}
		f.ThousandsSeparator = c
		f.hasThousandsSep = true
	case "item_delimiter", "item delimiter":
		if f.Family != Delimited {
			return ciderrors.Interface(nil, "property %q is not allowed for data format %q", name, f.Family)
		}
		if err := f.markSet("item_delimiter"); err != nil {
			return err
		}
		c, err := parseChar(raw)
		if err != nil {
			return err
		}
		f.ItemDelimiter = c
		f.hasItemDelimiter = true
	case "quote_character", "quote character":
		if f.Family != Delimited {
			return ciderrors.Interface(nil, "property %q is not allowed for data format %q", name, f.Family)
		}
		if err := f.markSet("quote_character"); err != nil {
			return err
		}
		c, err := parseChar(raw)
		if err != nil {
			return err
		}
		f.QuoteCharacter = c
		f.hasQuoteChar = true
	case "escape_character", "escape character":
		if f.Family != Delimited {
			return ciderrors.Interface(nil, "property %q is not allowed for data format %q", name, f.Family)
		}
		if err := f.markSet("escape_character"); err != nil {
			return err
		}
		c, err := parseChar(raw)
		if err != nil {
			return err
		}
		f.EscapeCharacter = c
		f.hasEscapeChar = true
	case "skip_initial_space", "skip initial space":
		if f.Family != Delimited {
			return ciderrors.Interface(nil, "property %q is not allowed for data format %q", name, f.Family)
		}
		if err := f.markSet("skip_initial_space"); err != nil {
			return err
		}
		b, err := parseBool(raw)
		if err != nil {
			return err
		}
		f.SkipInitialSpace = b
	case "quoting":
		if f.Family != Delimited {
			return ciderrors.Interface(nil, "property %q is not allowed for data format %q", name, f.Family)
		}
		if err := f.markSet("quoting"); err != nil {
			return err
		}
		mode := QuotingMode(strings.ToLower(strings.TrimSpace(raw)))
		switch mode {
		case QuoteMinimal, QuoteAll, QuoteNone:
		default:
			return ciderrors.Interface(nil, "quoting is %q but must be one of: minimal, all, none", raw)
		}
		f.Quoting = mode
	case "sheet":
		if f.Family != Excel && f.Family != ODS {
			return ciderrors.Interface(nil, "property %q is only allowed for excel/ods data formats", name)
		}
		if err := f.markSet("sheet"); err != nil {
			return err
		}
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil || n < 1 {
			return ciderrors.Interface(nil, "value for data format property %q is %q but must be a positive integer", name, raw)
		}
		f.Sheet = n
		f.hasSheet = true
	default:
		return ciderrors.Interface(nil, "data format property is %q but must be one of: %s", name,
			ciderrors.HumanReadableList([]string{"encoding", "header", "allowed_characters", "line_delimiter",
				"decimal_separator", "thousands_separator", "item_delimiter", "quote_character",
				"escape_character", "skip_initial_space", "quoting", "sheet"}))
	}
	return nil
}

func parseChar(raw string) (rune, error) {
	trimmed := strings.TrimSpace(raw)
	lower := strings.ToLower(trimmed)
	if code, ok := symbolicCharNames[lower]; ok {
		return code, nil
	}
	if strings.HasPrefix(lower, "0x") {
		n, err := strconv.ParseInt(trimmed[2:], 16, 32)
		if err != nil {
			return 0, ciderrors.Interface(nil, "character value must be a valid hex code but is: %q", raw)
		}
		return rune(n), nil
	}
	if n, err := strconv.Atoi(trimmed); err == nil {
		return rune(n), nil
	}
	if len(trimmed) == 3 && (trimmed[0] == '"' || trimmed[0] == '\'') && trimmed[2] == trimmed[0] {
		r := []rune(trimmed)
		return r[1], nil
	}
	if utf8.RuneCountInString(trimmed) == 1 {
		r := []rune(trimmed)
		return r[0], nil
	}
	return 0, ciderrors.Interface(nil, "character value must be a decimal code, 0x hex code, symbolic name or single quoted character but is: %q", raw)
}

var symbolicCharNames = map[string]rune{
	"cr":  13,
	"ff":  12,
	"lf":  10,
	"tab": 9,
	"vt":  11,
}

func parseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "yes", "y", "1":
		return true, nil
	case "false", "no", "n", "0", "":
		return false, nil
	default:
		return false, ciderrors.Interface(nil, "value %q must be a boolean", raw)
	}
}

// Validate enforces the cross-property consistency rules and seals the
// format. Once sealed, no further property can be set.
func (f *Format) Validate() error {
	if f.sealed {
		return nil
	}
	if !f.set["encoding"] {
		return ciderrors.Interface(nil, "required data format property must be set: %q", "encoding")
	}
	if _, err := ianaindex.IANA.Encoding(f.Encoding); err != nil && !strings.EqualFold(f.Encoding, "utf-8") && !strings.EqualFold(f.Encoding, "utf8") && !strings.EqualFold(f.Encoding, "ascii") {
		return ciderrors.Interface(nil, "encoding %q is not resolvable", f.Encoding)
	}

	if f.hasDecimalSep && f.hasThousandsSep && f.DecimalSeparator == f.ThousandsSeparator {
		return ciderrors.Interface(nil, "decimal separator and thousands separator must be distinct")
	}

	switch f.Family {
	case Delimited:
		if f.hasSheet {
			return ciderrors.Interface(nil, "property %q is not allowed for delimited data formats", "sheet")
		}
		if !f.hasItemDelimiter {
			f.ItemDelimiter = ','
		}
		if f.ItemDelimiter == 0 {
			return ciderrors.Interface(nil, "item delimiter must not be the null character")
		}
		if !f.hasLineDelimiter {
			f.LineDelimiter = LineAny
		}
		if f.LineDelimiter == LineNone {
			return ciderrors.Interface(nil, "line delimiter %q is only valid for fixed data formats", f.LineDelimiter)
		}
		lineChars := effectiveLineDelimiterChars(f.LineDelimiter)
		if f.ItemDelimiter == f.QuoteCharacter {
			return ciderrors.Interface(nil, "item delimiter and quote character must be distinct")
		}
		for _, c := range lineChars {
			if f.ItemDelimiter == c {
				return ciderrors.Interface(nil, "item delimiter must not equal a line delimiter character")
			}
		}
	case Fixed:
		if f.hasItemDelimiter {
			return ciderrors.Interface(nil, "property %q is not allowed for fixed data formats", "item_delimiter")
		}
		if f.hasSheet {
			return ciderrors.Interface(nil, "property %q is not allowed for fixed data formats", "sheet")
		}
		if !f.hasLineDelimiter {
			f.LineDelimiter = LineAny
		}
	case Excel, ODS:
		if f.hasItemDelimiter {
			return ciderrors.Interface(nil, "property %q is not allowed for %s data formats", "item_delimiter", f.Family)
		}
		if !f.hasSheet {
			f.Sheet = 1
		}
	default:
		return ciderrors.Interface(nil, "data format is %q but must be one of: delimited, fixed, excel, ods", f.Family)
	}

	f.sealed = true
	return nil
}

func effectiveLineDelimiterChars(ld LineDelimiter) []rune {
	switch ld {
	case LineLF:
		return []rune{'\n'}
	case LineCR:
		return []rune{'\r'}
	case LineCRLF:
		return []rune{'\r', '\n'}
	case LineAny:
		return []rune{'\r', '\n'}
	default:
		return nil
	}
}

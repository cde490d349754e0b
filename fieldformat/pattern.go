package fieldformat

import (
	"regexp"
	"strings"

	"github.com/invertedv/cidcheck/ciderrors"
	"github.com/invertedv/cidcheck/dataformat"
)

// PatternFormat compiles a glob rule ('?' one character, '*' any sequence)
// into a case-insensitive, multi-line regular expression that must match
// at the start of the value; text after the match is not checked.
type PatternFormat struct {
	base
	Regex *regexp.Regexp
}

// NewPattern constructs a Pattern field format.
func NewPattern(name string, isAllowedToBeEmpty bool, lengthText, rule, example string, df *dataformat.Format) (*PatternFormat, error) {
	b, err := newBase(name, isAllowedToBeEmpty, lengthText, rule, example, df)
	if err != nil {
		return nil, err
	}
	re, err := compileGlob(rule)
	if err != nil {
		return nil, err
	}
	b.emptyValue = ""
	pf := &PatternFormat{base: b, Regex: re}
	if err := validateExample(pf, example); err != nil {
		return nil, err
	}
	return pf, nil
}

func compileGlob(rule string) (*regexp.Regexp, error) {
	var pattern strings.Builder
	for _, r := range rule {
		switch r {
		case '?':
			pattern.WriteString(".")
		case '*':
			pattern.WriteString(".*")
		default:
			pattern.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	re, err := regexp.Compile("(?im)" + pattern.String())
	if err != nil {
		return nil, ciderrors.Interface(nil, "pattern rule %q does not compile: %v", rule, err)
	}
	return re, nil
}

func (p *PatternFormat) Validated(text string) (any, error) { return validatedCommon(&p.base, p, text) }

// matchesAtStart reports whether re matches text starting exactly at index
// 0, mirroring Python's re.match (prefix-anchored, not full-string) rather
// than a full-string match.
func matchesAtStart(re *regexp.Regexp, text string) bool {
	loc := re.FindStringIndex(text)
	return loc != nil && loc[0] == 0
}

func (p *PatternFormat) ValidatedValue(text string) (any, error) {
	if !matchesAtStart(p.Regex, text) {
		return nil, ciderrors.FieldValue(nil, "value %s must match pattern: %q", quote(text), p.rule)
	}
	return text, nil
}

package check

import (
	"strconv"
	"strings"

	"github.com/invertedv/cidcheck/ciderrors"
)

// IsUniqueCheck ensures that all rows are unique with respect to a
// comma-separated list of key fields.
type IsUniqueCheck struct {
	base
	fieldNamesToCheck []string
	seen              map[string]*ciderrors.Location
}

// NewIsUniqueCheck constructs an IsUnique check. rule is a comma-separated
// list of field names, each of which must be declared in fieldNames;
// duplicates in the list and unknown names are interface errors.
func NewIsUniqueCheck(description, rule string, fieldNames []string, loc *ciderrors.Location) (*IsUniqueCheck, error) {
	if len(fieldNames) == 0 {
		return nil, ciderrors.Interface(loc, "field names must be specified before check %q", description)
	}
	parts := strings.Split(rule, ",")
	var toCheck []string
	seenName := map[string]bool{}
	for _, part := range parts {
		name := strings.TrimSpace(part)
		if name == "" {
			return nil, ciderrors.Interface(loc, "rule %q for check %q must be a comma separated list of field names", rule, description)
		}
		if _, err := fieldNameIndex(name, fieldNames); err != nil {
			return nil, ciderrors.Interface(loc, "%v", err)
		}
		if seenName[name] {
			return nil, ciderrors.Interface(loc, "duplicate field name %q for unique check %q must be removed", name, description)
		}
		seenName[name] = true
		toCheck = append(toCheck, name)
	}
	if len(toCheck) == 0 {
		return nil, ciderrors.Interface(loc, "rule must contain at least one field name to check for uniqueness")
	}

	c := &IsUniqueCheck{
		base:              base{description: description, rule: rule, fieldNames: fieldNames},
		fieldNamesToCheck: toCheck,
	}
	c.Reset()
	return c, nil
}

// Reset clears the map from key tuple to location of first occurrence.
func (c *IsUniqueCheck) Reset() {
	c.seen = map[string]*ciderrors.Location{}
}

// CheckRow computes the key tuple and raises on duplicate, with
// SeeAlsoLocation pointing to the first occurrence.
func (c *IsUniqueCheck) CheckRow(fieldValues map[string]string, loc *ciderrors.Location) error {
	key := c.keyOf(fieldValues)
	if first, ok := c.seen[key]; ok {
		return &ciderrors.CidError{
			Kind:            ciderrors.KindCheck,
			Message:         "values for " + ciderrors.HumanReadableList(c.fieldNamesToCheck) + " must be unique: " + c.tupleText(fieldValues),
			Location:        loc,
			SeeAlsoLocation: first,
			SeeAlsoMessage:  "location of first occurrence",
		}
	}
	c.seen[key] = loc.Copy()
	return nil
}

// CheckAtEnd does nothing for IsUnique: its invariant is purely per-row.
func (c *IsUniqueCheck) CheckAtEnd(loc *ciderrors.Location) error { return nil }

func (c *IsUniqueCheck) keyOf(fieldValues map[string]string) string {
	var b strings.Builder
	for i, name := range c.fieldNamesToCheck {
		if i > 0 {
			b.WriteByte(0)
		}
		b.WriteString(fieldValues[name])
	}
	return b.String()
}

func (c *IsUniqueCheck) tupleText(fieldValues map[string]string) string {
	var b strings.Builder
	b.WriteByte('(')
	for i, name := range c.fieldNamesToCheck {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strconv.Quote(fieldValues[name]))
	}
	b.WriteByte(')')
	return b.String()
}

// Package cid implements the CID model and loader: a sealed DataFormat, an
// ordered list of FieldFormats, and a collection of Checks keyed by
// description, built once from a sequence of already-decoded rows and
// immutable thereafter.
//
// Load reads three row tags (d/f/c) from a CID source and builds the
// in-memory model in a single pass.
package cid

import (
	"strconv"
	"strings"

	"github.com/invertedv/cidcheck/check"
	"github.com/invertedv/cidcheck/ciderrors"
	"github.com/invertedv/cidcheck/dataformat"
	"github.com/invertedv/cidcheck/fieldformat"
)

// Cid is the complete, immutable interface definition: a sealed DataFormat,
// an ordered list of FieldFormats (names unique), and a collection of
// Checks keyed by description (descriptions unique).
type Cid struct {
	Format *dataformat.Format

	fields     []fieldformat.FieldFormat
	fieldIndex map[string]int
	checkOrder []string
	checks     map[string]check.Check
}

// Fields returns the field formats in declaration order.
func (c *Cid) Fields() []fieldformat.FieldFormat { return c.fields }

// FieldByName looks up a field format by its name.
func (c *Cid) FieldByName(name string) (fieldformat.FieldFormat, bool) {
	i, ok := c.fieldIndex[name]
	if !ok {
		return nil, false
	}
	return c.fields[i], true
}

// FieldNames returns the declared field names in order.
func (c *Cid) FieldNames() []string {
	names := make([]string, len(c.fields))
	for i, f := range c.fields {
		names[i] = f.Name()
	}
	return names
}

// Checks returns the checks in declaration order.
func (c *Cid) Checks() []check.Check {
	out := make([]check.Check, len(c.checkOrder))
	for i, d := range c.checkOrder {
		out[i] = c.checks[d]
	}
	return out
}

// CheckByDescription looks up a check by its description.
func (c *Cid) CheckByDescription(description string) (check.Check, bool) {
	ck, ok := c.checks[description]
	return ck, ok
}

// rowTag identifies the leading-column tag of a CID row.
type rowTag int

const (
	tagComment rowTag = iota
	tagDataFormat
	tagField
	tagCheck
)

func classify(cell string) (rowTag, error) {
	switch strings.ToLower(strings.TrimSpace(cell)) {
	case "":
		return tagComment, nil
	case "d":
		return tagDataFormat, nil
	case "f":
		return tagField, nil
	case "c":
		return tagCheck, nil
	default:
		return 0, ciderrors.Interface(nil, "row tag is %q but must be empty, %q, %q or %q", cell, "d", "f", "c")
	}
}

// cellAt returns row[i] or "" if the row is too short: missing later
// cells default to the empty string.
func cellAt(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

// Load builds a Cid from a sequence of rows already decoded into strings.
// sourceName identifies the origin of rows for location reporting.
func Load(sourceName string, rows [][]string) (*Cid, error) {
	loc := ciderrors.NewLocation(sourceName)

	var format *dataformat.Format
	formatSet := false

	c := &Cid{
		fieldIndex: map[string]int{},
		checks:     map[string]check.Check{},
	}
	fieldFirstSeenAt := map[string]*ciderrors.Location{}
	checkFirstSeenAt := map[string]*ciderrors.Location{}

	for i, row := range rows {
		if i > 0 {
			loc.AdvanceLine()
		}

		tag, err := classify(cellAt(row, 0))
		if err != nil {
			return nil, err.(*ciderrors.CidError).WithLocation(loc.Copy())
		}
		if tag == tagComment {
			continue
		}

		if (tag == tagField || tag == tagCheck) && format != nil && !format.Sealed() {
			if err := format.Validate(); err != nil {
				return nil, withLoc(err, loc)
			}
		}
		if (tag == tagField || tag == tagCheck) && format == nil {
			return nil, ciderrors.Interface(loc.Copy(), "a row must set the %q data format property before any field or check row", "format")
		}

		switch tag {
		case tagDataFormat:
			propLoc := loc.Copy()
			propLoc.SetCell(1)
			name := strings.ToLower(strings.TrimSpace(cellAt(row, 1)))
			if name == "" {
				return nil, ciderrors.Interface(propLoc, "data format row must name a property")
			}
			if name == "format" {
				if formatSet {
					return nil, ciderrors.Interface(propLoc, "data format property %q can only be set once", "format")
				}
				valLoc := loc.Copy()
				valLoc.SetCell(2)
				family, err := parseFamily(cellAt(row, 2))
				if err != nil {
					return nil, err.(*ciderrors.CidError).WithLocation(valLoc)
				}
				format = dataformat.New(family)
				formatSet = true
				continue
			}
			if !formatSet {
				return nil, ciderrors.Interface(propLoc, "data format property %q must be set before any other property", "format")
			}
			if len(row) < 3 {
				valLoc := loc.Copy()
				valLoc.SetCell(2)
				return nil, ciderrors.Interface(valLoc, "data format property %q is missing a value", name)
			}
			if err := format.SetProperty(name, cellAt(row, 2)); err != nil {
				valLoc := loc.Copy()
				valLoc.SetCell(2)
				return nil, withLoc(err, valLoc)
			}

		case tagField:
			nameLoc := loc.Copy()
			nameLoc.SetCell(1)
			name := strings.TrimSpace(cellAt(row, 1))
			if name == "" {
				return nil, ciderrors.Interface(nameLoc, "field row must name a field")
			}
			lowered := strings.ToLower(name)
			if first, ok := fieldFirstSeenAt[lowered]; ok {
				return nil, &ciderrors.CidError{
					Kind:            ciderrors.KindInterface,
					Message:         "field name " + strconv.Quote(name) + " is declared more than once",
					Location:        nameLoc,
					SeeAlsoLocation: first,
					SeeAlsoMessage:  "location of first declaration",
				}
			}

			example := cellAt(row, 2)
			emptyFlag, err := parseEmptyFlag(cellAt(row, 3))
			if err != nil {
				flagLoc := loc.Copy()
				flagLoc.SetCell(3)
				return nil, err.(*ciderrors.CidError).WithLocation(flagLoc)
			}
			length := cellAt(row, 4)
			kindName := strings.TrimSpace(cellAt(row, 5))
			if kindName == "" {
				kindName = "Text"
			}
			rule := cellAt(row, 6)

			ff, err := fieldformat.Build(kindName, lowered, emptyFlag, length, rule, example, format)
			if err != nil {
				return nil, withLoc(err, loc.Copy())
			}

			fieldFirstSeenAt[lowered] = nameLoc
			c.fieldIndex[lowered] = len(c.fields)
			c.fields = append(c.fields, ff)

		case tagCheck:
			descLoc := loc.Copy()
			descLoc.SetCell(1)
			description := strings.TrimSpace(cellAt(row, 1))
			if description == "" {
				return nil, ciderrors.Interface(descLoc, "check row must name a description")
			}
			if first, ok := checkFirstSeenAt[description]; ok {
				return nil, &ciderrors.CidError{
					Kind:            ciderrors.KindInterface,
					Message:         "check description " + strconv.Quote(description) + " is declared more than once",
					Location:        descLoc,
					SeeAlsoLocation: first,
					SeeAlsoMessage:  "location of first declaration",
				}
			}

			kindName := strings.TrimSpace(cellAt(row, 2))
			if kindName == "" {
				return nil, ciderrors.Interface(descLoc, "check %q must name a type", description)
			}
			rule := cellAt(row, 3)

			ck, err := check.Build(kindName, description, rule, c.FieldNames(), loc.Copy())
			if err != nil {
				return nil, withLoc(err, loc.Copy())
			}

			checkFirstSeenAt[description] = descLoc
			c.checkOrder = append(c.checkOrder, description)
			c.checks[description] = ck
		}
	}

	if format == nil {
		return nil, ciderrors.Interface(nil, "a CID must set the %q data format property", "format")
	}
	if !format.Sealed() {
		if err := format.Validate(); err != nil {
			return nil, err
		}
	}
	if len(c.fields) == 0 {
		return nil, ciderrors.Interface(nil, "a CID must declare at least one field")
	}

	c.Format = format
	return c, nil
}

func withLoc(err error, loc *ciderrors.Location) error {
	if ce, ok := err.(*ciderrors.CidError); ok && ce.Location == nil {
		return ce.WithLocation(loc)
	}
	return err
}

func parseFamily(raw string) (dataformat.Family, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "delimited", "csv":
		return dataformat.Delimited, nil
	case "fixed":
		return dataformat.Fixed, nil
	case "excel":
		return dataformat.Excel, nil
	case "ods":
		return dataformat.ODS, nil
	default:
		return "", ciderrors.Interface(nil, "data format is %q but must be one of: delimited, fixed, excel, ods", raw)
	}
}

func parseEmptyFlag(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "false", "no", "n", "0":
		return false, nil
	case "true", "yes", "y", "1", "x":
		return true, nil
	default:
		return false, ciderrors.Interface(nil, "empty flag is %q but must be a boolean", raw)
	}
}

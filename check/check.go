// Package check implements the row/end checks: IsUnique and DistinctCount.
package check

import (
	"github.com/invertedv/cidcheck/ciderrors"
)

// Check is a named predicate over either a single row or the complete
// stream.
type Check interface {
	Description() string
	Rule() string
	FieldNames() []string
	// CheckRow inspects one row's field values and raises a check error on
	// violation.
	CheckRow(fieldValues map[string]string, loc *ciderrors.Location) error
	// CheckAtEnd inspects accumulated state once the stream is exhausted.
	CheckAtEnd(loc *ciderrors.Location) error
	// Reset clears any accumulated state; called at the start of every
	// validation pass.
	Reset()
	// Cleanup releases any resources held by the check.
	Cleanup() error
}

// Constructor is the check registration signature:
// (description, rule, field_names, location) -> Check.
type Constructor func(description, rule string, fieldNames []string, loc *ciderrors.Location) (Check, error)

var registry = map[string]Constructor{}

func register(name string, ctor Constructor) { registry[name] = ctor }

func init() {
	register("IsUnique", func(description, rule string, fieldNames []string, loc *ciderrors.Location) (Check, error) {
		return NewIsUniqueCheck(description, rule, fieldNames, loc)
	})
	register("DistinctCount", func(description, rule string, fieldNames []string, loc *ciderrors.Location) (Check, error) {
		return NewDistinctCountCheck(description, rule, fieldNames, loc)
	})
}

// Register installs a check-kind constructor under kindName. Exposed so an
// external plugin loader can extend the registry.
func Register(kindName string, ctor Constructor) { register(kindName, ctor) }

// Build resolves kindName to a constructor and invokes it.
func Build(kindName, description, rule string, fieldNames []string, loc *ciderrors.Location) (Check, error) {
	ctor, ok := registry[kindName]
	if !ok {
		names := make([]string, 0, len(registry))
		for k := range registry {
			names = append(names, k)
		}
		return nil, ciderrors.Interface(loc, "check type is %q but must be one of: %s", kindName, ciderrors.HumanReadableList(names))
	}
	return ctor(description, rule, fieldNames, loc)
}

// fieldNameIndex validates that name appears in available and returns its
// index.
func fieldNameIndex(name string, available []string) (int, error) {
	for i, f := range available {
		if f == name {
			return i, nil
		}
	}
	return -1, ciderrors.Interface(nil, "field name %q is not in the available fields: %s", name, ciderrors.HumanReadableList(available))
}

type base struct {
	description string
	rule        string
	fieldNames  []string
}

func (b *base) Description() string  { return b.description }
func (b *base) Rule() string         { return b.rule }
func (b *base) FieldNames() []string { return b.fieldNames }
func (b *base) Cleanup() error       { return nil }

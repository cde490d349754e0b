package fieldformat

import (
	"sort"

	"github.com/invertedv/cidcheck/ciderrors"
	"github.com/invertedv/cidcheck/dataformat"
)

// registry maps a kind name, as written in the CID's type-name column, to
// its constructor. This is the only extensibility hook inside the core;
// how it gets populated beyond these eight built-ins is out of scope.
var registry = map[string]Constructor{}

func register(name string, ctor Constructor) {
	registry[name] = ctor
}

func init() {
	register("Text", func(name string, empty bool, length, rule, example string, df *dataformat.Format) (FieldFormat, error) {
		return NewText(name, empty, length, rule, example, df)
	})
	register("Integer", func(name string, empty bool, length, rule, example string, df *dataformat.Format) (FieldFormat, error) {
		return NewInteger(name, empty, length, rule, example, df)
	})
	register("Decimal", func(name string, empty bool, length, rule, example string, df *dataformat.Format) (FieldFormat, error) {
		return NewDecimal(name, empty, length, rule, example, df)
	})
	register("DateTime", func(name string, empty bool, length, rule, example string, df *dataformat.Format) (FieldFormat, error) {
		return NewDateTime(name, empty, length, rule, example, df)
	})
	register("Choice", func(name string, empty bool, length, rule, example string, df *dataformat.Format) (FieldFormat, error) {
		return NewChoice(name, empty, length, rule, example, df)
	})
	register("Pattern", func(name string, empty bool, length, rule, example string, df *dataformat.Format) (FieldFormat, error) {
		return NewPattern(name, empty, length, rule, example, df)
	})
	register("RegEx", func(name string, empty bool, length, rule, example string, df *dataformat.Format) (FieldFormat, error) {
		return NewRegEx(name, empty, length, rule, example, df)
	})
	register("Constant", func(name string, empty bool, length, rule, example string, df *dataformat.Format) (FieldFormat, error) {
		return NewConstant(name, empty, length, rule, example, df)
	})
}

// Register installs a field-format kind constructor under kindName,
// overwriting any existing registration for that name. Exposed so an
// external plugin loader can extend the registry.
func Register(kindName string, ctor Constructor) {
	register(kindName, ctor)
}

// Build resolves kindName to a constructor and invokes it. Unknown names
// raise an interface error listing the registered kinds.
func Build(kindName, name string, isAllowedToBeEmpty bool, lengthText, rule, example string, df *dataformat.Format) (FieldFormat, error) {
	ctor, ok := registry[kindName]
	if !ok {
		names := make([]string, 0, len(registry))
		for k := range registry {
			names = append(names, k)
		}
		sort.Strings(names)
		return nil, ciderrors.Interface(nil, "field type is %q but must be one of: %s", kindName, ciderrors.HumanReadableList(names))
	}
	return ctor(name, isAllowedToBeEmpty, lengthText, rule, example, df)
}

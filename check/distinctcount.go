package check

import (
	"strings"

	"github.com/Knetic/govaluate"

	"github.com/invertedv/cidcheck/ciderrors"
)

// DistinctCountCheck ensures the number of distinct values seen for a field
// satisfies an expression bound to the running count. The expression is
// compiled and evaluated with govaluate, binding only "count": no access
// to other names, no side effects.
type DistinctCountCheck struct {
	base
	fieldNameToCount string
	expression       *govaluate.EvaluableExpression
	expressionText   string
	distinct         map[string]bool
}

// NewDistinctCountCheck constructs a DistinctCount check. rule is
// "<field_name> <comparison> <expression>".
func NewDistinctCountCheck(description, rule string, fieldNames []string, loc *ciderrors.Location) (*DistinctCountCheck, error) {
	trimmed := strings.TrimSpace(rule)
	fieldName, rest, ok := strings.Cut(trimmed, " ")
	if !ok {
		return nil, ciderrors.Interface(loc, "rule %q for check %q must start with a field name followed by an expression", rule, description)
	}
	if _, err := fieldNameIndex(fieldName, fieldNames); err != nil {
		return nil, ciderrors.Interface(loc, "%v", err)
	}

	expressionText := "count " + strings.TrimSpace(rest)
	expr, err := govaluate.NewEvaluableExpression(expressionText)
	if err != nil {
		return nil, ciderrors.Interface(loc, "cannot parse count expression %q: %v", expressionText, err)
	}

	c := &DistinctCountCheck{
		base:             base{description: description, rule: rule, fieldNames: fieldNames},
		fieldNameToCount: fieldName,
		expression:       expr,
		expressionText:   expressionText,
	}
	c.Reset()
	if _, err := c.eval(loc); err != nil {
		return nil, err
	}
	return c, nil
}

// Reset clears the set of distinct values seen.
func (c *DistinctCountCheck) Reset() {
	c.distinct = map[string]bool{}
}

// CheckRow records the field's value as seen; does not raise.
func (c *DistinctCountCheck) CheckRow(fieldValues map[string]string, loc *ciderrors.Location) error {
	c.distinct[fieldValues[c.fieldNameToCount]] = true
	return nil
}

func (c *DistinctCountCheck) distinctCount() int { return len(c.distinct) }

func (c *DistinctCountCheck) eval(loc *ciderrors.Location) (bool, error) {
	result, err := c.expression.Evaluate(map[string]any{"count": float64(c.distinctCount())})
	if err != nil {
		return false, ciderrors.Interface(loc, "cannot evaluate count expression %q: %v", c.expressionText, err)
	}
	b, ok := result.(bool)
	if !ok {
		return false, ciderrors.Interface(loc, "count expression %q must result in a boolean, but evaluated to: %v", c.expressionText, result)
	}
	return b, nil
}

// CheckAtEnd evaluates the expression with the final count and raises on
// false.
func (c *DistinctCountCheck) CheckAtEnd(loc *ciderrors.Location) error {
	ok, err := c.eval(loc)
	if err != nil {
		return err
	}
	if !ok {
		return ciderrors.Check(loc, "distinct count is %d but check requires: %s", c.distinctCount(), c.expressionText)
	}
	return nil
}

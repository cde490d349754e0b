package check_test

import (
	"testing"

	"github.com/invertedv/cidcheck/check"
	"github.com/invertedv/cidcheck/ciderrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsUniqueAcrossTwoFields(t *testing.T) {
	c, err := check.NewIsUniqueCheck("unique branch+customer", "branch_id,customer_id", []string{"branch_id", "customer_id", "amount"}, nil)
	require.NoError(t, err)

	loc1 := ciderrors.NewLocation("accounts.csv")
	loc1.AdvanceLine()
	require.NoError(t, c.CheckRow(map[string]string{"branch_id": "1", "customer_id": "42", "amount": "10"}, loc1))

	loc2 := ciderrors.NewLocation("accounts.csv")
	loc2.AdvanceLine()
	loc2.AdvanceLine()
	require.NoError(t, c.CheckRow(map[string]string{"branch_id": "1", "customer_id": "43", "amount": "20"}, loc2))

	loc3 := ciderrors.NewLocation("accounts.csv")
	loc3.AdvanceLine()
	loc3.AdvanceLine()
	loc3.AdvanceLine()
	err = c.CheckRow(map[string]string{"branch_id": "1", "customer_id": "42", "amount": "30"}, loc3)
	require.Error(t, err)
	assert.True(t, ciderrors.Is(err, ciderrors.KindCheck))

	var cidErr *ciderrors.CidError
	require.ErrorAs(t, err, &cidErr)
	require.NotNil(t, cidErr.SeeAlsoLocation)
	assert.Equal(t, loc1.String(), cidErr.SeeAlsoLocation.String())
}

func TestIsUniqueRejectsUnknownField(t *testing.T) {
	_, err := check.NewIsUniqueCheck("bad", "bogus_field", []string{"a", "b"}, nil)
	require.Error(t, err)
	assert.True(t, ciderrors.Is(err, ciderrors.KindInterface))
}

func TestIsUniqueRejectsDuplicateFieldInRule(t *testing.T) {
	_, err := check.NewIsUniqueCheck("bad", "a,a", []string{"a", "b"}, nil)
	require.Error(t, err)
	assert.True(t, ciderrors.Is(err, ciderrors.KindInterface))
}

func TestDistinctCountWithinBound(t *testing.T) {
	c, err := check.NewDistinctCountCheck("fewer than 3 branches", "branch_id < 3", []string{"branch_id"}, nil)
	require.NoError(t, err)

	require.NoError(t, c.CheckRow(map[string]string{"branch_id": "1"}, nil))
	require.NoError(t, c.CheckRow(map[string]string{"branch_id": "2"}, nil))
	require.NoError(t, c.CheckRow(map[string]string{"branch_id": "1"}, nil))

	assert.NoError(t, c.CheckAtEnd(nil))
}

func TestDistinctCountExceedsBound(t *testing.T) {
	c, err := check.NewDistinctCountCheck("fewer than 3 branches", "branch_id < 3", []string{"branch_id"}, nil)
	require.NoError(t, err)

	require.NoError(t, c.CheckRow(map[string]string{"branch_id": "1"}, nil))
	require.NoError(t, c.CheckRow(map[string]string{"branch_id": "2"}, nil))
	require.NoError(t, c.CheckRow(map[string]string{"branch_id": "3"}, nil))

	loc := ciderrors.NewLocation("accounts.csv")
	err = c.CheckAtEnd(loc)
	require.Error(t, err)
	assert.True(t, ciderrors.Is(err, ciderrors.KindCheck))
}

func TestDistinctCountRejectsNonBooleanExpression(t *testing.T) {
	_, err := check.NewDistinctCountCheck("bad", "branch_id + 1", []string{"branch_id"}, nil)
	require.Error(t, err)
	assert.True(t, ciderrors.Is(err, ciderrors.KindInterface))
}

func TestDistinctCountRejectsUnknownField(t *testing.T) {
	_, err := check.NewDistinctCountCheck("bad", "bogus < 3", []string{"branch_id"}, nil)
	require.Error(t, err)
	assert.True(t, ciderrors.Is(err, ciderrors.KindInterface))
}

func TestBuildUnknownKind(t *testing.T) {
	_, err := check.Build("Bogus", "d", "r", []string{"a"}, nil)
	require.Error(t, err)
	assert.True(t, ciderrors.Is(err, ciderrors.KindInterface))
}

func TestBuildKnownKinds(t *testing.T) {
	c1, err := check.Build("IsUnique", "d", "a", []string{"a"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &check.IsUniqueCheck{}, c1)
	assert.Equal(t, "a", c1.Rule())

	c2, err := check.Build("DistinctCount", "d", "a < 5", []string{"a"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "a < 5", c2.Rule())
}

package fieldformat_test

import (
	"testing"

	"github.com/invertedv/cidcheck/ciderrors"
	"github.com/invertedv/cidcheck/dataformat"
	"github.com/invertedv/cidcheck/fieldformat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sealedFormat(t *testing.T, family dataformat.Family) *dataformat.Format {
	t.Helper()
	f := dataformat.New(family)
	require.NoError(t, f.SetProperty("encoding", "utf-8"))
	require.NoError(t, f.Validate())
	return f
}

func TestIntegerRangeRule(t *testing.T) {
	df := sealedFormat(t, dataformat.Delimited)
	ff, err := fieldformat.NewInteger("amount", false, "", "0…99", "", df)
	require.NoError(t, err)

	for _, ok := range []string{"0", "50", "99"} {
		_, err := ff.Validated(ok)
		assert.NoError(t, err, ok)
	}
	for _, bad := range []string{"-1", "100", "abc"} {
		_, err := ff.Validated(bad)
		assert.Error(t, err, bad)
		assert.True(t, ciderrors.Is(err, ciderrors.KindFieldValue) || ciderrors.Is(err, ciderrors.KindRangeValue), bad)
	}
	_, err = ff.Validated("")
	assert.Error(t, err)
}

func TestIntegerEmptyAllowed(t *testing.T) {
	df := sealedFormat(t, dataformat.Delimited)
	ff, err := fieldformat.NewInteger("amount", true, "", "0…99", "", df)
	require.NoError(t, err)
	v, err := ff.Validated("")
	require.NoError(t, err)
	assert.Equal(t, int64(0), v)
}

func TestIntegerDerivedRangeFromLength(t *testing.T) {
	df := sealedFormat(t, dataformat.Fixed)
	ff, err := fieldformat.NewInteger("code", false, "3", "", "", df)
	require.NoError(t, err)
	_, err = ff.Validated("999")
	assert.NoError(t, err)
	_, err = ff.Validated("1000")
	assert.Error(t, err)
}

func TestDecimalParsing(t *testing.T) {
	df := dataformat.New(dataformat.Delimited)
	require.NoError(t, df.SetProperty("encoding", "utf-8"))
	require.NoError(t, df.SetProperty("decimal_separator", ","))
	require.NoError(t, df.SetProperty("thousands_separator", "."))
	require.NoError(t, df.Validate())

	ff, err := fieldformat.NewDecimal("price", false, "", "", "", df)
	require.NoError(t, err)
	v, err := ff.Validated("1.234,56")
	require.NoError(t, err)
	assert.Equal(t, "1234.56", v.(interface{ String() string }).String())
}

func TestDateTimePattern(t *testing.T) {
	df := sealedFormat(t, dataformat.Delimited)
	ff, err := fieldformat.NewDateTime("d", false, "", "YYYY-MM-DD", "", df)
	require.NoError(t, err)
	_, err = ff.Validated("2024-01-31")
	assert.NoError(t, err)
	_, err = ff.Validated("2024-31-01")
	assert.Error(t, err)
}

func TestChoiceExactMatch(t *testing.T) {
	df := sealedFormat(t, dataformat.Delimited)
	ff, err := fieldformat.NewChoice("color", false, "", "red,green,blue", "", df)
	require.NoError(t, err)
	_, err = ff.Validated("red")
	assert.NoError(t, err)
	_, err = ff.Validated("Red")
	assert.Error(t, err)
}

func TestChoiceQuotedAtom(t *testing.T) {
	df := sealedFormat(t, dataformat.Delimited)
	ff, err := fieldformat.NewChoice("label", false, "", `"a, b",other`, "", df)
	require.NoError(t, err)
	_, err = ff.Validated("a, b")
	assert.NoError(t, err)
}

func TestPatternGlob(t *testing.T) {
	df := sealedFormat(t, dataformat.Delimited)
	ff, err := fieldformat.NewPattern("code", false, "", "A?C*", "", df)
	require.NoError(t, err)
	_, err = ff.Validated("ABCxyz")
	assert.NoError(t, err)
	_, err = ff.Validated("ABD")
	assert.Error(t, err)
}

func TestRegExAnchoredAtStart(t *testing.T) {
	df := sealedFormat(t, dataformat.Delimited)
	ff, err := fieldformat.NewRegEx("code", false, "", "[0-9]+", "", df)
	require.NoError(t, err)
	_, err = ff.Validated("123abc")
	assert.NoError(t, err, "prefix-anchored match should succeed even with trailing text")
	_, err = ff.Validated("abc123")
	assert.Error(t, err)
}

func TestConstant(t *testing.T) {
	df := sealedFormat(t, dataformat.Delimited)
	ff, err := fieldformat.NewConstant("kind", false, "", "widget", "", df)
	require.NoError(t, err)
	_, err = ff.Validated("widget")
	assert.NoError(t, err)
	_, err = ff.Validated("gadget")
	assert.Error(t, err)
}

func TestConstantEmptyAllowedRequiresEmptyRule(t *testing.T) {
	df := sealedFormat(t, dataformat.Delimited)
	_, err := fieldformat.NewConstant("kind", true, "", "widget", "", df)
	assert.Error(t, err)
}

func TestEmptyPolicy(t *testing.T) {
	df := sealedFormat(t, dataformat.Delimited)
	notAllowed, err := fieldformat.NewText("a", false, "", "", "", df)
	require.NoError(t, err)
	_, err = notAllowed.Validated("")
	assert.Error(t, err)

	allowed, err := fieldformat.NewText("b", true, "", "", "", df)
	require.NoError(t, err)
	v, err := allowed.Validated("")
	require.NoError(t, err)
	assert.Equal(t, "", v)
}

func TestLengthBound(t *testing.T) {
	df := sealedFormat(t, dataformat.Delimited)
	ff, err := fieldformat.NewText("a", false, "3…5", "", "", df)
	require.NoError(t, err)
	_, err = ff.Validated("abc")
	assert.NoError(t, err)
	_, err = ff.Validated("ab")
	assert.Error(t, err)
	_, err = ff.Validated("abcdef")
	assert.Error(t, err)
}

func TestExampleMustValidate(t *testing.T) {
	df := sealedFormat(t, dataformat.Delimited)
	_, err := fieldformat.NewInteger("amount", false, "", "0…9", "99", df)
	assert.Error(t, err)
}

func TestRegistryUnknownKind(t *testing.T) {
	df := sealedFormat(t, dataformat.Delimited)
	_, err := fieldformat.Build("Bogus", "f", false, "", "", "", df)
	require.Error(t, err)
	assert.True(t, ciderrors.Is(err, ciderrors.KindInterface))
}

func TestRegistryBuildsText(t *testing.T) {
	df := sealedFormat(t, dataformat.Delimited)
	ff, err := fieldformat.Build("Text", "f", false, "", "", "", df)
	require.NoError(t, err)
	assert.Equal(t, "f", ff.Name())
}

package dataformat_test

import (
	"testing"

	"github.com/invertedv/cidcheck/ciderrors"
	"github.com/invertedv/cidcheck/dataformat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDelimitedDefaults(t *testing.T) {
	f := dataformat.New(dataformat.Delimited)
	require.NoError(t, f.SetProperty("encoding", "utf-8"))
	require.NoError(t, f.Validate())
	assert.True(t, f.Sealed())
	assert.Equal(t, rune(','), f.ItemDelimiter)
}

func TestSetPropertyTwiceFails(t *testing.T) {
	f := dataformat.New(dataformat.Delimited)
	require.NoError(t, f.SetProperty("encoding", "utf-8"))
	err := f.SetProperty("encoding", "ascii")
	require.Error(t, err)
	assert.True(t, ciderrors.Is(err, ciderrors.KindInterface))
}

func TestSealedFormatRejectsFurtherSets(t *testing.T) {
	f := dataformat.New(dataformat.Delimited)
	require.NoError(t, f.SetProperty("encoding", "utf-8"))
	require.NoError(t, f.Validate())
	err := f.SetProperty("header", "1")
	require.Error(t, err)
}

func TestItemDelimiterMustDifferFromQuote(t *testing.T) {
	f := dataformat.New(dataformat.Delimited)
	require.NoError(t, f.SetProperty("encoding", "utf-8"))
	require.NoError(t, f.SetProperty("item_delimiter", `"`))
	err := f.Validate()
	require.Error(t, err)
}

func TestSheetNotAllowedOnDelimited(t *testing.T) {
	f := dataformat.New(dataformat.Delimited)
	require.NoError(t, f.SetProperty("encoding", "utf-8"))
	err := f.SetProperty("sheet", "1")
	require.Error(t, err)
}

func TestFixedAllowsNoneLineDelimiter(t *testing.T) {
	f := dataformat.New(dataformat.Fixed)
	require.NoError(t, f.SetProperty("encoding", "utf-8"))
	require.NoError(t, f.SetProperty("line_delimiter", "none"))
	require.NoError(t, f.Validate())
	assert.Equal(t, dataformat.LineNone, f.LineDelimiter)
}

func TestDelimitedRejectsNoneLineDelimiter(t *testing.T) {
	f := dataformat.New(dataformat.Delimited)
	require.NoError(t, f.SetProperty("encoding", "utf-8"))
	err := f.SetProperty("line_delimiter", "none")
	require.Error(t, err)
	assert.True(t, ciderrors.Is(err, ciderrors.KindInterface))
}

func TestDecimalAndThousandsSeparatorMustDiffer(t *testing.T) {
	f := dataformat.New(dataformat.Excel)
	require.NoError(t, f.SetProperty("encoding", "utf-8"))
	require.NoError(t, f.SetProperty("decimal_separator", "."))
	require.NoError(t, f.SetProperty("thousands_separator", "."))
	err := f.Validate()
	require.Error(t, err)
}

func TestExcelSheetDefaultsToOne(t *testing.T) {
	f := dataformat.New(dataformat.Excel)
	require.NoError(t, f.SetProperty("encoding", "utf-8"))
	require.NoError(t, f.Validate())
	assert.Equal(t, 1, f.Sheet)
}

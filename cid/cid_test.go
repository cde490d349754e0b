package cid_test

import (
	"testing"

	"github.com/invertedv/cidcheck/cid"
	"github.com/invertedv/cidcheck/ciderrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRows() [][]string {
	return [][]string{
		{"d", "format", "delimited"},
		{"d", "encoding", "utf-8"},
		{"d", "header", "1"},
		{"", "comment row, ignored"},
		{"f", "branch_id", "1", "", "", "Integer", "0…999"},
		{"f", "customer_id", "42", "", "", "Integer", "0…999999"},
		{"f", "amount", "100.00", "", "", "Decimal", "10,2"},
		{"c", "unique key", "IsUnique", "branch_id,customer_id"},
		{"c", "few branches", "DistinctCount", "branch_id < 50"},
	}
}

func TestLoadBuildsFieldsAndChecksInOrder(t *testing.T) {
	c, err := cid.Load("accounts.cid", sampleRows())
	require.NoError(t, err)

	assert.Equal(t, []string{"branch_id", "customer_id", "amount"}, c.FieldNames())
	assert.Equal(t, 1, c.Format.Header)
	assert.True(t, c.Format.Sealed())

	ck, ok := c.CheckByDescription("unique key")
	require.True(t, ok)
	assert.Equal(t, "branch_id,customer_id", ck.Rule())

	checks := c.Checks()
	require.Len(t, checks, 2)
	assert.Equal(t, "unique key", checks[0].Description())
	assert.Equal(t, "few branches", checks[1].Description())
}

func TestLoadRejectsMissingFormat(t *testing.T) {
	rows := [][]string{
		{"f", "a", "", "", "", "Text", ""},
	}
	_, err := cid.Load("x.cid", rows)
	require.Error(t, err)
	assert.True(t, ciderrors.Is(err, ciderrors.KindInterface))
}

func TestLoadRejectsFormatSetTwice(t *testing.T) {
	rows := [][]string{
		{"d", "format", "delimited"},
		{"d", "format", "fixed"},
	}
	_, err := cid.Load("x.cid", rows)
	require.Error(t, err)
	assert.True(t, ciderrors.Is(err, ciderrors.KindInterface))
}

func TestLoadRejectsDuplicateFieldName(t *testing.T) {
	rows := [][]string{
		{"d", "format", "delimited"},
		{"d", "encoding", "utf-8"},
		{"f", "a", "", "", "", "Text", ""},
		{"f", "a", "", "", "", "Text", ""},
	}
	_, err := cid.Load("x.cid", rows)
	require.Error(t, err)
	assert.True(t, ciderrors.Is(err, ciderrors.KindInterface))
	var ce *ciderrors.CidError
	require.ErrorAs(t, err, &ce)
	require.NotNil(t, ce.SeeAlsoLocation)
}

func TestLoadRejectsDuplicateCheckDescription(t *testing.T) {
	rows := [][]string{
		{"d", "format", "delimited"},
		{"d", "encoding", "utf-8"},
		{"f", "a", "", "", "", "Text", ""},
		{"c", "dup", "IsUnique", "a"},
		{"c", "dup", "IsUnique", "a"},
	}
	_, err := cid.Load("x.cid", rows)
	require.Error(t, err)
	assert.True(t, ciderrors.Is(err, ciderrors.KindInterface))
}

func TestLoadRejectsNoFields(t *testing.T) {
	rows := [][]string{
		{"d", "format", "delimited"},
		{"d", "encoding", "utf-8"},
	}
	_, err := cid.Load("x.cid", rows)
	require.Error(t, err)
	assert.True(t, ciderrors.Is(err, ciderrors.KindInterface))
}

func TestLoadDefaultsTypeNameToText(t *testing.T) {
	rows := [][]string{
		{"d", "format", "delimited"},
		{"d", "encoding", "utf-8"},
		{"f", "a"},
	}
	c, err := cid.Load("x.cid", rows)
	require.NoError(t, err)
	ff, ok := c.FieldByName("a")
	require.True(t, ok)
	v, err := ff.Validated("hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", v)
}

func TestLoadRejectsUnknownRowTag(t *testing.T) {
	rows := [][]string{
		{"d", "format", "delimited"},
		{"d", "encoding", "utf-8"},
		{"f", "a"},
		{"z", "bogus"},
	}
	_, err := cid.Load("x.cid", rows)
	require.Error(t, err)
	assert.True(t, ciderrors.Is(err, ciderrors.KindInterface))
}

package validio_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/invertedv/cidcheck/cid"
	"github.com/invertedv/cidcheck/ciderrors"
	"github.com/invertedv/cidcheck/rowio"
	"github.com/invertedv/cidcheck/validio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildCid(t *testing.T) *cid.Cid {
	t.Helper()
	rows := [][]string{
		{"d", "format", "delimited"},
		{"d", "encoding", "utf-8"},
		{"d", "header", "1"},
		{"f", "branch_id", "1", "", "", "Integer", "0…999"},
		{"f", "amount", "10.00", "", "", "Decimal", "10,2"},
		{"c", "unique branch", "IsUnique", "branch_id"},
	}
	c, err := cid.Load("accounts.cid", rows)
	require.NoError(t, err)
	return c
}

func readerOver(t *testing.T, c *cid.Cid, text string, onError validio.OnError) *validio.Reader {
	t.Helper()
	format := c.Format
	rr, err := rowio.NewDelimitedReaderFrom("accounts.csv", bytes.NewBufferString(text), nil, format)
	require.NoError(t, err)
	return validio.NewReader(c, rr, onError, nil)
}

func TestReaderValidatesRowsAndSkipsHeader(t *testing.T) {
	c := buildCid(t)
	text := "branch_id,amount\n1,10.00\n2,20.00\n"
	r := readerOver(t, c, text, validio.Raise)
	defer r.Close()

	row1, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, []string{"branch_id", "amount"}, row1.Values)

	row2, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "10.00"}, row2.Values)

	row3, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "20.00"}, row3.Values)

	_, err = r.Next()
	assert.Equal(t, io.EOF, err)
}

func TestReaderRaisesOnFieldValueError(t *testing.T) {
	c := buildCid(t)
	text := "branch_id,amount\nnotanumber,10.00\n"
	r := readerOver(t, c, text, validio.Raise)

	_, err := r.Next() // header
	require.NoError(t, err)
	_, err = r.Next()
	require.Error(t, err)
}

func TestReaderContinuePolicySkipsBadRows(t *testing.T) {
	c := buildCid(t)
	text := "branch_id,amount\nnotanumber,10.00\n1,10.00\n"
	r := readerOver(t, c, text, validio.Continue)
	defer r.Close()

	_, err := r.Next() // header
	require.NoError(t, err)

	row, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "10.00"}, row.Values)
}

func TestReaderYieldPolicyEmitsErrorInPlaceOfRow(t *testing.T) {
	c := buildCid(t)
	text := "branch_id,amount\nnotanumber,10.00\n"
	r := readerOver(t, c, text, validio.Yield)
	defer r.Close()

	_, err := r.Next() // header
	require.NoError(t, err)

	row, err := r.Next()
	require.NoError(t, err)
	assert.Error(t, row.Err)
	assert.Nil(t, row.Values)
}

func TestReaderRowCheckRaisesOnDuplicateKey(t *testing.T) {
	c := buildCid(t)
	text := "branch_id,amount\n1,10.00\n1,20.00\n"
	r := readerOver(t, c, text, validio.Raise)

	_, err := r.Next() // header
	require.NoError(t, err)
	_, err = r.Next() // first row, ok
	require.NoError(t, err)
	_, err = r.Next() // duplicate key
	require.Error(t, err)
}

func TestReaderRowWidthMismatchIgnoresContinuePolicy(t *testing.T) {
	c := buildCid(t)
	text := "branch_id,amount\n1,10.00,extra\n"
	r := readerOver(t, c, text, validio.Continue)

	_, err := r.Next() // header
	require.NoError(t, err)

	_, err = r.Next()
	require.Error(t, err)
	assert.True(t, ciderrors.Is(err, ciderrors.KindDataFormat))
}

func TestWriterValidatesAndDelegates(t *testing.T) {
	c := buildCid(t)
	var buf bytes.Buffer
	rw, err := rowio.NewDelimitedWriterTo(&buf, nil, c.Format)
	require.NoError(t, err)

	w := validio.NewWriter(c, rw)
	require.NoError(t, w.WriteRow([]string{"1", "10.00"}))
	err = w.WriteRow([]string{"notanumber", "10.00"})
	assert.Error(t, err)
	require.NoError(t, w.Close())

	assert.Contains(t, buf.String(), "1,10.00")
}

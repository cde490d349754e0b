package rowio_test

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/invertedv/cidcheck/dataformat"
	"github.com/invertedv/cidcheck/rowio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func delimitedFormat(t *testing.T) *dataformat.Format {
	t.Helper()
	f := dataformat.New(dataformat.Delimited)
	require.NoError(t, f.SetProperty("encoding", "utf-8"))
	require.NoError(t, f.Validate())
	return f
}

func readAll(t *testing.T, r rowio.RowReader) [][]string {
	t.Helper()
	var rows [][]string
	for {
		row, err := r.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		rows = append(rows, row)
	}
	return rows
}

func TestDelimitedReaderBasic(t *testing.T) {
	format := delimitedFormat(t)
	r, err := rowio.NewDelimitedReaderFrom("mem", strings.NewReader("a,b,c\n1,2,3\n"), nil, format)
	require.NoError(t, err)
	defer r.Close()

	rows := readAll(t, r)
	assert.Equal(t, [][]string{{"a", "b", "c"}, {"1", "2", "3"}}, rows)
}

func TestDelimitedReaderQuotedFieldWithDelimiter(t *testing.T) {
	format := delimitedFormat(t)
	r, err := rowio.NewDelimitedReaderFrom("mem", strings.NewReader(`"a,b",c`+"\n"), nil, format)
	require.NoError(t, err)
	defer r.Close()

	rows := readAll(t, r)
	assert.Equal(t, [][]string{{"a,b", "c"}}, rows)
}

func TestDelimitedReaderDoubledQuoteEscape(t *testing.T) {
	format := delimitedFormat(t)
	r, err := rowio.NewDelimitedReaderFrom("mem", strings.NewReader(`"a""b",c`+"\n"), nil, format)
	require.NoError(t, err)
	defer r.Close()

	rows := readAll(t, r)
	assert.Equal(t, [][]string{{`a"b`, "c"}}, rows)
}

func TestDelimitedReaderUnterminatedQuoteFails(t *testing.T) {
	format := delimitedFormat(t)
	r, err := rowio.NewDelimitedReaderFrom("mem", strings.NewReader(`"a,b`), nil, format)
	require.NoError(t, err)
	defer r.Close()

	_, err = r.Next()
	require.Error(t, err)
}

func TestDelimitedReaderEmptyInputYieldsZeroRows(t *testing.T) {
	format := delimitedFormat(t)
	r, err := rowio.NewDelimitedReaderFrom("mem", strings.NewReader(""), nil, format)
	require.NoError(t, err)
	defer r.Close()

	rows := readAll(t, r)
	assert.Empty(t, rows)
}

func TestDelimitedWriterRoundTrip(t *testing.T) {
	format := delimitedFormat(t)
	var buf bytes.Buffer
	w, err := rowio.NewDelimitedWriterTo(&buf, nil, format)
	require.NoError(t, err)
	require.NoError(t, w.WriteRow([]string{"a", "b,c", `d"e`}))
	require.NoError(t, w.Close())

	r, err := rowio.NewDelimitedReaderFrom("mem", strings.NewReader(buf.String()), nil, format)
	require.NoError(t, err)
	defer r.Close()

	rows := readAll(t, r)
	assert.Equal(t, [][]string{{"a", "b,c", `d"e`}}, rows)
}

func fixedFormat(t *testing.T, ld dataformat.LineDelimiter) *dataformat.Format {
	t.Helper()
	f := dataformat.New(dataformat.Fixed)
	require.NoError(t, f.SetProperty("encoding", "utf-8"))
	require.NoError(t, f.SetProperty("line_delimiter", string(ld)))
	require.NoError(t, f.Validate())
	return f
}

func TestFixedReaderBasic(t *testing.T) {
	format := fixedFormat(t, dataformat.LineLF)
	widths := []rowio.FieldWidth{{Name: "a", Width: 3}, {Name: "b", Width: 2}}
	r, err := rowio.NewFixedReaderFrom("mem", strings.NewReader("abcXY\ndefZZ\n"), nil, widths, format)
	require.NoError(t, err)
	defer r.Close()

	rows := readAll(t, r)
	assert.Equal(t, [][]string{{"abc", "XY"}, {"def", "ZZ"}}, rows)
}

func TestFixedReaderNoneDelimiterConcatenates(t *testing.T) {
	format := fixedFormat(t, dataformat.LineNone)
	widths := []rowio.FieldWidth{{Name: "a", Width: 2}, {Name: "b", Width: 2}}
	r, err := rowio.NewFixedReaderFrom("mem", strings.NewReader("abcdwxyz"), nil, widths, format)
	require.NoError(t, err)
	defer r.Close()

	rows := readAll(t, r)
	assert.Equal(t, [][]string{{"ab", "cd"}, {"wx", "yz"}}, rows)
}

func TestFixedReaderPartialRecordFails(t *testing.T) {
	format := fixedFormat(t, dataformat.LineLF)
	widths := []rowio.FieldWidth{{Name: "a", Width: 3}, {Name: "b", Width: 3}}
	r, err := rowio.NewFixedReaderFrom("mem", strings.NewReader("abcXY"), nil, widths, format)
	require.NoError(t, err)
	defer r.Close()

	_, err = r.Next()
	require.Error(t, err)
}

func TestFixedWriterPadsShortFieldsAndRejectsLong(t *testing.T) {
	format := fixedFormat(t, dataformat.LineLF)
	widths := []rowio.FieldWidth{{Name: "a", Width: 4}}
	var buf bytes.Buffer
	w, err := rowio.NewFixedWriterTo(&buf, nil, widths, format)
	require.NoError(t, err)
	require.NoError(t, w.WriteRow([]string{"ab"}))
	require.NoError(t, w.Close())
	assert.Equal(t, "ab  \n", buf.String())

	var buf2 bytes.Buffer
	w2, err := rowio.NewFixedWriterTo(&buf2, nil, widths, format)
	require.NoError(t, err)
	err = w2.WriteRow([]string{"toolong"})
	assert.Error(t, err)
}

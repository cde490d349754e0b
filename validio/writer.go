package validio

import (
	"github.com/invertedv/cidcheck/cid"
	"github.com/invertedv/cidcheck/ciderrors"
	"github.com/invertedv/cidcheck/rowio"
)

// Writer mirrors Reader on the output side: every row supplied by the
// caller runs through the same field-format and row-check pipeline before
// being handed to the underlying rowio.RowWriter. Writer never runs
// check_at_end.
type Writer struct {
	cid    *cid.Cid
	rows   rowio.RowWriter
	closed bool
}

// NewWriter constructs a validating writer over an already-open row writer.
func NewWriter(c *cid.Cid, rows rowio.RowWriter) *Writer {
	for _, ck := range c.Checks() {
		ck.Reset()
	}
	return &Writer{cid: c, rows: rows}
}

// WriteRow validates row against the CID's fields and row checks, then
// delegates to the underlying row writer.
func (w *Writer) WriteRow(row []string) error {
	if w.closed {
		return errClosed
	}
	fields := w.cid.Fields()
	if len(row) != len(fields) {
		return ciderrors.DataFormatErr(nil, "row has %d value(s) but the CID declares %d field(s)", len(row), len(fields))
	}

	values := make(map[string]string, len(fields))
	for i, ff := range fields {
		if _, err := ff.Validated(row[i]); err != nil {
			ce, ok := err.(*ciderrors.CidError)
			if !ok {
				return ciderrors.FieldValue(nil, "%v", err)
			}
			return ce.Prepend("cannot accept field '" + ff.Name() + "': ")
		}
		values[ff.Name()] = row[i]
	}

	for _, ck := range w.cid.Checks() {
		if err := ck.CheckRow(values, nil); err != nil {
			return err
		}
	}

	return w.rows.WriteRow(row)
}

// Close releases the underlying row writer.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	return w.rows.Close()
}

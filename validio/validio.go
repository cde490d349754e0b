// Package validio implements the validating reader/writer: it streams rows
// from a rowio.RowReader (or to a rowio.RowWriter), enforces a cid.Cid's
// field formats and row checks against each one, and routes failures
// through a configurable on-error policy.
package validio

import (
	"io"

	"github.com/invertedv/cidcheck/cid"
	"github.com/invertedv/cidcheck/ciderrors"
	"github.com/invertedv/cidcheck/rowio"
)

// OnError selects how a Reader responds to a field-value, check, or
// range-value error encountered while validating a row.
type OnError int

const (
	// Raise propagates the error, terminating iteration.
	Raise OnError = iota
	// Continue discards the offending row and advances to the next one.
	Continue
	// Yield emits the error in place of the row, letting the caller decide.
	Yield
)

// Row is the result of one Reader.Next call: either a slice of validated
// (or pass-through) field values, or an error under the Yield policy. Go
// has no tagged union, so this struct models the sum type directly.
type Row struct {
	Values []string
	Err    error
}

// Reader wraps a rowio.RowReader and validates every row against a Cid.
type Reader struct {
	cid           *cid.Cid
	rows          rowio.RowReader
	onError       OnError
	validateUntil *int

	rowIndex int
	closed   bool
	ended    bool
}

// NewReader constructs a validating reader. cid must be fully loaded.
// validateUntil, if non-nil, bounds how many data rows (after the header)
// are validated; nil means validate all.
func NewReader(c *cid.Cid, rows rowio.RowReader, onError OnError, validateUntil *int) *Reader {
	for _, ck := range c.Checks() {
		ck.Reset()
	}
	return &Reader{cid: c, rows: rows, onError: onError, validateUntil: validateUntil}
}

// Next produces the next row, validated or passed through per this
// package's state machine. It returns io.EOF, with a zero Row, once the
// underlying reader and all end checks are exhausted.
func (r *Reader) Next() (Row, error) {
	if r.closed {
		return Row{}, errClosed
	}
	if r.ended {
		return Row{}, io.EOF
	}

	for {
		rowLoc := r.rows.Location().Copy()
		row, err := r.rows.Next()
		if err == io.EOF {
			r.ended = true
			if endErr := r.runEndChecks(); endErr != nil {
				return Row{}, endErr
			}
			return Row{}, io.EOF
		}
		if err != nil {
			r.ended = true
			return Row{}, err
		}

		r.rowIndex++
		k := r.rowIndex

		header := r.cid.Format.Header
		withinWindow := r.validateUntil == nil || k <= header+*r.validateUntil
		if k <= header || !withinWindow {
			return Row{Values: row}, nil
		}

		verr := r.validateRow(row, rowLoc)
		if verr == nil {
			return Row{Values: row}, nil
		}
		if ciderrors.Is(verr, ciderrors.KindDataFormat) {
			// Data-format errors describe the shape of the row itself (wrong
			// cell count): they are fatal for the pass and cannot be
			// suppressed by the per-row on-error policy.
			r.ended = true
			return Row{}, verr
		}
		switch r.onError {
		case Continue:
			continue
		case Yield:
			return Row{Err: verr}, nil
		default:
			r.ended = true
			return Row{}, verr
		}
	}
}

func (r *Reader) validateRow(row []string, loc *ciderrors.Location) error {
	fields := r.cid.Fields()

	if len(row) != len(fields) {
		return ciderrors.DataFormatErr(loc.Copy(), "row has %d value(s) but the CID declares %d field(s)", len(row), len(fields))
	}

	values := make(map[string]string, len(fields))
	for i, ff := range fields {
		cellLoc := loc.Copy()
		cellLoc.SetCell(i)
		if _, verr := ff.Validated(row[i]); verr != nil {
			ce, ok := verr.(*ciderrors.CidError)
			if !ok {
				return ciderrors.FieldValue(cellLoc, "%v", verr)
			}
			return ce.Prepend("cannot accept field '" + ff.Name() + "': ").WithLocation(cellLoc)
		}
		values[ff.Name()] = row[i]
	}

	for _, ck := range r.cid.Checks() {
		if cerr := ck.CheckRow(values, loc.Copy()); cerr != nil {
			return cerr
		}
	}
	return nil
}

func (r *Reader) runEndChecks() error {
	loc := r.rows.Location()
	for _, ck := range r.cid.Checks() {
		if err := ck.CheckAtEnd(loc.Copy()); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying row reader. Closing a Reader before
// exhaustion still runs end checks.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	if !r.ended {
		r.ended = true
		if err := r.runEndChecks(); err != nil {
			_ = r.rows.Close()
			return err
		}
	}
	return r.rows.Close()
}

// Abort closes the underlying reader without running end checks, for a
// caller that wants to give up early without surfacing accumulated
// end-of-stream failures.
func (r *Reader) Abort() error {
	r.closed = true
	r.ended = true
	return r.rows.Close()
}

var errClosed = ciderrors.Interface(nil, "validating reader is closed")

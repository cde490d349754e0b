// Package rowio implements the row-oriented producers and consumers:
// delimited, fixed, Excel and ODS row readers, and delimited/fixed row
// writers, all driven by a sealed dataformat.Format. A RowReader is an
// io.EOF-terminated iterator: it is pulled with Next until it returns
// io.EOF.
package rowio

import (
	"io"

	"github.com/invertedv/cidcheck/ciderrors"
)

// RowReader produces rows of an input stream one at a time until the stream
// is exhausted: an iterator producing string slices. Next returns io.EOF,
// wrapping no row, once the input is exhausted.
type RowReader interface {
	// Next returns the next row, or io.EOF once the stream is exhausted.
	Next() ([]string, error)
	// Location reports the reader's current cursor, for error reporting by
	// a caller that wraps this reader.
	Location() *ciderrors.Location
	// Close releases the underlying stream. Calling Close twice is safe.
	Close() error
}

// RowWriter consumes rows and writes them to an output stream.
type RowWriter interface {
	WriteRow(row []string) error
	Close() error
}

// FieldWidth names one column of a Fixed data format: its field name (for
// error messages) and exact character width.
type FieldWidth struct {
	Name  string
	Width int
}

var errClosed = ciderrors.DataFormatErr(nil, "row reader is closed")

// ensure io.EOF stays the sentinel callers compare against; re-exported here
// so callers of this package need not import "io" just to detect end of
// stream.
var EOF = io.EOF

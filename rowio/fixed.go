package rowio

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/invertedv/cidcheck/ciderrors"
	"github.com/invertedv/cidcheck/dataformat"
)

// FixedReader reads fixed-width rows, including a one-character unread
// buffer for telling apart a bare "\r" from "\r\n" under line_delimiter
// "any".
type FixedReader struct {
	widths []FieldWidth
	br     *bufio.Reader
	closer io.Closer
	loc    *ciderrors.Location
	closed bool
	ld     dataformat.LineDelimiter
	pending *rune
}

// NewFixedReader opens path and reads records described by widths using
// format's encoding and line_delimiter.
func NewFixedReader(path string, widths []FieldWidth, format *dataformat.Format) (*FixedReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ciderrors.DataFormatErr(ciderrors.NewLocation(path), "cannot open fixed source: %v", err)
	}
	return newFixedReader(path, f, f, widths, format)
}

// NewFixedReaderFrom builds a reader over an already-open stream.
func NewFixedReaderFrom(name string, r io.Reader, closer io.Closer, widths []FieldWidth, format *dataformat.Format) (*FixedReader, error) {
	return newFixedReader(name, r, closer, widths, format)
}

func newFixedReader(name string, r io.Reader, closer io.Closer, widths []FieldWidth, format *dataformat.Format) (*FixedReader, error) {
	decoded, err := decodedReader(format.Encoding, r)
	if err != nil {
		return nil, err
	}
	ld := format.LineDelimiter
	if ld == "" {
		ld = dataformat.LineAny
	}
	return &FixedReader{
		widths: widths,
		br:     bufio.NewReader(decoded),
		closer: closer,
		loc:    ciderrors.NewLocation(name),
		ld:     ld,
	}, nil
}

func (f *FixedReader) Location() *ciderrors.Location { return f.loc }

func (f *FixedReader) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	if f.closer != nil {
		return f.closer.Close()
	}
	return nil
}

// readRunes returns up to n runes, consuming any pending carried-over rune
// first. It returns fewer than n runes exactly when the stream ends.
func (f *FixedReader) readRunes(n int) []rune {
	out := make([]rune, 0, n)
	if f.pending != nil {
		out = append(out, *f.pending)
		f.pending = nil
	}
	for len(out) < n {
		r, _, err := f.br.ReadRune()
		if err != nil {
			return out
		}
		out = append(out, r)
	}
	return out
}

// Next reads one fixed-width record.
func (f *FixedReader) Next() ([]string, error) {
	if f.closed {
		return nil, errClosed
	}

	row := make([]string, 0, len(f.widths))
	column := 0
	for idx, fw := range f.widths {
		runes := f.readRunes(fw.Width)
		if len(runes) == 0 {
			if idx > 0 {
				missing := 0
				var names []string
				for _, w := range f.widths[idx:] {
					missing += w.Width
					names = append(names, "'"+w.Name+"'")
				}
				f.loc.SetColumn(column)
				return nil, ciderrors.DataFormatErr(f.loc.Copy(), "after field '%s' %d characters must follow for: %s",
					f.widths[idx-1].Name, missing, ciderrors.HumanReadableList(names))
			}
			return nil, io.EOF
		}
		if len(runes) != fw.Width {
			f.loc.SetColumn(column)
			return nil, ciderrors.DataFormatErr(f.loc.Copy(), "cannot read field %q: need %d characters but found only %d: %q",
				fw.Name, fw.Width, len(runes), string(runes))
		}
		row = append(row, string(runes))
		column += fw.Width
	}

	if err := f.consumeLineDelimiter(); err != nil {
		return nil, err
	}
	f.loc.AdvanceLine()
	return row, nil
}

func (f *FixedReader) consumeLineDelimiter() error {
	switch f.ld {
	case dataformat.LineNone:
		return nil
	case dataformat.LineCRLF:
		runes := f.readRunes(2)
		if len(runes) == 0 {
			return nil
		}
		if string(runes) != "\r\n" {
			return ciderrors.DataFormatErr(f.loc.Copy(), "line delimiter is %q but must be %q", string(runes), "\r\n")
		}
		return nil
	case dataformat.LineLF:
		return f.consumeSingle('\n')
	case dataformat.LineCR:
		return f.consumeSingle('\r')
	case dataformat.LineAny:
		runes := f.readRunes(1)
		if len(runes) == 0 {
			return nil
		}
		if runes[0] == '\r' {
			nxt := f.readRunes(1)
			if len(nxt) == 0 || nxt[0] == '\n' {
				return nil
			}
			r := nxt[0]
			f.pending = &r
			return nil
		}
		if runes[0] != '\n' {
			return ciderrors.DataFormatErr(f.loc.Copy(), "line delimiter is %q but must be one of: lf, cr, crlf", string(runes[0]))
		}
		return nil
	default:
		return nil
	}
}

func (f *FixedReader) consumeSingle(want rune) error {
	runes := f.readRunes(1)
	if len(runes) == 0 {
		return nil
	}
	if runes[0] != want {
		return ciderrors.DataFormatErr(f.loc.Copy(), "line delimiter is %q but must be %q", string(runes[0]), string(want))
	}
	return nil
}

// FixedWriter writes rows where every field occupies exactly its configured
// width.
type FixedWriter struct {
	widths []FieldWidth
	w      io.Writer
	closer io.Closer
	format *dataformat.Format
	closed bool
}

// NewFixedWriter opens path for writing records described by widths.
func NewFixedWriter(path string, widths []FieldWidth, format *dataformat.Format) (*FixedWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, ciderrors.DataFormatErr(nil, "cannot open fixed target: %v", err)
	}
	return newFixedWriter(f, f, widths, format)
}

// NewFixedWriterTo builds a writer over an already-open stream.
func NewFixedWriterTo(w io.Writer, closer io.Closer, widths []FieldWidth, format *dataformat.Format) (*FixedWriter, error) {
	return newFixedWriter(w, closer, widths, format)
}

func newFixedWriter(w io.Writer, closer io.Closer, widths []FieldWidth, format *dataformat.Format) (*FixedWriter, error) {
	encoded, err := encodedWriter(format.Encoding, w)
	if err != nil {
		return nil, err
	}
	return &FixedWriter{widths: widths, w: encoded, closer: closer, format: format}, nil
}

func (f *FixedWriter) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	if f.closer != nil {
		return f.closer.Close()
	}
	return nil
}

// WriteRow pads or rejects each field to its configured width and appends
// the configured line delimiter.
func (f *FixedWriter) WriteRow(row []string) error {
	if f.closed {
		return errClosed
	}
	if len(row) != len(f.widths) {
		return ciderrors.DataFormatErr(nil, "row has %d fields but fixed format declares %d", len(row), len(f.widths))
	}

	var line strings.Builder
	for i, field := range row {
		width := f.widths[i].Width
		length := len([]rune(field))
		if length > width {
			return ciderrors.DataFormatErr(nil, "value %q for field %q is %d characters but field width is %d",
				field, f.widths[i].Name, length, width)
		}
		line.WriteString(field)
		for j := length; j < width; j++ {
			line.WriteByte(' ')
		}
	}

	switch f.format.LineDelimiter {
	case dataformat.LineNone:
	case dataformat.LineCR:
		line.WriteByte('\r')
	case dataformat.LineCRLF:
		line.WriteString("\r\n")
	default:
		line.WriteByte('\n')
	}

	if _, err := io.WriteString(f.w, line.String()); err != nil {
		return ciderrors.DataFormatErr(nil, "cannot write fixed row: %v", err)
	}
	return nil
}

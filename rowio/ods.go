package rowio

import (
	"archive/zip"
	"encoding/xml"
	"io"
	"strconv"

	"github.com/invertedv/cidcheck/ciderrors"
	"github.com/invertedv/cidcheck/dataformat"
)

// odsDocument mirrors just enough of the OpenDocument content.xml schema to
// extract table rows; encoding/xml matches elements by local name when a
// struct tag carries no namespace prefix, so the table:/text: prefixes used
// by the actual documents need no namespace wiring here.
type odsDocument struct {
	Body odsBody `xml:"body"`
}

type odsBody struct {
	Spreadsheet odsSpreadsheet `xml:"spreadsheet"`
}

type odsSpreadsheet struct {
	Tables []odsTable `xml:"table"`
}

type odsTable struct {
	Rows []odsRow `xml:"table-row"`
}

type odsRow struct {
	Cells []odsCell `xml:"table-cell"`
}

type odsCell struct {
	Repeated   string   `xml:"number-columns-repeated,attr"`
	Paragraphs []string `xml:"p"`
}

func (c odsCell) text() string {
	if len(c.Paragraphs) == 0 {
		return ""
	}
	return c.Paragraphs[0]
}

func (c odsCell) repeatCount(loc *ciderrors.Location) (int, error) {
	if c.Repeated == "" {
		return 1, nil
	}
	n, err := strconv.Atoi(c.Repeated)
	if err != nil {
		return 0, ciderrors.DataFormatErr(loc, "table:number-columns-repeated is %q but must be an integer", c.Repeated)
	}
	if n < 1 {
		return 0, ciderrors.DataFormatErr(loc, "table:number-columns-repeated is %q but must be at least 1", c.Repeated)
	}
	return n, nil
}

// ODSReader reads one sheet of an OpenDocument spreadsheet. It extracts
// content.xml from the zip container with archive/zip and walks the
// table:table / table:table-row / table:table-cell elements with
// encoding/xml.
type ODSReader struct {
	rows   [][]string
	index  int
	loc    *ciderrors.Location
	closed bool
}

// NewODSReader extracts content.xml from path and selects the sheet'th
// table:table element (1-based).
func NewODSReader(path string, format *dataformat.Format) (*ODSReader, error) {
	loc := ciderrors.NewLocation(path)
	loc.SetSheet(format.Sheet)

	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, ciderrors.DataFormatErr(loc, "cannot uncompress ODS spreadsheet: %v", err)
	}
	defer zr.Close()

	var contentFile *zip.File
	for _, f := range zr.File {
		if f.Name == "content.xml" {
			contentFile = f
			break
		}
	}
	if contentFile == nil {
		return nil, ciderrors.DataFormatErr(loc, "cannot extract content.xml for ODS spreadsheet")
	}

	rc, err := contentFile.Open()
	if err != nil {
		return nil, ciderrors.DataFormatErr(loc, "cannot extract content.xml for ODS spreadsheet: %v", err)
	}
	defer rc.Close()

	var doc odsDocument
	if err := xml.NewDecoder(rc).Decode(&doc); err != nil {
		return nil, ciderrors.DataFormatErr(loc, "cannot parse content.xml: %v", err)
	}

	tables := doc.Body.Spreadsheet.Tables
	if len(tables) < format.Sheet {
		return nil, ciderrors.DataFormatErr(loc, "ODS must contain at least %d sheet(s) instead of just %d", format.Sheet, len(tables))
	}
	table := tables[format.Sheet-1]

	rows := make([][]string, 0, len(table.Rows))
	for _, tr := range table.Rows {
		var row []string
		for _, tc := range tr.Cells {
			n, err := tc.repeatCount(loc.Copy())
			if err != nil {
				return nil, err
			}
			value := tc.text()
			for i := 0; i < n; i++ {
				row = append(row, value)
			}
		}
		rows = append(rows, row)
	}

	readLoc := ciderrors.NewLocation(path)
	readLoc.SetSheet(format.Sheet)
	return &ODSReader{rows: rows, loc: readLoc}, nil
}

func (o *ODSReader) Location() *ciderrors.Location { return o.loc }

func (o *ODSReader) Close() error {
	o.closed = true
	return nil
}

// Next returns the next row of the selected sheet.
func (o *ODSReader) Next() ([]string, error) {
	if o.closed {
		return nil, errClosed
	}
	if o.index >= len(o.rows) {
		return nil, io.EOF
	}
	row := o.rows[o.index]
	o.index++
	o.loc.AdvanceLine()
	return row, nil
}

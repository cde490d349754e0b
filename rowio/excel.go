package rowio

import (
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/invertedv/cidcheck/ciderrors"
	"github.com/invertedv/cidcheck/dataformat"
)

// ExcelReader reads a single sheet of a workbook, rendering each cell to
// text via excelize, applying consistent date/error/numeric rendering
// rules across cell types.
type ExcelReader struct {
	f         *excelize.File
	rows      *excelize.Rows
	sheetName string
	rowIndex  int
	loc       *ciderrors.Location
	closed    bool
}

// NewExcelReader opens path and selects the sheet named by format.Sheet
// (1-based).
func NewExcelReader(path string, format *dataformat.Format) (*ExcelReader, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, ciderrors.DataFormatErr(ciderrors.NewLocation(path), "cannot open Excel workbook: %v", err)
	}
	return newExcelReader(path, f, format)
}

func newExcelReader(name string, f *excelize.File, format *dataformat.Format) (*ExcelReader, error) {
	sheets := f.GetSheetList()
	if format.Sheet < 1 || format.Sheet > len(sheets) {
		return nil, ciderrors.DataFormatErr(ciderrors.NewLocation(name), "workbook has %d sheet(s) but sheet %d was requested", len(sheets), format.Sheet)
	}
	sheetName := sheets[format.Sheet-1]
	rows, err := f.Rows(sheetName)
	if err != nil {
		return nil, ciderrors.DataFormatErr(ciderrors.NewLocation(name), "cannot read sheet %q: %v", sheetName, err)
	}
	loc := ciderrors.NewLocation(name)
	loc.SetSheet(format.Sheet)
	return &ExcelReader{f: f, rows: rows, sheetName: sheetName, loc: loc}, nil
}

func (e *ExcelReader) Location() *ciderrors.Location { return e.loc }

func (e *ExcelReader) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	_ = e.rows.Close()
	return e.f.Close()
}

// Next returns the next row of the selected sheet, rendering each cell per
// renderCell's date/error/numeric rules.
func (e *ExcelReader) Next() ([]string, error) {
	if e.closed {
		return nil, errClosed
	}
	if !e.rows.Next() {
		if err := e.rows.Error(); err != nil {
			return nil, ciderrors.DataFormatErr(e.loc.Copy(), "cannot read Excel row: %v", err)
		}
		return nil, io.EOF
	}
	e.rowIndex++
	cols, err := e.rows.Columns()
	if err != nil {
		return nil, ciderrors.DataFormatErr(e.loc.Copy(), "cannot read Excel row: %v", err)
	}

	out := make([]string, len(cols))
	for j := range cols {
		cellRef, _ := excelize.CoordinatesToCellName(j+1, e.rowIndex)
		e.loc.SetCell(j)
		out[j] = e.renderCell(e.sheetName, cellRef)
	}
	e.loc.AdvanceLine()
	return out, nil
}

// renderCell renders one cell to text: dates as "YYYY-MM-DD HH:MM:SS" (or
// "HH:MM:SS" if the date portion is the Excel epoch), errors as their Excel
// error text, numbers with a trailing ".0" stripped, everything else as
// its string value.
func (e *ExcelReader) renderCell(sheet, cellRef string) string {
	cellType, _ := e.f.GetCellType(sheet, cellRef)
	switch cellType {
	case excelize.CellTypeDate:
		raw, err := e.f.GetCellValue(sheet, cellRef, excelize.Options{RawCellValue: true})
		if err != nil {
			return raw
		}
		serial, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return raw
		}
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return raw
		}
		if math.Trunc(serial) == 0 {
			return t.Format("15:04:05")
		}
		return t.Format("2006-01-02 15:04:05")
	case excelize.CellTypeError:
		v, _ := e.f.GetCellValue(sheet, cellRef)
		return v
	case excelize.CellTypeNumber:
		v, _ := e.f.GetCellValue(sheet, cellRef)
		return strings.TrimSuffix(v, ".0")
	default:
		v, _ := e.f.GetCellValue(sheet, cellRef)
		return v
	}
}

// Package ciderrors defines the error taxonomy and source locations used
// throughout the validation engine, per the interface/data-format/field-value/
// check/range-value kinds.
package ciderrors

import "fmt"

// Location is a cursor into an input: a name (file path, or a synthetic name
// for streams), a zero-based line, and optionally a column, cell, and sheet.
// Locations are copied on capture and advanced by the reader as it consumes
// input.
type Location struct {
	Name   string
	Line   int
	Column *int
	Cell   *int
	Sheet  *int
}

// NewLocation creates a Location for the given source name, starting at line 0.
func NewLocation(name string) *Location {
	return &Location{Name: name}
}

// Copy returns an independent copy of the location.
func (l *Location) Copy() *Location {
	if l == nil {
		return nil
	}
	cp := *l
	if l.Column != nil {
		c := *l.Column
		cp.Column = &c
	}
	if l.Cell != nil {
		c := *l.Cell
		cp.Cell = &c
	}
	if l.Sheet != nil {
		s := *l.Sheet
		cp.Sheet = &s
	}
	return &cp
}

// AdvanceLine moves the location to the start of the next line, clearing
// column and cell.
func (l *Location) AdvanceLine() {
	l.Line++
	l.Column = nil
	l.Cell = nil
}

// SetColumn sets the 0-based column (character index within line).
func (l *Location) SetColumn(col int) {
	l.Column = &col
}

// SetCell sets the 0-based cell (field index within row).
func (l *Location) SetCell(cell int) {
	l.Cell = &cell
}

// SetSheet sets the 1-based sheet number.
func (l *Location) SetSheet(sheet int) {
	l.Sheet = &sheet
}

// String renders the location as "name (SheetN!RkCj)" when a sheet is set,
// "name (k;j)" when a cell (or, failing that, a column) is set, or
// "name (k)" otherwise; a nil location renders as "<unknown location>".
// Line, cell and column numbers are rendered 1-based for readability even
// though they are stored 0-based internally.
func (l *Location) String() string {
	if l == nil {
		return "<unknown location>"
	}
	if l.Sheet != nil {
		cell := 1
		if l.Cell != nil {
			cell = *l.Cell + 1
		}
		return fmt.Sprintf("%s (Sheet%d!R%dC%d)", l.Name, *l.Sheet, l.Line+1, cell)
	}
	if l.Cell != nil {
		return fmt.Sprintf("%s (%d;%d)", l.Name, l.Line+1, *l.Cell+1)
	}
	if l.Column != nil {
		return fmt.Sprintf("%s (%d;%d)", l.Name, l.Line+1, *l.Column+1)
	}
	return fmt.Sprintf("%s (%d)", l.Name, l.Line+1)
}

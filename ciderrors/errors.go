package ciderrors

import (
	"fmt"
	"strings"
)

// Kind tags the taxonomy of errors the engine can raise, per the
// interface/data-format/field-value/check/range-value distinction.
type Kind string

const (
	KindInterface  Kind = "interface"
	KindDataFormat Kind = "data-format"
	KindFieldValue Kind = "field-value"
	KindCheck      Kind = "check"
	KindRangeValue Kind = "range-value"
)

// CidError is the structured error payload shared by every kind: a message,
// a location, an optional see-also location with its own message, and an
// optional wrapped cause.
type CidError struct {
	Kind            Kind
	Message         string
	Location        *Location
	SeeAlsoLocation *Location
	SeeAlsoMessage  string
	Cause           error
}

func (e *CidError) Error() string {
	var b strings.Builder
	if e.Location != nil {
		b.WriteString(e.Location.String())
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if e.SeeAlsoLocation != nil {
		fmt.Fprintf(&b, " (see also: %s", e.SeeAlsoLocation.String())
		if e.SeeAlsoMessage != "" {
			fmt.Fprintf(&b, ": %s", e.SeeAlsoMessage)
		}
		b.WriteString(")")
	}
	return b.String()
}

func (e *CidError) Unwrap() error { return e.Cause }

// WithLocation returns a shallow copy of e with Location set, used when a
// lower layer raises without knowing the caller's current position and an
// outer layer attaches it before re-raising.
func (e *CidError) WithLocation(loc *Location) *CidError {
	cp := *e
	cp.Location = loc
	return &cp
}

// Prepend returns a copy of e with prefix prepended to the message, used by
// the validating reader to add "cannot accept field 'X'" context.
func (e *CidError) Prepend(prefix string) *CidError {
	cp := *e
	cp.Message = prefix + cp.Message
	return &cp
}

func newf(kind Kind, loc *Location, format string, args ...any) *CidError {
	return &CidError{Kind: kind, Message: fmt.Sprintf(format, args...), Location: loc}
}

// Interface reports a broken CID: an authoring error with no recovery path.
func Interface(loc *Location, format string, args ...any) *CidError {
	return newf(KindInterface, loc, format, args...)
}

// DataFormatErr reports that the data could not be parsed into rows/cells.
func DataFormatErr(loc *Location, format string, args ...any) *CidError {
	return newf(KindDataFormat, loc, format, args...)
}

// FieldValue reports that a cell does not match its field format.
func FieldValue(loc *Location, format string, args ...any) *CidError {
	return newf(KindFieldValue, loc, format, args...)
}

// Check reports that a row-level or end-level check failed.
func Check(loc *Location, format string, args ...any) *CidError {
	return newf(KindCheck, loc, format, args...)
}

// RangeValue reports that a value lies outside a declared range.
func RangeValue(loc *Location, format string, args ...any) *CidError {
	return newf(KindRangeValue, loc, format, args...)
}

// Is reports whether err is a *CidError of the given kind.
func Is(err error, kind Kind) bool {
	ce, ok := err.(*CidError)
	if !ok {
		return false
	}
	return ce.Kind == kind
}

// HumanReadableList renders items as "a, b and c" (or "a and b", or "a"),
// for spelling out choice lists in error messages.
func HumanReadableList(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " and " + items[1]
	default:
		return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
	}
}

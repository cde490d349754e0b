// cidcheck validates a tabular data file against a Column Interface
// Definition (CID) and optionally writes back the accepted rows.
//
// Required command line arguments:
//
//	-cid    path to the CID file describing the data's fields and checks.
//	-data   path to the data file to validate.
//
// Optional command line arguments:
//
//	-cid-type       type of the CID file: delimited, excel or ods (a
//	                fixed-width CID file is rejected).
//	                Default: sniffed from -cid's extension.
//	-data-type      accepted but not used: the data file is always read
//	                with the data format declared in the CID.
//	-on-error       raise, continue or yield. Default: raise.
//	-validate-until how many data rows to validate. Default: all.
//	-out            path to write back the accepted rows: fixed-width when
//	                the CID's format is fixed, delimited for every other
//	                format. Default: rows are not written back.
//
// Exit codes: 0 success, 1 data rejected, 2 argument problems, 3
// environment/IO failure, 4 unexpected error.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/invertedv/cidcheck/cid"
	"github.com/invertedv/cidcheck/ciderrors"
	"github.com/invertedv/cidcheck/dataformat"
	"github.com/invertedv/cidcheck/rowio"
	"github.com/invertedv/cidcheck/validio"
)

const (
	exitSuccess = 0
	exitRejected = 1
	exitArgument = 2
	exitEnvironment = 3
	exitUnexpected = 4
)

func main() {
	os.Exit(run())
}

func run() int {
	cidPathPtr := flag.String("cid", "", "path to the CID file")
	cidTypePtr := flag.String("cid-type", "", "delimited, excel or ods")
	dataPathPtr := flag.String("data", "", "path to the data file to validate")
	dataTypePtr := flag.String("data-type", "", "not used; the CID's data format decides how -data is read")
	onErrorPtr := flag.String("on-error", "raise", "raise, continue or yield")
	validateUntilPtr := flag.Int("validate-until", -1, "number of data rows to validate; -1 means all")
	outPtr := flag.String("out", "", "path to write back accepted rows")
	flag.Parse()

	if *cidPathPtr == "" || *dataPathPtr == "" {
		help()
		log.Println("error: -cid and -data are required")
		return exitArgument
	}

	onError, err := parseOnError(*onErrorPtr)
	if err != nil {
		help()
		log.Println(err)
		return exitArgument
	}

	var validateUntil *int
	if *validateUntilPtr >= 0 {
		validateUntil = validateUntilPtr
	}

	c, err := loadCid(*cidPathPtr, *cidTypePtr)
	if err != nil {
		if ciderrors.Is(err, ciderrors.KindInterface) {
			log.Println(err)
			return exitArgument
		}
		log.Println(err)
		return exitEnvironment
	}

	dataReader, err := openDataReader(*dataPathPtr, *dataTypePtr, c)
	if err != nil {
		log.Println(err)
		return exitEnvironment
	}

	reader := validio.NewReader(c, dataReader, onError, validateUntil)
	defer func() {
		if e := reader.Close(); e != nil {
			log.Println(e)
		}
	}()

	var outWriter *validio.Writer
	if *outPtr != "" {
		rw, err := openDataWriter(*outPtr, c)
		if err != nil {
			log.Println(err)
			return exitEnvironment
		}
		outWriter = validio.NewWriter(c, rw)
		defer func() {
			if e := outWriter.Close(); e != nil {
				log.Println(e)
			}
		}()
	}

	rejected := 0
	for {
		row, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Println(err)
			return exitRejectedOrUnexpected(err)
		}
		if row.Err != nil {
			log.Println(row.Err)
			rejected++
			continue
		}
		if outWriter != nil {
			if err := outWriter.WriteRow(row.Values); err != nil {
				log.Println(err)
				return exitUnexpected
			}
		}
	}

	if rejected > 0 {
		return exitRejected
	}
	return exitSuccess
}

func exitRejectedOrUnexpected(err error) int {
	switch {
	case ciderrors.Is(err, ciderrors.KindFieldValue), ciderrors.Is(err, ciderrors.KindCheck), ciderrors.Is(err, ciderrors.KindRangeValue):
		return exitRejected
	case ciderrors.Is(err, ciderrors.KindDataFormat):
		return exitEnvironment
	default:
		return exitUnexpected
	}
}

func parseOnError(raw string) (validio.OnError, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "raise", "":
		return validio.Raise, nil
	case "continue":
		return validio.Continue, nil
	case "yield":
		return validio.Yield, nil
	default:
		return 0, fmt.Errorf("-on-error is %q but must be one of: raise, continue, yield", raw)
	}
}

// loadCid reads the CID file via rowio and builds a cid.Cid from its rows.
func loadCid(path, cidType string) (*cid.Cid, error) {
	rows, err := readAllRows(path, cidType)
	if err != nil {
		return nil, err
	}
	return cid.Load(path, rows)
}

func readAllRows(path, typeName string) ([][]string, error) {
	reader, err := openRowReader(path, typeName)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	var rows [][]string
	for {
		row, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// openRowReader resolves typeName, or (when empty) sniffs the format from
// path's extension via rowio.AutoRows. Used only for the CID file itself,
// which is always delimited, excel or ods -- never fixed-width.
func openRowReader(path, typeName string) (rowio.RowReader, error) {
	if typeName == "" {
		r, _, err := rowio.AutoRows(path)
		return r, err
	}

	f := dataformat.New(dataformat.Family(strings.ToLower(typeName)))
	if err := f.SetProperty("encoding", "utf-8"); err != nil {
		return nil, err
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}

	switch f.Family {
	case dataformat.Excel:
		return rowio.NewExcelReader(path, f)
	case dataformat.ODS:
		return rowio.NewODSReader(path, f)
	case dataformat.Fixed:
		return nil, fmt.Errorf("-cid-type cannot be fixed; a CID file is always delimited, excel or ods")
	default:
		return rowio.NewDelimitedReader(path, f)
	}
}

// openDataReader opens the data file with the reader that c's data format
// family selects. typeName is not consulted.
func openDataReader(path, typeName string, c *cid.Cid) (rowio.RowReader, error) {
	format := c.Format
	switch format.Family {
	case dataformat.Fixed:
		widths, err := fieldWidths(c)
		if err != nil {
			return nil, err
		}
		return rowio.NewFixedReader(path, widths, format)
	case dataformat.Excel:
		return rowio.NewExcelReader(path, format)
	case dataformat.ODS:
		return rowio.NewODSReader(path, format)
	default:
		return rowio.NewDelimitedReader(path, format)
	}
}

func openDataWriter(path string, c *cid.Cid) (rowio.RowWriter, error) {
	format := c.Format
	if format.Family == dataformat.Fixed {
		widths, err := fieldWidths(c)
		if err != nil {
			return nil, err
		}
		return rowio.NewFixedWriter(path, widths, format)
	}
	return rowio.NewDelimitedWriter(path, format)
}

// fieldWidths derives each field's fixed width from its declared length
// range: a fixed-width CID requires every field's length to be an exact
// character count, not an open-ended range.
func fieldWidths(c *cid.Cid) ([]rowio.FieldWidth, error) {
	fields := c.Fields()
	widths := make([]rowio.FieldWidth, len(fields))
	for i, ff := range fields {
		upper, ok := ff.Length().UpperLimit()
		if !ok {
			return nil, fmt.Errorf("field %q has no fixed upper length bound, required for a fixed-width CID", ff.Name())
		}
		widths[i] = rowio.FieldWidth{Name: ff.Name(), Width: int(upper)}
	}
	return widths, nil
}

func help() {
	fmt.Println(`
Required command line arguments:
   -cid    path to the CID file describing the data's fields and checks.
   -data   path to the data file to validate.

Optional command line arguments:
   -cid-type        type of the CID file: delimited, excel or ods.
                     Default: sniffed from -cid's extension.
   -data-type       not used: the data file is always read with the data
                     format declared in the CID.
   -on-error        raise, continue or yield. Default: raise.
   -validate-until  how many data rows to validate. Default: all.
   -out             path to write back the accepted rows (fixed-width for
                     a fixed CID, delimited otherwise). Default: rows
                     are not written back.
`)
}

package rowio

import (
	"path/filepath"
	"strings"

	"github.com/invertedv/cidcheck/ciderrors"
	"github.com/invertedv/cidcheck/dataformat"
)

// AutoRows dispatches by path's lower-case suffix: ods/xls/xlsx select the
// matching reader with a sealed, permissive default format for that family;
// anything else is assumed delimited with a permissive default DataFormat.
func AutoRows(path string) (RowReader, *dataformat.Format, error) {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")) {
	case "ods":
		format := dataformat.New(dataformat.ODS)
		if err := sealDefault(format); err != nil {
			return nil, nil, err
		}
		r, err := NewODSReader(path, format)
		return r, format, err
	case "xls", "xlsx":
		format := dataformat.New(dataformat.Excel)
		if err := sealDefault(format); err != nil {
			return nil, nil, err
		}
		r, err := NewExcelReader(path, format)
		return r, format, err
	default:
		format := dataformat.New(dataformat.Delimited)
		if err := sealDefault(format); err != nil {
			return nil, nil, err
		}
		r, err := NewDelimitedReader(path, format)
		return r, format, err
	}
}

func sealDefault(format *dataformat.Format) error {
	if err := format.SetProperty("encoding", "utf-8"); err != nil {
		return err
	}
	if err := format.Validate(); err != nil {
		return ciderrors.DataFormatErr(nil, "cannot build default data format: %v", err)
	}
	return nil
}

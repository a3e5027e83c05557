package tabular

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	ErrEmptyFile         = errors.New("uploaded file is empty")
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrMalformedFile     = errors.New("malformed file")
)

// Format identifies the payload type of an uploaded tabular file.
type Format int

const (
	FormatUnknown Format = iota
	FormatCSV
	FormatExcel
)

var excelMimetypes = map[string]bool{
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
	"application/vnd.ms-excel":                                          true,
}

// Detect determines the payload format from the declared mimetype first,
// falling back to the filename extension.
func Detect(filename, mimetype string) (Format, error) {
	mt := strings.ToLower(strings.TrimSpace(mimetype))
	if i := strings.Index(mt, ";"); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	if mt == "text/csv" || mt == "application/csv" {
		return FormatCSV, nil
	}
	if excelMimetypes[mt] {
		return FormatExcel, nil
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx", ".xls":
		return FormatExcel, nil
	}

	return FormatUnknown, fmt.Errorf("%w: %q (%s)", ErrUnsupportedFormat, filename, mimetype)
}

// ReadTable parses an uploaded file into rows of cells. The first row is the
// header. Short rows are allowed; missing trailing cells read as empty strings
// downstream. The returned table is fully materialized and owned by the caller.
func ReadTable(data []byte, filename, mimetype string) ([][]string, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}

	format, err := Detect(filename, mimetype)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatCSV:
		return readCSV(data)
	case FormatExcel:
		return readExcel(data)
	}
	return nil, ErrUnsupportedFormat
}

func readCSV(data []byte) ([][]string, error) {
	// Strip a UTF-8 BOM so the first header cell normalizes cleanly.
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	reader := csv.NewReader(bytes.NewReader(data))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1 // tolerate short rows

	var table [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedFile, err)
		}
		table = append(table, record)
	}
	if len(table) == 0 {
		return nil, ErrEmptyFile
	}
	return table, nil
}

func readExcel(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFile, err)
	}
	defer f.Close()

	// First sheet by workbook order, not by name.
	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, ErrEmptyFile
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: sheet %q: %v", ErrMalformedFile, sheet, err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}
	return rows, nil
}

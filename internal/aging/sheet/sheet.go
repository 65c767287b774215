package sheet

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/shandysiswandi/goaging/internal/aging/entity"
)

var (
	ErrUnsupported   = errors.New("unsupported spreadsheet format")
	ErrSheetNotFound = errors.New("sheet not found")
	ErrNoHeader      = errors.New("sheet has no header row")
)

type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"
	FormatCSV  Format = "csv"
)

var (
	zipMagic = []byte("PK\x03\x04")
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// DetectFormat picks the format from the file extension, falling back to
// the leading bytes of data.
func DetectFormat(filename string, data []byte) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX
	case ".xls":
		return FormatXLS
	case ".csv", ".txt":
		return FormatCSV
	}

	switch {
	case bytes.HasPrefix(data, zipMagic):
		return FormatXLSX
	case bytes.HasPrefix(data, oleMagic):
		return FormatXLS
	default:
		return FormatCSV
	}
}

// Sheets lists the sheet names of a workbook in workbook order.
func Sheets(data []byte, filename string) ([]string, error) {
	switch DetectFormat(filename, data) {
	case FormatXLSX:
		return xlsxSheets(data)
	case FormatXLS:
		return xlsSheets(data)
	default:
		return []string{csvSheetName(filename)}, nil
	}
}

// Load reads one sheet of a workbook. An empty sheet name selects the first
// sheet.
func Load(data []byte, filename, sheet string) (*entity.Dataset, error) {
	var (
		name string
		rows [][]string
		err  error
	)

	switch DetectFormat(filename, data) {
	case FormatXLSX:
		name, rows, err = xlsxRows(data, sheet)
	case FormatXLS:
		name, rows, err = xlsRows(data, sheet)
	default:
		name = csvSheetName(filename)
		if sheet != "" && sheet != name {
			return nil, fmt.Errorf("%w: %q", ErrSheetNotFound, sheet)
		}
		rows, err = csvRows(data)
	}
	if err != nil {
		return nil, err
	}

	return build(name, rows)
}

func pickSheet(names []string, want string) (string, error) {
	if len(names) == 0 {
		return "", ErrNoHeader
	}
	if want == "" {
		return names[0], nil
	}
	for _, n := range names {
		if n == want {
			return n, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrSheetNotFound, want)
}

// build turns raw rows into a dataset. Header labels are trimmed, blank
// ones become "Unnamed: <i>" and repeats get ".1", ".2" suffixes. Data
// cells right of the header get "Unnamed: <i>" columns as well.
func build(name string, rows [][]string) (*entity.Dataset, error) {
	start := -1
	for i, r := range rows {
		if !blank(r) {
			start = i
			break
		}
	}
	if start < 0 {
		return nil, ErrNoHeader
	}

	header := rows[start]
	width := len(header)
	for _, r := range rows[start+1:] {
		width = max(width, usedWidth(r))
	}

	columns := make([]string, width)
	seen := make(map[string]struct{}, width)
	for i := range columns {
		var label string
		if i < len(header) {
			label = strings.TrimSpace(header[i])
		}
		if label == "" {
			label = fmt.Sprintf("Unnamed: %d", i)
		}
		unique := label
		for n := 1; ; n++ {
			if _, dup := seen[unique]; !dup {
				break
			}
			unique = fmt.Sprintf("%s.%d", label, n)
		}
		seen[unique] = struct{}{}
		columns[i] = unique
	}

	ds := &entity.Dataset{
		Name:    name,
		Columns: columns,
		Rows:    make([]entity.Row, 0, len(rows)-start-1),
	}
	for _, r := range rows[start+1:] {
		if blank(r) {
			continue
		}
		row := make(entity.Row, len(columns))
		for i, col := range columns {
			if i < len(r) {
				row[col] = entity.Text(r[i])
			} else {
				row[col] = entity.Missing()
			}
		}
		ds.Rows = append(ds.Rows, row)
	}

	return ds, nil
}

func blank(r []string) bool {
	for _, v := range r {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// usedWidth is the row length up to its last non-blank cell.
func usedWidth(r []string) int {
	for i := len(r) - 1; i >= 0; i-- {
		if strings.TrimSpace(r[i]) != "" {
			return i + 1
		}
	}
	return 0
}

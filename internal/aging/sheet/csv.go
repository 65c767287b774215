package sheet

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func csvSheetName(filename string) string {
	base := filepath.Base(filename)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "csv"
	}
	return name
}

// csvRows parses CSV text. Input that is not valid UTF-8 is decoded as
// Windows-1252, the usual encoding of spreadsheet exports.
func csvRows(data []byte) ([][]string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	src := bytes.NewReader(data)
	reader := csv.NewReader(src)
	if !utf8.Valid(data) {
		reader = csv.NewReader(transform.NewReader(src, charmap.Windows1252.NewDecoder()))
	}
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: csv: %v", ErrUnsupported, err)
	}
	return rows, nil
}

package sheet

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

func openXLSX(data []byte) (*excelize.File, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: xlsx: %v", ErrUnsupported, err)
	}
	return f, nil
}

func xlsxSheets(data []byte) ([]string, error) {
	f, err := openXLSX(data)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return f.GetSheetList(), nil
}

func xlsxRows(data []byte, want string) (string, [][]string, error) {
	f, err := openXLSX(data)
	if err != nil {
		return "", nil, err
	}
	defer f.Close()

	name, err := pickSheet(f.GetSheetList(), want)
	if err != nil {
		return "", nil, err
	}

	// raw values keep number formats (currency, thousands) out of the cells
	rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return "", nil, fmt.Errorf("read sheet %q: %w", name, err)
	}

	return name, rows, nil
}

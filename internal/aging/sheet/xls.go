package sheet

import (
	"bytes"
	"fmt"

	"github.com/extrame/xls"
)

func openXLS(data []byte) (*xls.WorkBook, error) {
	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("%w: xls: %v", ErrUnsupported, err)
	}
	return wb, nil
}

func xlsSheets(data []byte) ([]string, error) {
	wb, err := openXLS(data)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, wb.NumSheets())
	for i := 0; i < wb.NumSheets(); i++ {
		if s := wb.GetSheet(i); s != nil {
			names = append(names, s.Name)
		}
	}
	return names, nil
}

func xlsRows(data []byte, want string) (string, [][]string, error) {
	wb, err := openXLS(data)
	if err != nil {
		return "", nil, err
	}

	var target *xls.WorkSheet
	for i := 0; i < wb.NumSheets(); i++ {
		s := wb.GetSheet(i)
		if s == nil {
			continue
		}
		if want == "" || s.Name == want {
			target = s
			break
		}
	}
	if target == nil {
		if want == "" {
			return "", nil, ErrNoHeader
		}
		return "", nil, fmt.Errorf("%w: %q", ErrSheetNotFound, want)
	}

	rows := make([][]string, 0, int(target.MaxRow)+1)
	for i := 0; i <= int(target.MaxRow); i++ {
		row := target.Row(i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		vals := make([]string, row.LastCol())
		for c := row.FirstCol(); c < row.LastCol(); c++ {
			vals[c] = row.Col(c)
		}
		rows = append(rows, vals)
	}

	return target.Name, rows, nil
}

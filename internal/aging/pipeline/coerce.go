package pipeline

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/shandysiswandi/goaging/internal/aging/entity"
)

const maxWarningSamples = 3

// ParseAmount converts a cell to a decimal. Missing cells are zero. Text is
// trimmed, thousands separators are dropped, and "(12.5)" is read as -12.5.
// ok is false when the text is not a number; the value is then zero.
func ParseAmount(c entity.Cell) (decimal.Decimal, bool) {
	switch c.Kind {
	case entity.CellMissing:
		return decimal.Zero, true
	case entity.CellNumber:
		return c.Num, true
	}

	s := strings.TrimSpace(c.Text)
	if s == "" {
		return decimal.Zero, true
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	s = strings.ReplaceAll(s, ",", "")

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	if negative {
		d = d.Neg()
	}
	return d, true
}

// numericFrame holds the coerced values of each numeric column, by row index.
type numericFrame map[string][]decimal.Decimal

func (f numericFrame) sum(columns []string, row int) decimal.Decimal {
	total := decimal.Zero
	for _, col := range columns {
		total = total.Add(f[col][row])
	}
	return total
}

// coerce parses every listed column. Rows are never dropped: a bad value
// becomes zero and is counted in the column's warning.
func coerce(ds *entity.Dataset, columns []string) (numericFrame, []entity.CoercionWarning) {
	frame := make(numericFrame, len(columns))
	var warnings []entity.CoercionWarning

	for _, col := range columns {
		if _, done := frame[col]; done {
			continue
		}

		values := make([]decimal.Decimal, len(ds.Rows))
		var warn *entity.CoercionWarning
		for i, row := range ds.Rows {
			d, ok := ParseAmount(row[col])
			values[i] = d
			if ok {
				continue
			}
			if warn == nil {
				// rows are reported 1-based below the header line
				warn = &entity.CoercionWarning{Column: col, FirstRow: i + 2}
			}
			warn.Count++
			if len(warn.Samples) < maxWarningSamples {
				warn.Samples = append(warn.Samples, row[col].String())
			}
		}

		frame[col] = values
		if warn != nil {
			warnings = append(warnings, *warn)
		}
	}

	return frame, warnings
}

package pipeline

import (
	"strings"

	"github.com/shandysiswandi/goaging/internal/aging/entity"
)

const inScopeLabel = "in scope"

// IsInScope is the single in-scope gate: trimmed, case-insensitive, exact.
func IsInScope(c entity.Cell) bool {
	return strings.ToLower(strings.TrimSpace(c.String())) == inScopeLabel
}

func inScopeRows(ds *entity.Dataset, scopeCol string) []int {
	rows := make([]int, 0, len(ds.Rows))
	for i, row := range ds.Rows {
		if IsInScope(row[scopeCol]) {
			rows = append(rows, i)
		}
	}
	return rows
}

// FilterInScope returns a dataset holding only the in-scope rows of ds.
func FilterInScope(ds *entity.Dataset, scopeCol string) *entity.Dataset {
	idx := inScopeRows(ds, scopeCol)
	out := &entity.Dataset{
		Name:    ds.Name,
		Columns: ds.Columns,
		Rows:    make([]entity.Row, 0, len(idx)),
	}
	for _, i := range idx {
		out.Rows = append(out.Rows, ds.Rows[i])
	}
	return out
}

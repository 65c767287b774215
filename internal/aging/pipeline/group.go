package pipeline

import (
	"github.com/shopspring/decimal"

	"github.com/shandysiswandi/goaging/internal/aging/entity"
)

// grouper accumulates groups in first-seen key order.
type grouper struct {
	table *entity.Table
	index map[string]int
}

func newGrouper(name entity.TableName, groupBy string, measures ...string) *grouper {
	return &grouper{
		table: &entity.Table{
			Name:     name,
			GroupBy:  groupBy,
			Measures: measures,
			Groups:   []entity.Group{},
		},
		index: make(map[string]int),
	}
}

func (g *grouper) add(key, label string, values ...decimal.Decimal) {
	i, ok := g.index[key]
	if !ok {
		vals := make([]decimal.Decimal, len(g.table.Measures))
		for j := range vals {
			vals[j] = decimal.Zero
		}
		g.table.Groups = append(g.table.Groups, entity.Group{Label: label, Values: vals})
		i = len(g.table.Groups) - 1
		g.index[key] = i
	}

	grp := &g.table.Groups[i]
	grp.Count++
	for j, v := range values {
		grp.Values[j] = grp.Values[j].Add(v)
	}
}

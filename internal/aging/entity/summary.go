package entity

import "github.com/shopspring/decimal"

type Group struct {
	Label  string
	Count  int
	Values []decimal.Decimal
}

// Table is an ordered summary, one group per distinct key in first-seen order.
type Table struct {
	Name     TableName
	GroupBy  string
	Measures []string
	Groups   []Group
}

// Group returns the group with the given label.
func (t *Table) Group(label string) (Group, bool) {
	for _, g := range t.Groups {
		if g.Label == label {
			return g, true
		}
	}
	return Group{}, false
}

// Total sums the measure at index i across all groups.
func (t *Table) Total(i int) decimal.Decimal {
	total := decimal.Zero
	for _, g := range t.Groups {
		if i < len(g.Values) {
			total = total.Add(g.Values[i])
		}
	}
	return total
}

type TableResult struct {
	Table *Table
	Err   error
}

// Report is the complete output of one pipeline run.
type Report struct {
	Dataset        string
	Rows           int
	Resolution     Resolution
	Scope          TableResult
	CollectorAging TableResult
	Region         TableResult
	CreditDebit    TableResult
	ForReporting   TableResult
	Warnings       []CoercionWarning
}

// Tables returns the table results in presentation order.
func (r Report) Tables() []TableResult {
	return []TableResult{r.Scope, r.CollectorAging, r.Region, r.CreditDebit, r.ForReporting}
}

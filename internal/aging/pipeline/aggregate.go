package pipeline

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/shandysiswandi/goaging/internal/aging/entity"
)

const (
	measureTotalOutstanding = "Total_Outstanding"
	measureOverdue90Plus    = "Overdue_90_Plus"
)

// Aggregate builds every summary table of ds under mapping m. A table whose
// fields are missing carries a MissingFieldError; the other tables are
// still computed. The dataset is not modified.
func Aggregate(ds *entity.Dataset, m entity.Mapping) entity.Report {
	rep := entity.Report{
		Dataset: ds.Name,
		Rows:    len(ds.Rows),
	}

	nums, warnings := coerce(ds, numericColumns(ds, m))
	rep.Warnings = warnings

	a := aggregator{ds: ds, m: m, nums: nums}
	if col, ok := a.column(entity.FieldScopeStatus); ok {
		a.inScope = inScopeRows(ds, col)
	}

	rep.Scope = a.scopeSummary()
	rep.CollectorAging = a.collectorAging()
	rep.Region = a.outstandingBy(entity.TableRegionSummary, entity.FieldRegion)
	rep.CreditDebit = a.creditDebit()
	rep.ForReporting = a.outstandingBy(entity.TableForReporting, entity.FieldForReporting)

	return rep
}

func numericColumns(ds *entity.Dataset, m entity.Mapping) []string {
	var cols []string
	if col, ok := m.Column(entity.FieldOutstandingAmount); ok {
		cols = append(cols, col)
	}
	cols = append(cols, m.AgingBuckets...)
	cols = append(cols, m.OverdueColumns...)

	present := cols[:0]
	for _, c := range cols {
		if ds.HasColumn(c) {
			present = append(present, c)
		}
	}
	return present
}

type aggregator struct {
	ds      *entity.Dataset
	m       entity.Mapping
	nums    numericFrame
	inScope []int
}

// column returns the mapped column for f when it exists in the dataset.
func (a *aggregator) column(f entity.Field) (string, bool) {
	col, ok := a.m.Column(f)
	if !ok || !a.ds.HasColumn(col) {
		return "", false
	}
	return col, true
}

func (a *aggregator) require(table entity.TableName, fields ...entity.Field) error {
	var missing []entity.Field
	for _, f := range fields {
		switch f {
		case entity.FieldAgingBuckets:
			if len(a.presentColumns(a.m.AgingBuckets)) == 0 {
				missing = append(missing, f)
			}
		case entity.FieldOverdue90Plus:
			if len(a.presentColumns(a.m.OverdueColumns)) == 0 {
				missing = append(missing, f)
			}
		default:
			if _, ok := a.column(f); !ok {
				missing = append(missing, f)
			}
		}
	}
	if len(missing) > 0 {
		return &entity.MissingFieldError{Table: table, Fields: missing}
	}
	return nil
}

func (a *aggregator) presentColumns(cols []string) []string {
	var out []string
	for _, c := range cols {
		if a.ds.HasColumn(c) {
			out = append(out, c)
		}
	}
	return out
}

func (a *aggregator) scopeSummary() entity.TableResult {
	if err := a.require(entity.TableScopeSummary, entity.FieldScopeStatus, entity.FieldOutstandingAmount); err != nil {
		return entity.TableResult{Err: err}
	}

	scopeCol, _ := a.column(entity.FieldScopeStatus)
	amountCol, _ := a.column(entity.FieldOutstandingAmount)

	g := newGrouper(entity.TableScopeSummary, scopeCol, measureTotalOutstanding)
	for i, row := range a.ds.Rows {
		cell := row[scopeCol]
		if cell.IsMissing() {
			continue
		}
		label := strings.TrimSpace(cell.String())
		g.add(strings.ToLower(label), label, a.nums[amountCol][i])
	}

	return entity.TableResult{Table: g.table}
}

func (a *aggregator) collectorAging() entity.TableResult {
	if err := a.require(entity.TableCollectorAging, entity.FieldScopeStatus, entity.FieldCollector, entity.FieldAgingBuckets); err != nil {
		return entity.TableResult{Err: err}
	}

	collectorCol, _ := a.column(entity.FieldCollector)
	buckets := a.presentColumns(a.m.AgingBuckets)

	g := newGrouper(entity.TableCollectorAging, collectorCol, buckets...)
	values := make([]decimal.Decimal, len(buckets))
	for _, i := range a.inScope {
		key, ok := groupKey(a.ds.Rows[i][collectorCol])
		if !ok {
			continue
		}
		for j, b := range buckets {
			values[j] = a.nums[b][i]
		}
		g.add(key, key, values...)
	}

	return entity.TableResult{Table: g.table}
}

// outstandingBy sums outstanding amounts of in-scope rows grouped by field.
func (a *aggregator) outstandingBy(table entity.TableName, field entity.Field) entity.TableResult {
	if err := a.require(table, entity.FieldScopeStatus, field, entity.FieldOutstandingAmount); err != nil {
		return entity.TableResult{Err: err}
	}

	groupCol, _ := a.column(field)
	amountCol, _ := a.column(entity.FieldOutstandingAmount)

	g := newGrouper(table, groupCol, measureTotalOutstanding)
	for _, i := range a.inScope {
		key, ok := groupKey(a.ds.Rows[i][groupCol])
		if !ok {
			continue
		}
		g.add(key, key, a.nums[amountCol][i])
	}

	return entity.TableResult{Table: g.table}
}

// creditDebit splits in-scope rows on the overdue measure: strictly
// positive is Debit, zero and negative are Credit.
func (a *aggregator) creditDebit() entity.TableResult {
	if err := a.require(entity.TableCreditDebit, entity.FieldScopeStatus, entity.FieldOverdue90Plus); err != nil {
		return entity.TableResult{Err: err}
	}

	cols := a.presentColumns(a.m.OverdueColumns)
	measure := measureOverdue90Plus
	if len(cols) == 1 {
		measure = cols[0]
	}

	g := newGrouper(entity.TableCreditDebit, "Type", measure)
	for _, i := range a.inScope {
		v := a.nums.sum(cols, i)
		class := entity.ClassCredit
		if v.GreaterThan(decimal.Zero) {
			class = entity.ClassDebit
		}
		g.add(class, class, v)
	}

	return entity.TableResult{Table: g.table}
}

func groupKey(c entity.Cell) (string, bool) {
	if c.IsMissing() {
		return "", false
	}
	key := strings.TrimSpace(c.String())
	return key, key != ""
}

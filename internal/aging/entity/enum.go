package entity

type ReportStatus string

const (
	ReportStatusQueued     ReportStatus = "QUEUED"
	ReportStatusProcessing ReportStatus = "PROCESSING"
	ReportStatusDone       ReportStatus = "DONE"
	ReportStatusFailed     ReportStatus = "FAILED"
)

// Field is a logical role the pipeline needs, independent of how a given
// spreadsheet spells the column.
type Field string

const (
	FieldScopeStatus       Field = "scope_status"
	FieldOutstandingAmount Field = "outstanding_amount"
	FieldCollector         Field = "collector"
	FieldRegion            Field = "region"
	FieldAgingBuckets      Field = "aging_buckets"
	FieldOverdue90Plus     Field = "overdue_90_plus"
	FieldForReporting      Field = "for_reporting"
)

// OverdueSource selects how the "overdue > 90 days" measure is obtained.
type OverdueSource string

const (
	OverdueSourceColumn  OverdueSource = "column"
	OverdueSourceDerived OverdueSource = "derived"
)

type TableName string

const (
	TableScopeSummary   TableName = "scope_summary"
	TableCollectorAging TableName = "collector_aging"
	TableRegionSummary  TableName = "region_summary"
	TableCreditDebit    TableName = "credit_debit_summary"
	TableForReporting   TableName = "for_reporting_summary"
)

const (
	ClassDebit  = "Debit"
	ClassCredit = "Credit"
)

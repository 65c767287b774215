package entity

type ReportMeta struct {
	ID        string
	Status    ReportStatus
	Err       string
	Filename  string
	Sheet     string
	StartedAt int64
	EndedAt   int64

	Rows int64
}

type EventKind string

const (
	EventUnresolvedField EventKind = "UNRESOLVED_FIELD"
	EventAmbiguousField  EventKind = "AMBIGUOUS_FIELD"
	EventCoercion        EventKind = "COERCION_WARNING"
	EventTableFailed     EventKind = "TABLE_FAILED"
	EventResolutionNote  EventKind = "RESOLUTION_NOTE"
)

// WarningEvent is published for every user-visible problem found while
// building a report.
type WarningEvent struct {
	EventID  string
	ReportID string
	Kind     EventKind
	Message  string
}

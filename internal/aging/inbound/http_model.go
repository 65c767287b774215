package inbound

import (
	"errors"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/shandysiswandi/goaging/internal/aging/entity"
	"github.com/shandysiswandi/goaging/internal/aging/schema"
	"github.com/shandysiswandi/goaging/internal/aging/usecase"
)

type UploadResponse struct {
	ReportID string `json:"report_id"`
}

func (UploadResponse) StatusCode() int {
	return http.StatusAccepted
}

func (UploadResponse) Message() string {
	return "upload accepted"
}

type SheetsResponse struct {
	Filename string   `json:"filename"`
	Sheets   []string `json:"sheets"`
}

type Ambiguity struct {
	Field      entity.Field `json:"field"`
	Candidates []string     `json:"candidates"`
	Chosen     string       `json:"chosen,omitempty"`
}

type Resolution struct {
	SchemaVersion  string                  `json:"schema_version"`
	Columns        map[entity.Field]string `json:"columns"`
	AgingBuckets   []string                `json:"aging_buckets"`
	OverdueSource  entity.OverdueSource    `json:"overdue_source"`
	OverdueColumns []string                `json:"overdue_columns"`
	Unresolved     []entity.Field          `json:"unresolved"`
	Ambiguities    []Ambiguity             `json:"ambiguities,omitempty"`
	Suggestions    map[entity.Field]string `json:"suggestions,omitempty"`
	Notes          []string                `json:"notes,omitempty"`
}

type TableRow struct {
	Label  string            `json:"label"`
	Count  int               `json:"count"`
	Values []decimal.Decimal `json:"values"`
}

type Table struct {
	Name          entity.TableName  `json:"name"`
	GroupBy       string            `json:"group_by,omitempty"`
	Measures      []string          `json:"measures,omitempty"`
	Rows          []TableRow        `json:"rows,omitempty"`
	Totals        []decimal.Decimal `json:"totals,omitempty"`
	Error         string            `json:"error,omitempty"`
	MissingFields []entity.Field    `json:"missing_fields,omitempty"`
}

type Warning struct {
	Column   string   `json:"column"`
	Count    int      `json:"count"`
	FirstRow int      `json:"first_row"`
	Samples  []string `json:"samples"`
	Message  string   `json:"message"`
}

type ReportResponse struct {
	ReportID   string              `json:"report_id"`
	Status     entity.ReportStatus `json:"status"`
	Error      string              `json:"error,omitempty"`
	Filename   string              `json:"filename,omitempty"`
	Sheet      string              `json:"sheet,omitempty"`
	Dataset    string              `json:"dataset,omitempty"`
	Rows       int64               `json:"rows"`
	StartedAt  int64               `json:"started_at,omitempty"`
	EndedAt    int64               `json:"ended_at,omitempty"`
	Resolution *Resolution         `json:"resolution,omitempty"`
	Tables     []Table             `json:"tables,omitempty"`
	Warnings   []Warning           `json:"warnings,omitempty"`
}

type SchemaResponse struct {
	schema.Config
	RequiredFields []entity.Field `json:"required"`
}

func toReportResponse(res usecase.ReportResult) ReportResponse {
	out := ReportResponse{
		ReportID:  res.Meta.ID,
		Status:    res.Meta.Status,
		Error:     res.Meta.Err,
		Filename:  res.Meta.Filename,
		Sheet:     res.Meta.Sheet,
		Rows:      res.Meta.Rows,
		StartedAt: res.Meta.StartedAt,
		EndedAt:   res.Meta.EndedAt,
	}
	if res.Report == nil {
		return out
	}

	rep := res.Report
	out.Dataset = rep.Dataset
	out.Resolution = toResolution(rep.Resolution)
	for _, tr := range rep.Tables() {
		out.Tables = append(out.Tables, toTable(tr))
	}
	for _, w := range rep.Warnings {
		out.Warnings = append(out.Warnings, Warning{
			Column:   w.Column,
			Count:    w.Count,
			FirstRow: w.FirstRow,
			Samples:  w.Samples,
			Message:  w.String(),
		})
	}

	return out
}

func toResolution(res entity.Resolution) *Resolution {
	out := &Resolution{
		SchemaVersion:  res.SchemaVersion,
		Columns:        res.Mapping.Columns,
		AgingBuckets:   res.Mapping.AgingBuckets,
		OverdueSource:  res.Mapping.OverdueSource,
		OverdueColumns: res.Mapping.OverdueColumns,
		Unresolved:     res.Unresolved,
		Suggestions:    res.Suggestions,
		Notes:          res.Notes,
	}
	if out.Unresolved == nil {
		out.Unresolved = []entity.Field{}
	}
	for _, a := range res.Ambiguities {
		out.Ambiguities = append(out.Ambiguities, Ambiguity{
			Field:      a.Field,
			Candidates: a.Candidates,
			Chosen:     a.Chosen,
		})
	}
	return out
}

func toTable(tr entity.TableResult) Table {
	if tr.Err != nil {
		out := Table{Error: tr.Err.Error()}
		var missing *entity.MissingFieldError
		if errors.As(tr.Err, &missing) {
			out.Name = missing.Table
			out.MissingFields = missing.Fields
		}
		return out
	}

	t := tr.Table
	if t == nil {
		return Table{}
	}
	out := Table{
		Name:     t.Name,
		GroupBy:  t.GroupBy,
		Measures: t.Measures,
		Rows:     make([]TableRow, 0, len(t.Groups)),
		Totals:   make([]decimal.Decimal, 0, len(t.Measures)),
	}
	for _, g := range t.Groups {
		out.Rows = append(out.Rows, TableRow{Label: g.Label, Count: g.Count, Values: g.Values})
	}
	for i := range t.Measures {
		out.Totals = append(out.Totals, t.Total(i))
	}
	return out
}

func toSchemaResponse(cfg schema.Config) SchemaResponse {
	out := SchemaResponse{Config: cfg, RequiredFields: []entity.Field{}}
	for _, rule := range cfg.Fields {
		if cfg.Required(rule) {
			out.RequiredFields = append(out.RequiredFields, rule.Field)
		}
	}
	out.RequiredFields = append(out.RequiredFields, entity.FieldAgingBuckets)
	return out
}

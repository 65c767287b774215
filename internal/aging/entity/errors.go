package entity

import (
	"fmt"
	"strings"
)

// SchemaIncompleteError lists required logical fields that no column matched.
type SchemaIncompleteError struct {
	Fields []Field
}

func (e *SchemaIncompleteError) Error() string {
	return "unresolved fields: " + joinFields(e.Fields)
}

// MissingFieldError is attached to a table that could not be computed
// because its fields are absent from the mapping.
type MissingFieldError struct {
	Table  TableName
	Fields []Field
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: missing fields %s", e.Table, joinFields(e.Fields))
}

// CoercionWarning summarizes the non-numeric values found in one numeric
// column. Each of them was counted as zero.
type CoercionWarning struct {
	Column   string
	Count    int
	FirstRow int
	Samples  []string
}

func (w CoercionWarning) String() string {
	return fmt.Sprintf("column %q: %d non-numeric value(s) treated as 0 (first at row %d)", w.Column, w.Count, w.FirstRow)
}

func joinFields(fields []Field) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, string(f))
	}
	return strings.Join(parts, ", ")
}

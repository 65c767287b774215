package entity

// Mapping binds logical fields to verbatim dataset column names.
type Mapping struct {
	Columns      map[Field]string
	AgingBuckets []string

	OverdueSource  OverdueSource
	OverdueColumns []string
}

func (m Mapping) Column(f Field) (string, bool) {
	if m.Columns == nil {
		return "", false
	}
	col, ok := m.Columns[f]
	return col, ok && col != ""
}

// Ambiguity records a field for which more than one column qualified.
type Ambiguity struct {
	Field      Field
	Candidates []string
	Chosen     string
}

// Resolution is the output of the schema resolver.
type Resolution struct {
	SchemaVersion string
	Mapping       Mapping
	Unresolved    []Field
	Ambiguities   []Ambiguity
	Suggestions   map[Field]string
	Notes         []string
}

// Err reports the unresolved fields as a SchemaIncompleteError, or nil.
func (r Resolution) Err() error {
	if len(r.Unresolved) == 0 {
		return nil
	}
	return &SchemaIncompleteError{Fields: r.Unresolved}
}

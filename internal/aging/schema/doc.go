// Package schema resolves the columns of an uploaded sheet to the logical
// fields the aggregation pipeline needs.
//
// Resolution is driven by a versioned Config: each field lists exact labels
// (checked first) and keywords (substring fallback). When several columns
// qualify for one field the first in sheet order is chosen and the
// ambiguity is reported, or the field is left unresolved when the config
// asks to reject ambiguous matches.
package schema

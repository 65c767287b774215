package schema

import (
	"fmt"
	"strings"

	"github.com/shandysiswandi/goaging/internal/aging/entity"
)

type column struct {
	name string
	norm string
}

// Resolve maps dataset columns to logical fields using cfg.
func Resolve(columns []string, cfg Config) entity.Resolution {
	cols := make([]column, 0, len(columns))
	for _, c := range columns {
		cols = append(cols, column{name: c, norm: Normalize(c)})
	}

	res := entity.Resolution{
		SchemaVersion: cfg.Version,
		Mapping: entity.Mapping{
			Columns:       make(map[entity.Field]string, len(cfg.Fields)),
			OverdueSource: cfg.Overdue.Source,
		},
	}

	for _, rule := range cfg.Fields {
		candidates := matchField(cols, rule)
		switch {
		case len(candidates) == 0:
			if cfg.Required(rule) {
				res.Unresolved = append(res.Unresolved, rule.Field)
			}
			continue
		case len(candidates) > 1:
			amb := entity.Ambiguity{Field: rule.Field, Candidates: candidates}
			if cfg.Ambiguity == AmbiguityReject {
				res.Ambiguities = append(res.Ambiguities, amb)
				if cfg.Required(rule) {
					res.Unresolved = append(res.Unresolved, rule.Field)
				}
				continue
			}
			amb.Chosen = candidates[0]
			res.Ambiguities = append(res.Ambiguities, amb)
		}
		res.Mapping.Columns[rule.Field] = candidates[0]
	}

	keywords := normalizeAll(cfg.Aging.Keywords)
	for _, c := range cols {
		if containsAny(c.norm, keywords) {
			res.Mapping.AgingBuckets = append(res.Mapping.AgingBuckets, c.name)
		}
	}
	switch n := len(res.Mapping.AgingBuckets); {
	case n == 0:
		res.Unresolved = append(res.Unresolved, entity.FieldAgingBuckets)
	case n < cfg.Aging.Minimum:
		res.Notes = append(res.Notes, fmt.Sprintf("only %d aging bucket column(s) found, expected at least %d", n, cfg.Aging.Minimum))
	}

	switch cfg.Overdue.Source {
	case entity.OverdueSourceDerived:
		derived := normalizeAll(cfg.Overdue.DerivedFrom)
		for _, bucket := range res.Mapping.AgingBuckets {
			if containsAny(Normalize(bucket), derived) {
				res.Mapping.OverdueColumns = append(res.Mapping.OverdueColumns, bucket)
			}
		}
	default:
		if col, ok := res.Mapping.Column(entity.FieldOverdue90Plus); ok {
			res.Mapping.OverdueColumns = []string{col}
		}
	}

	if len(res.Unresolved) > 0 {
		res.Suggestions = suggest(columns, cfg, res.Unresolved)
	}

	return res
}

// matchField returns the qualifying columns of the winning stage: exact
// label matches if any, otherwise keyword matches, in sheet order.
func matchField(cols []column, rule FieldRule) []string {
	labels := normalizeAll(rule.Labels)

	var exact []string
	for _, c := range cols {
		for _, l := range labels {
			if c.norm == l {
				exact = append(exact, c.name)
				break
			}
		}
	}
	if len(exact) > 0 {
		return exact
	}

	keywords := normalizeAll(rule.Keywords)
	var partial []string
	for _, c := range cols {
		if containsAny(c.norm, keywords) {
			partial = append(partial, c.name)
		}
	}
	return partial
}

func normalizeAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if n := Normalize(s); n != "" {
			out = append(out, n)
		}
	}
	return out
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

package schema

import (
	"github.com/schollz/closestmatch"

	"github.com/shandysiswandi/goaging/internal/aging/entity"
)

// suggest proposes the closest column name for each unresolved field, using
// the field's canonical label as the search term.
func suggest(columns []string, cfg Config, unresolved []entity.Field) map[entity.Field]string {
	if len(columns) == 0 {
		return nil
	}

	byNorm := make(map[string]string, len(columns))
	bag := make([]string, 0, len(columns))
	for _, c := range columns {
		n := Normalize(c)
		if n == "" {
			continue
		}
		if _, ok := byNorm[n]; !ok {
			byNorm[n] = c
			bag = append(bag, n)
		}
	}
	if len(bag) == 0 {
		return nil
	}

	cm := closestmatch.New(bag, []int{2, 3, 4})
	out := make(map[entity.Field]string)
	for _, f := range unresolved {
		term := searchTerm(cfg, f)
		if term == "" {
			continue
		}
		if match := cm.Closest(Normalize(term)); match != "" {
			out[f] = byNorm[match]
		}
	}

	return out
}

func searchTerm(cfg Config, f entity.Field) string {
	if f == entity.FieldAgingBuckets {
		if len(cfg.Aging.Keywords) > 0 {
			return cfg.Aging.Keywords[0] + " day"
		}
		return ""
	}
	for _, rule := range cfg.Fields {
		if rule.Field != f {
			continue
		}
		if len(rule.Labels) > 0 {
			return rule.Labels[0]
		}
		if len(rule.Keywords) > 0 {
			return rule.Keywords[0]
		}
	}
	return ""
}

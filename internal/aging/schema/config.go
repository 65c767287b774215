package schema

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/shandysiswandi/goaging/internal/aging/entity"
)

type AmbiguityPolicy string

const (
	AmbiguityFirst  AmbiguityPolicy = "first"
	AmbiguityReject AmbiguityPolicy = "reject"
)

// DefaultMinAgingBuckets is the number of aging columns a complete sheet is
// expected to carry.
const DefaultMinAgingBuckets = 3

type FieldRule struct {
	Field    entity.Field `yaml:"field" json:"field"`
	Labels   []string     `yaml:"labels" json:"labels"`
	Keywords []string     `yaml:"keywords" json:"keywords"`
	Required bool         `yaml:"required" json:"required"`
}

type AgingRule struct {
	Keywords []string `yaml:"keywords" json:"keywords"`
	Minimum  int      `yaml:"minimum" json:"minimum"`
}

type OverdueRule struct {
	Source      entity.OverdueSource `yaml:"source" json:"source"`
	DerivedFrom []string             `yaml:"derived_from" json:"derived_from"`
}

// Config is a versioned schema mapping.
type Config struct {
	Version   string          `yaml:"version" json:"version"`
	Ambiguity AmbiguityPolicy `yaml:"ambiguity" json:"ambiguity"`
	Fields    []FieldRule     `yaml:"fields" json:"fields"`
	Aging     AgingRule       `yaml:"aging_buckets" json:"aging_buckets"`
	Overdue   OverdueRule     `yaml:"overdue_90_plus" json:"overdue_90_plus"`
}

// Default returns the mapping used by the original AR dashboard layout.
func Default() Config {
	return Config{
		Version:   "builtin-1",
		Ambiguity: AmbiguityFirst,
		Fields: []FieldRule{
			{Field: entity.FieldScopeStatus, Labels: []string{"Scope Status"}, Keywords: []string{"scope"}, Required: true},
			{Field: entity.FieldOutstandingAmount, Labels: []string{"Outstanding USD (AR system)"}, Keywords: []string{"outstanding"}, Required: true},
			{Field: entity.FieldCollector, Labels: []string{"Collector Name"}, Keywords: []string{"collector"}, Required: true},
			{Field: entity.FieldRegion, Labels: []string{"Region"}, Keywords: []string{"region"}, Required: true},
			{Field: entity.FieldOverdue90Plus, Labels: []string{"Overdue > 90 day"}, Keywords: []string{"overdue"}, Required: true},
			{Field: entity.FieldForReporting, Labels: []string{"For Reporting"}, Keywords: []string{"reporting"}},
		},
		Aging: AgingRule{
			Keywords: []string{"31-60", "61-90", "91-180", "181-360", "360+", "overdue"},
			Minimum:  DefaultMinAgingBuckets,
		},
		Overdue: OverdueRule{
			Source:      entity.OverdueSourceColumn,
			DerivedFrom: []string{"91-180", "181-360", "360+"},
		},
	}
}

// LoadFile reads a YAML schema config. An empty path yields Default.
func LoadFile(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read schema config: %w", err)
	}

	return Parse(data)
}

// Parse decodes a YAML schema config, fills defaults, and validates it.
func Parse(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode schema config: %w", err)
	}

	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) fillDefaults() {
	def := Default()
	if c.Ambiguity == "" {
		c.Ambiguity = AmbiguityFirst
	}
	if len(c.Aging.Keywords) == 0 {
		c.Aging.Keywords = def.Aging.Keywords
	}
	if c.Aging.Minimum <= 0 {
		c.Aging.Minimum = def.Aging.Minimum
	}
	if c.Overdue.Source == "" {
		c.Overdue.Source = def.Overdue.Source
	}
	if len(c.Overdue.DerivedFrom) == 0 {
		c.Overdue.DerivedFrom = def.Overdue.DerivedFrom
	}
}

func (c Config) Validate() error {
	if c.Version == "" {
		return errors.New("schema config: version is required")
	}

	switch c.Ambiguity {
	case AmbiguityFirst, AmbiguityReject:
	default:
		return fmt.Errorf("schema config: unknown ambiguity policy %q", c.Ambiguity)
	}

	switch c.Overdue.Source {
	case entity.OverdueSourceColumn, entity.OverdueSourceDerived:
	default:
		return fmt.Errorf("schema config: unknown overdue source %q", c.Overdue.Source)
	}

	seen := make(map[entity.Field]struct{}, len(c.Fields))
	for _, rule := range c.Fields {
		if rule.Field == "" || rule.Field == entity.FieldAgingBuckets {
			return fmt.Errorf("schema config: invalid field %q", rule.Field)
		}
		if _, ok := seen[rule.Field]; ok {
			return fmt.Errorf("schema config: duplicate field %q", rule.Field)
		}
		seen[rule.Field] = struct{}{}
		if len(rule.Labels) == 0 && len(rule.Keywords) == 0 {
			return fmt.Errorf("schema config: field %q needs labels or keywords", rule.Field)
		}
	}

	return nil
}

// WithOverdueSource returns a copy of c using the given overdue source.
func (c Config) WithOverdueSource(src entity.OverdueSource) Config {
	c.Overdue.Source = src
	return c
}

// Required reports whether the field must resolve for a complete report.
// The overdue column is only required when the measure is read directly.
func (c Config) Required(rule FieldRule) bool {
	if rule.Field == entity.FieldOverdue90Plus {
		return rule.Required && c.Overdue.Source == entity.OverdueSourceColumn
	}
	return rule.Required
}

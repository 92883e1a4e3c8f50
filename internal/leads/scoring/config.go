// Package scoring evaluates weighted rules against lead fields.
package scoring

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"leadflow_backend/internal/leads/domain"

	"gopkg.in/yaml.v3"
)

// RequiredActiveWeight is the total weight active fields must carry.
const RequiredActiveWeight = 100

// FieldConfig holds the weight and rules for one lead field.
type FieldConfig struct {
	FieldName domain.Field `json:"fieldName" yaml:"fieldName"`
	Label     string       `json:"label" yaml:"label"`
	IsActive  bool         `json:"isActive" yaml:"isActive"`
	Weight    int          `json:"weight" yaml:"weight"`
	Rules     []Rule       `json:"rules" yaml:"rules"`
}

// Config is the ordered list of scoring fields.
type Config struct {
	Fields []FieldConfig `json:"fields" yaml:"fields"`
}

// WeightError reports an active weight total other than 100.
type WeightError struct {
	Total int
}

func (e *WeightError) Error() string {
	return fmt.Sprintf("active field weights must sum to %d, got %d", RequiredActiveWeight, e.Total)
}

// FieldError reports a structurally invalid field or rule.
type FieldError struct {
	Index  int
	Field  domain.Field
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("fields[%d] (%s): %s", e.Index, e.Field, e.Reason)
}

// ActiveWeight sums the weights of active fields.
func (c Config) ActiveWeight() int {
	total := 0
	for _, f := range c.Fields {
		if f.IsActive {
			total += f.Weight
		}
	}
	return total
}

// Validate checks structure first, then the active weight total. It returns a
// *FieldError or a *WeightError.
func (c Config) Validate() error {
	if err := c.ValidateStructure(); err != nil {
		return err
	}
	if total := c.ActiveWeight(); total != RequiredActiveWeight {
		return &WeightError{Total: total}
	}
	return nil
}

// ValidateStructure checks everything except the active weight total. Drafts
// used for previews only need to pass this.
func (c Config) ValidateStructure() error {
	active := make(map[domain.Field]bool, len(c.Fields))
	for i, f := range c.Fields {
		if !f.FieldName.Valid() {
			return &FieldError{Index: i, Field: f.FieldName, Reason: "unknown field"}
		}
		if f.Weight < 0 || f.Weight > 100 {
			return &FieldError{Index: i, Field: f.FieldName, Reason: "weight must be between 0 and 100"}
		}
		if f.IsActive {
			if active[f.FieldName] {
				return &FieldError{Index: i, Field: f.FieldName, Reason: "field is active more than once"}
			}
			active[f.FieldName] = true
		}
		for j, r := range f.Rules {
			if reason := ruleProblem(r); reason != "" {
				return &FieldError{Index: i, Field: f.FieldName, Reason: fmt.Sprintf("rules[%d]: %s", j, reason)}
			}
		}
	}
	return nil
}

func ruleProblem(r Rule) string {
	switch c := r.Condition.(type) {
	case nil:
		return "condition is required"
	case Equals:
		if isBlank(c.Value) {
			return "value is required"
		}
	case Contains:
		if isBlank(c.Value) {
			return "value is required"
		}
	case IsOneOf:
		if len(c.Values) == 0 {
			return "isOneOf needs at least one value"
		}
	}
	return ""
}

// Clone returns a deep copy safe to hand to another goroutine.
func (c Config) Clone() Config {
	out := Config{Fields: make([]FieldConfig, len(c.Fields))}
	for i, f := range c.Fields {
		f.Rules = slices.Clone(f.Rules)
		for j, r := range f.Rules {
			if oneOf, ok := r.Condition.(IsOneOf); ok {
				f.Rules[j].Condition = IsOneOf{Values: slices.Clone(oneOf.Values)}
			}
		}
		out.Fields[i] = f
	}
	return out
}

// Default is the built-in configuration used when no file is configured.
func Default() Config {
	return Config{Fields: []FieldConfig{
		{FieldName: domain.FieldIndustry, Label: "Industry", IsActive: true, Weight: 30, Rules: []Rule{
			{Condition: IsOneOf{Values: []string{"Technology", "Finance", "Healthcare"}}, Points: 100},
			{Condition: Equals{Value: "Manufacturing"}, Points: 60},
		}},
		{FieldName: domain.FieldSource, Label: "Lead Source", IsActive: true, Weight: 25, Rules: []Rule{
			{Condition: Equals{Value: "Referral"}, Points: 100},
			{Condition: Equals{Value: "Website"}, Points: 70},
			{Condition: Contains{Value: "event"}, Points: 50},
		}},
		{FieldName: domain.FieldTitle, Label: "Job Title", IsActive: true, Weight: 25, Rules: []Rule{
			{Condition: Contains{Value: "chief"}, Points: 100},
			{Condition: Contains{Value: "director"}, Points: 80},
			{Condition: Contains{Value: "manager"}, Points: 50},
		}},
		{FieldName: domain.FieldCompany, Label: "Company", IsActive: true, Weight: 10, Rules: []Rule{
			{Condition: IsNotEmpty{}, Points: 100},
		}},
		{FieldName: domain.FieldPhone, Label: "Phone", IsActive: true, Weight: 10, Rules: []Rule{
			{Condition: IsNotEmpty{}, Points: 100},
		}},
		{FieldName: domain.FieldEmail, Label: "Email", IsActive: false, Weight: 0, Rules: []Rule{
			{Condition: IsNotEmpty{}, Points: 100},
		}},
		{FieldName: domain.FieldCategory, Label: "Category", IsActive: false, Weight: 0},
		{FieldName: domain.FieldNotes, Label: "Notes", IsActive: false, Weight: 0, Rules: []Rule{
			{Condition: IsNotEmpty{}, Points: 100},
		}},
	}}
}

// LoadFile reads a YAML configuration and validates it. An empty path yields Default().
func LoadFile(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read scoring config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse scoring config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid scoring config %s: %w", path, err)
	}
	return cfg, nil
}

// IsWeightError reports whether err carries a *WeightError and returns it.
func IsWeightError(err error) (*WeightError, bool) {
	var we *WeightError
	ok := errors.As(err, &we)
	return we, ok
}

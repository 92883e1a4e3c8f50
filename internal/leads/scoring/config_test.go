package scoring

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"leadflow_backend/internal/leads/domain"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("expected default config to be valid, got %v", err)
	}
}

func TestValidateRejectsWrongActiveWeight(t *testing.T) {
	cfg := Default()
	cfg.Fields[0].Weight = 20

	err := cfg.Validate()
	we, ok := IsWeightError(err)
	if !ok {
		t.Fatalf("expected WeightError, got %v", err)
	}
	if we.Total != 90 {
		t.Fatalf("expected total 90, got %d", we.Total)
	}
}

func TestValidateIgnoresInactiveWeights(t *testing.T) {
	cfg := Default()
	cfg.Fields = append(cfg.Fields, FieldConfig{FieldName: domain.FieldStatus, IsActive: false, Weight: 100})

	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected inactive weight to be ignored, got %v", err)
	}
}

func TestValidateStructure(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown field", func(c *Config) { c.Fields[0].FieldName = "score" }},
		{"weight above 100", func(c *Config) { c.Fields[0].Weight = 101 }},
		{"negative weight", func(c *Config) { c.Fields[5].Weight = -1 }},
		{"duplicate active field", func(c *Config) { c.Fields[1].FieldName = domain.FieldIndustry }},
		{"empty isOneOf", func(c *Config) { c.Fields[0].Rules[0].Condition = IsOneOf{} }},
		{"blank equals", func(c *Config) { c.Fields[0].Rules[1].Condition = Equals{Value: " "} }},
		{"missing condition", func(c *Config) { c.Fields[0].Rules[0].Condition = nil }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)

			var fe *FieldError
			if err := cfg.Validate(); !errors.As(err, &fe) {
				t.Fatalf("expected FieldError, got %v", err)
			}
		})
	}
}

func TestRuleJSONWireForm(t *testing.T) {
	raw := `{"fields":[{"fieldName":"source","label":"Source","isActive":true,"weight":100,"rules":[
		{"condition":"isOneOf","value":["Referral","Website"],"points":80},
		{"condition":"isOneOf","value":"Event, Webinar","points":40},
		{"condition":"contains","value":"partner","points":20},
		{"condition":"isNotEmpty","points":5}
	]}]}`

	var cfg Config
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	rules := cfg.Fields[0].Rules
	if oneOf, ok := rules[1].Condition.(IsOneOf); !ok || len(oneOf.Values) != 2 || oneOf.Values[1] != "Webinar" {
		t.Fatalf("expected comma separated isOneOf to split, got %#v", rules[1].Condition)
	}
	if _, ok := rules[3].Condition.(IsNotEmpty); !ok {
		t.Fatalf("expected IsNotEmpty, got %#v", rules[3].Condition)
	}

	out, err := json.Marshal(rules[3])
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"condition":"isNotEmpty","points":5}` {
		t.Fatalf("unexpected wire form %s", out)
	}
}

func TestRuleJSONRejectsUnknownCondition(t *testing.T) {
	var r Rule
	if err := json.Unmarshal([]byte(`{"condition":"startsWith","value":"a","points":1}`), &r); err == nil {
		t.Fatal("expected unknown condition to fail")
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scoring.yaml")
	content := `fields:
  - fieldName: industry
    label: Industry
    isActive: true
    weight: 100
    rules:
      - condition: equals
        value: Technology
        points: 100
      - condition: isOneOf
        value: [Finance, Healthcare]
        points: 50
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := ComputeScore(domain.LeadFields{Industry: "Healthcare"}, cfg); got != 50 {
		t.Fatalf("expected 50, got %d", got)
	}

	if _, err := LoadFile(""); err != nil {
		t.Fatalf("expected empty path to return default, got %v", err)
	}
}

func TestCloneIsDeep(t *testing.T) {
	cfg := Config{Fields: []FieldConfig{{
		FieldName: domain.FieldSource, IsActive: true, Weight: 100,
		Rules: []Rule{{Condition: IsOneOf{Values: []string{"Referral"}}, Points: 10}},
	}}}

	clone := cfg.Clone()
	clone.Fields[0].Rules[0].Condition.(IsOneOf).Values[0] = "Changed"
	clone.Fields[0].Weight = 1

	if cfg.Fields[0].Rules[0].Condition.(IsOneOf).Values[0] != "Referral" || cfg.Fields[0].Weight != 100 {
		t.Fatal("clone shares state with original")
	}
}

package scoring

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Rule awards Points when its Condition matches. Points are a share of the
// field weight: 100 points on a 30-weight field contributes 30.
type Rule struct {
	Condition Condition
	Points    int
}

type ruleWire struct {
	Condition string `json:"condition" yaml:"condition"`
	Value     any    `json:"value,omitempty" yaml:"value,omitempty"`
	Points    int    `json:"points" yaml:"points"`
}

func (r Rule) toWire() ruleWire {
	w := ruleWire{Points: r.Points}
	if r.Condition != nil {
		w.Condition = r.Condition.Kind()
		w.Value = conditionValue(r.Condition)
	}
	return w
}

func (r *Rule) fromWire(w ruleWire) error {
	cond, err := buildCondition(w.Condition, w.Value)
	if err != nil {
		return err
	}
	r.Condition = cond
	r.Points = w.Points
	return nil
}

// MarshalJSON emits {"condition","value","points"}.
func (r Rule) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.toWire())
}

// UnmarshalJSON accepts {"condition","value","points"}.
func (r *Rule) UnmarshalJSON(data []byte) error {
	var w ruleWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if err := r.fromWire(w); err != nil {
		return fmt.Errorf("rule: %w", err)
	}
	return nil
}

// MarshalYAML mirrors the JSON wire form.
func (r Rule) MarshalYAML() (any, error) {
	return r.toWire(), nil
}

// UnmarshalYAML mirrors the JSON wire form.
func (r *Rule) UnmarshalYAML(node *yaml.Node) error {
	var w ruleWire
	if err := node.Decode(&w); err != nil {
		return err
	}
	if err := r.fromWire(w); err != nil {
		return fmt.Errorf("rule at line %d: %w", node.Line, err)
	}
	return nil
}

package scoring

import (
	"math"

	"leadflow_backend/internal/leads/domain"
)

// ComputeScore returns the lead's score under cfg. For each active field the
// points of every matching rule are summed, scaled by weight/100, and the
// total is rounded once at the end. The result is not clamped.
func ComputeScore(lead domain.LeadFields, cfg Config) int {
	total := 0.0
	for _, f := range cfg.Fields {
		if !f.IsActive {
			continue
		}
		total += scaled(fieldTally(lead.Value(f.FieldName), f.Rules), f.Weight)
	}
	return round(total)
}

// FieldContribution explains one active field's share of a score.
type FieldContribution struct {
	FieldName    domain.Field `json:"fieldName"`
	Label        string       `json:"label"`
	Weight       int          `json:"weight"`
	Value        string       `json:"value"`
	MatchedRules []int        `json:"matchedRules"`
	Points       int          `json:"points"`
	Contribution float64      `json:"contribution"`
}

// Result is a score together with its per-field breakdown.
type Result struct {
	Score  int                 `json:"score"`
	Fields []FieldContribution `json:"fields"`
}

// Breakdown computes the same score as ComputeScore and records how each
// active field contributed.
func Breakdown(lead domain.LeadFields, cfg Config) Result {
	res := Result{Fields: make([]FieldContribution, 0, len(cfg.Fields))}
	total := 0.0
	for _, f := range cfg.Fields {
		if !f.IsActive {
			continue
		}
		value := lead.Value(f.FieldName)
		fc := FieldContribution{
			FieldName:    f.FieldName,
			Label:        f.Label,
			Weight:       f.Weight,
			Value:        value,
			MatchedRules: []int{},
		}
		for i, r := range f.Rules {
			if matches(r, value) {
				fc.MatchedRules = append(fc.MatchedRules, i)
				fc.Points += r.Points
			}
		}
		fc.Contribution = scaled(fc.Points, f.Weight)
		total += fc.Contribution
		res.Fields = append(res.Fields, fc)
	}
	res.Score = round(total)
	return res
}

func fieldTally(value string, rules []Rule) int {
	tally := 0
	for _, r := range rules {
		if matches(r, value) {
			tally += r.Points
		}
	}
	return tally
}

func matches(r Rule, value string) bool {
	return r.Condition != nil && r.Condition.Match(value)
}

func scaled(points, weight int) float64 {
	return float64(points) * float64(weight) / 100
}

func round(total float64) int {
	return int(math.Round(total))
}

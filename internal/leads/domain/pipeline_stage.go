package domain

import "strings"

// DefaultStages is the pipeline used until stages are customized.
var DefaultStages = []string{
	"New",
	"Contacted",
	"Qualified",
	"Proposal",
	"Negotiation",
	"Won",
	"Lost",
}

// StageSet is an ordered snapshot of pipeline stage names.
type StageSet []string

// First returns the entry stage, or "" when no stages exist.
func (s StageSet) First() string {
	if len(s) == 0 {
		return ""
	}
	return s[0]
}

// Resolve matches raw case-insensitively and returns the canonical stage name.
func (s StageSet) Resolve(raw string) (string, bool) {
	needle := strings.TrimSpace(raw)
	if needle == "" {
		return "", false
	}
	for _, stage := range s {
		if strings.EqualFold(stage, needle) {
			return stage, true
		}
	}
	return "", false
}

// Contains reports whether raw names a stage in the set.
func (s StageSet) Contains(raw string) bool {
	_, ok := s.Resolve(raw)
	return ok
}

// ResolveOrFirst returns the canonical stage for raw, falling back to First.
func (s StageSet) ResolveOrFirst(raw string) string {
	if stage, ok := s.Resolve(raw); ok {
		return stage
	}
	return s.First()
}

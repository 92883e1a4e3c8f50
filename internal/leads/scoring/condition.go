package scoring

import (
	"fmt"
	"slices"
	"strings"
)

// Condition kinds as they appear on the wire.
const (
	KindEquals     = "equals"
	KindContains   = "contains"
	KindIsOneOf    = "isOneOf"
	KindIsNotEmpty = "isNotEmpty"
)

// Condition is the closed set of rule predicates. Only the four variants in
// this package implement it.
type Condition interface {
	// Match evaluates the predicate against a lead field value.
	Match(value string) bool
	// Kind returns the wire name of the condition.
	Kind() string
	sealed()
}

// Equals matches the value exactly, case-sensitive.
type Equals struct {
	Value string
}

// Contains matches a case-insensitive substring.
type Contains struct {
	Value string
}

// IsOneOf matches exact membership in Values.
type IsOneOf struct {
	Values []string
}

// IsNotEmpty matches any value that is not blank.
type IsNotEmpty struct{}

func (c Equals) Match(value string) bool {
	return !isBlank(value) && value == c.Value
}

func (c Contains) Match(value string) bool {
	return !isBlank(value) && strings.Contains(strings.ToLower(value), strings.ToLower(c.Value))
}

func (c IsOneOf) Match(value string) bool {
	return !isBlank(value) && slices.Contains(c.Values, value)
}

func (IsNotEmpty) Match(value string) bool {
	return !isBlank(value)
}

func (Equals) Kind() string     { return KindEquals }
func (Contains) Kind() string   { return KindContains }
func (IsOneOf) Kind() string    { return KindIsOneOf }
func (IsNotEmpty) Kind() string { return KindIsNotEmpty }

func (Equals) sealed()     {}
func (Contains) sealed()   {}
func (IsOneOf) sealed()    {}
func (IsNotEmpty) sealed() {}

func isBlank(value string) bool {
	return strings.TrimSpace(value) == ""
}

// buildCondition turns a wire (kind, value) pair into a Condition. value may be
// a string, a list of strings, or absent for isNotEmpty. A comma separated
// string is accepted for isOneOf.
func buildCondition(kind string, value any) (Condition, error) {
	switch kind {
	case KindEquals:
		s, err := stringValue(value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", kind, err)
		}
		return Equals{Value: s}, nil
	case KindContains:
		s, err := stringValue(value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", kind, err)
		}
		return Contains{Value: s}, nil
	case KindIsOneOf:
		values, err := listValue(value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", kind, err)
		}
		return IsOneOf{Values: values}, nil
	case KindIsNotEmpty:
		return IsNotEmpty{}, nil
	default:
		return nil, fmt.Errorf("unknown condition %q", kind)
	}
}

// conditionValue is the inverse of buildCondition's value decoding.
func conditionValue(c Condition) any {
	switch v := c.(type) {
	case Equals:
		return v.Value
	case Contains:
		return v.Value
	case IsOneOf:
		return slices.Clone(v.Values)
	default:
		return nil
	}
}

func stringValue(value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case []any, []string:
		return "", fmt.Errorf("expected a single value, got a list")
	default:
		return fmt.Sprint(v), nil
	}
}

func listValue(value any) ([]string, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case string:
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		return out, nil
	case []string:
		return slices.Clone(v), nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				s = fmt.Sprint(item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected a list of strings")
	}
}

package phone

import "testing"

func TestNormalizeE164(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		region string
		want   string
	}{
		{name: "empty", input: "  ", region: "US", want: ""},
		{name: "us national", input: "(415) 555-2671", region: "US", want: "+14155552671"},
		{name: "already international", input: "+1 415 555 2671", region: "NL", want: "+14155552671"},
		{name: "default region", input: "415-555-2671", region: "", want: "+14155552671"},
		{name: "unparseable kept", input: "call me", region: "US", want: "call me"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeE164(tc.input, tc.region); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

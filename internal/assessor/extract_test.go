package assessor

import "testing"

func TestExtractObject(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{"bare object", `{"a":1}`, `{"a":1}`, false},
		{"surrounded by prose", `noise {"overall_score": 42} trailing`, `{"overall_score": 42}`, false},
		{"markdown fence", "```json\n{\"a\":1}\n```", `{"a":1}`, false},
		{"nested braces", `x {"a":{"b":2}} y`, `{"a":{"b":2}}`, false},
		{"no braces", "plain text only", "", true},
		{"close before open", "} then {", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractObject(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("extractObject(%q) = %q, want error", tt.raw, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("extractObject(%q): %v", tt.raw, err)
			}
			if string(got) != tt.want {
				t.Errorf("extractObject(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestExtractArray(t *testing.T) {
	got, err := extractArray(`Here you go: [1, 2, [3]] -- done`)
	if err != nil {
		t.Fatalf("extractArray: %v", err)
	}
	if string(got) != "[1, 2, [3]]" {
		t.Errorf("extractArray = %q", got)
	}

	if _, err := extractArray("no brackets"); err == nil {
		t.Error("extractArray should fail without brackets")
	}
}

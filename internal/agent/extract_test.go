package agent

import (
	"testing"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "clean JSON object",
			input: `{"satisfied": true, "directive": "done"}`,
			want:  `{"satisfied": true, "directive": "done"}`,
		},
		{
			name:  "clean JSON array",
			input: `[{"id": 1}, {"id": 2}]`,
			want:  `[{"id": 1}, {"id": 2}]`,
		},
		{
			name:  "JSON object with trailing prose",
			input: `{"satisfied": false} and some extra text`,
			want:  `{"satisfied": false}`,
		},
		{
			name:  "prose with embedded JSON object",
			input: `Here is my verdict: {"satisfied": false, "directive": "fix the loop"}`,
			want:  `{"satisfied": false, "directive": "fix the loop"}`,
		},
		{
			name:  "markdown code fence with JSON object",
			input: "```json\n{\"satisfied\": true}\n```",
			want:  `{"satisfied": true}`,
		},
		{
			name:  "nested braces",
			input: `{"outer": {"inner": {"deep": true}}}`,
			want:  `{"outer": {"inner": {"deep": true}}}`,
		},
		{
			name:  "braces inside string values",
			input: `{"directive": "wrap it in { and }"}`,
			want:  `{"directive": "wrap it in { and }"}`,
		},
		{
			name:  "escaped quotes inside string values",
			input: `{"directive": "use \"repr\" here"}`,
			want:  `{"directive": "use \"repr\" here"}`,
		},
		{
			name:  "no JSON at all",
			input: "The goal has been achieved.",
			want:  "",
		},
		{
			name:  "unbalanced JSON",
			input: `{"satisfied": true`,
			want:  "",
		},
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
		{
			name:  "whitespace only",
			input: "   \n\t  ",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractJSON(tt.input)
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

// Package judge builds judgment prompts and classifies judge verdicts.
package judge

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/coderloop/coderloop/internal/agent"
	"github.com/coderloop/coderloop/internal/domain"
)

// Input carries everything the judge sees for one iteration.
type Input struct {
	Plan      string
	Artifact  domain.Artifact
	Critique  domain.Critique
	Iteration int
	// FinalPass is true on the last permitted iteration. It changes only
	// the prompt framing (conclude instead of revise); the verdict still
	// decides Satisfied.
	FinalPass bool
	// History is the rendered transcript snapshot taken before this
	// judgment's own entry is appended.
	History string
}

// BuildPrompt assembles the judgment prompt from the iteration state.
func BuildPrompt(in Input) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Plan:\n%s\n\n", in.Plan)
	fmt.Fprintf(&b, "Python Code:\n%s\n\n", in.Artifact.Source)
	fmt.Fprintf(&b, "Execution Output:\n%s\n\n", in.Artifact.Exec.Combined())
	fmt.Fprintf(&b, "Critical feedback:\n%s\n\n", in.Critique.Critical)
	fmt.Fprintf(&b, "Favorable feedback:\n%s\n\n", in.Critique.Favorable)

	b.WriteString(`Based on the above, determine whether the code achieves the plan. If a
syntax or compilation error is present, prioritize it as the main issue that
must be fixed immediately. Do not invent issues or strengths beyond what is
provided.`)

	if in.History != "" {
		fmt.Fprintf(&b, "\n\nConversation History:\n%s", in.History)
	}

	fmt.Fprintf(&b, "\n\nThis is review iteration %d.", in.Iteration)

	if in.FinalPass {
		b.WriteString(`
This is your final review; no further revision is possible. Conclude the
process with a final summary verdict rather than revision instructions.`)
	}

	return b.String()
}

// verdict is the structured reply the judge role is instructed to emit.
// Satisfied is a pointer so a JSON blob without the field is rejected
// rather than silently read as false.
type verdict struct {
	Satisfied *bool  `json:"satisfied"`
	Directive string `json:"directive"`
}

// Parse classifies the raw judge output into a Judgment. The structured
// JSON verdict is authoritative; the legacy marker-phrase scan ("achieved",
// "final summary") remains only as a fallback for backends that ignore the
// JSON instruction.
func Parse(raw string, finalPass bool) domain.Judgment {
	satisfied, directive := classify(raw)
	return domain.Judgment{
		State:     state(satisfied, finalPass),
		Satisfied: satisfied,
		Directive: directive,
	}
}

func classify(raw string) (bool, string) {
	if js := agent.ExtractJSON(raw); js != "" {
		var v verdict
		if err := json.Unmarshal([]byte(js), &v); err == nil && v.Satisfied != nil {
			directive := strings.TrimSpace(v.Directive)
			if directive == "" {
				directive = strings.TrimSpace(raw)
			}
			return *v.Satisfied, directive
		}
	}

	// Marker fallback: heuristic, kept for compatibility only
	lower := strings.ToLower(raw)
	satisfied := strings.Contains(lower, "achieved") || strings.Contains(lower, "final summary")
	return satisfied, strings.TrimSpace(raw)
}

func state(satisfied, finalPass bool) domain.JudgmentState {
	switch {
	case satisfied:
		return domain.JudgmentSatisfied
	case finalPass:
		return domain.JudgmentFinalForced
	default:
		return domain.JudgmentUnsatisfied
	}
}

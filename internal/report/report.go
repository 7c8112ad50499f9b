// Package report generates and renders the end-of-run summary.
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/coderloop/coderloop/internal/agent"
	"github.com/coderloop/coderloop/internal/transcript"
)

// reporterInstructions shows the reporter the exact bullet format wanted,
// by example.
const reporterInstructions = `Please produce a detailed report summarizing the conversation between all roles in the following format:

- **Planner to Coder**: Planner provided a detailed outline for a task involving generating and visualizing a positively skewed distribution.
- **Coder to Reviewers (Iteration 1)**: Coder shared the generated code and its execution output for feedback.
- **Critic/Advocate (Iteration 1)**: Provided critical and positive feedback on the Coder's initial output.
- **Judge to Coder (Iteration 1)**: Judge acknowledged the script's effectiveness but pointed out a runtime error, suggesting a solution.
- **Coder to Reviewers (Iteration 2)**: Coder submitted the revised code and execution output after addressing Judge's feedback.
- **Critic/Advocate (Iteration 2)**: Offered further critical and positive feedback on the revised code.
- **Judge to Coder (Iteration 2)**: Judge confirmed the script now fully meets the Planner's outline, with improvements and no critical errors.
- **Judge**: Declared the task completed successfully, achieving the goal set out by the Planner, and ended the pipeline.

Now, using the following conversation log, produce a bullet-point summary of the conversation:`

// Result holds the generated report text. Err records a generation failure;
// when set, Text carries a short in-band description instead of a summary.
type Result struct {
	Text     string
	Err      error
	Duration time.Duration
}

// Generate asks the reporter role to summarize the transcript. Failures are
// folded into the Result so callers can still render and persist something.
func Generate(ctx context.Context, backend agent.Agent, retrier agent.Retrier, log *transcript.Log, opts agent.Options) Result {
	start := time.Now()

	prompt := reporterInstructions + "\n\n" + log.Render()
	text, err := retrier.Generate(ctx, backend, agent.RoleReporter, prompt, opts)
	if err != nil {
		return Result{
			Text:     fmt.Sprintf("report generation failed: %v", err),
			Err:      err,
			Duration: time.Since(start),
		}
	}

	return Result{Text: text, Duration: time.Since(start)}
}

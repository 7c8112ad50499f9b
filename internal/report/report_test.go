package report

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/coderloop/coderloop/internal/agent"
	"github.com/coderloop/coderloop/internal/transcript"
)

// capturingAgent records the prompt it was called with.
type capturingAgent struct {
	prompt string
	err    error
}

func (a *capturingAgent) Name() string       { return "capturing" }
func (a *capturingAgent) IsAvailable() error { return nil }

func (a *capturingAgent) Generate(ctx context.Context, role agent.Role, prompt string, opts agent.Options) (string, error) {
	a.prompt = prompt
	if a.err != nil {
		return "", a.err
	}
	return "- **Planner to Coder**: outlined the task.", nil
}

func testLog() *transcript.Log {
	log := transcript.New("run-1")
	log.Append("plan", "print a greeting")
	log.Append("judgment", "The goal has been achieved.")
	return log
}

func TestGenerate_PromptContainsTranscript(t *testing.T) {
	backend := &capturingAgent{}
	retrier := agent.Retrier{Backoff: time.Millisecond}

	res := Generate(context.Background(), backend, retrier, testLog(), agent.Options{})

	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if !strings.Contains(backend.prompt, "1. [plan] print a greeting") {
		t.Errorf("expected prompt to contain the rendered transcript, got %q", backend.prompt)
	}
	if !strings.Contains(backend.prompt, "bullet-point summary") {
		t.Errorf("expected prompt to carry the sample format instructions")
	}
	if res.Text == "" {
		t.Error("expected non-empty report text")
	}
}

func TestGenerate_FailureIsInBand(t *testing.T) {
	backend := &capturingAgent{err: errors.New("backend exploded")}
	retrier := agent.Retrier{Backoff: time.Millisecond}

	res := Generate(context.Background(), backend, retrier, testLog(), agent.Options{})

	if res.Err == nil {
		t.Fatal("expected recorded error")
	}
	if !strings.Contains(res.Text, "report generation failed") {
		t.Errorf("expected in-band failure text, got %q", res.Text)
	}
}

func TestRender(t *testing.T) {
	res := Result{Text: "- **Judge**: declared the task complete."}
	out := Render(res, Stats{
		RunID:      "run-1",
		Iterations: 2,
		Satisfied:  true,
		Clean:      true,
		Duration:   "12.3s",
	})

	for _, want := range []string{"Run Report", "run-1", "Iterations: 2", "goal achieved", "clean", "12.3s", "declared the task complete"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected rendered report to contain %q", want)
		}
	}
	if !strings.Contains(out, "─") {
		t.Error("expected horizontal rules in the rendered report")
	}
}

func TestRender_UnsatisfiedUncleanRun(t *testing.T) {
	res := Result{Text: "report generation failed: backend exploded", Err: errors.New("backend exploded")}
	out := Render(res, Stats{
		RunID:      "run-2",
		Iterations: 3,
		Satisfied:  false,
		Clean:      false,
	})

	for _, want := range []string{"iteration bound reached", "unclean", "report generation failed"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected rendered report to contain %q", want)
		}
	}
}

// Package runner orchestrates the plan, generate, critique, judge loop.
package runner

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/coderloop/coderloop/internal/agent"
	"github.com/coderloop/coderloop/internal/critique"
	"github.com/coderloop/coderloop/internal/domain"
	"github.com/coderloop/coderloop/internal/judge"
	"github.com/coderloop/coderloop/internal/sandbox"
	"github.com/coderloop/coderloop/internal/store"
	"github.com/coderloop/coderloop/internal/terminal"
	"github.com/coderloop/coderloop/internal/transcript"
)

// Config holds runner configuration.
type Config struct {
	// MaxIterations bounds the revision loop (must be >= 1).
	MaxIterations int
	// ExecTimeout bounds each sandbox run.
	ExecTimeout time.Duration
	// GenTimeout bounds each backend call attempt.
	GenTimeout time.Duration
	// Retries is the number of extra attempts per backend call.
	Retries int
	// Temperature is passed through to the backend.
	Temperature float64
	// Verbose disables spinners in favor of plain phase logs.
	Verbose bool
}

// Runner drives one request through the full pipeline.
type Runner struct {
	config  Config
	backend agent.Agent
	sandbox sandbox.Sandbox
	store   store.Store
	logger  *terminal.Logger
	retrier agent.Retrier
}

// New creates a runner. The store may be nil when persistence is not wanted.
func New(cfg Config, backend agent.Agent, sb sandbox.Sandbox, st store.Store, logger *terminal.Logger) (*Runner, error) {
	if backend == nil {
		return nil, fmt.Errorf("runner requires an agent backend")
	}
	if sb == nil {
		return nil, fmt.Errorf("runner requires a sandbox")
	}
	if cfg.MaxIterations < 1 {
		return nil, fmt.Errorf("max iterations must be >= 1, got %d", cfg.MaxIterations)
	}
	if logger == nil {
		logger = terminal.NewLogger()
	}

	r := &Runner{
		config:  cfg,
		backend: backend,
		sandbox: sb,
		store:   st,
		logger:  logger,
	}
	r.retrier = agent.Retrier{
		Timeout: cfg.GenTimeout,
		Retries: cfg.Retries,
		OnRetry: func(attempt int, err error, delay time.Duration) {
			logger.Logf(terminal.StyleWarning, "backend call failed (attempt %d): %v, retrying in %s", attempt, err, delay)
		},
	}
	return r, nil
}

// RunResult is the outcome of one complete run.
type RunResult struct {
	// Log is the final transcript snapshot.
	Log []transcript.Entry
	// Transcript is the live log, for report generation.
	Transcript *transcript.Log
	// FinalArtifact is the last artifact produced, whether or not the
	// judge was satisfied with it.
	FinalArtifact domain.Artifact
	// Satisfied reports whether the judge accepted the final artifact.
	Satisfied bool
	// Iterations is the number of loop passes actually executed.
	Iterations int
	// Duration is the wall-clock time of the run.
	Duration time.Duration
}

// Run executes the pipeline for the request. It returns an error only on
// cancellation; backend and sandbox failures are folded into the transcript
// as error text and the loop continues.
func (r *Runner) Run(ctx context.Context, log *transcript.Log, request string) (*RunResult, error) {
	start := time.Now()
	opts := agent.Options{Temperature: r.config.Temperature}

	// Plan once, up front. A planner failure degrades to error text like
	// every other backend failure: the loop still runs and the transcript
	// carries the problem forward.
	r.logger.Log("planning", terminal.StylePhase)
	plan, err := r.withSpinner(ctx, "planning", func(ctx context.Context) (string, error) {
		return r.retrier.Generate(ctx, r.backend, agent.RolePlanner, request, opts)
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		plan = fmt.Sprintf("plan generation failed: %v", err)
		r.logger.Logf(terminal.StyleWarning, "%s", plan)
	}
	r.append(log, "plan", plan)

	critiqueRunner := critique.New(r.backend, r.retrier, opts)

	var (
		artifact  domain.Artifact
		judgment  domain.Judgment
		directive string
	)

	iterations := 0
	for i := 1; i <= r.config.MaxIterations; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		iterations = i
		finalPass := i == r.config.MaxIterations

		r.logger.Logf(terminal.StylePhase, "iteration %d/%d", i, r.config.MaxIterations)

		// Generate (or revise) the artifact
		artifact = r.generate(ctx, plan, directive, opts)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		r.append(log, "generate", generateBody(artifact))

		// A failed generation has no source; keep the last good solution
		// blob instead of overwriting it with nothing.
		if artifact.Source != "" {
			r.persist(store.KeySolution, artifact.Source)
		}

		// Two-way critique
		var crit domain.Critique
		_, _ = r.withSpinner(ctx, "reviewing", func(ctx context.Context) (string, error) {
			crit = critiqueRunner.Run(ctx, artifact)
			return "", nil
		})
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		r.append(log, "critique", critiqueBody(crit))

		r.persist(store.KeyCriticalFeedback, crit.Critical)
		r.persist(store.KeyFavorableFeedback, crit.Favorable)

		// Judge, with the history as it stood before this judgment
		history := log.Render()
		judgment = r.judge(ctx, judge.Input{
			Plan:      plan,
			Artifact:  artifact,
			Critique:  crit,
			Iteration: i,
			FinalPass: finalPass,
			History:   history,
		}, opts)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		r.append(log, "judgment", judgment.Directive)

		if judgment.Satisfied {
			break
		}
		directive = judgment.Directive
	}

	if judgment.Satisfied {
		r.append(log, "success", fmt.Sprintf("goal achieved after %d iteration(s)", iterations))
		r.logger.Logf(terminal.StyleSuccess, "goal achieved after %d iteration(s)", iterations)
	} else {
		r.append(log, "bound-exhausted", fmt.Sprintf("iteration bound of %d reached without a satisfied verdict", r.config.MaxIterations))
		r.logger.Logf(terminal.StyleWarning, "iteration bound of %d reached without a satisfied verdict", r.config.MaxIterations)
	}

	return &RunResult{
		Log:           log.Snapshot(),
		Transcript:    log,
		FinalArtifact: artifact,
		Satisfied:     judgment.Satisfied,
		Iterations:    iterations,
		Duration:      time.Since(start),
	}, nil
}

// generate asks the coder for source and executes it. A backend failure
// yields an artifact whose execution result carries the error text, so the
// loop keeps going and the reviewers see what happened.
func (r *Runner) generate(ctx context.Context, plan, directive string, opts agent.Options) domain.Artifact {
	prompt := coderPrompt(plan, directive)

	source, err := r.withSpinner(ctx, "generating code", func(ctx context.Context) (string, error) {
		return r.retrier.Generate(ctx, r.backend, agent.RoleCoder, prompt, opts)
	})
	if err != nil {
		return domain.Artifact{
			Source: "",
			Exec: domain.ExecutionResult{
				Stderr:   fmt.Sprintf("code generation failed: %v", err),
				ExitCode: -1,
			},
		}
	}

	var exec domain.ExecutionResult
	_, _ = r.withSpinner(ctx, "executing", func(ctx context.Context) (string, error) {
		exec = r.sandbox.Execute(ctx, source)
		return "", nil
	})

	return domain.Artifact{Source: source, Exec: exec}
}

// judge asks the judge role for a verdict. A backend failure becomes an
// unsatisfied judgment whose directive carries the error text.
func (r *Runner) judge(ctx context.Context, in judge.Input, opts agent.Options) domain.Judgment {
	prompt := judge.BuildPrompt(in)

	raw, err := r.withSpinner(ctx, "judging", func(ctx context.Context) (string, error) {
		return r.retrier.Generate(ctx, r.backend, agent.RoleJudge, prompt, opts)
	})
	if err != nil {
		raw = fmt.Sprintf("judgment failed: %v", err)
	}

	return judge.Parse(raw, in.FinalPass)
}

// append records a transcript entry and echoes it as it happens, so the
// operator sees the conversation stream rather than only the final report.
func (r *Runner) append(log *transcript.Log, label, body string) {
	e := log.Append(label, body)
	r.logger.Logf(terminal.StyleDim, "%d. [%s]", e.Sequence, e.Label)
	if r.config.Verbose && body != "" {
		fmt.Fprintln(os.Stderr, body)
	}
}

// persist writes a blob to the store, logging but never propagating failures.
func (r *Runner) persist(key, content string) {
	if r.store == nil {
		return
	}
	if err := r.store.Write(key, content); err != nil {
		r.logger.Logf(terminal.StyleWarning, "failed to persist %s: %v", key, err)
	}
}

// withSpinner runs fn with a phase spinner unless verbose logging is on.
func (r *Runner) withSpinner(ctx context.Context, label string, fn func(context.Context) (string, error)) (string, error) {
	if r.config.Verbose {
		r.logger.Log(label, terminal.StyleDim)
		return fn(ctx)
	}

	spinCtx, stopSpinner := context.WithCancel(ctx)
	spinnerDone := make(chan struct{})
	go func() {
		defer close(spinnerDone)
		terminal.NewPhaseSpinner(label).Run(spinCtx)
	}()

	out, err := fn(ctx)

	stopSpinner()
	<-spinnerDone
	return out, err
}

func coderPrompt(plan, directive string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Plan:\n%s", plan)
	if directive != "" {
		fmt.Fprintf(&b, "\n\nRevision instructions from the judge:\n%s", directive)
		b.WriteString("\n\nModify the previous approach according to these instructions.")
	}
	return b.String()
}

func generateBody(art domain.Artifact) string {
	var b strings.Builder
	fmt.Fprintf(&b, "produced %d bytes of source", len(art.Source))
	switch {
	case art.Exec.SyntaxError != "":
		b.WriteString("; execution blocked by a syntax error")
	case art.Exec.TimedOut:
		b.WriteString("; execution timed out")
	case art.Exec.ExitCode != 0:
		fmt.Fprintf(&b, "; execution exited with code %d", art.Exec.ExitCode)
	default:
		b.WriteString("; execution completed cleanly")
	}
	return b.String()
}

// critiqueBody summarizes the join outcome. The review texts themselves go
// to the judgment call, not the transcript.
func critiqueBody(crit domain.Critique) string {
	return fmt.Sprintf("both reviewers responded (critical %d chars, favorable %d chars)",
		len(crit.Critical), len(crit.Favorable))
}

// Package critique runs the two-way review fan-out.
package critique

import (
	"context"
	"fmt"
	"sync"

	"github.com/coderloop/coderloop/internal/agent"
	"github.com/coderloop/coderloop/internal/domain"
)

// Coordinator invokes the critic and advocate roles concurrently against the
// same artifact and joins both results. The join is unconditional: both
// calls always complete (or fail) before Run returns, and each slot falls
// back to its own error text independently.
type Coordinator struct {
	backend agent.Agent
	retrier agent.Retrier
	opts    agent.Options
}

// New creates a coordinator that calls both reviewer roles on the backend.
func New(backend agent.Agent, retrier agent.Retrier, opts agent.Options) *Coordinator {
	return &Coordinator{
		backend: backend,
		retrier: retrier,
		opts:    opts,
	}
}

// Run executes both reviewer calls concurrently and returns the joined
// critique. Each goroutine writes only its own slot, so no synchronization
// beyond the join is needed.
func (c *Coordinator) Run(ctx context.Context, art domain.Artifact) domain.Critique {
	var out domain.Critique

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		out.Critical = c.call(ctx, agent.RoleCritic, criticPrompt(art), "critical review")
	}()
	go func() {
		defer wg.Done()
		out.Favorable = c.call(ctx, agent.RoleAdvocate, advocatePrompt(art), "favorable review")
	}()

	wg.Wait()
	return out
}

// call runs one reviewer role, converting any failure into an in-band error
// description so the slot is never empty-by-absence.
func (c *Coordinator) call(ctx context.Context, role agent.Role, prompt, what string) string {
	text, err := c.retrier.Generate(ctx, c.backend, role, prompt, c.opts)
	if err != nil {
		return fmt.Sprintf("%s failed: %v", what, err)
	}
	return text
}

func criticPrompt(art domain.Artifact) string {
	return fmt.Sprintf(`Please critique the following Python script and its execution output:

--- CODE ---
%s

--- EXECUTION OUTPUT ---
%s

Provide a detailed, purely critical evaluation, prioritizing any syntax or
compilation errors.`, art.Source, art.Exec.Combined())
}

func advocatePrompt(art domain.Artifact) string {
	return fmt.Sprintf(`Please praise the following Python script and its execution output:

--- CODE ---
%s

--- EXECUTION OUTPUT ---
%s

Provide a detailed, purely positive evaluation.`, art.Source, art.Exec.Combined())
}

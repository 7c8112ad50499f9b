// Package agent provides LLM agent backends for text generation.
package agent

import "context"

// Options carries per-call generation settings.
type Options struct {
	// Temperature is passed through to backends that support it; backends
	// without a temperature control ignore it.
	Temperature float64
}

// Agent represents a backend that can generate text for a given role.
// Implementations include CodexAgent and ClaudeAgent.
type Agent interface {
	// Name returns the agent's identifier (e.g., "codex", "claude").
	Name() string

	// IsAvailable checks if the agent's backend CLI is installed and
	// accessible. Returns an error if the agent cannot be used.
	IsAvailable() error

	// Generate produces text for the given role and prompt. The role's
	// system instruction is prepended to the prompt before the call.
	// Returns an error when the backend fails or exits non-zero; callers
	// are expected to convert failures into in-band content.
	Generate(ctx context.Context, role Role, prompt string, opts Options) (string, error)
}

package agent

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Compile-time interface check
var _ Agent = (*ClaudeAgent)(nil)

// ClaudeAgent implements the Agent interface for the Claude CLI backend.
type ClaudeAgent struct{}

// NewClaudeAgent creates a new ClaudeAgent instance.
func NewClaudeAgent() *ClaudeAgent {
	return &ClaudeAgent{}
}

// Name returns the agent's identifier.
func (c *ClaudeAgent) Name() string {
	return "claude"
}

// IsAvailable checks if the claude CLI is installed and accessible.
func (c *ClaudeAgent) IsAvailable() error {
	_, err := exec.LookPath("claude")
	if err != nil {
		return fmt.Errorf("claude CLI not found in PATH: %w", err)
	}
	return nil
}

// Generate runs one generation call using 'claude --print -' with the role
// instruction and prompt piped via stdin (avoids ARG_MAX limits on large
// prompts). The claude CLI exposes no temperature control, so opts are
// ignored here.
func (c *ClaudeAgent) Generate(ctx context.Context, role Role, prompt string, _ Options) (string, error) {
	fullPrompt := role.Instruction() + "\n\n" + prompt

	result, err := runCommand(ctx, "claude", []string{"--print", "-"}, strings.NewReader(fullPrompt))
	if err != nil {
		return "", fmt.Errorf("claude %s call: %w", role, err)
	}
	if result.ExitCode != 0 {
		return "", fmt.Errorf("claude %s call exited %d: %s", role, result.ExitCode, firstLine(result.Stderr))
	}

	text := strings.TrimSpace(result.Stdout)
	if text == "" {
		return "", fmt.Errorf("claude %s call returned no output", role)
	}
	return text, nil
}

package agent

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Compile-time interface check
var _ Agent = (*CodexAgent)(nil)

// CodexAgent implements the Agent interface for the Codex CLI backend.
type CodexAgent struct{}

// NewCodexAgent creates a new CodexAgent instance.
func NewCodexAgent() *CodexAgent {
	return &CodexAgent{}
}

// Name returns the agent's identifier.
func (c *CodexAgent) Name() string {
	return "codex"
}

// IsAvailable checks if the codex CLI is installed and accessible.
func (c *CodexAgent) IsAvailable() error {
	_, err := exec.LookPath("codex")
	if err != nil {
		return fmt.Errorf("codex CLI not found in PATH: %w", err)
	}
	return nil
}

// Generate runs one generation call using 'codex exec --color never -' with
// the role instruction and prompt piped via stdin. Temperature is forwarded
// as a -c config override when set.
func (c *CodexAgent) Generate(ctx context.Context, role Role, prompt string, opts Options) (string, error) {
	fullPrompt := role.Instruction() + "\n\n" + prompt

	args := []string{"exec", "--color", "never"}
	if opts.Temperature > 0 {
		args = append(args, "-c", "temperature="+strconv.FormatFloat(opts.Temperature, 'f', -1, 64))
	}
	args = append(args, "-")

	result, err := runCommand(ctx, "codex", args, strings.NewReader(fullPrompt))
	if err != nil {
		return "", fmt.Errorf("codex %s call: %w", role, err)
	}
	if result.ExitCode != 0 {
		return "", fmt.Errorf("codex %s call exited %d: %s", role, result.ExitCode, firstLine(result.Stderr))
	}

	text := strings.TrimSpace(result.Stdout)
	if text == "" {
		return "", fmt.Errorf("codex %s call returned no output", role)
	}
	return text, nil
}

package agent

import (
	"fmt"
	"strings"
)

// DefaultAgent is the backend used when none is configured.
const DefaultAgent = "codex"

// SupportedAgents lists the valid agent backend names.
var SupportedAgents = []string{"codex", "claude"}

// NewAgent creates an agent by name.
func NewAgent(name string) (Agent, error) {
	switch name {
	case "codex":
		return NewCodexAgent(), nil
	case "claude":
		return NewClaudeAgent(), nil
	default:
		return nil, fmt.Errorf("unsupported agent %q (supported: %s)",
			name, strings.Join(SupportedAgents, ", "))
	}
}

// CreateAgent creates an agent by name and verifies its CLI is available
// (fail fast, before any pipeline work starts).
func CreateAgent(name string) (Agent, error) {
	a, err := NewAgent(name)
	if err != nil {
		return nil, err
	}
	if err := a.IsAvailable(); err != nil {
		return nil, fmt.Errorf("%s backend unavailable: %w", name, err)
	}
	return a, nil
}

package critique

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/coderloop/coderloop/internal/agent"
	"github.com/coderloop/coderloop/internal/domain"
)

// fakeAgent returns role-specific responses, optionally failing one role.
type fakeAgent struct {
	failRole agent.Role
}

func (a *fakeAgent) Name() string       { return "fake" }
func (a *fakeAgent) IsAvailable() error { return nil }

func (a *fakeAgent) Generate(ctx context.Context, role agent.Role, prompt string, opts agent.Options) (string, error) {
	if role == a.failRole {
		return "", errors.New("backend exploded")
	}
	switch role {
	case agent.RoleCritic:
		return "the loop bound is off by one", nil
	case agent.RoleAdvocate:
		return "clear structure and good naming", nil
	default:
		return "", errors.New("unexpected role")
	}
}

func testArtifact() domain.Artifact {
	return domain.Artifact{
		Source: "print('hello')",
		Exec:   domain.ExecutionResult{Stdout: "hello"},
	}
}

func TestRun_PopulatesBothSlots(t *testing.T) {
	c := New(&fakeAgent{}, agent.Retrier{Backoff: time.Millisecond}, agent.Options{})

	crit := c.Run(context.Background(), testArtifact())

	if crit.Critical != "the loop bound is off by one" {
		t.Errorf("unexpected critical slot: %q", crit.Critical)
	}
	if crit.Favorable != "clear structure and good naming" {
		t.Errorf("unexpected favorable slot: %q", crit.Favorable)
	}
}

func TestRun_OneFailureIsIsolated(t *testing.T) {
	tests := []struct {
		name     string
		failRole agent.Role
	}{
		{name: "critic fails", failRole: agent.RoleCritic},
		{name: "advocate fails", failRole: agent.RoleAdvocate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(&fakeAgent{failRole: tt.failRole}, agent.Retrier{Backoff: time.Millisecond}, agent.Options{})

			crit := c.Run(context.Background(), testArtifact())

			if tt.failRole == agent.RoleCritic {
				if !strings.Contains(crit.Critical, "critical review failed") {
					t.Errorf("expected in-band error in critical slot, got %q", crit.Critical)
				}
				if strings.Contains(crit.Favorable, "failed") {
					t.Errorf("expected favorable slot untouched, got %q", crit.Favorable)
				}
			} else {
				if !strings.Contains(crit.Favorable, "favorable review failed") {
					t.Errorf("expected in-band error in favorable slot, got %q", crit.Favorable)
				}
				if strings.Contains(crit.Critical, "failed") {
					t.Errorf("expected critical slot untouched, got %q", crit.Critical)
				}
			}
		})
	}
}

func TestPrompts_IncludeSourceAndOutput(t *testing.T) {
	art := domain.Artifact{
		Source: "x = 1",
		Exec:   domain.ExecutionResult{Stdout: "done", SyntaxError: "bad token"},
	}

	for name, prompt := range map[string]string{
		"critic":   criticPrompt(art),
		"advocate": advocatePrompt(art),
	} {
		if !strings.Contains(prompt, "x = 1") {
			t.Errorf("expected %s prompt to include source", name)
		}
		if !strings.Contains(prompt, domain.SyntaxMarker) {
			t.Errorf("expected %s prompt to include the syntax marker", name)
		}
		if !strings.Contains(prompt, "done") {
			t.Errorf("expected %s prompt to include stdout", name)
		}
	}
}

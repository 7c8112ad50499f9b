package agent

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"syscall"
)

// execResult holds the captured output of a finished CLI invocation.
type execResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// runCommand runs a CLI command to completion, capturing stdout and stderr.
// The process runs in its own process group so that context cancellation
// kills the whole tree, not just the direct child.
//
// Returns an error only when the command cannot be started or the context
// ends before it completes; a non-zero exit is reported via ExitCode.
func runCommand(ctx context.Context, name string, args []string, stdin io.Reader) (*execResult, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	// #nosec G204 - name is always one of the known agent CLIs passed from
	// trusted code in the agent implementations, not user input.
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = stdin

	// Set process group for proper signal handling
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("failed to start %s: %w", name, err)
	}

	// Wait for completion, but kill the process group if the context ends
	waitDone := make(chan error, 1)
	go func() {
		waitDone <- cmd.Wait()
	}()

	select {
	case <-ctx.Done():
		if cmd.Process != nil {
			_ = syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
		}
		<-waitDone // reap the process
		return nil, ctx.Err()
	case err := <-waitDone:
		exitCode := 0
		if err != nil {
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				exitCode = exitErr.ExitCode()
			} else {
				exitCode = -1
			}
		}
		return &execResult{
			Stdout:   stdout.String(),
			Stderr:   stderr.String(),
			ExitCode: exitCode,
		}, nil
	}
}

// firstLine returns the first non-empty line of s, truncated for log use.
func firstLine(s string) string {
	for _, line := range bytes.Split([]byte(s), []byte("\n")) {
		trimmed := bytes.TrimSpace(line)
		if len(trimmed) == 0 {
			continue
		}
		if len(trimmed) > 160 {
			return string(trimmed[:160]) + "..."
		}
		return string(trimmed)
	}
	return ""
}

// Package sandbox executes generated source under a time budget.
package sandbox

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/coderloop/coderloop/internal/domain"
)

// Sandbox runs generated source and reports the structured outcome. A run
// never fails out-of-band: syntax errors, crashes, and timeouts are all
// captured inside the ExecutionResult.
type Sandbox interface {
	Execute(ctx context.Context, source string) domain.ExecutionResult
}

// PythonSandbox executes Python source with a local interpreter.
type PythonSandbox struct {
	// Python is the interpreter command (default "python3").
	Python string
	// Timeout bounds the wall-clock time of the script run.
	Timeout time.Duration
}

// Compile-time interface check
var _ Sandbox = (*PythonSandbox)(nil)

// NewPythonSandbox creates a sandbox with the given interpreter and timeout.
func NewPythonSandbox(python string, timeout time.Duration) *PythonSandbox {
	if python == "" {
		python = "python3"
	}
	return &PythonSandbox{Python: python, Timeout: timeout}
}

// Execute writes the source to a scratch file, runs the syntax gate, then
// executes the script under the timeout. The syntax check and the run are
// separate steps so a compile failure is reported even when the script also
// produces runtime output.
func (s *PythonSandbox) Execute(ctx context.Context, source string) domain.ExecutionResult {
	var result domain.ExecutionResult

	dir, err := os.MkdirTemp("", "coderloop-sandbox-")
	if err != nil {
		result.Stderr = fmt.Sprintf("failed to create sandbox dir: %v", err)
		result.ExitCode = -1
		return result
	}
	defer func() { _ = os.RemoveAll(dir) }()

	scriptPath := filepath.Join(dir, "solution.py")
	if err := os.WriteFile(scriptPath, []byte(source), 0o644); err != nil {
		result.Stderr = fmt.Sprintf("failed to write script: %v", err)
		result.ExitCode = -1
		return result
	}

	// Syntax gate
	if msg := s.syntaxCheck(ctx, scriptPath); msg != "" {
		result.SyntaxError = msg
	}

	// Run the script under the time budget
	runCtx := ctx
	var cancel context.CancelFunc
	if s.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	stdout, stderr, exitCode, runErr := s.run(runCtx, scriptPath)
	result.Stdout = stdout
	result.Stderr = stderr
	result.ExitCode = exitCode

	if runErr != nil {
		if errors.Is(runErr, context.DeadlineExceeded) {
			result.TimedOut = true
			result.ExitCode = -1
			note := fmt.Sprintf("execution timed out after %s", s.Timeout)
			if result.Stderr != "" {
				result.Stderr += "\n"
			}
			result.Stderr += note
		} else {
			if result.Stderr != "" {
				result.Stderr += "\n"
			}
			result.Stderr += fmt.Sprintf("error running code: %v", runErr)
			if result.ExitCode == 0 {
				result.ExitCode = -1
			}
		}
	}

	return result
}

// syntaxCheck compiles the script without running it. Returns the compiler
// diagnostic, or "" when the source is valid.
func (s *PythonSandbox) syntaxCheck(ctx context.Context, scriptPath string) string {
	cmd := exec.CommandContext(ctx, s.Python, "-m", "py_compile", scriptPath)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return ""
	}

	msg := strings.TrimSpace(stderr.String())
	if msg == "" {
		msg = err.Error()
	}
	return msg
}

// run executes the script, killing the whole process group on cancellation.
func (s *PythonSandbox) run(ctx context.Context, scriptPath string) (stdout, stderr string, exitCode int, err error) {
	cmd := exec.CommandContext(ctx, s.Python, scriptPath)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	if startErr := cmd.Start(); startErr != nil {
		return "", "", -1, startErr
	}

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
		return outBuf.String(), errBuf.String(), -1, ctx.Err()
	case waitErr := <-waitDone:
		code := 0
		if waitErr != nil {
			var exitErr *exec.ExitError
			if errors.As(waitErr, &exitErr) {
				code = exitErr.ExitCode()
			} else {
				return outBuf.String(), errBuf.String(), -1, waitErr
			}
		}
		return outBuf.String(), errBuf.String(), code, nil
	}
}

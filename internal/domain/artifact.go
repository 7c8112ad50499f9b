// Package domain provides core types for the coder loop.
package domain

import "strings"

// SyntaxMarker prefixes combined execution output when the syntax gate
// failed. It must appear before any runtime output so that the judgment
// step treats the syntax failure as the top-priority issue.
const SyntaxMarker = "Syntax error detected:"

// ExecutionResult holds the outcome of running generated source in the sandbox.
type ExecutionResult struct {
	Stdout      string
	Stderr      string
	SyntaxError string // empty when the source compiled cleanly
	TimedOut    bool
	ExitCode    int
}

// Combined returns the execution output as a single text block: the syntax
// error marker first (when present), then stdout, then stderr.
func (e ExecutionResult) Combined() string {
	var parts []string
	if e.SyntaxError != "" {
		parts = append(parts, SyntaxMarker+" "+e.SyntaxError)
	}
	if e.Stdout != "" {
		parts = append(parts, e.Stdout)
	}
	if e.Stderr != "" {
		parts = append(parts, e.Stderr)
	}
	return strings.Join(parts, "\n")
}

// Clean reports whether the run compiled and exited successfully within the
// time budget.
func (e ExecutionResult) Clean() bool {
	return e.SyntaxError == "" && !e.TimedOut && e.ExitCode == 0
}

// Artifact is one iteration's generated source plus its execution outcome.
// Each iteration produces a fresh Artifact; prior ones survive only in the
// transcript.
type Artifact struct {
	Source string
	Exec   ExecutionResult
}

// Critique pairs the two reviewer assessments of an Artifact. Both fields
// are always populated after the fan-out join; a failed reviewer call leaves
// an error description in its slot, never an absent value.
type Critique struct {
	Critical  string
	Favorable string
}

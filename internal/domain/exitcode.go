package domain

// ExitCode represents the exit status of a coderloop run.
type ExitCode int

const (
	// ExitClean indicates the final artifact executed successfully.
	ExitClean ExitCode = 0
	// ExitUnclean indicates the run completed but the final artifact's
	// execution failed (syntax error, non-zero exit, or timeout).
	ExitUnclean ExitCode = 1
	// ExitError indicates the run itself failed.
	ExitError ExitCode = 2
	// ExitInterrupted indicates the run was interrupted by a signal.
	ExitInterrupted ExitCode = 130
)

// Int returns the exit code as an int for use with os.Exit.
func (e ExitCode) Int() int {
	return int(e)
}

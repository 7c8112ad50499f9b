// Package main provides the CLI entry point for coderloop.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/coderloop/coderloop/internal/agent"
	"github.com/coderloop/coderloop/internal/config"
	"github.com/coderloop/coderloop/internal/domain"
	"github.com/coderloop/coderloop/internal/report"
	"github.com/coderloop/coderloop/internal/runner"
	"github.com/coderloop/coderloop/internal/sandbox"
	"github.com/coderloop/coderloop/internal/store"
	"github.com/coderloop/coderloop/internal/terminal"
	"github.com/coderloop/coderloop/internal/transcript"
)

var (
	agentName     string
	maxIterations int
	execTimeout   time.Duration
	genTimeout    time.Duration
	retries       int
	temperature   float64
	outputDir     string
	pythonCmd     string
	verbose       bool
	noConfig      bool
)

func main() {
	os.Exit(run())
}

func run() int {
	rootCmd := &cobra.Command{
		Use:   "coderloop [request]",
		Short: "Iterative code generation with critique and judgment",
		Long: `Run an iterative generate, critique, judge loop that turns a natural
language request into working Python code.

The request is taken from the command line arguments, or from stdin when
piped. Each run writes its artifacts under a run-scoped output directory.

Exit codes:
  0 - Final artifact executed cleanly
  1 - Final artifact execution failed
  2 - Error
  130 - Interrupted`,
		RunE:          runLoop,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       buildVersionString(),
	}

	rootCmd.SetVersionTemplate("{{.Version}}\n")

	// Configuration flags (defaults are resolved via config.Resolve with precedence: flag > env > config > default)
	rootCmd.Flags().StringVarP(&agentName, "agent", "a", "",
		"Agent backend: codex, claude (default: codex, env: CODERLOOP_AGENT)")
	rootCmd.Flags().IntVarP(&maxIterations, "max-iterations", "n", 0,
		"Maximum revision iterations (default: 3, env: CODERLOOP_MAX_ITERATIONS)")
	rootCmd.Flags().DurationVar(&execTimeout, "exec-timeout", 0,
		"Timeout per sandbox execution (default: 10s, env: CODERLOOP_EXEC_TIMEOUT)")
	rootCmd.Flags().DurationVar(&genTimeout, "gen-timeout", 0,
		"Timeout per backend call (default: 2m, env: CODERLOOP_GEN_TIMEOUT)")
	rootCmd.Flags().IntVarP(&retries, "retries", "R", 0,
		"Retry failed backend calls N times (default: 1, env: CODERLOOP_RETRIES)")
	rootCmd.Flags().Float64Var(&temperature, "temperature", 0,
		"Sampling temperature for the backend (default: 0.7, env: CODERLOOP_TEMPERATURE)")
	rootCmd.Flags().StringVarP(&outputDir, "output-dir", "o", "",
		"Directory for run artifacts (default: output, env: CODERLOOP_OUTPUT_DIR)")
	rootCmd.Flags().StringVar(&pythonCmd, "python", "",
		"Python interpreter command (default: python3, env: CODERLOOP_PYTHON)")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false,
		"Print phase logs instead of spinners")
	rootCmd.Flags().BoolVar(&noConfig, "no-config", false,
		"Skip loading .coderloop.yaml config file")

	setGroupedUsage(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		// Check if this is an exit code wrapper (not a real error)
		if exitErr, ok := err.(exitCodeError); ok {
			return exitErr.code.Int()
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return domain.ExitError.Int()
	}

	return 0
}

func runLoop(cmd *cobra.Command, args []string) error {
	// Disable colors if stdout is not a TTY
	if !terminal.IsStdoutTTY() {
		terminal.DisableColors()
	}

	logger := terminal.NewLogger()

	request, err := readRequest(args)
	if err != nil {
		logger.Logf(terminal.StyleError, "%v", err)
		return exitCode(domain.ExitError)
	}
	if request == "" {
		logger.Log("no request provided (pass it as arguments or pipe it on stdin)", terminal.StyleError)
		return exitCode(domain.ExitError)
	}

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	interrupted := make(chan struct{})
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr)
		logger.Log("Interrupted, shutting down...", terminal.StyleWarning)
		close(interrupted)
		cancel()
	}()

	// Load config file (unless --no-config)
	var cfg *config.Config
	if !noConfig {
		cwd, err := os.Getwd()
		if err != nil {
			logger.Logf(terminal.StyleError, "%v", err)
			return exitCode(domain.ExitError)
		}
		result, err := config.LoadFromDirWithWarnings(cwd)
		if err != nil {
			logger.Logf(terminal.StyleError, "Config error: %v", err)
			return exitCode(domain.ExitError)
		}
		cfg = result.Config
		for _, warning := range result.Warnings {
			logger.Logf(terminal.StyleWarning, "Warning: %s", warning)
		}
	}

	// Build flag state from cobra's Changed() method
	flagState := config.FlagState{
		AgentSet:         cmd.Flags().Changed("agent"),
		MaxIterationsSet: cmd.Flags().Changed("max-iterations"),
		ExecTimeoutSet:   cmd.Flags().Changed("exec-timeout"),
		GenTimeoutSet:    cmd.Flags().Changed("gen-timeout"),
		RetriesSet:       cmd.Flags().Changed("retries"),
		TemperatureSet:   cmd.Flags().Changed("temperature"),
		OutputDirSet:     cmd.Flags().Changed("output-dir"),
		PythonSet:        cmd.Flags().Changed("python"),
	}

	envState := config.LoadEnvState()

	flagValues := config.ResolvedConfig{
		Agent:         agentName,
		MaxIterations: maxIterations,
		ExecTimeout:   execTimeout,
		GenTimeout:    genTimeout,
		Retries:       retries,
		Temperature:   temperature,
		OutputDir:     outputDir,
		Python:        pythonCmd,
	}

	// Resolve final configuration (precedence: flags > env vars > config file > defaults)
	resolved := config.Resolve(cfg, envState, flagState, flagValues)

	if resolved.MaxIterations < 1 {
		logger.Log("max-iterations must be >= 1", terminal.StyleError)
		return exitCode(domain.ExitError)
	}

	backend, err := agent.CreateAgent(resolved.Agent)
	if err != nil {
		logger.Logf(terminal.StyleError, "%v", err)
		return exitCode(domain.ExitError)
	}

	runID := uuid.NewString()
	runStore := store.NewDirStore(filepath.Join(resolved.OutputDir, runID))
	sb := sandbox.NewPythonSandbox(resolved.Python, resolved.ExecTimeout)

	r, err := runner.New(runner.Config{
		MaxIterations: resolved.MaxIterations,
		ExecTimeout:   resolved.ExecTimeout,
		GenTimeout:    resolved.GenTimeout,
		Retries:       resolved.Retries,
		Temperature:   resolved.Temperature,
		Verbose:       verbose,
	}, backend, sb, runStore, logger)
	if err != nil {
		logger.Logf(terminal.StyleError, "%v", err)
		return exitCode(domain.ExitError)
	}

	logger.Logf(terminal.StyleInfo, "Run %s%s%s using %s",
		terminal.Color(terminal.Bold), runID, terminal.Color(terminal.Reset), resolved.Agent)

	log := transcript.New(runID)
	result, err := r.Run(ctx, log, request)
	if err != nil {
		select {
		case <-interrupted:
			return exitCode(domain.ExitInterrupted)
		default:
		}
		if ctx.Err() != nil {
			return exitCode(domain.ExitInterrupted)
		}
		logger.Logf(terminal.StyleError, "%v", err)
		return exitCode(domain.ExitError)
	}

	// Generate and render the report; failures are in-band
	retrier := agent.Retrier{Timeout: resolved.GenTimeout, Retries: resolved.Retries}
	rep := report.Generate(ctx, backend, retrier, result.Transcript, agent.Options{Temperature: resolved.Temperature})

	if err := runStore.Write(store.KeyReport, rep.Text); err != nil {
		logger.Logf(terminal.StyleWarning, "failed to persist report: %v", err)
	}

	clean := result.FinalArtifact.Exec.Clean()
	fmt.Print(report.Render(rep, report.Stats{
		RunID:      runID,
		Iterations: result.Iterations,
		Satisfied:  result.Satisfied,
		Clean:      clean,
		Duration:   terminal.FormatDuration(result.Duration),
	}))

	logger.Logf(terminal.StyleDim, "artifacts written to %s", runStore.Dir())

	if clean {
		return exitCode(domain.ExitClean)
	}
	return exitCode(domain.ExitUnclean)
}

// readRequest joins the args into the request, falling back to stdin when
// no args are given and stdin is piped.
func readRequest(args []string) (string, error) {
	if len(args) > 0 {
		return strings.TrimSpace(strings.Join(args, " ")), nil
	}

	if terminal.IsTTY(int(os.Stdin.Fd())) {
		return "", nil
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read request from stdin: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

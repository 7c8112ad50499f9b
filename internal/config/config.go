// Package config provides configuration file support for coderloop.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/coderloop/coderloop/internal/agent"
)

// ConfigFileName is the name of the config file.
const ConfigFileName = ".coderloop.yaml"

// Duration is a custom type that handles YAML duration parsing.
// Supports both Go duration format ("10s", "2m") and numeric seconds.
type Duration time.Duration

// UnmarshalYAML implements the yaml.Unmarshaler interface.
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw interface{}
	if err := unmarshal(&raw); err != nil {
		return err
	}

	switch v := raw.(type) {
	case string:
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", v, err)
		}
		*d = Duration(parsed)
	case int:
		*d = Duration(time.Duration(v) * time.Second)
	case float64:
		*d = Duration(time.Duration(v) * time.Second)
	default:
		return fmt.Errorf("invalid duration type: %T", v)
	}
	return nil
}

// AsDuration returns the underlying time.Duration.
func (d Duration) AsDuration() time.Duration {
	return time.Duration(d)
}

// Config represents the coderloop configuration file. Pointer fields
// distinguish "not set" from zero values.
type Config struct {
	Agent         *string   `yaml:"agent"`
	MaxIterations *int      `yaml:"max_iterations"`
	ExecTimeout   *Duration `yaml:"exec_timeout"`
	GenTimeout    *Duration `yaml:"gen_timeout"`
	Retries       *int      `yaml:"retries"`
	Temperature   *float64  `yaml:"temperature"`
	OutputDir     *string   `yaml:"output_dir"`
	Python        *string   `yaml:"python"`
}

// LoadResult contains the loaded config and any warnings encountered.
type LoadResult struct {
	Config   *Config
	Warnings []string
}

// LoadFromDirWithWarnings reads .coderloop.yaml from the specified directory
// and returns warnings. Returns an empty config (not error) if the file
// doesn't exist.
func LoadFromDirWithWarnings(dir string) (*LoadResult, error) {
	configPath := filepath.Join(dir, ConfigFileName)
	return LoadFromPathWithWarnings(configPath)
}

// LoadFromPathWithWarnings reads a config file and returns warnings for
// unknown keys. Returns an empty config (not error) if the file doesn't
// exist. Returns an error if the file exists but is invalid YAML or contains
// invalid values.
func LoadFromPathWithWarnings(path string) (*LoadResult, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &LoadResult{Config: &Config{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	warnings := checkUnknownKeys(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", ConfigFileName, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", ConfigFileName, err)
	}

	return &LoadResult{Config: &cfg, Warnings: warnings}, nil
}

// knownKeys are the valid top-level keys in the config file.
var knownKeys = []string{"agent", "max_iterations", "exec_timeout", "gen_timeout", "retries", "temperature", "output_dir", "python"}

// checkUnknownKeys checks for unknown keys in the YAML data and returns warnings.
func checkUnknownKeys(data []byte) []string {
	var warnings []string

	// Parse into a generic map to inspect keys
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		// If we can't parse, let the main parser handle the error
		return nil
	}

	for key := range raw {
		if !slices.Contains(knownKeys, key) {
			warning := fmt.Sprintf("unknown key %q in %s", key, ConfigFileName)
			if suggestion := findSimilar(key, knownKeys); suggestion != "" {
				warning += fmt.Sprintf(" (did you mean %q?)", suggestion)
			}
			warnings = append(warnings, warning)
		}
	}

	return warnings
}

// findSimilar finds the most similar string from candidates using Levenshtein distance.
// Returns empty string if no candidate is similar enough (threshold: 3 edits).
func findSimilar(input string, candidates []string) string {
	const maxDistance = 3
	bestMatch := ""
	bestDistance := maxDistance + 1

	for _, candidate := range candidates {
		dist := levenshtein(input, candidate)
		if dist < bestDistance {
			bestDistance = dist
			bestMatch = candidate
		}
	}

	if bestDistance <= maxDistance {
		return bestMatch
	}
	return ""
}

// levenshtein calculates the Levenshtein distance between two strings.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)

	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	// Create matrix
	matrix := make([][]int, len(ra)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(rb)+1)
		matrix[i][0] = i
	}
	for j := range matrix[0] {
		matrix[0][j] = j
	}

	// Fill matrix
	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			matrix[i][j] = min(
				matrix[i-1][j]+1,      // deletion
				matrix[i][j-1]+1,      // insertion
				matrix[i-1][j-1]+cost, // substitution
			)
		}
	}

	return matrix[len(ra)][len(rb)]
}

// Validate checks that all config values are valid.
func (c *Config) Validate() error {
	if c.Agent != nil && !slices.Contains(agent.SupportedAgents, *c.Agent) {
		return fmt.Errorf("agent must be one of %v, got %q", agent.SupportedAgents, *c.Agent)
	}
	if c.MaxIterations != nil && *c.MaxIterations < 1 {
		return fmt.Errorf("max_iterations must be >= 1, got %d", *c.MaxIterations)
	}
	if c.ExecTimeout != nil && *c.ExecTimeout <= 0 {
		return fmt.Errorf("exec_timeout must be > 0, got %s", time.Duration(*c.ExecTimeout))
	}
	if c.GenTimeout != nil && *c.GenTimeout <= 0 {
		return fmt.Errorf("gen_timeout must be > 0, got %s", time.Duration(*c.GenTimeout))
	}
	if c.Retries != nil && *c.Retries < 0 {
		return fmt.Errorf("retries must be >= 0, got %d", *c.Retries)
	}
	if c.Temperature != nil && (*c.Temperature < 0 || *c.Temperature > 2) {
		return fmt.Errorf("temperature must be in [0, 2], got %g", *c.Temperature)
	}
	if c.OutputDir != nil && *c.OutputDir == "" {
		return fmt.Errorf("output_dir must not be empty")
	}
	if c.Python != nil && *c.Python == "" {
		return fmt.Errorf("python must not be empty")
	}
	return nil
}

// Defaults holds the built-in default values.
var Defaults = ResolvedConfig{
	Agent:         agent.DefaultAgent,
	MaxIterations: 3,
	ExecTimeout:   10 * time.Second,
	GenTimeout:    2 * time.Minute,
	Retries:       1,
	Temperature:   0.7,
	OutputDir:     "output",
	Python:        "python3",
}

// ResolvedConfig holds the final resolved configuration values.
type ResolvedConfig struct {
	Agent         string
	MaxIterations int
	ExecTimeout   time.Duration
	GenTimeout    time.Duration
	Retries       int
	Temperature   float64
	OutputDir     string
	Python        string
}

// FlagState tracks whether a flag was explicitly set.
type FlagState struct {
	AgentSet         bool
	MaxIterationsSet bool
	ExecTimeoutSet   bool
	GenTimeoutSet    bool
	RetriesSet       bool
	TemperatureSet   bool
	OutputDirSet     bool
	PythonSet        bool
}

// EnvState captures env var values and whether they were set.
type EnvState struct {
	Agent            string
	AgentSet         bool
	MaxIterations    int
	MaxIterationsSet bool
	ExecTimeout      time.Duration
	ExecTimeoutSet   bool
	GenTimeout       time.Duration
	GenTimeoutSet    bool
	Retries          int
	RetriesSet       bool
	Temperature      float64
	TemperatureSet   bool
	OutputDir        string
	OutputDirSet     bool
	Python           string
	PythonSet        bool
}

// LoadEnvState reads environment variables and returns their state.
func LoadEnvState() EnvState {
	var state EnvState

	if v := os.Getenv("CODERLOOP_AGENT"); v != "" {
		state.Agent = v
		state.AgentSet = true
	}
	if v := os.Getenv("CODERLOOP_MAX_ITERATIONS"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			state.MaxIterations = i
			state.MaxIterationsSet = true
		}
	}
	if v := os.Getenv("CODERLOOP_EXEC_TIMEOUT"); v != "" {
		if d, ok := parseDurationEnv(v); ok {
			state.ExecTimeout = d
			state.ExecTimeoutSet = true
		}
	}
	if v := os.Getenv("CODERLOOP_GEN_TIMEOUT"); v != "" {
		if d, ok := parseDurationEnv(v); ok {
			state.GenTimeout = d
			state.GenTimeoutSet = true
		}
	}
	if v := os.Getenv("CODERLOOP_RETRIES"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			state.Retries = i
			state.RetriesSet = true
		}
	}
	if v := os.Getenv("CODERLOOP_TEMPERATURE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			state.Temperature = f
			state.TemperatureSet = true
		}
	}
	if v := os.Getenv("CODERLOOP_OUTPUT_DIR"); v != "" {
		state.OutputDir = v
		state.OutputDirSet = true
	}
	if v := os.Getenv("CODERLOOP_PYTHON"); v != "" {
		state.Python = v
		state.PythonSet = true
	}

	return state
}

// parseDurationEnv accepts a Go duration string or bare seconds.
func parseDurationEnv(v string) (time.Duration, bool) {
	if d, err := time.ParseDuration(v); err == nil {
		return d, true
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, true
	}
	return 0, false
}

// Resolve merges config file values with env vars and flags.
// Precedence: flags > env vars > config file > defaults
func Resolve(cfg *Config, envState EnvState, flagState FlagState, flagValues ResolvedConfig) ResolvedConfig {
	result := Defaults

	// Apply config file values (if set)
	if cfg != nil {
		if cfg.Agent != nil {
			result.Agent = *cfg.Agent
		}
		if cfg.MaxIterations != nil {
			result.MaxIterations = *cfg.MaxIterations
		}
		if cfg.ExecTimeout != nil {
			result.ExecTimeout = cfg.ExecTimeout.AsDuration()
		}
		if cfg.GenTimeout != nil {
			result.GenTimeout = cfg.GenTimeout.AsDuration()
		}
		if cfg.Retries != nil {
			result.Retries = *cfg.Retries
		}
		if cfg.Temperature != nil {
			result.Temperature = *cfg.Temperature
		}
		if cfg.OutputDir != nil {
			result.OutputDir = *cfg.OutputDir
		}
		if cfg.Python != nil {
			result.Python = *cfg.Python
		}
	}

	// Apply env var values (if set)
	if envState.AgentSet {
		result.Agent = envState.Agent
	}
	if envState.MaxIterationsSet {
		result.MaxIterations = envState.MaxIterations
	}
	if envState.ExecTimeoutSet {
		result.ExecTimeout = envState.ExecTimeout
	}
	if envState.GenTimeoutSet {
		result.GenTimeout = envState.GenTimeout
	}
	if envState.RetriesSet {
		result.Retries = envState.Retries
	}
	if envState.TemperatureSet {
		result.Temperature = envState.Temperature
	}
	if envState.OutputDirSet {
		result.OutputDir = envState.OutputDir
	}
	if envState.PythonSet {
		result.Python = envState.Python
	}

	// Apply flag values (if explicitly set)
	if flagState.AgentSet {
		result.Agent = flagValues.Agent
	}
	if flagState.MaxIterationsSet {
		result.MaxIterations = flagValues.MaxIterations
	}
	if flagState.ExecTimeoutSet {
		result.ExecTimeout = flagValues.ExecTimeout
	}
	if flagState.GenTimeoutSet {
		result.GenTimeout = flagValues.GenTimeout
	}
	if flagState.RetriesSet {
		result.Retries = flagValues.Retries
	}
	if flagState.TemperatureSet {
		result.Temperature = flagValues.Temperature
	}
	if flagState.OutputDirSet {
		result.OutputDir = flagValues.OutputDir
	}
	if flagState.PythonSet {
		result.Python = flagValues.Python
	}

	return result
}

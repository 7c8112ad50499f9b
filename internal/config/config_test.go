package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return dir
}

func TestLoadFromDirWithWarnings_MissingFile(t *testing.T) {
	result, err := LoadFromDirWithWarnings(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Config == nil {
		t.Fatal("expected empty config, got nil")
	}
	if result.Config.Agent != nil {
		t.Error("expected no values set for missing file")
	}
}

func TestLoadFromDirWithWarnings_ValidFile(t *testing.T) {
	dir := writeConfig(t, `
agent: claude
max_iterations: 5
exec_timeout: 30s
gen_timeout: 90
retries: 2
temperature: 0.2
output_dir: runs
python: python3.12
`)

	result, err := LoadFromDirWithWarnings(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg := result.Config

	if cfg.Agent == nil || *cfg.Agent != "claude" {
		t.Errorf("expected agent claude, got %v", cfg.Agent)
	}
	if cfg.MaxIterations == nil || *cfg.MaxIterations != 5 {
		t.Errorf("expected max_iterations 5, got %v", cfg.MaxIterations)
	}
	if cfg.ExecTimeout == nil || cfg.ExecTimeout.AsDuration() != 30*time.Second {
		t.Errorf("expected exec_timeout 30s, got %v", cfg.ExecTimeout)
	}
	if cfg.GenTimeout == nil || cfg.GenTimeout.AsDuration() != 90*time.Second {
		t.Errorf("expected gen_timeout 90s from numeric seconds, got %v", cfg.GenTimeout)
	}
	if cfg.Temperature == nil || *cfg.Temperature != 0.2 {
		t.Errorf("expected temperature 0.2, got %v", cfg.Temperature)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("expected no warnings, got %v", result.Warnings)
	}
}

func TestLoadFromDirWithWarnings_InvalidYAML(t *testing.T) {
	dir := writeConfig(t, "agent: [unclosed")
	if _, err := LoadFromDirWithWarnings(dir); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestLoadFromDirWithWarnings_UnknownKeySuggestion(t *testing.T) {
	dir := writeConfig(t, "max_iteration: 5\n")

	result, err := LoadFromDirWithWarnings(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Warnings) != 1 {
		t.Fatalf("expected 1 warning, got %v", result.Warnings)
	}
	if !strings.Contains(result.Warnings[0], `"max_iterations"`) {
		t.Errorf("expected suggestion for max_iterations, got %q", result.Warnings[0])
	}
}

func TestLoadFromDirWithWarnings_UnknownKeyNoSuggestion(t *testing.T) {
	dir := writeConfig(t, "completely_unrelated_setting: true\n")

	result, err := LoadFromDirWithWarnings(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Warnings) != 1 {
		t.Fatalf("expected 1 warning, got %v", result.Warnings)
	}
	if strings.Contains(result.Warnings[0], "did you mean") {
		t.Errorf("expected no suggestion for dissimilar key, got %q", result.Warnings[0])
	}
}

func TestValidate(t *testing.T) {
	intPtr := func(i int) *int { return &i }
	strPtr := func(s string) *string { return &s }
	floatPtr := func(f float64) *float64 { return &f }
	durPtr := func(d time.Duration) *Duration { v := Duration(d); return &v }

	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "empty config", cfg: Config{}},
		{name: "valid agent", cfg: Config{Agent: strPtr("codex")}},
		{name: "invalid agent", cfg: Config{Agent: strPtr("gpt")}, wantErr: true},
		{name: "zero iterations", cfg: Config{MaxIterations: intPtr(0)}, wantErr: true},
		{name: "negative retries", cfg: Config{Retries: intPtr(-1)}, wantErr: true},
		{name: "zero exec timeout", cfg: Config{ExecTimeout: durPtr(0)}, wantErr: true},
		{name: "zero gen timeout", cfg: Config{GenTimeout: durPtr(0)}, wantErr: true},
		{name: "temperature too high", cfg: Config{Temperature: floatPtr(2.5)}, wantErr: true},
		{name: "temperature zero is valid", cfg: Config{Temperature: floatPtr(0)}},
		{name: "empty output dir", cfg: Config{OutputDir: strPtr("")}, wantErr: true},
		{name: "empty python", cfg: Config{Python: strPtr("")}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestDuration_UnmarshalYAML(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		want    time.Duration
		wantErr bool
	}{
		{name: "go duration string", yaml: "exec_timeout: 45s", want: 45 * time.Second},
		{name: "minutes", yaml: "exec_timeout: 2m", want: 2 * time.Minute},
		{name: "numeric seconds", yaml: "exec_timeout: 15", want: 15 * time.Second},
		{name: "invalid string", yaml: "exec_timeout: soon", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeConfig(t, tt.yaml+"\n")
			result, err := LoadFromDirWithWarnings(dir)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.Config.ExecTimeout.AsDuration() != tt.want {
				t.Errorf("expected %s, got %s", tt.want, result.Config.ExecTimeout.AsDuration())
			}
		})
	}
}

func TestResolve_Precedence(t *testing.T) {
	fileAgent := "claude"
	fileIterations := 7
	cfg := &Config{Agent: &fileAgent, MaxIterations: &fileIterations}

	envState := EnvState{
		MaxIterations:    9,
		MaxIterationsSet: true,
		Retries:          4,
		RetriesSet:       true,
	}

	flagState := FlagState{RetriesSet: true}
	flagValues := ResolvedConfig{Retries: 0}

	resolved := Resolve(cfg, envState, flagState, flagValues)

	// File beats default
	if resolved.Agent != "claude" {
		t.Errorf("expected file value claude, got %q", resolved.Agent)
	}
	// Env beats file
	if resolved.MaxIterations != 9 {
		t.Errorf("expected env value 9, got %d", resolved.MaxIterations)
	}
	// Flag beats env, even when the flag value is the zero value
	if resolved.Retries != 0 {
		t.Errorf("expected flag value 0, got %d", resolved.Retries)
	}
	// Defaults fill the rest
	if resolved.ExecTimeout != Defaults.ExecTimeout {
		t.Errorf("expected default exec timeout, got %s", resolved.ExecTimeout)
	}
	if resolved.OutputDir != Defaults.OutputDir {
		t.Errorf("expected default output dir, got %q", resolved.OutputDir)
	}
}

func TestResolve_AllDefaults(t *testing.T) {
	resolved := Resolve(&Config{}, EnvState{}, FlagState{}, ResolvedConfig{})
	if resolved != Defaults {
		t.Errorf("expected defaults, got %+v", resolved)
	}
}

func TestLoadEnvState(t *testing.T) {
	t.Setenv("CODERLOOP_AGENT", "claude")
	t.Setenv("CODERLOOP_MAX_ITERATIONS", "6")
	t.Setenv("CODERLOOP_EXEC_TIMEOUT", "20s")
	t.Setenv("CODERLOOP_GEN_TIMEOUT", "300")
	t.Setenv("CODERLOOP_TEMPERATURE", "0.1")

	state := LoadEnvState()

	if !state.AgentSet || state.Agent != "claude" {
		t.Errorf("expected agent claude, got %+v", state)
	}
	if !state.MaxIterationsSet || state.MaxIterations != 6 {
		t.Errorf("expected max iterations 6, got %+v", state)
	}
	if !state.ExecTimeoutSet || state.ExecTimeout != 20*time.Second {
		t.Errorf("expected exec timeout 20s, got %+v", state)
	}
	if !state.GenTimeoutSet || state.GenTimeout != 300*time.Second {
		t.Errorf("expected gen timeout 300s from bare seconds, got %+v", state)
	}
	if !state.TemperatureSet || state.Temperature != 0.1 {
		t.Errorf("expected temperature 0.1, got %+v", state)
	}
	if state.RetriesSet || state.OutputDirSet || state.PythonSet {
		t.Errorf("expected unset fields to stay unset, got %+v", state)
	}
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"agent", "agent", 0},
		{"agnet", "agent", 2},
		{"max_iteration", "max_iterations", 1},
	}

	for _, tt := range tests {
		if got := levenshtein(tt.a, tt.b); got != tt.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"wrkbench/internal/orchestrator"
	"wrkbench/internal/runner"
)

// Config keys.
const (
	KeyTargets     = "targets"
	KeyEndpoints   = "endpoints"
	KeyVars        = "vars"
	KeyDuration    = "duration"
	KeyThreads     = "threads"
	KeyConnections = "connections"
	KeyTimeout     = "timeout"
	KeyHeaders     = "headers"
	KeyOutputDir   = "output_dir"
	KeyGrace       = "grace"
	KeyKeepGoing   = "keep_going"
	KeyWrk         = "wrk"
	KeyHistoryPath = "history_path"
	KeyNoHistory   = "no_history"
)

var (
	// DefaultEndpoints is the framework benchmark suite.
	DefaultEndpoints = []string{
		"json",
		"plaintext",
		"fortunes",
		"db",
		"dbs?queries={{.queries}}",
		"updates?queries={{.queries}}",
	}

	// DefaultTargetNames are offered by the interactive prompt.
	DefaultTargetNames = []string{"django", "fastapi", "flask", "express", "fastify", "gin"}
)

// Settings is the merged view of config file, environment and flags.
type Settings struct {
	Targets   []orchestrator.Target `mapstructure:"targets"`
	Endpoints []string              `mapstructure:"endpoints"`
	Vars      map[string]string     `mapstructure:"vars"`

	Duration    string            `mapstructure:"duration"`
	Threads     int               `mapstructure:"threads"`
	Connections int               `mapstructure:"connections"`
	Timeout     string            `mapstructure:"timeout"`
	Headers     map[string]string `mapstructure:"headers"`

	OutputDir   string        `mapstructure:"output_dir"`
	Grace       time.Duration `mapstructure:"grace"`
	KeepGoing   bool          `mapstructure:"keep_going"`
	Wrk         string        `mapstructure:"wrk"`
	HistoryPath string        `mapstructure:"history_path"`
	NoHistory   bool          `mapstructure:"no_history"`
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyEndpoints, DefaultEndpoints)
	v.SetDefault(KeyVars, map[string]any{"queries": "20"})
	v.SetDefault(KeyDuration, "30s")
	v.SetDefault(KeyThreads, 2)
	v.SetDefault(KeyConnections, 10)
	v.SetDefault(KeyOutputDir, "results")
	v.SetDefault(KeyGrace, runner.DefaultGrace)
	v.SetDefault(KeyWrk, runner.DefaultExecutable)
}

// Load decodes the viper state into Settings.
func Load(v *viper.Viper) (Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return s, fmt.Errorf("decode config: %w", err)
	}
	if s.Vars == nil {
		s.Vars = map[string]string{}
	}
	if s.Headers == nil {
		s.Headers = map[string]string{}
	}
	return s, nil
}

// RunConfig is the wrk configuration shared by every invocation.
func (s Settings) RunConfig() runner.Config {
	cfg := runner.Config{
		Duration:    s.Duration,
		Threads:     s.Threads,
		Connections: s.Connections,
		Timeout:     s.Timeout,
	}
	if len(s.Headers) > 0 {
		cfg.Headers = s.Headers
	}
	return cfg
}

// Plan expands the endpoint templates and validates the result.
func (s Settings) Plan() (orchestrator.Plan, error) {
	endpoints, err := NewTemplateEngine(s.Vars).ExpandAll(s.Endpoints)
	if err != nil {
		return orchestrator.Plan{}, err
	}

	plan := orchestrator.Plan{
		Targets:   s.Targets,
		Endpoints: endpoints,
		Config:    s.RunConfig(),
		OutputDir: s.OutputDir,
		KeepGoing: s.KeepGoing,
	}
	if err := plan.Validate(); err != nil {
		return orchestrator.Plan{}, err
	}
	return plan, nil
}

// Package config loads harness settings. Precedence, lowest
// first: built-in defaults, the config file, HARNESS_*
// environment variables, command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment overrides, e.g.
// HARNESS_AGENT_COMMAND.
const EnvPrefix = "HARNESS"

// DefaultFileName is looked up in the working directory when no
// explicit config file is given.
const DefaultFileName = "harness.yaml"

// DefaultAgentCommand runs Claude non-interactively inside the
// sandbox.
const DefaultAgentCommand = "claude -p {prompt} --max-turns {max_turns} " +
	"--dangerously-skip-permissions"

// Config is the effective harness configuration.
type Config struct {
	WorkDir        string `mapstructure:"work_dir"`
	TemplatesDir   string `mapstructure:"templates_dir"`
	FixturesDir    string `mapstructure:"fixtures_dir"`
	DefinitionsDir string `mapstructure:"definitions_dir"`
	ResultsDir     string `mapstructure:"results_dir"`
	HistoryFile    string `mapstructure:"history_file"`
	Executable     string `mapstructure:"executable"`
	Concurrency    int    `mapstructure:"concurrency"`
	KeepSandboxes  bool   `mapstructure:"keep_sandboxes"`

	TestCommand        string        `mapstructure:"test_command"`
	TestCommandTimeout time.Duration `mapstructure:"test_command_timeout"`

	Agent   AgentConfig   `mapstructure:"agent"`
	Log     LogConfig     `mapstructure:"log"`
	Monitor MonitorConfig `mapstructure:"monitor"`
}

// AgentConfig controls how the agent under test is launched.
type AgentConfig struct {
	// Command is a shell-words template; {prompt}, {max_turns}
	// and {dir} are substituted per run.
	Command string `mapstructure:"command"`
	EnvFile string `mapstructure:"env_file"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level   string `mapstructure:"level"`
	File    string `mapstructure:"file"`
	Verbose bool   `mapstructure:"verbose"`
}

// MonitorConfig configures the live monitor. An empty Addr
// disables it.
type MonitorConfig struct {
	Addr string `mapstructure:"addr"`
}

// LoadOptions controls configuration loading.
type LoadOptions struct {
	// ConfigPath is an explicit config file. When empty,
	// harness.yaml in Dir is used if present.
	ConfigPath string
	// Dir is searched for the default config file. Defaults to
	// the working directory.
	Dir string
	// FlagOverrides are highest-priority overrides keyed by
	// dot-notated config keys.
	FlagOverrides map[string]any
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		WorkDir:            filepath.Join(os.TempDir(), "harness-sandboxes"),
		ResultsDir:         "results",
		HistoryFile:        filepath.Join("results", "history.jsonl"),
		Executable:         "harness",
		Concurrency:        1,
		TestCommand:        "python3 -m pytest tests/ -v --tb=short",
		TestCommandTimeout: 30 * time.Second,
		Agent: AgentConfig{
			Command: DefaultAgentCommand,
			EnvFile: ".env",
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load returns the effective configuration.
func Load(opts LoadOptions) (Config, error) {
	v := viper.New()
	setDefaults(v)

	path, explicit := opts.ConfigPath, opts.ConfigPath != ""
	if !explicit {
		dir := opts.Dir
		if dir == "" {
			if cwd, err := os.Getwd(); err == nil {
				dir = cwd
			}
		}
		path = filepath.Join(dir, DefaultFileName)
	}
	if err := mergeConfigFile(v, path, explicit); err != nil {
		return Config{}, err
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for k, val := range opts.FlagOverrides {
		v.Set(k, val)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// setDefaults seeds every key so AutomaticEnv can see it.
func setDefaults(v *viper.Viper) {
	def := Default()

	v.SetDefault("work_dir", def.WorkDir)
	v.SetDefault("templates_dir", def.TemplatesDir)
	v.SetDefault("fixtures_dir", def.FixturesDir)
	v.SetDefault("definitions_dir", def.DefinitionsDir)
	v.SetDefault("results_dir", def.ResultsDir)
	v.SetDefault("history_file", def.HistoryFile)
	v.SetDefault("executable", def.Executable)
	v.SetDefault("concurrency", def.Concurrency)
	v.SetDefault("keep_sandboxes", def.KeepSandboxes)
	v.SetDefault("test_command", def.TestCommand)
	v.SetDefault("test_command_timeout", def.TestCommandTimeout)

	v.SetDefault("agent.command", def.Agent.Command)
	v.SetDefault("agent.env_file", def.Agent.EnvFile)

	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.file", def.Log.File)
	v.SetDefault("log.verbose", def.Log.Verbose)

	v.SetDefault("monitor.addr", def.Monitor.Addr)
}

// mergeConfigFile merges path if it exists. A missing explicit
// file is an error; a missing default file is not.
func mergeConfigFile(v *viper.Viper, path string, explicit bool) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return nil
		}
		return fmt.Errorf("stat config %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("config path %s is a directory", path)
	}
	v.SetConfigFile(path)
	if err := v.MergeInConfig(); err != nil {
		return fmt.Errorf("merge config %s: %w", path, err)
	}
	return nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.WorkDir == "" {
		return fmt.Errorf("work_dir must not be empty")
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	if c.TestCommandTimeout <= 0 {
		return fmt.Errorf("test_command_timeout must be positive")
	}
	if strings.TrimSpace(c.Agent.Command) == "" {
		return fmt.Errorf("agent.command must not be empty")
	}
	return nil
}

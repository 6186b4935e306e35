package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"digital.vasic.harness/pkg/config"
	"digital.vasic.harness/pkg/logging"
	"digital.vasic.harness/pkg/registry"
	"digital.vasic.harness/pkg/sandbox"
	"digital.vasic.harness/pkg/shell"
	"digital.vasic.harness/pkg/validation"
	"digital.vasic.harness/pkg/validators"
)

// app holds what a command needs, built from the effective
// configuration.
type app struct {
	cfg        config.Config
	logger     logging.Logger
	validators *validators.Catalogue
	builder    *sandbox.Builder
}

// newApp loads the configuration and builds the shared pieces.
// Extra secrets are masked in every log line.
func newApp(cmd *cobra.Command, flags *globalFlags, secrets ...string) (*app, error) {
	overrides := map[string]any{}
	if flags.workDir != "" {
		overrides["work_dir"] = flags.workDir
	}
	if flags.logLevel != "" {
		overrides["log.level"] = flags.logLevel
	}
	if flags.verbose {
		overrides["log.verbose"] = true
	}

	cfg, err := config.Load(config.LoadOptions{
		ConfigPath:    flags.configPath,
		FlagOverrides: overrides,
	})
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg, cmd)
	if err != nil {
		return nil, err
	}
	if len(secrets) > 0 {
		logger = logging.NewRedactingLogger(logger, secrets...)
	}

	testCommand, err := shell.Split(cfg.TestCommand)
	if err != nil {
		return nil, fmt.Errorf("test_command: %w", err)
	}

	return &app{
		cfg:    cfg,
		logger: logger,
		validators: validators.New(validators.Options{
			TestCommand: testCommand,
			TestTimeout: cfg.TestCommandTimeout,
		}),
		builder: sandbox.NewBuilder(sandbox.Options{
			TemplatesDir: cfg.TemplatesDir,
			FixturesDir:  cfg.FixturesDir,
			Logger:       logger,
		}),
	}, nil
}

// newLogger logs to the command's stderr and, when log.file is
// set, to a JSON Lines file as well.
func newLogger(cfg config.Config, cmd *cobra.Command) (logging.Logger, error) {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	verbose := cfg.Log.Verbose || level == logging.LevelDebug

	console := logging.NewConsoleLogger(cmd.ErrOrStderr(), verbose)
	if cfg.Log.File == "" {
		return console, nil
	}

	file, err := logging.NewJSONLogger(logging.LoggerConfig{
		OutputPath: cfg.Log.File,
		Level:      level,
		Verbose:    verbose,
	})
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return logging.NewMultiLogger(console, file), nil
}

// registry returns the standard tests plus any definitions found
// in definitions_dir.
func (a *app) registry() (*registry.DefaultRegistry, error) {
	setups := a.builder.Procedures()
	reg, err := registry.NewStandard(setups)
	if err != nil {
		return nil, err
	}
	if dir := a.cfg.DefinitionsDir; dir != "" {
		if _, err := os.Stat(dir); err == nil {
			res := registry.Resolver{
				Setups:     setups,
				Validators: a.validators.Names(),
				Assertions: validation.Assertions(),
			}
			if err := registry.LoadDefinitionsFromDir(reg, dir, res); err != nil {
				return nil, err
			}
		}
	}
	if err := reg.ValidateDependencies(); err != nil {
		return nil, err
	}
	return reg, nil
}

func (a *app) close() {
	_ = a.logger.Close()
}

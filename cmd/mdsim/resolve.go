package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/san-kum/mdsim/internal/config"
	"github.com/san-kum/mdsim/internal/logging"
)

// resolveConfig layers base, then --preset, then --config, then any flag
// set explicitly on the command line.
func resolveConfig(cmd *cobra.Command, base *config.Config) (*config.Config, error) {
	cfg := base.Clone()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.LoadWithBase(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("side") {
		cfg.ParticlesSide = side
	}
	if flags.Changed("density") {
		cfg.Density = density
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("cutoff") {
		cfg.RadiusCutOff = cutoff
	}
	if flags.Changed("velocity") {
		cfg.VelocityMul = velocityMul
	}
	if flags.Changed("steps") {
		cfg.Steps = steps
	}
	if flags.Changed("mode") {
		cfg.Mode = mode
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("detailed") {
		cfg.DetailedLog = detailedLog
	}
	if flags.Changed("log-every") {
		cfg.LogEvery = logEvery
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) logging.Logger {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logging.LevelInfo
	}
	return logging.New(level)
}

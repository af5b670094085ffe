package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/gcfg.v1"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/mdsim/internal/logging"
)

const (
	DefaultParticlesSide = 20
	DefaultDensity       = 0.7
	DefaultDt            = 0.001
	DefaultRadiusCutOff  = 5.0
	DefaultVelocityMul   = 0.8
	DefaultSteps         = 1000
	DefaultLogEvery      = 100
)

const (
	ModeCells = "cells"
	ModeFlat  = "flat"
)

type Config struct {
	ParticlesSide int     `yaml:"particles_side" gcfg:"particles-side"`
	Density       float64 `yaml:"density" gcfg:"density"`
	Dt            float64 `yaml:"dt" gcfg:"dt"`
	RadiusCutOff  float64 `yaml:"radius_cut_off" gcfg:"radius-cut-off"`
	VelocityMul   float64 `yaml:"velocity_mul" gcfg:"velocity-mul"`
	Steps         int     `yaml:"steps" gcfg:"steps"`
	Mode          string  `yaml:"mode" gcfg:"mode"`
	Seed          int64   `yaml:"seed" gcfg:"seed"`
	Workers       int     `yaml:"workers" gcfg:"workers"`
	DetailedLog   bool    `yaml:"detailed_log" gcfg:"detailed-log"`
	LogEvery      int     `yaml:"log_every" gcfg:"log-every"`
	LogLevel      string  `yaml:"log_level" gcfg:"log-level"`
}

// iniFile is the gcfg layout: every key lives under [simulation].
type iniFile struct {
	Simulation Config
}

func DefaultConfig() *Config {
	return &Config{
		ParticlesSide: DefaultParticlesSide,
		Density:       DefaultDensity,
		Dt:            DefaultDt,
		RadiusCutOff:  DefaultRadiusCutOff,
		VelocityMul:   DefaultVelocityMul,
		Steps:         DefaultSteps,
		Mode:          ModeCells,
		Workers:       1,
		LogEvery:      DefaultLogEvery,
		LogLevel:      "info",
	}
}

// Load reads YAML, or INI when the file ends in .ini or .gcfg. Keys absent
// from the file keep their defaults.
func Load(path string) (*Config, error) {
	return LoadWithBase(path, DefaultConfig())
}

// LoadWithBase is Load with keys absent from the file taken from base.
// base is not modified.
func LoadWithBase(path string, base *Config) (*Config, error) {
	if isINI(path) {
		return loadINI(path, base)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := base.Clone()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func loadINI(path string, base *Config) (*Config, error) {
	wrap := iniFile{Simulation: *base}
	if err := gcfg.ReadFileInto(&wrap, path); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg := wrap.Simulation
	return &cfg, nil
}

func isINI(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ini", ".gcfg":
		return true
	}
	return false
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) NumParticles() int {
	return c.ParticlesSide * c.ParticlesSide
}

func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

func (c *Config) Validate() error {
	if c.ParticlesSide <= 0 {
		return fmt.Errorf("particles_side must be positive, got %d", c.ParticlesSide)
	}
	if !(c.Density > 0) {
		return fmt.Errorf("density must be positive, got %f", c.Density)
	}
	if !(c.Dt > 0) {
		return fmt.Errorf("dt must be positive, got %f", c.Dt)
	}
	if !(c.RadiusCutOff > 0) {
		return fmt.Errorf("radius_cut_off must be positive, got %f", c.RadiusCutOff)
	}
	if c.VelocityMul < 0 {
		return fmt.Errorf("velocity_mul must be non-negative, got %f", c.VelocityMul)
	}
	if c.Steps < 0 {
		return fmt.Errorf("steps must be non-negative, got %d", c.Steps)
	}
	if c.Mode != ModeCells && c.Mode != ModeFlat {
		return fmt.Errorf("mode must be %q or %q, got %q", ModeCells, ModeFlat, c.Mode)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", c.Workers)
	}
	if c.LogEvery <= 0 {
		return fmt.Errorf("log_every must be positive, got %d", c.LogEvery)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

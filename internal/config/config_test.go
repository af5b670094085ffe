package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 20, cfg.ParticlesSide)
	assert.Equal(t, 400, cfg.NumParticles())
	assert.Equal(t, ModeCells, cfg.Mode)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"side", func(c *Config) { c.ParticlesSide = 0 }},
		{"density", func(c *Config) { c.Density = -1 }},
		{"dt", func(c *Config) { c.Dt = 0 }},
		{"cutoff", func(c *Config) { c.RadiusCutOff = 0 }},
		{"velocity", func(c *Config) { c.VelocityMul = -0.1 }},
		{"steps", func(c *Config) { c.Steps = -1 }},
		{"mode", func(c *Config) { c.Mode = "octree" }},
		{"workers", func(c *Config) { c.Workers = -2 }},
		{"log every", func(c *Config) { c.LogEvery = 0 }},
		{"log level", func(c *Config) { c.LogLevel = "loud" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadYAMLKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte("particles_side: 8\nmode: flat\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.ParticlesSide)
	assert.Equal(t, ModeFlat, cfg.Mode)
	assert.Equal(t, DefaultDensity, cfg.Density)
	assert.Equal(t, DefaultLogEvery, cfg.LogEvery)
}

func TestLoadWithBase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte("steps: 5\n"), 0644))

	base := GetPreset("reference")
	cfg, err := LoadWithBase(path, base)
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Steps)
	assert.Equal(t, 100, cfg.ParticlesSide)
	assert.Equal(t, 1000, base.Steps, "base is not modified")
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	cfg := GetPreset("dense")
	cfg.Seed = 42
	cfg.DetailedLog = true

	require.NoError(t, Save(path, cfg))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadINI(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.ini")
	body := `[simulation]
particles-side = 12
radius-cut-off = 2.5
detailed-log = true
seed = 7
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 12, cfg.ParticlesSide)
	assert.Equal(t, 2.5, cfg.RadiusCutOff)
	assert.True(t, cfg.DetailedLog)
	assert.Equal(t, int64(7), cfg.Seed)
	assert.Equal(t, DefaultDt, cfg.Dt)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.ini")
	require.NoError(t, os.WriteFile(bad, []byte("[simulation]\nunknown-key = 1\n"), 0644))
	_, err = Load(bad)
	assert.Error(t, err)
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("reference")
	require.NotNil(t, cfg)
	assert.Equal(t, 100, cfg.ParticlesSide)
	assert.Equal(t, 5.0, cfg.RadiusCutOff)

	cfg.ParticlesSide = 1
	assert.Equal(t, 100, GetPreset("reference").ParticlesSide, "presets are copied")

	assert.Nil(t, GetPreset("nonexistent"))
}

func TestPresetsValidate(t *testing.T) {
	names := ListPresets()
	assert.Equal(t, []string{"dense", "gas", "reference", "small"}, names)
	for _, name := range names {
		assert.NoError(t, GetPreset(name).Validate(), name)
	}
}

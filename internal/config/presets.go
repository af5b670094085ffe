package config

import "sort"

var Presets = map[string]*Config{
	// 100x100 benchmark system
	"reference": {
		ParticlesSide: 100, Density: 0.7, Dt: 0.001, RadiusCutOff: 5, VelocityMul: 0.8,
		Steps: 1000, Mode: ModeCells, Workers: 1, LogEvery: 100, LogLevel: "info",
	},
	"small": {
		ParticlesSide: 10, Density: 0.7, Dt: 0.001, RadiusCutOff: 2.5, VelocityMul: 0.8,
		Steps: 2000, Mode: ModeFlat, Workers: 1, LogEvery: 50, LogLevel: "info",
	},
	// hot dilute system where the cutoff exceeds the box: one cell
	"gas": {
		ParticlesSide: 10, Density: 0.81, Dt: 0.0001, RadiusCutOff: 10000, VelocityMul: 16,
		Steps: 5000, Mode: ModeCells, Workers: 1, LogEvery: 100, LogLevel: "info",
	},
	"dense": {
		ParticlesSide: 40, Density: 0.95, Dt: 0.0005, RadiusCutOff: 2.5, VelocityMul: 0.5,
		Steps: 2000, Mode: ModeCells, Workers: 4, LogEvery: 100, LogLevel: "info",
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

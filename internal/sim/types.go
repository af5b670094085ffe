package sim

import (
	"time"

	"github.com/san-kum/mdsim/internal/metrics"
	"github.com/san-kum/mdsim/internal/particle"
)

type Metric interface {
	Name() string
	Observe(step int, e metrics.Energetics, ps []particle.Particle)
	Value() float64
	Reset()
}

// StepInfo describes a completed step. Particles aliases the simulator's
// storage and is only valid for the duration of the callback.
type StepInfo struct {
	Step       int
	Time       float64
	Elapsed    time.Duration
	Energetics metrics.Energetics
	Particles  []particle.Particle
	BoxWidth   float64
}

type Observer interface {
	OnStep(info StepInfo) error
}

type ObserverFunc func(info StepInfo) error

func (f ObserverFunc) OnStep(info StepInfo) error { return f(info) }

// Sample is one row of the energy history.
type Sample struct {
	Step int `json:"step"`
	metrics.Energetics
	StepMillis float64 `json:"step_ms"`
}

type Result struct {
	Seed      int64               `json:"seed"`
	Mode      string              `json:"mode"`
	BoxWidth  float64             `json:"box_width"`
	CellSide  int                 `json:"cell_side"`
	Steps     int                 `json:"steps"`
	Samples   []Sample            `json:"samples"`
	Summary   metrics.Summary     `json:"summary"`
	Metrics   map[string]float64  `json:"metrics"`
	Elapsed   time.Duration       `json:"elapsed"`
	Particles []particle.Particle `json:"-"`
}

// Kinetic returns the kinetic energy column of the samples.
func (r *Result) Kinetic() []float64 {
	out := make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		out[i] = s.Kinetic
	}
	return out
}

func (r *Result) Total() []float64 {
	out := make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		out[i] = s.Total
	}
	return out
}

package metrics

import (
	"math"

	"github.com/san-kum/mdsim/internal/particle"
)

// TemperatureScale converts mean kinetic energy per particle into the
// reported temperature.
const TemperatureScale = 120.0

// Energetics is the per-particle energy summary of one step.
type Energetics struct {
	Kinetic     float64 `json:"kinetic"`
	Potential   float64 `json:"potential"`
	Total       float64 `json:"total"`
	Temperature float64 `json:"temperature"`
}

// Measure averages kinetic (|v|²/2) and potential energy over the particles.
// Each particle carries the full potential of every pair it is in, so the
// mean, not the sum, is the meaningful figure.
func Measure(ps []particle.Particle) Energetics {
	if len(ps) == 0 {
		return Energetics{}
	}

	ke, pe := 0.0, 0.0
	for i := range ps {
		ke += ps[i].KineticEnergy()
		pe += ps[i].Potential
	}

	n := float64(len(ps))
	ke /= n
	pe /= n
	return Energetics{
		Kinetic:     ke,
		Potential:   pe,
		Total:       ke + pe,
		Temperature: ke * TemperatureScale,
	}
}

func (e Energetics) IsFinite() bool {
	for _, v := range []float64{e.Kinetic, e.Potential, e.Total} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// MeanEnergy averages the total energy over every observed step.
type MeanEnergy struct {
	name    string
	samples int
	sum     float64
}

func NewMeanEnergy() *MeanEnergy {
	return &MeanEnergy{name: "mean_energy"}
}

func (m *MeanEnergy) Name() string { return m.name }

func (m *MeanEnergy) Observe(step int, e Energetics, ps []particle.Particle) {
	m.sum += e.Total
	m.samples++
}

func (m *MeanEnergy) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *MeanEnergy) Reset() {
	m.sum = 0
	m.samples = 0
}

// MeanTemperature averages the reported temperature.
type MeanTemperature struct {
	samples int
	sum     float64
}

func NewMeanTemperature() *MeanTemperature { return &MeanTemperature{} }

func (m *MeanTemperature) Name() string { return "mean_temperature" }

func (m *MeanTemperature) Observe(step int, e Energetics, ps []particle.Particle) {
	m.sum += e.Temperature
	m.samples++
}

func (m *MeanTemperature) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *MeanTemperature) Reset() {
	m.sum = 0
	m.samples = 0
}

// EnergyDrift tracks the largest relative departure of the total energy from
// its first observed value.
type EnergyDrift struct {
	initialEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift() *EnergyDrift { return &EnergyDrift{} }

func (e *EnergyDrift) Name() string { return "energy_drift" }

func (e *EnergyDrift) Observe(step int, en Energetics, ps []particle.Particle) {
	if e.samples == 0 {
		e.initialEnergy = en.Total
	}
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(en.Total-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 { return e.maxDrift }

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}

// MomentumDrift records the largest total momentum magnitude seen. The
// initial conditions have zero net momentum, so any growth is numerical.
type MomentumDrift struct {
	max float64
}

func NewMomentumDrift() *MomentumDrift { return &MomentumDrift{} }

func (m *MomentumDrift) Name() string { return "momentum_drift" }

func (m *MomentumDrift) Observe(step int, e Energetics, ps []particle.Particle) {
	m.max = math.Max(m.max, particle.Momentum(ps).Norm())
}

func (m *MomentumDrift) Value() float64 { return m.max }

func (m *MomentumDrift) Reset() { m.max = 0 }

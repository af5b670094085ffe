package metrics

import "math"

// Series collects Energetics samples column-wise.
type Series struct {
	Kinetic     []float64
	Potential   []float64
	Total       []float64
	Temperature []float64
}

func NewSeries(capacity int) *Series {
	return &Series{
		Kinetic:     make([]float64, 0, capacity),
		Potential:   make([]float64, 0, capacity),
		Total:       make([]float64, 0, capacity),
		Temperature: make([]float64, 0, capacity),
	}
}

func (s *Series) Append(e Energetics) {
	s.Kinetic = append(s.Kinetic, e.Kinetic)
	s.Potential = append(s.Potential, e.Potential)
	s.Total = append(s.Total, e.Total)
	s.Temperature = append(s.Temperature, e.Temperature)
}

func (s *Series) Len() int { return len(s.Total) }

// At returns sample i.
func (s *Series) At(i int) Energetics {
	return Energetics{
		Kinetic:     s.Kinetic[i],
		Potential:   s.Potential[i],
		Total:       s.Total[i],
		Temperature: s.Temperature[i],
	}
}

func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// RelativeDeviation returns mean(|x - mean|) / |mean|, or 0 when the mean
// is zero.
func RelativeDeviation(xs []float64) float64 {
	m := Mean(xs)
	if m == 0 {
		return 0
	}
	dev := 0.0
	for _, x := range xs {
		dev += math.Abs(x - m)
	}
	return dev / float64(len(xs)) / math.Abs(m)
}

// Tracker accumulates energetics samples over a run and summarizes them.
type Tracker struct {
	series *Series
	drift  *EnergyDrift
}

func NewTracker(capacity int) *Tracker {
	return &Tracker{series: NewSeries(capacity), drift: NewEnergyDrift()}
}

func (t *Tracker) Add(e Energetics) {
	t.series.Append(e)
	t.drift.Observe(t.series.Len()-1, e, nil)
}

func (t *Tracker) Series() *Series { return t.series }

func (t *Tracker) MeanEnergy() float64 { return Mean(t.series.Total) }

func (t *Tracker) RelativeDeviation() float64 { return RelativeDeviation(t.series.Total) }

func (t *Tracker) MaxDrift() float64 { return t.drift.Value() }

// Summary holds the figures reported at the end of a run.
type Summary struct {
	Samples           int        `json:"samples"`
	MeanEnergy        float64    `json:"mean_energy"`
	RelativeDeviation float64    `json:"relative_deviation"`
	MaxDrift          float64    `json:"max_drift"`
	MeanTemperature   float64    `json:"mean_temperature"`
	Final             Energetics `json:"final"`
}

func (t *Tracker) Summary() Summary {
	s := Summary{
		Samples:           t.series.Len(),
		MeanEnergy:        t.MeanEnergy(),
		RelativeDeviation: t.RelativeDeviation(),
		MaxDrift:          t.MaxDrift(),
		MeanTemperature:   Mean(t.series.Temperature),
	}
	if n := t.series.Len(); n > 0 {
		s.Final = t.series.At(n - 1)
	}
	return s
}

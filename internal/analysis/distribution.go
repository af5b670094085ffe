package analysis

import (
	"math"

	"github.com/san-kum/mdsim/internal/md"
	"github.com/san-kum/mdsim/internal/particle"
)

type Histogram struct {
	Min, Max float64
	Counts   []int
}

func (h Histogram) BinWidth() float64 {
	if len(h.Counts) == 0 {
		return 0
	}
	return (h.Max - h.Min) / float64(len(h.Counts))
}

// SpeedHistogram bins |v| over [0, max speed].
func SpeedHistogram(ps []particle.Particle, bins int) Histogram {
	if bins <= 0 || len(ps) == 0 {
		return Histogram{}
	}

	speeds := make([]float64, len(ps))
	maxSpeed := 0.0
	for i := range ps {
		speeds[i] = ps[i].Velocity.Norm()
		maxSpeed = math.Max(maxSpeed, speeds[i])
	}
	if maxSpeed == 0 {
		maxSpeed = 1
	}

	h := Histogram{Min: 0, Max: maxSpeed, Counts: make([]int, bins)}
	for _, s := range speeds {
		b := int(s / maxSpeed * float64(bins))
		if b >= bins {
			b = bins - 1
		}
		h.Counts[b]++
	}
	return h
}

// RadialDistribution estimates g(r) up to rMax (at most half the box) using
// minimum-image distances. Result i covers [i*dr, (i+1)*dr).
func RadialDistribution(ps []particle.Particle, box md.Box, rMax float64, bins int) []float64 {
	n := len(ps)
	if n < 2 || bins <= 0 || !(rMax > 0) {
		return nil
	}
	rMax = math.Min(rMax, box.Width/2)
	dr := rMax / float64(bins)

	counts := make([]float64, bins)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			r := box.Displacement(ps[i].Center, ps[j].Center).Norm()
			if r >= rMax {
				continue
			}
			counts[int(r/dr)] += 2
		}
	}

	density := float64(n) / (box.Width * box.Width)
	g := make([]float64, bins)
	for i := range g {
		r0 := float64(i) * dr
		r1 := r0 + dr
		shell := math.Pi * (r1*r1 - r0*r0)
		g[i] = counts[i] / (float64(n) * density * shell)
	}
	return g
}

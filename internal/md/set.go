package md

import "github.com/san-kum/mdsim/internal/particle"

// ParticleSet is the particle storage an Integrator steps. It exposes its
// backing slice and enumerates neighbor pairs as indices into that slice,
// split into blocks that can be processed independently.
type ParticleSet interface {
	Particles() []particle.Particle
	// Refresh is called after positions are updated and wrapped, before any
	// pair is visited.
	Refresh()
	Blocks() int
	// VisitBlock calls fn for every pair owned by block b and stops at the
	// first error.
	VisitBlock(b int, fn func(i, j int) error) error
}

// FlatSet considers every pair of particles. Block i owns the pairs (i, j)
// with j > i.
type FlatSet []particle.Particle

func (s FlatSet) Particles() []particle.Particle { return s }

func (s FlatSet) Refresh() {}

func (s FlatSet) Blocks() int { return len(s) }

func (s FlatSet) VisitBlock(i int, fn func(i, j int) error) error {
	for j := i + 1; j < len(s); j++ {
		if s[i].ID == s[j].ID {
			continue
		}
		if err := fn(i, j); err != nil {
			return err
		}
	}
	return nil
}

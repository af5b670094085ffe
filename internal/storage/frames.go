package storage

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/san-kum/mdsim/internal/sim"
)

// FrameLog writes the per-particle detailed log. The first line is
// "side density dt width"; every frame then adds one
// "step id x y potential kinetic" line per particle.
type FrameLog struct {
	f     *os.File
	w     *bufio.Writer
	every int
}

// OpenFrameLog records one frame every `every` steps.
func (s *Store) OpenFrameLog(runID string, h FrameHeader, every int) (*FrameLog, error) {
	if every < 1 {
		every = 1
	}
	f, err := os.Create(filepath.Join(s.RunDir(runID), framesFile))
	if err != nil {
		return nil, err
	}

	fl := &FrameLog{f: f, w: bufio.NewWriterSize(f, 1<<16), every: every}
	if _, err := fmt.Fprintf(fl.w, "%d %g %g %g\n", h.Side, h.Density, h.Dt, h.BoxWidth); err != nil {
		f.Close()
		return nil, err
	}
	return fl, nil
}

type FrameHeader struct {
	Side     int
	Density  float64
	Dt       float64
	BoxWidth float64
}

func (fl *FrameLog) OnStep(info sim.StepInfo) error {
	if info.Step%fl.every != 0 {
		return nil
	}
	for i := range info.Particles {
		p := &info.Particles[i]
		_, err := fmt.Fprintf(fl.w, "%d %d %g %g %g %g\n",
			info.Step, p.ID, p.Center.X, p.Center.Y, p.Potential, p.KineticEnergy())
		if err != nil {
			return err
		}
	}
	return nil
}

func (fl *FrameLog) Close() error {
	if err := fl.w.Flush(); err != nil {
		fl.f.Close()
		return err
	}
	return fl.f.Close()
}

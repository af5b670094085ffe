package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/mdsim/internal/sim"
)

type ExportData struct {
	Run     *RunMetadata `json:"run"`
	Samples []sim.Sample `json:"samples"`
}

// ExportJSON writes a run's metadata and energy history as one document.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	samples, err := s.LoadEnergies(runID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ExportData{Run: meta, Samples: samples})
}

package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/mdsim/internal/config"
	"github.com/san-kum/mdsim/internal/metrics"
	"github.com/san-kum/mdsim/internal/particle"
	"github.com/san-kum/mdsim/internal/sim"
)

const (
	metadataFile  = "metadata.json"
	energyFile    = "energy.csv"
	particlesFile = "particles.csv"
	framesFile    = "frames.log"
)

var ErrRunNotFound = errors.New("storage: run not found")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) RunDir(runID string) string {
	return filepath.Join(s.baseDir, runID)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	ParentID  string             `json:"parent_id,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
	Config    *config.Config     `json:"config"`
	Seed      int64              `json:"seed"`
	Mode      string             `json:"mode"`
	Particles int                `json:"particles"`
	BoxWidth  float64            `json:"box_width"`
	CellSide  int                `json:"cell_side"`
	StartStep int                `json:"start_step"`
	Steps     int                `json:"steps"`
	ElapsedMs float64            `json:"elapsed_ms"`
	Summary   metrics.Summary    `json:"summary"`
	Metrics   map[string]float64 `json:"metrics"`
}

// EndStep is the step index a continuation of this run starts at.
func (m *RunMetadata) EndStep() int { return m.StartStep + m.Steps }

// Create allocates an empty run directory.
func (s *Store) Create(prefix string) (string, error) {
	if err := s.Init(); err != nil {
		return "", err
	}
	for {
		runID := fmt.Sprintf("%s_%d", prefix, time.Now().UnixNano())
		err := os.Mkdir(s.RunDir(runID), 0755)
		if err == nil {
			return runID, nil
		}
		if !os.IsExist(err) {
			return "", err
		}
	}
}

type SaveOptions struct {
	ParentID  string
	StartStep int
}

// Save writes metadata, the energy history and the final particle snapshot
// into an existing run directory.
func (s *Store) Save(runID string, cfg *config.Config, result *sim.Result, opts SaveOptions) error {
	runDir := s.RunDir(runID)
	if _, err := os.Stat(runDir); err != nil {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}

	meta := RunMetadata{
		ID:        runID,
		ParentID:  opts.ParentID,
		Timestamp: time.Now(),
		Config:    cfg,
		Seed:      result.Seed,
		Mode:      result.Mode,
		Particles: len(result.Particles),
		BoxWidth:  result.BoxWidth,
		CellSide:  result.CellSide,
		StartStep: opts.StartStep,
		Steps:     result.Steps,
		ElapsedMs: float64(result.Elapsed.Microseconds()) / 1000,
		Summary:   result.Summary,
		Metrics:   result.Metrics,
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return err
	}
	if err := writeEnergies(filepath.Join(runDir, energyFile), result.Samples); err != nil {
		return err
	}

	f, err := os.Create(filepath.Join(runDir, particlesFile))
	if err != nil {
		return err
	}
	defer f.Close()
	if err := particle.Encode(f, result.Particles); err != nil {
		return err
	}
	return f.Close()
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	return f.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func writeEnergies(path string, samples []sim.Sample) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"step", "kinetic", "potential", "total", "temperature", "step_ms"}); err != nil {
		return err
	}
	for _, s := range samples {
		row := []string{
			strconv.Itoa(s.Step),
			formatFloat(s.Kinetic),
			formatFloat(s.Potential),
			formatFloat(s.Total),
			formatFloat(s.Temperature),
			strconv.FormatFloat(s.StepMillis, 'f', 3, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		if runs[i].Timestamp.Equal(runs[j].Timestamp) {
			return runs[i].ID < runs[j].ID
		}
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.RunDir(runID), metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("decode %s metadata: %w", runID, err)
	}
	return &meta, nil
}

func (s *Store) LoadEnergies(runID string) ([]sim.Sample, error) {
	f, err := os.Open(filepath.Join(s.RunDir(runID), energyFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer f.Close()
	return readEnergies(f)
}

func readEnergies(r io.Reader) ([]sim.Sample, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 6

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []sim.Sample{}, nil
	}

	samples := make([]sim.Sample, 0, len(records)-1)
	for i, record := range records[1:] {
		var vals [5]float64
		for j := range vals {
			v, err := strconv.ParseFloat(record[j+1], 64)
			if err != nil {
				return nil, fmt.Errorf("energy row %d: %w", i+1, err)
			}
			vals[j] = v
		}
		step, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, fmt.Errorf("energy row %d: %w", i+1, err)
		}

		samples = append(samples, sim.Sample{
			Step: step,
			Energetics: metrics.Energetics{
				Kinetic:     vals[0],
				Potential:   vals[1],
				Total:       vals[2],
				Temperature: vals[3],
			},
			StepMillis: vals[4],
		})
	}
	return samples, nil
}

// LoadParticles reads the final snapshot a run can be restarted from.
func (s *Store) LoadParticles(runID string) ([]particle.Particle, error) {
	f, err := os.Open(filepath.Join(s.RunDir(runID), particlesFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer f.Close()
	return particle.Decode(f)
}

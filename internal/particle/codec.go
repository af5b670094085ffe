package particle

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/san-kum/mdsim/internal/vec"
)

const fieldSep = ";"

// Encode writes one particle per line as id;x;y;vx;vy;ax;ay;potential.
func Encode(w io.Writer, ps []Particle) error {
	bw := bufio.NewWriter(w)
	for i := range ps {
		p := &ps[i]
		fields := []string{
			strconv.Itoa(p.ID),
			formatFloat(p.Center.X),
			formatFloat(p.Center.Y),
			formatFloat(p.Velocity.X),
			formatFloat(p.Velocity.Y),
			formatFloat(p.Acceleration.X),
			formatFloat(p.Acceleration.Y),
			formatFloat(p.Potential),
		}
		if _, err := bw.WriteString(strings.Join(fields, fieldSep) + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Decode reads particles written by Encode. Ids, accelerations and
// potentials are restored as stored; mass is reset to 1.
func Decode(r io.Reader) ([]Particle, error) {
	sc := bufio.NewScanner(r)
	ps := make([]Particle, 0)
	line := 0

	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		fields := strings.Split(text, fieldSep)
		if len(fields) != 8 {
			return nil, fmt.Errorf("line %d: expected 8 fields, got %d", line, len(fields))
		}

		id, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: id: %w", line, err)
		}

		vals := make([]float64, 7)
		for k := range vals {
			v, err := strconv.ParseFloat(fields[k+1], 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: field %d: %w", line, k+1, err)
			}
			vals[k] = v
		}

		ps = append(ps, Particle{
			ID:           id,
			Center:       vec.New(vals[0], vals[1]),
			Velocity:     vec.New(vals[2], vals[3]),
			Acceleration: vec.New(vals[4], vals[5]),
			Potential:    vals[6],
			Mass:         1,
		})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return ps, nil
}

// NextID returns one past the largest id in ps, for seeding a Sequence
// after a restart.
func NextID(ps []Particle) int {
	next := 0
	for i := range ps {
		if ps[i].ID >= next {
			next = ps[i].ID + 1
		}
	}
	return next
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

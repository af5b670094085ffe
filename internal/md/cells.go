package md

import (
	"fmt"
	"math"

	"github.com/san-kum/mdsim/internal/particle"
)

// CellGrid buckets particles into side×side periodic cells. The grid owns a
// single arena of particles; cells hold arena indices, so every particle is
// in exactly one cell.
type CellGrid struct {
	box       Box
	side      int
	particles []particle.Particle
	cells     [][]int
	// neighbors[c] lists the distinct cells adjacent to c that sort after it.
	neighbors [][]int
}

// CellSideCount returns max(floor(boxWidth/radiusCutOff), 1).
func CellSideCount(boxWidth, radiusCutOff float64) int {
	n := int(math.Floor(boxWidth / radiusCutOff))
	if n < 1 {
		n = 1
	}
	return n
}

// BuildCellGrid copies particles into a new grid and assigns each to its
// cell. Positions must already lie inside [0, boxWidth).
func BuildCellGrid(particles []particle.Particle, boxWidth, radiusCutOff float64) (*CellGrid, error) {
	if !(boxWidth > 0) || !(radiusCutOff > 0) {
		return nil, fmt.Errorf("%w: width %g, cutoff %g", ErrInvalidGeometry, boxWidth, radiusCutOff)
	}

	side := CellSideCount(boxWidth, radiusCutOff)
	g := &CellGrid{
		box:       Box{Width: boxWidth},
		side:      side,
		particles: particle.Clone(particles),
		cells:     make([][]int, side*side),
		neighbors: forwardNeighbors(side),
	}

	for i := range g.particles {
		p := &g.particles[i]
		row, col, ok := g.locate(p.Center.Y, p.Center.X)
		if !ok {
			return nil, fmt.Errorf("%w: id %d at (%g, %g)", ErrOutOfDomain, p.ID, p.Center.X, p.Center.Y)
		}
		c := row*side + col
		g.cells[c] = append(g.cells[c], i)
	}

	return g, nil
}

func (g *CellGrid) locate(y, x float64) (row, col int, ok bool) {
	fr := y / g.box.Width * float64(g.side)
	fc := x / g.box.Width * float64(g.side)
	if math.IsNaN(fr) || math.IsNaN(fc) {
		return 0, 0, false
	}
	row, col = int(math.Floor(fr)), int(math.Floor(fc))
	if row < 0 || row >= g.side || col < 0 || col >= g.side {
		return 0, 0, false
	}
	return row, col, true
}

func (g *CellGrid) clampedIndex(v float64) int {
	f := math.Floor(v / g.box.Width * float64(g.side))
	if !(f >= 0) {
		return 0
	}
	if f > float64(g.side-1) {
		return g.side - 1
	}
	return int(f)
}

// Rebuild reassigns every particle to the cell containing its current
// position. Indices are clamped into the grid so a coordinate that rounds
// onto the upper boundary lands in the last cell.
func (g *CellGrid) Rebuild() {
	for c := range g.cells {
		g.cells[c] = g.cells[c][:0]
	}
	for i := range g.particles {
		p := &g.particles[i]
		row := g.clampedIndex(p.Center.Y)
		col := g.clampedIndex(p.Center.X)
		c := row*g.side + col
		g.cells[c] = append(g.cells[c], i)
	}
}

func (g *CellGrid) Side() int { return g.side }

func (g *CellGrid) Box() Box { return g.box }

func (g *CellGrid) Len() int { return len(g.particles) }

// Particles returns the arena. Callers may read and mutate particle values
// but must call Rebuild after moving them.
func (g *CellGrid) Particles() []particle.Particle { return g.particles }

// Cell returns the arena indices held by cell (row, col). The slice is owned
// by the grid.
func (g *CellGrid) Cell(row, col int) []int { return g.cells[row*g.side+col] }

func (g *CellGrid) Refresh() { g.Rebuild() }

func (g *CellGrid) Blocks() int { return len(g.cells) }

// VisitBlock visits the pairs owned by cell c: pairs inside the cell, then
// pairs between the cell and each of its forward neighbors.
func (g *CellGrid) VisitBlock(c int, fn func(i, j int) error) error {
	cell := g.cells[c]
	for a := 0; a+1 < len(cell); a++ {
		for b := a + 1; b < len(cell); b++ {
			if err := fn(cell[a], cell[b]); err != nil {
				return err
			}
		}
	}

	for _, i := range cell {
		for _, nb := range g.neighbors[c] {
			for _, j := range g.cells[nb] {
				if err := fn(i, j); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// forwardNeighbors lists, for each cell, the periodic 8-neighborhood cells
// that come strictly after it in row-major order. Wrapped offsets that alias
// the same cell (side 1 or 2) are listed once.
func forwardNeighbors(side int) [][]int {
	out := make([][]int, side*side)
	for i := 0; i < side; i++ {
		for j := 0; j < side; j++ {
			c := i*side + j
			seen := make(map[int]bool, 8)
			for di := -1; di <= 1; di++ {
				for dj := -1; dj <= 1; dj++ {
					if di == 0 && dj == 0 {
						continue
					}
					ai := (i + di + side) % side
					aj := (j + dj + side) % side
					if ai < i || (ai == i && aj <= j) {
						continue
					}
					nb := ai*side + aj
					if seen[nb] {
						continue
					}
					seen[nb] = true
					out[c] = append(out[c], nb)
				}
			}
		}
	}
	return out
}

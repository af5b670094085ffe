// Package export renders stored particle snapshots as SVG.
package export

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/san-kum/mdsim/internal/particle"
)

type SVGOptions struct {
	// Size is the image side in pixels.
	Size int
	// CellSide draws the cell grid when above 1.
	CellSide int
	// ColorBy is "potential", "kinetic" or empty for a single color.
	ColorBy string
}

// SnapshotSVG draws the square periodic box with every particle as a disc of
// diameter one length unit. The y axis points up.
func SnapshotSVG(w io.Writer, ps []particle.Particle, boxWidth float64, opts SVGOptions) error {
	if !(boxWidth > 0) {
		return fmt.Errorf("box width must be positive, got %g", boxWidth)
	}
	size := opts.Size
	if size <= 0 {
		size = 800
	}
	scale := float64(size) / boxWidth

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a" stroke="#444466"/>
`, size, size, size, size))

	if opts.CellSide > 1 {
		sb.WriteString(`<g stroke="#222244" stroke-width="1">` + "\n")
		for k := 1; k < opts.CellSide; k++ {
			v := float64(k) * float64(size) / float64(opts.CellSide)
			sb.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="0" x2="%.1f" y2="%d"/>`+"\n", v, v, size))
			sb.WriteString(fmt.Sprintf(`<line x1="0" y1="%.1f" x2="%d" y2="%.1f"/>`+"\n", v, size, v))
		}
		sb.WriteString("</g>\n")
	}

	values := colorValues(ps, opts.ColorBy)
	lo, hi := bounds(values)
	r := 0.5 * scale

	sb.WriteString(`<g fill="#00ff88">` + "\n")
	for i := range ps {
		cx := ps[i].Center.X * scale
		cy := float64(size) - ps[i].Center.Y*scale
		if values == nil {
			sb.WriteString(fmt.Sprintf(`<circle cx="%.2f" cy="%.2f" r="%.2f"/>`+"\n", cx, cy, r))
			continue
		}
		sb.WriteString(fmt.Sprintf(`<circle cx="%.2f" cy="%.2f" r="%.2f" fill="%s"/>`+"\n",
			cx, cy, r, ramp((values[i]-lo)/(hi-lo))))
	}
	sb.WriteString("</g>\n</svg>\n")

	_, err := io.WriteString(w, sb.String())
	return err
}

func colorValues(ps []particle.Particle, by string) []float64 {
	var f func(*particle.Particle) float64
	switch by {
	case "potential":
		f = func(p *particle.Particle) float64 { return p.Potential }
	case "kinetic":
		f = func(p *particle.Particle) float64 { return p.KineticEnergy() }
	default:
		return nil
	}
	out := make([]float64, len(ps))
	for i := range ps {
		out[i] = f(&ps[i])
	}
	return out
}

// bounds never returns an empty range.
func bounds(xs []float64) (float64, float64) {
	if len(xs) == 0 {
		return 0, 1
	}
	lo, hi := xs[0], xs[0]
	for _, x := range xs {
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	if hi == lo {
		hi = lo + 1
	}
	return lo, hi
}

// ramp maps t in [0,1] from blue to red.
func ramp(t float64) string {
	t = math.Max(0, math.Min(1, t))
	r := int(40 + t*215)
	b := int(255 - t*215)
	return fmt.Sprintf("#%02x%02x%02x", r, 80, b)
}

// Package band collapses continuous elevation grids into discrete terrain bands.
package band

import (
	"fmt"

	"github.com/relieftools/reliefmap/internal/terrain"
)

// Unclassified marks cells whose elevation falls outside every rule window.
const Unclassified = -1

// Window maps the inclusive elevation range [Lo, Hi] to a single band.
type Window struct {
	Lo float64
	Hi float64
	ID int
}

// Ramp assigns strictly increasing band identifiers to the elevation steps
// from Start to End. The identifier gap between consecutive steps starts at
// FirstGap and grows by GapGrowth per step, compressing color variety at low
// altitude and expanding it at high altitude.
type Ramp struct {
	Start     float64
	End       float64
	Step      float64
	FirstID   int
	FirstGap  int
	GapGrowth int
}

// ID returns the band identifier for the k-th ramp elevation.
func (r Ramp) ID(k int) int {
	return r.FirstID + k*r.FirstGap + r.GapGrowth*k*(k-1)/2
}

// Rules is the ordered threshold rule set of one variant.
type Rules struct {
	FloorID int // band for all elevations below zero
	Windows []Window
	Ramp    *Ramp // nil when the variant has no high-elevation ramp
}

// Validate checks that windows are ordered, disjoint and monotonic in band id.
func (r Rules) Validate() error {
	prevHi := 0.0
	prevID := r.FloorID
	for i, w := range r.Windows {
		if w.Lo > w.Hi {
			return fmt.Errorf("window %d has empty range [%g, %g]", i, w.Lo, w.Hi)
		}
		if i > 0 && w.Lo <= prevHi {
			return fmt.Errorf("window %d overlaps or reorders previous window (lo %g <= prev hi %g)", i, w.Lo, prevHi)
		}
		if w.ID < prevID {
			return fmt.Errorf("window %d band id %d breaks monotonicity (previous %d)", i, w.ID, prevID)
		}
		prevHi = w.Hi
		prevID = w.ID
	}
	if r.Ramp != nil {
		if r.Ramp.Step <= 0 {
			return fmt.Errorf("ramp step must be positive, got %g", r.Ramp.Step)
		}
		if r.Ramp.Start <= prevHi {
			return fmt.Errorf("ramp start %g overlaps windows ending at %g", r.Ramp.Start, prevHi)
		}
		if r.Ramp.FirstID < prevID {
			return fmt.Errorf("ramp first id %d breaks monotonicity (previous %d)", r.Ramp.FirstID, prevID)
		}
		if r.Ramp.FirstGap <= 0 || r.Ramp.GapGrowth < 0 {
			return fmt.Errorf("ramp gaps must grow (first %d, growth %d)", r.Ramp.FirstGap, r.Ramp.GapGrowth)
		}
	}
	return nil
}

// MaxID returns the largest band identifier the rules can produce.
func (r Rules) MaxID() int {
	maxID := r.FloorID
	for _, w := range r.Windows {
		if w.ID > maxID {
			maxID = w.ID
		}
	}
	if r.Ramp != nil {
		steps := int((r.Ramp.End-r.Ramp.Start)/r.Ramp.Step) + 1
		if id := r.Ramp.ID(steps - 1); id > maxID {
			maxID = id
		}
	}
	return maxID
}

// Classify maps one elevation to its band. The second result is false when
// the elevation falls in a gap between rule windows.
func (r Rules) Classify(elevation float64) (int, bool) {
	if elevation < 0 {
		return r.FloorID, true
	}
	for _, w := range r.Windows {
		if elevation >= w.Lo && elevation <= w.Hi {
			return w.ID, true
		}
	}
	if r.Ramp != nil && elevation >= r.Ramp.Start && elevation <= r.Ramp.End {
		k := int((elevation - r.Ramp.Start) / r.Ramp.Step)
		// Only exact ramp steps are defined; quantized input always lands
		// on one, anything else is a gap.
		if r.Ramp.Start+float64(k)*r.Ramp.Step == elevation {
			return r.Ramp.ID(k), true
		}
	}
	return Unclassified, false
}

// Grid holds one band identifier per cell in row-major order.
type Grid struct {
	Width  int
	Height int
	Cells  []int
}

// NewGrid allocates a band grid with every cell set to Unclassified.
func NewGrid(width, height int) *Grid {
	cells := make([]int, width*height)
	for i := range cells {
		cells[i] = Unclassified
	}
	return &Grid{Width: width, Height: height, Cells: cells}
}

// At returns the band at (x, y).
func (g *Grid) At(x, y int) int { return g.Cells[y*g.Width+x] }

// Set writes the band at (x, y).
func (g *Grid) Set(x, y int, id int) { g.Cells[y*g.Width+x] = id }

// Stats reports remap bookkeeping for one grid.
type Stats struct {
	Unclassified int // cells that fell in a gap between rule windows
}

// Remap produces a band grid from an elevation grid under the given rules.
// Gap cells are marked Unclassified and counted rather than silently keeping
// their elevation.
func Remap(elev *terrain.Grid, rules Rules) (*Grid, Stats, error) {
	if err := rules.Validate(); err != nil {
		return nil, Stats{}, fmt.Errorf("invalid band rules: %w", err)
	}

	grid := NewGrid(elev.Width, elev.Height)
	var stats Stats
	for y := 0; y < elev.Height; y++ {
		for x := 0; x < elev.Width; x++ {
			id, ok := rules.Classify(elev.At(x, y))
			if !ok {
				stats.Unclassified++
			}
			grid.Set(x, y, id)
		}
	}
	return grid, stats, nil
}

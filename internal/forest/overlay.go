// Package forest grows stochastic forest patches on vegetation-eligible bands.
package forest

import (
	"fmt"
	"math/rand"

	"github.com/relieftools/reliefmap/internal/band"
)

// Params configures the overlay.
type Params struct {
	// Patches is the requested number of disjoint forest patches.
	Patches int
	// SpawnProb is the chance that an eligible random pick seeds a patch.
	SpawnProb float64
	// Eligible maps vegetation-eligible band ids to the base acceptance
	// probability used when the flood fill reaches a neighbor of that band.
	Eligible map[int]float64
	// Decay multiplies the acceptance probability each ring outward,
	// bounding patch size.
	Decay float64
	// MaxAttempts bounds the seed-search loop so exhausted terrain cannot
	// hang the run. Zero selects a budget proportional to the grid size.
	MaxAttempts int
}

// DefaultParams returns the overlay settings of the forest variant.
func DefaultParams(patches int) Params {
	return Params{
		Patches:     patches,
		SpawnProb:   0.1,
		Eligible:    map[int]float64{1: 1.0, 2: 0.1},
		Decay:       0.9,
		MaxAttempts: 0,
	}
}

// Grid marks forested cells, same shape as the band grid it was grown on.
type Grid struct {
	Width  int
	Height int
	Cells  []bool
}

// NewGrid allocates an empty forest grid.
func NewGrid(width, height int) *Grid {
	return &Grid{Width: width, Height: height, Cells: make([]bool, width*height)}
}

// At reports whether (x, y) is forested.
func (g *Grid) At(x, y int) bool { return g.Cells[y*g.Width+x] }

// Set marks (x, y) forested.
func (g *Grid) Set(x, y int, v bool) { g.Cells[y*g.Width+x] = v }

// Count returns the number of forested cells.
func (g *Grid) Count() int {
	n := 0
	for _, c := range g.Cells {
		if c {
			n++
		}
	}
	return n
}

// Result reports how the overlay went.
type Result struct {
	Placed    int // patches actually seeded
	Shortfall int // requested patches that could not be placed
	Attempts  int // random picks consumed
}

type cell struct {
	x, y int
	// prob is the acceptance probability scale at this fill depth.
	prob float64
}

// Grow places up to p.Patches disjoint forest patches on bands listed in
// p.Eligible. Each patch is a breadth-first flood fill from a random seed
// cell; neighbor acceptance is stochastic per band and decays multiplicatively
// outward. The search is bounded by an attempt budget instead of retrying
// forever when eligible terrain runs out.
func Grow(bands *band.Grid, p Params, rng *rand.Rand) (*Grid, Result, error) {
	if p.Patches < 0 {
		return nil, Result{}, fmt.Errorf("patch count must be non-negative, got %d", p.Patches)
	}
	if p.SpawnProb <= 0 || p.SpawnProb > 1 {
		return nil, Result{}, fmt.Errorf("spawn probability %g outside (0, 1]", p.SpawnProb)
	}
	if p.Decay <= 0 || p.Decay > 1 {
		return nil, Result{}, fmt.Errorf("decay %g outside (0, 1]", p.Decay)
	}
	if len(p.Eligible) == 0 {
		return nil, Result{}, fmt.Errorf("no vegetation-eligible bands configured")
	}

	grid := NewGrid(bands.Width, bands.Height)
	budget := p.MaxAttempts
	if budget <= 0 {
		budget = bands.Width * bands.Height * 10
	}

	var res Result
	for res.Placed < p.Patches && res.Attempts < budget {
		res.Attempts++
		x := rng.Intn(bands.Width)
		y := rng.Intn(bands.Height)

		if _, ok := p.Eligible[bands.At(x, y)]; !ok || grid.At(x, y) {
			continue
		}
		if rng.Float64() >= p.SpawnProb {
			continue
		}

		fill(grid, bands, p, rng, x, y)
		res.Placed++
	}
	res.Shortfall = p.Patches - res.Placed
	return grid, res, nil
}

// fill grows one patch outward from the seed cell.
func fill(grid *Grid, bands *band.Grid, p Params, rng *rand.Rand, seedX, seedY int) {
	grid.Set(seedX, seedY, true)
	queue := []cell{{x: seedX, y: seedY, prob: 1.0}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		next := cur.prob * p.Decay
		for _, d := range [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
			nx, ny := cur.x+d[0], cur.y+d[1]
			if nx < 0 || ny < 0 || nx >= bands.Width || ny >= bands.Height {
				continue
			}
			if grid.At(nx, ny) {
				continue
			}
			accept, ok := p.Eligible[bands.At(nx, ny)]
			if !ok {
				continue
			}
			if rng.Float64() >= accept*cur.prob {
				continue
			}
			grid.Set(nx, ny, true)
			queue = append(queue, cell{x: nx, y: ny, prob: next})
		}
	}
}

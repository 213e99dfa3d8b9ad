package forest

import (
	"math/rand"
	"testing"

	"github.com/relieftools/reliefmap/internal/band"
)

// uniformBands builds a band grid filled with the given id.
func uniformBands(w, h, id int) *band.Grid {
	g := band.NewGrid(w, h)
	for i := range g.Cells {
		g.Cells[i] = id
	}
	return g
}

func TestGrowOnlyOnEligibleBands(t *testing.T) {
	bands := uniformBands(32, 32, 0)
	// Scatter eligible terrain through the water.
	for y := 8; y < 24; y++ {
		for x := 8; x < 24; x++ {
			if (x+y)%3 == 0 {
				bands.Set(x, y, 1)
			} else if (x+y)%3 == 1 {
				bands.Set(x, y, 2)
			}
		}
	}

	grid, _, err := Grow(bands, DefaultParams(5), rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatalf("Grow failed: %v", err)
	}

	for y := 0; y < grid.Height; y++ {
		for x := 0; x < grid.Width; x++ {
			if !grid.At(x, y) {
				continue
			}
			id := bands.At(x, y)
			if id != 1 && id != 2 {
				t.Fatalf("forested cell (%d,%d) sits on ineligible band %d", x, y, id)
			}
		}
	}
}

func TestGrowSingleIsolatedCell(t *testing.T) {
	// One band-1 cell surrounded by water: growth must halt immediately
	// after foresting exactly that cell.
	bands := uniformBands(8, 8, 0)
	bands.Set(4, 4, 1)

	p := DefaultParams(1)
	p.SpawnProb = 1.0
	p.MaxAttempts = 100000

	grid, res, err := Grow(bands, p, rand.New(rand.NewSource(3)))
	if err != nil {
		t.Fatalf("Grow failed: %v", err)
	}

	if res.Placed != 1 {
		t.Fatalf("placed %d patches, want 1 (attempts %d)", res.Placed, res.Attempts)
	}
	if !grid.At(4, 4) {
		t.Fatal("expected the single eligible cell to be forested")
	}
	if got := grid.Count(); got != 1 {
		t.Fatalf("forested cell count = %d, want 1", got)
	}
}

func TestGrowAttemptBudget(t *testing.T) {
	// No eligible terrain at all: the loop must stop at the budget and
	// report the full shortfall instead of hanging.
	bands := uniformBands(8, 8, 0)

	p := DefaultParams(3)
	p.MaxAttempts = 100

	grid, res, err := Grow(bands, p, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("Grow failed: %v", err)
	}

	if res.Placed != 0 || res.Shortfall != 3 {
		t.Fatalf("placed %d shortfall %d, want 0 and 3", res.Placed, res.Shortfall)
	}
	if res.Attempts != 100 {
		t.Fatalf("attempts = %d, want the full budget of 100", res.Attempts)
	}
	if grid.Count() != 0 {
		t.Fatal("expected no forested cells")
	}
}

func TestGrowPlacesRequestedPatches(t *testing.T) {
	bands := uniformBands(64, 64, 1)

	grid, res, err := Grow(bands, DefaultParams(4), rand.New(rand.NewSource(99)))
	if err != nil {
		t.Fatalf("Grow failed: %v", err)
	}

	if res.Placed != 4 {
		t.Fatalf("placed %d patches, want 4", res.Placed)
	}
	if res.Shortfall != 0 {
		t.Fatalf("shortfall = %d, want 0", res.Shortfall)
	}
	if grid.Count() < 4 {
		t.Fatalf("forested cells = %d, want at least one per patch", grid.Count())
	}
}

func TestGrowValidation(t *testing.T) {
	bands := uniformBands(4, 4, 1)
	rng := rand.New(rand.NewSource(1))

	tests := []struct {
		name   string
		mutate func(*Params)
	}{
		{"negative patches", func(p *Params) { p.Patches = -1 }},
		{"zero spawn prob", func(p *Params) { p.SpawnProb = 0 }},
		{"spawn prob above one", func(p *Params) { p.SpawnProb = 1.5 }},
		{"zero decay", func(p *Params) { p.Decay = 0 }},
		{"no eligible bands", func(p *Params) { p.Eligible = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams(1)
			tt.mutate(&p)
			if _, _, err := Grow(bands, p, rng); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

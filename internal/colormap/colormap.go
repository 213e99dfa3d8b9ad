// Package colormap turns band grids into per-cell RGB colors.
package colormap

import (
	"fmt"
	"image/color"

	"github.com/relieftools/reliefmap/internal/band"
	"github.com/relieftools/reliefmap/internal/forest"
)

// RGB is a color triple with components in [0, 1].
type RGB struct {
	R, G, B float64
}

// NRGBA converts the triple to an 8-bit color for image encoding.
func (c RGB) NRGBA() color.NRGBA {
	return color.NRGBA{
		R: uint8(clamp01(c.R)*255 + 0.5),
		G: uint8(clamp01(c.G)*255 + 0.5),
		B: uint8(clamp01(c.B)*255 + 0.5),
		A: 255,
	}
}

// Lerp interpolates between two colors, t in [0, 1].
func Lerp(a, b RGB, t float64) RGB {
	return RGB{
		R: a.R + (b.R-a.R)*t,
		G: a.G + (b.G-a.G)*t,
		B: a.B + (b.B-a.B)*t,
	}
}

// Entry colors the inclusive band id range [Lo, Hi]. A flat entry uses From
// for every band in the range; a gradient entry interpolates From to To
// across it.
type Entry struct {
	Lo       int
	Hi       int
	From     RGB
	To       RGB
	Gradient bool
}

func (e Entry) color(id int) RGB {
	if !e.Gradient || e.Hi == e.Lo {
		return e.From
	}
	t := float64(id-e.Lo) / float64(e.Hi-e.Lo)
	return Lerp(e.From, e.To, t)
}

// Table is an ordered band-to-color lookup. Fallback colors ids above the
// last entry (snow in every built-in style); Unmapped colors cells the
// remapper left unclassified.
type Table struct {
	Entries  []Entry
	Fallback RGB
	Unmapped RGB
}

// Validate checks that entries are ordered and non-overlapping.
func (t Table) Validate() error {
	for i, e := range t.Entries {
		if e.Lo > e.Hi {
			return fmt.Errorf("entry %d has empty range [%d, %d]", i, e.Lo, e.Hi)
		}
		if i > 0 && e.Lo <= t.Entries[i-1].Hi {
			return fmt.Errorf("entry %d overlaps previous entry", i)
		}
	}
	return nil
}

// Color returns the color for one band id.
func (t Table) Color(id int) RGB {
	if id == band.Unclassified {
		return t.Unmapped
	}
	for _, e := range t.Entries {
		if id >= e.Lo && id <= e.Hi {
			return e.color(id)
		}
	}
	return t.Fallback
}

// Grid holds one RGB triple per cell in row-major order.
type Grid struct {
	Width  int
	Height int
	Cells  []RGB
}

// At returns the color at (x, y).
func (g *Grid) At(x, y int) RGB { return g.Cells[y*g.Width+x] }

// Map derives a color grid from a band grid. forestGrid may be nil; forested
// cells override to forestColor. The lookup is a pure per-cell function, so
// identical inputs always produce identical output.
func Map(bands *band.Grid, forestGrid *forest.Grid, table Table, forestColor RGB) (*Grid, error) {
	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("invalid color table: %w", err)
	}
	if forestGrid != nil && (forestGrid.Width != bands.Width || forestGrid.Height != bands.Height) {
		return nil, fmt.Errorf("forest grid %dx%d does not match band grid %dx%d",
			forestGrid.Width, forestGrid.Height, bands.Width, bands.Height)
	}

	grid := &Grid{
		Width:  bands.Width,
		Height: bands.Height,
		Cells:  make([]RGB, bands.Width*bands.Height),
	}
	for y := 0; y < bands.Height; y++ {
		for x := 0; x < bands.Width; x++ {
			if forestGrid != nil && forestGrid.At(x, y) {
				grid.Cells[y*grid.Width+x] = forestColor
				continue
			}
			grid.Cells[y*grid.Width+x] = table.Color(bands.At(x, y))
		}
	}
	return grid, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

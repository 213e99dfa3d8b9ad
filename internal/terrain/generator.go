// Package terrain generates synthetic elevation grids from coherent noise.
package terrain

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/aquilax/go-perlin"
)

// Params configures one terrain generation run. Values are fixed for the
// lifetime of a run; stages receive the struct by value.
type Params struct {
	Width       int
	Height      int
	Scale       float64 // zoom factor; larger values produce smoother terrain
	ScaleFactor float64 // multiplier applied to Scale before sampling
	Octaves     int
	Persistence float64
	Lacunarity  float64
	ElevMin     float64 // meters
	ElevMax     float64 // meters
	Step        float64 // quantization interval in meters
}

// Validate checks that the parameters describe a usable grid.
func (p Params) Validate() error {
	if p.Width <= 0 || p.Height <= 0 {
		return fmt.Errorf("grid dimensions must be positive, got %dx%d", p.Width, p.Height)
	}
	if p.Scale <= 0 || p.ScaleFactor <= 0 {
		return fmt.Errorf("scale and scale factor must be positive")
	}
	if p.Octaves <= 0 {
		return fmt.Errorf("octaves must be positive, got %d", p.Octaves)
	}
	if p.Persistence <= 0 {
		return fmt.Errorf("persistence must be positive, got %g", p.Persistence)
	}
	if p.ElevMin >= p.ElevMax {
		return fmt.Errorf("elevation range [%g, %g] is empty", p.ElevMin, p.ElevMax)
	}
	if p.Step <= 0 {
		return fmt.Errorf("quantization step must be positive, got %g", p.Step)
	}
	return nil
}

// Grid is a fixed-size elevation grid in row-major order.
type Grid struct {
	Width  int
	Height int
	Cells  []float64
}

// NewGrid allocates a zeroed elevation grid.
func NewGrid(width, height int) *Grid {
	return &Grid{
		Width:  width,
		Height: height,
		Cells:  make([]float64, width*height),
	}
}

// At returns the elevation at (x, y).
func (g *Grid) At(x, y int) float64 { return g.Cells[y*g.Width+x] }

// Set writes the elevation at (x, y).
func (g *Grid) Set(x, y int, v float64) { g.Cells[y*g.Width+x] = v }

// Generate samples a coherent-noise field over the configured grid, rescales
// the output into [ElevMin, ElevMax] and quantizes it to the nearest Step.
// A random offset pair drawn from rng shifts the noise field so that each run
// produces different terrain.
func Generate(p Params, rng *rand.Rand) (*Grid, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid terrain params: %w", err)
	}

	offX := rng.Float64() * 1000
	offY := rng.Float64() * 1000

	// go-perlin weights octave i by alpha^-i, so alpha is the inverse of
	// the usual persistence parameter. Beta is the lacunarity.
	noise := perlin.NewPerlin(1.0/p.Persistence, p.Lacunarity, int32(p.Octaves), rng.Int63())

	effScale := p.Scale * p.ScaleFactor
	grid := NewGrid(p.Width, p.Height)
	for y := 0; y < p.Height; y++ {
		for x := 0; x < p.Width; x++ {
			v := noise.Noise2D((float64(x)+offX)/effScale, (float64(y)+offY)/effScale)
			// Octave sums can overshoot the nominal [-1, 1] range.
			v = clamp(v, -1, 1)
			normalized := (v + 1) / 2
			elevation := p.ElevMin + normalized*(p.ElevMax-p.ElevMin)
			grid.Set(x, y, Quantize(elevation, p.Step))
		}
	}
	return grid, nil
}

// Quantize rounds v to the nearest multiple of step, ties away from zero.
func Quantize(v, step float64) float64 {
	return math.Round(v/step) * step
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

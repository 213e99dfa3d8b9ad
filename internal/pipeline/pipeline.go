// Package pipeline wires the generation stages into one run.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/relieftools/reliefmap/internal/band"
	"github.com/relieftools/reliefmap/internal/colormap"
	"github.com/relieftools/reliefmap/internal/forest"
	"github.com/relieftools/reliefmap/internal/render"
	"github.com/relieftools/reliefmap/internal/terrain"
	"github.com/relieftools/reliefmap/internal/variant"
)

// TerrainSource produces the elevation grid for a run. The default source
// samples coherent noise; tests inject fixed grids.
type TerrainSource interface {
	Terrain(p terrain.Params, rng *rand.Rand) (*terrain.Grid, error)
}

type noiseSource struct{}

func (noiseSource) Terrain(p terrain.Params, rng *rand.Rand) (*terrain.Grid, error) {
	return terrain.Generate(p, rng)
}

// Result carries the grids of one completed run. Grids belong to the run and
// are never shared across runs.
type Result struct {
	Seed         int64
	Elevation    *terrain.Grid
	Bands        *band.Grid
	BandStats    band.Stats
	Forest       *forest.Grid // nil unless the variant has a forest overlay
	ForestResult *forest.Result
	Colors       *colormap.Grid
}

// Options configures a Runner.
type Options struct {
	// Source overrides the default noise-backed terrain source.
	Source TerrainSource
}

// Runner executes the linear pipeline for one variant: terrain, bands,
// optional forest, colors.
type Runner struct {
	v      variant.Variant
	source TerrainSource
	logger *slog.Logger
}

// NewRunner validates the variant and builds a runner.
func NewRunner(v variant.Variant, logger *slog.Logger, opts Options) (*Runner, error) {
	if err := v.Validate(); err != nil {
		return nil, fmt.Errorf("failed to init runner: %w", err)
	}

	source := opts.Source
	if source == nil {
		source = noiseSource{}
	}

	return &Runner{v: v, source: source, logger: logger}, nil
}

// Variant returns the style this runner executes.
func (r *Runner) Variant() variant.Variant { return r.v }

// Run executes the pipeline once. Seed 0 selects a time-derived seed so each
// run produces fresh terrain; any other value is reproducible.
func (r *Runner) Run(seed int64) (*Result, error) {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	start := time.Now()

	elevation, err := r.source.Terrain(r.v.Terrain, rng)
	if err != nil {
		return nil, fmt.Errorf("terrain generation failed: %w", err)
	}

	bands, stats, err := band.Remap(elevation, r.v.Bands)
	if err != nil {
		return nil, fmt.Errorf("band remap failed: %w", err)
	}
	if stats.Unclassified > 0 {
		r.log().Warn("elevation values fell outside every band window",
			"variant", r.v.Name,
			"cells", stats.Unclassified,
		)
	}

	result := &Result{
		Seed:      seed,
		Elevation: elevation,
		Bands:     bands,
		BandStats: stats,
	}

	if r.v.Forest != nil {
		forestGrid, forestRes, err := forest.Grow(bands, *r.v.Forest, rng)
		if err != nil {
			return nil, fmt.Errorf("forest overlay failed: %w", err)
		}
		if forestRes.Shortfall > 0 {
			r.log().Warn("could not place requested forest count",
				"variant", r.v.Name,
				"requested", r.v.Forest.Patches,
				"placed", forestRes.Placed,
				"attempts", forestRes.Attempts,
			)
		}
		result.Forest = forestGrid
		result.ForestResult = &forestRes
	}

	colors, err := colormap.Map(bands, result.Forest, r.v.Colors, r.v.ForestColor)
	if err != nil {
		return nil, fmt.Errorf("color mapping failed: %w", err)
	}
	result.Colors = colors

	r.log().Info("pipeline run complete",
		"variant", r.v.Name,
		"seed", seed,
		"size", fmt.Sprintf("%dx%d", elevation.Width, elevation.Height),
		"unclassified", stats.Unclassified,
		"elapsed", time.Since(start),
	)
	return result, nil
}

// ExecOptions configures Execute's rendering outputs.
type ExecOptions struct {
	Seed        int64
	OutDir      string
	Format      string // "raster", "surface" or "both"; empty uses the variant default
	CellSize    int
	SmoothSigma float32
	Legend      bool
	Histogram   bool
}

// Execute runs the pipeline and writes the requested outputs. It returns the
// written file paths. The context only gates the start of the run; a single
// run is short and not cancellable midway.
func (r *Runner) Execute(ctx context.Context, opts ExecOptions) ([]string, *Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	format := opts.Format
	if format == "" {
		format = string(r.v.Render)
	}
	switch format {
	case "raster", "surface", "both":
	default:
		return nil, nil, fmt.Errorf("invalid format %q: must be 'raster', 'surface' or 'both'", format)
	}

	cellSize := opts.CellSize
	if cellSize <= 0 {
		cellSize = 3
	}
	if opts.OutDir != "" {
		if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create output dir: %w", err)
		}
	}

	result, err := r.Run(opts.Seed)
	if err != nil {
		return nil, nil, err
	}

	base := fmt.Sprintf("%s_seed%d", r.v.Name, result.Seed)
	var paths []string

	if format == "raster" || format == "both" {
		img, err := render.Raster(result.Colors, result.Bands, r.v.Colors, render.RasterOptions{
			CellSize:    cellSize,
			Legend:      opts.Legend,
			SmoothSigma: opts.SmoothSigma,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("raster render failed: %w", err)
		}
		path := filepath.Join(opts.OutDir, base+".png")
		if err := render.WritePNG(path, img); err != nil {
			return nil, nil, err
		}
		paths = append(paths, path)
	}

	if format == "surface" || format == "both" {
		path := filepath.Join(opts.OutDir, base+".html")
		title := fmt.Sprintf("%s terrain (seed %d)", r.v.Name, result.Seed)
		if err := render.SurfaceFile(result.Bands, r.v.Colors, path, render.DefaultSurfaceOptions(title)); err != nil {
			return nil, nil, err
		}
		paths = append(paths, path)
	}

	if opts.Histogram {
		path := filepath.Join(opts.OutDir, base+"_hist.png")
		title := fmt.Sprintf("%s hypsometry (seed %d)", r.v.Name, result.Seed)
		if err := render.Histogram(result.Elevation, title, path); err != nil {
			return nil, nil, err
		}
		paths = append(paths, path)
	}

	return paths, result, nil
}

func (r *Runner) log() *slog.Logger {
	if r.logger != nil {
		return r.logger
	}
	return slog.Default()
}

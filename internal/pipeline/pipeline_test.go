package pipeline

import (
	"context"
	"math"
	"math/rand"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/relieftools/reliefmap/internal/colormap"
	"github.com/relieftools/reliefmap/internal/terrain"
	"github.com/relieftools/reliefmap/internal/variant"
)

// fixedSource returns a predetermined elevation grid regardless of params.
type fixedSource struct {
	grid *terrain.Grid
}

func (s fixedSource) Terrain(terrain.Params, *rand.Rand) (*terrain.Grid, error) {
	return s.grid, nil
}

func fixedElevations() *terrain.Grid {
	g := terrain.NewGrid(4, 4)
	copy(g.Cells, []float64{
		-50, 0, 50, 100,
		150, 200, 250, 300,
		350, 400, 450, 500,
		550, 600, 650, 1500,
	})
	return g
}

func TestRunEndToEndFixedGrid(t *testing.T) {
	v, err := variant.Lookup("highland")
	require.NoError(t, err)

	runner, err := NewRunner(v, nil, Options{Source: fixedSource{grid: fixedElevations()}})
	require.NoError(t, err)

	result, err := runner.Run(1)
	require.NoError(t, err)

	wantBands := []int{
		0, 0, 1, 1,
		1, 1, 2, 2,
		3, 3, 4, 8,
		17, 31, 50, 1138,
	}
	require.Equal(t, wantBands, result.Bands.Cells)
	require.Zero(t, result.BandStats.Unclassified)
	require.Nil(t, result.Forest, "highland has no forest overlay")

	gradient := func(t float64) colormap.RGB {
		return colormap.RGB{R: 0.4 + 0.6*t, G: 1 - 0.4*t, B: 0.2 + 0.3*t}
	}
	wantColors := []colormap.RGB{
		{R: 0, G: 0, B: 1}, {R: 0, G: 0, B: 1}, gradient(0), gradient(0),
		gradient(0), gradient(0), gradient(1.0 / 99), gradient(1.0 / 99),
		gradient(2.0 / 99), gradient(2.0 / 99), gradient(3.0 / 99), gradient(7.0 / 99),
		gradient(16.0 / 99), gradient(30.0 / 99), gradient(49.0 / 99), {R: 1, G: 1, B: 1},
	}
	for i, want := range wantColors {
		got := result.Colors.Cells[i]
		require.InDelta(t, want.R, got.R, 1e-9, "cell %d red", i)
		require.InDelta(t, want.G, got.G, 1e-9, "cell %d green", i)
		require.InDelta(t, want.B, got.B, 1e-9, "cell %d blue", i)
	}
}

func TestRunForestVariant(t *testing.T) {
	v, err := variant.Lookup("verdant")
	require.NoError(t, err)

	runner, err := NewRunner(v, nil, Options{})
	require.NoError(t, err)

	result, err := runner.Run(1337)
	require.NoError(t, err)

	require.NotNil(t, result.Forest)
	require.NotNil(t, result.ForestResult)

	// Every forested cell sits on a vegetation-eligible band.
	for y := 0; y < result.Forest.Height; y++ {
		for x := 0; x < result.Forest.Width; x++ {
			if !result.Forest.At(x, y) {
				continue
			}
			id := result.Bands.At(x, y)
			_, eligible := v.Forest.Eligible[id]
			require.True(t, eligible, "forested cell (%d,%d) on band %d", x, y, id)
		}
	}
}

func TestRunFullNoisePipeline(t *testing.T) {
	v, err := variant.Lookup("highland")
	require.NoError(t, err)

	runner, err := NewRunner(v, nil, Options{})
	require.NoError(t, err)

	result, err := runner.Run(7)
	require.NoError(t, err)

	require.Len(t, result.Elevation.Cells, 200*200)
	require.Len(t, result.Bands.Cells, 200*200)
	require.Len(t, result.Colors.Cells, 200*200)
	require.Zero(t, result.BandStats.Unclassified,
		"quantized noise output must always land in a band window")

	for i, elev := range result.Elevation.Cells {
		require.GreaterOrEqual(t, elev, v.Terrain.ElevMin, "cell %d", i)
		require.LessOrEqual(t, elev, v.Terrain.ElevMax, "cell %d", i)
		require.Zero(t, math.Mod(elev, v.Terrain.Step), "cell %d not quantized", i)
	}
}

func TestRunSeedZeroPicksFreshSeed(t *testing.T) {
	v, err := variant.Lookup("atlas")
	require.NoError(t, err)

	runner, err := NewRunner(v, nil, Options{})
	require.NoError(t, err)

	result, err := runner.Run(0)
	require.NoError(t, err)
	require.NotZero(t, result.Seed, "seed 0 must be replaced by a time-derived seed")
}

func TestExecuteWritesOutputs(t *testing.T) {
	v, err := variant.Lookup("highland")
	require.NoError(t, err)

	runner, err := NewRunner(v, nil, Options{Source: fixedSource{grid: fixedElevations()}})
	require.NoError(t, err)

	dir := t.TempDir()
	paths, result, err := runner.Execute(context.Background(), ExecOptions{
		Seed:      5,
		OutDir:    dir,
		Format:    "both",
		CellSize:  2,
		Legend:    true,
		Histogram: true,
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	require.Len(t, paths, 3, "raster, surface and histogram outputs")

	for _, path := range paths {
		info, err := os.Stat(path)
		require.NoError(t, err, "missing output %s", path)
		require.NotZero(t, info.Size(), "empty output %s", path)
	}
}

func TestExecuteRejectsBadFormat(t *testing.T) {
	v, err := variant.Lookup("atlas")
	require.NoError(t, err)

	runner, err := NewRunner(v, nil, Options{})
	require.NoError(t, err)

	_, _, err = runner.Execute(context.Background(), ExecOptions{Format: "gif"})
	require.Error(t, err)
}

func TestExecuteCancelledContext(t *testing.T) {
	v, err := variant.Lookup("atlas")
	require.NoError(t, err)

	runner, err := NewRunner(v, nil, Options{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = runner.Execute(ctx, ExecOptions{Seed: 1})
	require.ErrorIs(t, err, context.Canceled)
}

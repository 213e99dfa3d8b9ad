package render

import (
	"fmt"
	"io"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"github.com/relieftools/reliefmap/internal/band"
	"github.com/relieftools/reliefmap/internal/colormap"
)

// SurfaceOptions configures the 3-D height-field chart.
type SurfaceOptions struct {
	Title string
	// ZMax caps the vertical axis so high-ramp band ids do not dwarf the
	// rest of the map.
	ZMax int
	// RampStops is the number of color samples taken from the variant's
	// color table for the visual-map ramp.
	RampStops int
}

// DefaultSurfaceOptions returns the fixed camera setup used by the surface
// variants (box aspect 1:1:0.35, z capped at 700).
func DefaultSurfaceOptions(title string) SurfaceOptions {
	return SurfaceOptions{Title: title, ZMax: 700, RampStops: 24}
}

// Surface renders the band grid as a 3-D surface chart in standalone HTML.
// Cell height is the band identifier; coloring comes from a visual-map ramp
// sampled from the variant's color table.
func Surface(bands *band.Grid, table colormap.Table, w io.Writer, o SurfaceOptions) error {
	if o.ZMax <= 0 {
		return fmt.Errorf("z max must be positive, got %d", o.ZMax)
	}
	if o.RampStops < 2 {
		o.RampStops = 2
	}

	maxID := 0
	data := make([]opts.Chart3DData, 0, len(bands.Cells))
	for y := 0; y < bands.Height; y++ {
		for x := 0; x < bands.Width; x++ {
			id := bands.At(x, y)
			if id > maxID {
				maxID = id
			}
			z := id
			if z > o.ZMax {
				z = o.ZMax
			}
			if z < 0 {
				z = 0
			}
			data = append(data, opts.Chart3DData{Value: []interface{}{x, y, z}})
		}
	}

	rampMax := maxID
	if rampMax > o.ZMax {
		rampMax = o.ZMax
	}

	surface := charts.NewSurface3D()
	surface.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: o.Title,
			Width:     "1000px",
			Height:    "700px",
		}),
		charts.WithTitleOpts(opts.Title{Title: o.Title}),
		charts.WithXAxis3DOpts(opts.XAxis3D{Name: "X", Type: "value", Max: bands.Width}),
		charts.WithYAxis3DOpts(opts.YAxis3D{Name: "Y", Type: "value", Max: bands.Height}),
		charts.WithZAxis3DOpts(opts.ZAxis3D{Name: "Band", Type: "value", Max: o.ZMax}),
		charts.WithGrid3DOpts(opts.Grid3D{
			BoxWidth:  100,
			BoxDepth:  100,
			BoxHeight: 35,
		}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        float32(rampMax),
			InRange:    &opts.VisualMapInRange{Color: rampColors(table, rampMax, o.RampStops)},
		}),
	)
	// Surface3D.AddSeries defaults the series type to scatter3D, which
	// would render a point cloud instead of a height field.
	surface.AddSeries("terrain", data, func(s *charts.SingleSeries) {
		s.Type = types.ChartSurface3D
	})

	return surface.Render(w)
}

// SurfaceFile renders the surface chart to an HTML file.
func SurfaceFile(bands *band.Grid, table colormap.Table, path string, o SurfaceOptions) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	if err := Surface(bands, table, file, o); err != nil {
		return fmt.Errorf("failed to render surface %s: %w", path, err)
	}
	return nil
}

// rampColors samples the color table at evenly spaced band ids and returns
// hex strings for the echarts visual map.
func rampColors(table colormap.Table, maxID, stops int) []string {
	colors := make([]string, 0, stops)
	for i := 0; i < stops; i++ {
		id := maxID * i / (stops - 1)
		c := table.Color(id).NRGBA()
		colors = append(colors, fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
	}
	return colors
}

package render

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/relieftools/reliefmap/internal/terrain"
)

// Histogram writes a hypsometric distribution plot of the elevation grid to
// a PNG file.
func Histogram(elev *terrain.Grid, title, path string) error {
	if len(elev.Cells) == 0 {
		return fmt.Errorf("elevation grid is empty")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Elevation (m)"
	p.Y.Label.Text = "Cells"

	values := make(plotter.Values, len(elev.Cells))
	copy(values, elev.Cells)

	h, err := plotter.NewHist(values, 40)
	if err != nil {
		return fmt.Errorf("failed to build histogram: %w", err)
	}
	p.Add(h)

	if err := p.Save(8*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save histogram %s: %w", path, err)
	}
	return nil
}

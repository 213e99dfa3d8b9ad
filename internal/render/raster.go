// Package render draws pipeline output as images and charts.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"sort"

	"github.com/disintegration/gift"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/relieftools/reliefmap/internal/band"
	"github.com/relieftools/reliefmap/internal/colormap"
)

const (
	legendWidth   = 140
	legendRowH    = 16
	legendSwatch  = 10
	legendPadding = 8
)

// RasterOptions configures the 2-D raster output.
type RasterOptions struct {
	// CellSize is the square pixel size of one grid cell.
	CellSize int
	// Legend appends a column enumerating every band present.
	Legend bool
	// SmoothSigma applies a Gaussian blur to the terrain area when > 0.
	SmoothSigma float32
}

// LegendEntry is one row of the raster legend.
type LegendEntry struct {
	Band  int
	Label string
	Color colormap.RGB
}

// BuildLegend enumerates the distinct bands present in the grid, sorted by
// band id, each with its color from the table.
func BuildLegend(bands *band.Grid, table colormap.Table) []LegendEntry {
	seen := make(map[int]struct{})
	for _, id := range bands.Cells {
		seen[id] = struct{}{}
	}

	ids := make([]int, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	entries := make([]LegendEntry, 0, len(ids))
	for _, id := range ids {
		label := fmt.Sprintf("band %d", id)
		if id == band.Unclassified {
			label = "unclassified"
		}
		entries = append(entries, LegendEntry{Band: id, Label: label, Color: table.Color(id)})
	}
	return entries
}

// Raster draws the color grid as a PNG-ready image, one CellSize square per
// cell, optionally smoothed and with a legend column on the right.
func Raster(colors *colormap.Grid, bands *band.Grid, table colormap.Table, opts RasterOptions) (*image.NRGBA, error) {
	if opts.CellSize <= 0 {
		return nil, fmt.Errorf("cell size must be positive, got %d", opts.CellSize)
	}
	if colors.Width != bands.Width || colors.Height != bands.Height {
		return nil, fmt.Errorf("color grid %dx%d does not match band grid %dx%d",
			colors.Width, colors.Height, bands.Width, bands.Height)
	}

	terrainW := colors.Width * opts.CellSize
	terrainH := colors.Height * opts.CellSize

	terrainImg := image.NewNRGBA(image.Rect(0, 0, terrainW, terrainH))
	for gy := 0; gy < colors.Height; gy++ {
		for gx := 0; gx < colors.Width; gx++ {
			c := colors.At(gx, gy).NRGBA()
			for py := 0; py < opts.CellSize; py++ {
				for px := 0; px < opts.CellSize; px++ {
					terrainImg.SetNRGBA(gx*opts.CellSize+px, gy*opts.CellSize+py, c)
				}
			}
		}
	}

	if opts.SmoothSigma > 0 {
		g := gift.New(gift.GaussianBlur(opts.SmoothSigma))
		smoothed := image.NewNRGBA(g.Bounds(terrainImg.Bounds()))
		g.Draw(smoothed, terrainImg)
		terrainImg = smoothed
	}

	if !opts.Legend {
		return terrainImg, nil
	}

	entries := BuildLegend(bands, table)
	totalW := terrainW + legendWidth
	totalH := terrainH
	if minH := legendPadding*2 + len(entries)*legendRowH; minH > totalH {
		totalH = minH
	}

	out := image.NewNRGBA(image.Rect(0, 0, totalW, totalH))
	// Legend background.
	for y := 0; y < totalH; y++ {
		for x := 0; x < totalW; x++ {
			out.SetNRGBA(x, y, color.NRGBA{R: 245, G: 245, B: 240, A: 255})
		}
	}
	for y := 0; y < terrainH; y++ {
		for x := 0; x < terrainW; x++ {
			out.SetNRGBA(x, y, terrainImg.NRGBAAt(x, y))
		}
	}

	drawLegend(out, terrainW, entries)
	return out, nil
}

func drawLegend(img *image.NRGBA, offsetX int, entries []LegendEntry) {
	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.NRGBA{R: 20, G: 20, B: 20, A: 255}),
		Face: basicfont.Face7x13,
	}

	for i, e := range entries {
		top := legendPadding + i*legendRowH
		swatch := e.Color.NRGBA()
		for y := 0; y < legendSwatch; y++ {
			for x := 0; x < legendSwatch; x++ {
				img.SetNRGBA(offsetX+legendPadding+x, top+y, swatch)
			}
		}

		drawer.Dot = fixed.P(offsetX+legendPadding+legendSwatch+6, top+legendSwatch)
		drawer.DrawString(e.Label)
	}
}

// WritePNG encodes the image to path.
func WritePNG(path string, img image.Image) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return nil
}

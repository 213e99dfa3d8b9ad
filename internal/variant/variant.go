// Package variant bundles the tuned parameter sets of the map styles.
//
// The styles differ only in noise shape, band thresholds, color tables and
// the optional forest overlay; everything else runs through the same
// pipeline.
package variant

import (
	"fmt"
	"sort"

	"github.com/relieftools/reliefmap/internal/band"
	"github.com/relieftools/reliefmap/internal/colormap"
	"github.com/relieftools/reliefmap/internal/forest"
	"github.com/relieftools/reliefmap/internal/terrain"
)

// RenderMode selects the default output of a variant.
type RenderMode string

const (
	RenderRaster  RenderMode = "raster"
	RenderSurface RenderMode = "surface"
)

// Variant is one immutable map style.
type Variant struct {
	Name        string
	Description string
	Terrain     terrain.Params
	Bands       band.Rules
	Colors      colormap.Table
	Forest      *forest.Params // nil when the style has no forest overlay
	ForestColor colormap.RGB
	Render      RenderMode
}

// Validate checks the style's parameter sets.
func (v Variant) Validate() error {
	if v.Name == "" {
		return fmt.Errorf("variant name must not be empty")
	}
	if err := v.Terrain.Validate(); err != nil {
		return fmt.Errorf("variant %s: %w", v.Name, err)
	}
	if err := v.Bands.Validate(); err != nil {
		return fmt.Errorf("variant %s: %w", v.Name, err)
	}
	if err := v.Colors.Validate(); err != nil {
		return fmt.Errorf("variant %s: %w", v.Name, err)
	}
	return nil
}

// baseTerrain holds the grid constants shared by every style.
func baseTerrain() terrain.Params {
	return terrain.Params{
		Width:       200,
		Height:      200,
		Scale:       100.0,
		ScaleFactor: 0.8,
		Octaves:     6,
		ElevMin:     -500,
		ElevMax:     1500,
		Step:        50,
	}
}

// highlandBands is the accelerating-ramp rule set: fine color resolution at
// altitude, coarse below.
func highlandBands() band.Rules {
	return band.Rules{
		FloorID: 0,
		Windows: []band.Window{
			{Lo: 0, Hi: 0, ID: 0},
			{Lo: 50, Hi: 200, ID: 1},
			{Lo: 250, Hi: 300, ID: 2},
			{Lo: 350, Hi: 400, ID: 3},
		},
		Ramp: &band.Ramp{Start: 450, End: 1500, Step: 50, FirstID: 4, FirstGap: 4, GapGrowth: 5},
	}
}

// flatBands is a closed partition over the whole elevation range with one
// band per 250 m tier. No gaps, no ramp.
func flatBands() band.Rules {
	return band.Rules{
		FloorID: 0,
		Windows: []band.Window{
			{Lo: 0, Hi: 0, ID: 0},
			{Lo: 50, Hi: 250, ID: 1},
			{Lo: 300, Hi: 500, ID: 2},
			{Lo: 550, Hi: 750, ID: 3},
			{Lo: 800, Hi: 1000, ID: 4},
			{Lo: 1050, Hi: 1250, ID: 5},
			{Lo: 1300, Hi: 1500, ID: 6},
		},
	}
}

func highlandColors() colormap.Table {
	return colormap.Table{
		Entries: []colormap.Entry{
			{Lo: 0, Hi: 0, From: colormap.RGB{R: 0, G: 0, B: 1}},
			{Lo: 1, Hi: 100, From: colormap.RGB{R: 0.4, G: 1, B: 0.2}, To: colormap.RGB{R: 1, G: 0.6, B: 0.5}, Gradient: true},
			{Lo: 101, Hi: 350, From: colormap.RGB{R: 0.9, G: 0.7, B: 0.5}, To: colormap.RGB{R: 0.5, G: 0.4, B: 0.2}, Gradient: true},
			{Lo: 351, Hi: 600, From: colormap.RGB{R: 0.5, G: 0.4, B: 0.3}, To: colormap.RGB{R: 0.8, G: 0.6, B: 0.6}, Gradient: true},
		},
		Fallback: colormap.RGB{R: 1, G: 1, B: 1},
		Unmapped: colormap.RGB{R: 1, G: 0, B: 1},
	}
}

func flatColors() colormap.Table {
	return colormap.Table{
		Entries: []colormap.Entry{
			{Lo: 0, Hi: 0, From: colormap.RGB{R: 0.1, G: 0.3, B: 0.8}},
			{Lo: 1, Hi: 1, From: colormap.RGB{R: 0.45, G: 0.78, B: 0.35}},
			{Lo: 2, Hi: 2, From: colormap.RGB{R: 0.3, G: 0.6, B: 0.25}},
			{Lo: 3, Hi: 3, From: colormap.RGB{R: 0.72, G: 0.6, B: 0.4}},
			{Lo: 4, Hi: 4, From: colormap.RGB{R: 0.55, G: 0.45, B: 0.35}},
			{Lo: 5, Hi: 5, From: colormap.RGB{R: 0.6, G: 0.6, B: 0.6}},
			{Lo: 6, Hi: 6, From: colormap.RGB{R: 1, G: 1, B: 1}},
		},
		Fallback: colormap.RGB{R: 1, G: 1, B: 1},
		Unmapped: colormap.RGB{R: 1, G: 0, B: 1},
	}
}

func alpineColors() colormap.Table {
	return colormap.Table{
		Entries: []colormap.Entry{
			{Lo: 0, Hi: 0, From: colormap.RGB{R: 0.15, G: 0.25, B: 0.6}},
			{Lo: 1, Hi: 100, From: colormap.RGB{R: 0.35, G: 0.55, B: 0.3}, To: colormap.RGB{R: 0.55, G: 0.5, B: 0.35}, Gradient: true},
			{Lo: 101, Hi: 350, From: colormap.RGB{R: 0.55, G: 0.5, B: 0.4}, To: colormap.RGB{R: 0.45, G: 0.42, B: 0.4}, Gradient: true},
			{Lo: 351, Hi: 600, From: colormap.RGB{R: 0.5, G: 0.5, B: 0.52}, To: colormap.RGB{R: 0.75, G: 0.76, B: 0.8}, Gradient: true},
		},
		Fallback: colormap.RGB{R: 0.96, G: 0.97, B: 1},
		Unmapped: colormap.RGB{R: 1, G: 0, B: 1},
	}
}

// registry holds the built-in styles keyed by name.
var registry = map[string]Variant{}

func register(v Variant) {
	if _, dup := registry[v.Name]; dup {
		panic(fmt.Sprintf("duplicate variant %q", v.Name))
	}
	registry[v.Name] = v
}

func init() {
	highland := baseTerrain()
	highland.Persistence = 1.0
	highland.Lacunarity = 1.3
	register(Variant{
		Name:        "highland",
		Description: "accelerating band ramp with green-to-snow gradients, 3-D surface",
		Terrain:     highland,
		Bands:       highlandBands(),
		Colors:      highlandColors(),
		Render:      RenderSurface,
	})

	verdant := baseTerrain()
	verdant.Persistence = 0.5
	verdant.Lacunarity = 2.0
	forestParams := forest.DefaultParams(22)
	register(Variant{
		Name:        "verdant",
		Description: "flat band colors with stochastic forest patches on low terrain",
		Terrain:     verdant,
		Bands:       flatBands(),
		Colors:      flatColors(),
		Forest:      &forestParams,
		ForestColor: colormap.RGB{R: 0.05, G: 0.35, B: 0.1},
		Render:      RenderRaster,
	})

	atlas := baseTerrain()
	atlas.Persistence = 0.5
	atlas.Lacunarity = 2.0
	register(Variant{
		Name:        "atlas",
		Description: "closed-partition flat colors, 2-D raster with legend",
		Terrain:     atlas,
		Bands:       flatBands(),
		Colors:      flatColors(),
		Render:      RenderRaster,
	})

	alpine := baseTerrain()
	alpine.Persistence = 0.5
	alpine.Lacunarity = 1.3
	register(Variant{
		Name:        "alpine",
		Description: "cool rock-and-ice gradients over the accelerating ramp",
		Terrain:     alpine,
		Bands:       highlandBands(),
		Colors:      alpineColors(),
		Render:      RenderSurface,
	})
}

// Lookup returns the named style.
func Lookup(name string) (Variant, error) {
	v, ok := registry[name]
	if !ok {
		return Variant{}, fmt.Errorf("unknown variant %q (available: %v)", name, Names())
	}
	return v, nil
}

// Names lists the registered styles in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns the registered styles sorted by name.
func All() []Variant {
	variants := make([]Variant, 0, len(registry))
	for _, name := range Names() {
		variants = append(variants, registry[name])
	}
	return variants
}

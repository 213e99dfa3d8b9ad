package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/relieftools/reliefmap/internal/atlas"
	"github.com/relieftools/reliefmap/internal/pipeline"
	"github.com/relieftools/reliefmap/internal/variant"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate one terrain map",
	Long:  `Generate a terrain map for the selected variant and write its rendered outputs.`,
	RunE:  runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringP("variant", "v", "highland", "Map variant (see 'reliefmap variants')")
	generateCmd.Flags().Int64("seed", 0, "Deterministic seed (0 = fresh terrain per run)")
	generateCmd.Flags().Int("width", 0, "Grid width in cells (0 = variant default)")
	generateCmd.Flags().Int("height", 0, "Grid height in cells (0 = variant default)")
	generateCmd.Flags().Float64("scale", 0, "Noise zoom factor (0 = variant default)")
	generateCmd.Flags().String("format", "", "Output format: raster, surface or both (default: variant default)")
	generateCmd.Flags().Int("cell-size", 3, "Pixel size of one grid cell in the raster output")
	generateCmd.Flags().Bool("legend", true, "Draw a band legend on the raster output")
	generateCmd.Flags().Float32("smooth", 0, "Gaussian blur sigma applied to the raster (0 = off)")
	generateCmd.Flags().Bool("histogram", false, "Also write an elevation distribution plot")
	generateCmd.Flags().String("atlas", "", "Append rendered outputs to this atlas database")

	bindFlags := []struct {
		key  string
		flag string
	}{
		{"generate.variant", "variant"},
		{"generate.seed", "seed"},
		{"generate.width", "width"},
		{"generate.height", "height"},
		{"generate.scale", "scale"},
		{"generate.format", "format"},
		{"generate.cell_size", "cell-size"},
		{"generate.legend", "legend"},
		{"generate.smooth", "smooth"},
		{"generate.histogram", "histogram"},
		{"generate.atlas", "atlas"},
	}

	for _, bf := range bindFlags {
		if err := viper.BindPFlag(bf.key, generateCmd.Flags().Lookup(bf.flag)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", bf.flag, err))
		}
	}
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	variantName := viper.GetString("generate.variant")
	seed := viper.GetInt64("generate.seed")
	format := viper.GetString("generate.format")
	cellSize := viper.GetInt("generate.cell_size")
	legend := viper.GetBool("generate.legend")
	smooth := float32(viper.GetFloat64("generate.smooth"))
	histogram := viper.GetBool("generate.histogram")
	atlasPath := viper.GetString("generate.atlas")
	outputDir := viper.GetString("output-dir")

	v, err := variant.Lookup(variantName)
	if err != nil {
		return err
	}
	if width := viper.GetInt("generate.width"); width > 0 {
		v.Terrain.Width = width
	}
	if height := viper.GetInt("generate.height"); height > 0 {
		v.Terrain.Height = height
	}
	if scale := viper.GetFloat64("generate.scale"); scale > 0 {
		v.Terrain.Scale = scale
	}
	if err := validateRenderFlags(cellSize, smooth); err != nil {
		return err
	}

	logger.Info("Starting map generation",
		"variant", v.Name,
		"seed", seed,
		"output_dir", outputDir,
		"format", format,
		"cell_size", cellSize,
		"histogram", histogram,
	)

	runner, err := pipeline.NewRunner(v, logger, pipeline.Options{})
	if err != nil {
		return err
	}

	paths, result, err := runner.Execute(context.Background(), pipeline.ExecOptions{
		Seed:        seed,
		OutDir:      outputDir,
		Format:      format,
		CellSize:    cellSize,
		SmoothSigma: smooth,
		Legend:      legend,
		Histogram:   histogram,
	})
	if err != nil {
		return fmt.Errorf("failed to generate map: %w", err)
	}

	logFields := []interface{}{"variant", v.Name, "seed", result.Seed, "paths", strings.Join(paths, ", ")}
	if result.ForestResult != nil {
		logFields = append(logFields, "forest_patches", result.ForestResult.Placed)
	}
	logger.Info("Map generated", logFields...)

	if atlasPath != "" {
		if err := archiveOutputs(atlasPath, v.Name, result, paths); err != nil {
			return fmt.Errorf("failed to archive outputs: %w", err)
		}
		logger.Info("Outputs archived", "atlas", atlasPath, "count", len(paths))
	}

	return nil
}

// validateRenderFlags checks the rendering settings shared by generate and
// batch.
func validateRenderFlags(cellSize int, smooth float32) error {
	if cellSize <= 0 {
		return fmt.Errorf("cell-size must be positive")
	}
	if smooth < 0 {
		return fmt.Errorf("smooth must be non-negative")
	}
	return nil
}

// openAtlas creates or opens an atlas database for appending runs.
func openAtlas(path string) (*atlas.Writer, error) {
	return atlas.NewWriter(path, atlas.Metadata{
		Name:      "reliefmap runs",
		Generator: "reliefmap",
		Version:   "1.0",
	})
}

// appendRun archives the rendered files of one run.
func appendRun(writer *atlas.Writer, variantName string, result *pipeline.Result, outputs []string) error {
	for _, output := range outputs {
		data, err := os.ReadFile(output)
		if err != nil {
			return fmt.Errorf("failed to read output %s: %w", output, err)
		}

		format := strings.TrimPrefix(filepath.Ext(output), ".")
		if err := writer.Write(atlas.Entry{
			Variant: variantName,
			Seed:    result.Seed,
			Width:   result.Elevation.Width,
			Height:  result.Elevation.Height,
			Format:  format,
			Data:    data,
		}); err != nil {
			return err
		}
	}
	return nil
}

// archiveOutputs appends the rendered files of one run to an atlas database.
func archiveOutputs(path, variantName string, result *pipeline.Result, outputs []string) error {
	writer, err := openAtlas(path)
	if err != nil {
		return err
	}
	defer writer.Close()

	if err := appendRun(writer, variantName, result, outputs); err != nil {
		return err
	}
	return writer.Flush()
}

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/relieftools/reliefmap/internal/pipeline"
	"github.com/relieftools/reliefmap/internal/variant"
	"github.com/relieftools/reliefmap/internal/worker"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Generate many terrain maps in parallel",
	Long:  `Generate a batch of terrain maps across a worker pool, one map per seed.`,
	RunE:  runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringP("variant", "v", "highland", "Map variant (see 'reliefmap variants')")
	batchCmd.Flags().IntP("count", "n", 10, "Number of maps to generate")
	batchCmd.Flags().Int64("seed", 1, "Base seed; map i uses seed base+i")
	batchCmd.Flags().IntP("workers", "w", 0, "Number of parallel workers (default: number of CPUs)")
	batchCmd.Flags().Bool("progress", true, "Show progress bar")
	batchCmd.Flags().Bool("allow-failures", false, "Continue even if some maps fail")
	batchCmd.Flags().String("format", "", "Output format: raster, surface or both (default: variant default)")
	batchCmd.Flags().Int("cell-size", 3, "Pixel size of one grid cell in the raster output")
	batchCmd.Flags().Bool("legend", true, "Draw a band legend on the raster output")
	batchCmd.Flags().Float32("smooth", 0, "Gaussian blur sigma applied to the raster (0 = off)")
	batchCmd.Flags().Bool("histogram", false, "Also write elevation distribution plots")
	batchCmd.Flags().String("atlas", "", "Append rendered outputs to this atlas database")

	bindFlags := []struct {
		key  string
		flag string
	}{
		{"batch.variant", "variant"},
		{"batch.count", "count"},
		{"batch.seed", "seed"},
		{"batch.workers", "workers"},
		{"batch.progress", "progress"},
		{"batch.allow_failures", "allow-failures"},
		{"batch.format", "format"},
		{"batch.cell_size", "cell-size"},
		{"batch.legend", "legend"},
		{"batch.smooth", "smooth"},
		{"batch.histogram", "histogram"},
		{"batch.atlas", "atlas"},
	}

	for _, bf := range bindFlags {
		if err := viper.BindPFlag(bf.key, batchCmd.Flags().Lookup(bf.flag)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", bf.flag, err))
		}
	}
}

// validateBatchFlags checks the batch sizing settings.
func validateBatchFlags(count int, baseSeed int64) error {
	if count <= 0 {
		return fmt.Errorf("--count must be positive")
	}
	if baseSeed <= 0 {
		return fmt.Errorf("--seed must be positive so every map gets a distinct reproducible seed")
	}
	return nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	variantName := viper.GetString("batch.variant")
	count := viper.GetInt("batch.count")
	baseSeed := viper.GetInt64("batch.seed")
	workers := viper.GetInt("batch.workers")
	showProgress := viper.GetBool("batch.progress")
	allowFailures := viper.GetBool("batch.allow_failures")
	format := viper.GetString("batch.format")
	cellSize := viper.GetInt("batch.cell_size")
	legend := viper.GetBool("batch.legend")
	smooth := float32(viper.GetFloat64("batch.smooth"))
	histogram := viper.GetBool("batch.histogram")
	atlasPath := viper.GetString("batch.atlas")
	outputDir := viper.GetString("output-dir")

	if err := validateBatchFlags(count, baseSeed); err != nil {
		return err
	}
	if err := validateRenderFlags(cellSize, smooth); err != nil {
		return err
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	v, err := variant.Lookup(variantName)
	if err != nil {
		return err
	}

	logger.Info("Starting batch map generation",
		"variant", v.Name,
		"count", count,
		"base_seed", baseSeed,
		"workers", workers,
		"output_dir", outputDir,
	)

	runner, err := pipeline.NewRunner(v, logger, pipeline.Options{})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("Received interrupt signal, cancelling...")
		cancel()
	}()

	tasks := make([]worker.Task, 0, count)
	for i := 0; i < count; i++ {
		tasks = append(tasks, worker.Task{Index: i, Seed: baseSeed + int64(i)})
	}

	progress := worker.NewProgress(len(tasks), showProgress)

	pool := worker.New(worker.Config{
		Workers: workers,
		Runner:  runner,
		Options: pipeline.ExecOptions{
			OutDir:      outputDir,
			Format:      format,
			CellSize:    cellSize,
			SmoothSigma: smooth,
			Legend:      legend,
			Histogram:   histogram,
		},
		OnProgress: progress.Callback(),
	})

	results := pool.Run(ctx, tasks)
	progress.Done()

	var failedCount int
	for _, r := range results {
		if r.Err != nil {
			failedCount++
			logger.Error("Map generation failed", "index", r.Task.Index, "seed", r.Task.Seed, "error", r.Err)
		}
	}

	logger.Info(progress.Summary())

	if failedCount > 0 && !allowFailures {
		return fmt.Errorf("%d maps failed to generate", failedCount)
	}
	if failedCount > 0 {
		logger.Warn("Some maps failed to generate, but continuing due to --allow-failures flag", "failed_count", failedCount)
	}

	if atlasPath != "" {
		writer, err := openAtlas(atlasPath)
		if err != nil {
			return fmt.Errorf("failed to open atlas: %w", err)
		}
		defer writer.Close()

		archived := 0
		for _, r := range results {
			if r.Err != nil || r.Run == nil {
				continue
			}
			if err := appendRun(writer, v.Name, r.Run, r.Paths); err != nil {
				return fmt.Errorf("failed to archive outputs for seed %d: %w", r.Task.Seed, err)
			}
			archived += len(r.Paths)
		}
		if err := writer.Flush(); err != nil {
			return fmt.Errorf("failed to flush atlas: %w", err)
		}
		logger.Info("Batch archived", "atlas", atlasPath, "outputs", archived)
	}

	return nil
}

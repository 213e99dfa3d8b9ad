// Package worker provides a parallel batch map generation worker pool.
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/relieftools/reliefmap/internal/pipeline"
)

// Runner executes one pipeline run and writes its outputs.
// This matches the signature of pipeline.Runner.Execute.
type Runner interface {
	Execute(ctx context.Context, opts pipeline.ExecOptions) ([]string, *pipeline.Result, error)
}

// Task is a single map generation task.
type Task struct {
	Index int
	Seed  int64
}

// Result is the outcome of one map generation task.
type Result struct {
	Task    Task
	Paths   []string
	Run     *pipeline.Result
	Err     error
	Elapsed time.Duration
}

// ProgressFunc is called after each task completes.
type ProgressFunc func(completed, total, failed int)

// Config configures the worker pool.
type Config struct {
	Workers    int
	Runner     Runner
	Options    pipeline.ExecOptions // per-task template; Seed comes from the task
	OnProgress ProgressFunc
}

// Pool manages parallel map generation.
type Pool struct {
	workers    int
	runner     Runner
	options    pipeline.ExecOptions
	onProgress ProgressFunc
}

// New creates a new worker pool.
func New(cfg Config) *Pool {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	return &Pool{
		workers:    workers,
		runner:     cfg.Runner,
		options:    cfg.Options,
		onProgress: cfg.OnProgress,
	}
}

// Run executes all tasks and returns results. Tasks are processed in
// parallel by the configured number of workers; the call blocks until all
// tasks complete or the context is cancelled.
func (p *Pool) Run(ctx context.Context, tasks []Task) []Result {
	if len(tasks) == 0 {
		return nil
	}

	taskCh := make(chan Task, len(tasks))
	resultCh := make(chan Result, len(tasks))

	var (
		completed int
		failed    int
		mu        sync.Mutex
	)

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.worker(ctx, taskCh, resultCh)
		}()
	}

	go func() {
		for _, task := range tasks {
			select {
			case taskCh <- task:
			case <-ctx.Done():
			}
		}
		close(taskCh)
	}()

	results := make([]Result, 0, len(tasks))
	done := make(chan struct{})

	go func() {
		for result := range resultCh {
			results = append(results, result)

			mu.Lock()
			completed++
			if result.Err != nil {
				failed++
			}
			c, f := completed, failed
			mu.Unlock()

			if p.onProgress != nil {
				p.onProgress(c, len(tasks), f)
			}
		}
		close(done)
	}()

	wg.Wait()
	close(resultCh)
	<-done

	return results
}

func (p *Pool) worker(ctx context.Context, tasks <-chan Task, results chan<- Result) {
	for task := range tasks {
		select {
		case <-ctx.Done():
			results <- Result{Task: task, Err: ctx.Err()}
			continue
		default:
		}

		opts := p.options
		opts.Seed = task.Seed

		start := time.Now()
		paths, run, err := p.runner.Execute(ctx, opts)
		elapsed := time.Since(start)

		results <- Result{
			Task:    task,
			Paths:   paths,
			Run:     run,
			Err:     err,
			Elapsed: elapsed,
		}
	}
}

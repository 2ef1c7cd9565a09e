package services

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// FileResult is the outcome of one per-file task within a phase.
type FileResult struct {
	// Path is the file the task operated on.
	Path string

	// Chunks is the number of chunks written or removed.
	Chunks int

	// Err is non-nil when the task failed.
	Err error
}

// FileTask processes one file and returns the number of chunks it
// touched. Tasks must be safe to run concurrently with tasks for
// other paths.
type FileTask func(ctx context.Context, path string) (int, error)

// ExecutionStrategy fans a phase's per-file tasks out and collects
// their results. Files within a phase carry no mutual ordering
// dependency; phases themselves stay strictly sequential in the
// reconciler.
type ExecutionStrategy interface {
	// Name identifies the strategy for logging.
	Name() string

	// Run executes the task for every path and returns one result per
	// path, in input order. Task failures are captured in the results,
	// never propagated: per-file isolation is the strategy's contract.
	Run(ctx context.Context, paths []string, task FileTask) []FileResult
}

// SequentialStrategy executes tasks one at a time, in order.
// Simplicity over throughput.
type SequentialStrategy struct{}

// NewSequentialStrategy creates a sequential execution strategy.
func NewSequentialStrategy() *SequentialStrategy {
	return &SequentialStrategy{}
}

// Name identifies the strategy.
func (s *SequentialStrategy) Name() string { return "sequential" }

// Run executes the task for each path in turn.
func (s *SequentialStrategy) Run(ctx context.Context, paths []string, task FileTask) []FileResult {
	results := make([]FileResult, len(paths))
	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			results[i] = FileResult{Path: path, Err: err}
			continue
		}
		n, err := task(ctx, path)
		results[i] = FileResult{Path: path, Chunks: n, Err: err}
	}
	return results
}

// DefaultWorkers bounds the concurrent strategy's pool when no worker
// count is configured.
const DefaultWorkers = 4

// ConcurrentStrategy fans tasks out to a bounded worker pool and
// awaits them as a batch. Results land in input order regardless of
// completion order.
type ConcurrentStrategy struct {
	workers int
}

// NewConcurrentStrategy creates a concurrent execution strategy with
// the given pool size.
func NewConcurrentStrategy(workers int) *ConcurrentStrategy {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &ConcurrentStrategy{workers: workers}
}

// Name identifies the strategy.
func (s *ConcurrentStrategy) Name() string { return "concurrent" }

// Run executes tasks concurrently with a fan-in barrier: it returns
// only once every task has finished.
func (s *ConcurrentStrategy) Run(ctx context.Context, paths []string, task FileTask) []FileResult {
	results := make([]FileResult, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = FileResult{Path: path, Err: err}
				return nil
			}
			n, err := task(gctx, path)
			results[i] = FileResult{Path: path, Chunks: n, Err: err}
			// Task errors are per-file outcomes, not group failures.
			return nil
		})
	}

	g.Wait() //nolint:errcheck // tasks never return group errors
	return results
}

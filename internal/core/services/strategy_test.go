package services

import (
	"context"
	"errors"
	stdsync "sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequentialStrategy_Run(t *testing.T) {
	s := NewSequentialStrategy()
	assert.Equal(t, "sequential", s.Name())

	var order []string
	results := s.Run(context.Background(), []string{"a", "b", "c"}, func(_ context.Context, path string) (int, error) {
		order = append(order, path)
		if path == "b" {
			return 0, errors.New("boom")
		}
		return len(path), nil
	})

	assert.Equal(t, []string{"a", "b", "c"}, order)
	require.Len(t, results, 3)

	assert.Equal(t, "a", results[0].Path)
	assert.NoError(t, results[0].Err)
	assert.Equal(t, 1, results[0].Chunks)

	// Task failure is captured, not propagated; later tasks still run.
	assert.Error(t, results[1].Err)
	assert.NoError(t, results[2].Err)
}

func TestSequentialStrategy_Run_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	results := NewSequentialStrategy().Run(ctx, []string{"a"}, func(_ context.Context, _ string) (int, error) {
		called = true
		return 0, nil
	})

	assert.False(t, called)
	require.Len(t, results, 1)
	assert.ErrorIs(t, results[0].Err, context.Canceled)
}

func TestConcurrentStrategy_Run_ResultsInInputOrder(t *testing.T) {
	s := NewConcurrentStrategy(4)
	assert.Equal(t, "concurrent", s.Name())

	paths := []string{"p0", "p1", "p2", "p3", "p4", "p5", "p6", "p7"}
	results := s.Run(context.Background(), paths, func(_ context.Context, path string) (int, error) {
		return len(path), nil
	})

	require.Len(t, results, len(paths))
	for i, res := range results {
		assert.Equal(t, paths[i], res.Path)
		assert.Equal(t, 2, res.Chunks)
	}
}

func TestConcurrentStrategy_Run_BoundsWorkers(t *testing.T) {
	const workers = 2
	s := NewConcurrentStrategy(workers)

	var (
		mu      stdsync.Mutex
		active  int
		maxSeen int
	)
	paths := []string{"a", "b", "c", "d", "e", "f"}
	s.Run(context.Background(), paths, func(_ context.Context, _ string) (int, error) {
		mu.Lock()
		active++
		if active > maxSeen {
			maxSeen = active
		}
		mu.Unlock()

		mu.Lock()
		active--
		mu.Unlock()
		return 0, nil
	})

	assert.LessOrEqual(t, maxSeen, workers)
}

func TestConcurrentStrategy_Run_FailuresIsolated(t *testing.T) {
	s := NewConcurrentStrategy(3)

	results := s.Run(context.Background(), []string{"ok1", "bad", "ok2"}, func(_ context.Context, path string) (int, error) {
		if path == "bad" {
			return 0, errors.New("task failed")
		}
		return 1, nil
	})

	require.Len(t, results, 3)
	assert.NoError(t, results[0].Err)
	assert.Error(t, results[1].Err)
	assert.NoError(t, results[2].Err)
}

func TestNewConcurrentStrategy_DefaultsWorkers(t *testing.T) {
	s := NewConcurrentStrategy(0)
	assert.Equal(t, DefaultWorkers, s.workers)

	s = NewConcurrentStrategy(-3)
	assert.Equal(t, DefaultWorkers, s.workers)
}

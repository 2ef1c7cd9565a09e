package driving

import (
	"context"

	"github.com/archon-search/archon/internal/core/domain"
)

// Synchronizer reconciles the document index with the filesystem.
type Synchronizer interface {
	// Sync runs one reconciliation pass over all enabled sources and
	// returns the report. A report is returned even when individual
	// files failed; only infrastructure failures return an error.
	Sync(ctx context.Context) (*domain.SyncReport, error)

	// Status returns the state of the run in progress, if any.
	Status(ctx context.Context) (*SyncStatus, error)
}

// SyncStatus represents the current state of a sync operation.
type SyncStatus struct {
	// Running indicates a sync is currently in progress.
	Running bool

	// FilesProcessed is the count of files processed so far.
	FilesProcessed int

	// ErrorCount is the number of per-file failures so far.
	ErrorCount int
}

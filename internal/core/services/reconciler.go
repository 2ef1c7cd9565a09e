package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/archon-search/archon/internal/core/domain"
	"github.com/archon-search/archon/internal/core/ports/driven"
	"github.com/archon-search/archon/internal/core/ports/driving"
	"github.com/archon-search/archon/internal/logger"
)

// Ensure Reconciler implements the interface.
var _ driving.Synchronizer = (*Reconciler)(nil)

// DefaultFailureThreshold is the number of consecutive index-operation
// failures after which the index is presumed unreachable and the run
// aborts.
const DefaultFailureThreshold = 5

// ReconcilerConfig carries the run-level flags.
type ReconcilerConfig struct {
	// AutoDeleteMissing enables the delete phase for files that
	// vanished from their source.
	AutoDeleteMissing bool

	// ChangeDetection gates hash comparison. When disabled, every
	// previously seen file is treated as unchanged unconditionally.
	ChangeDetection bool

	// FailureThreshold overrides DefaultFailureThreshold when > 0.
	FailureThreshold int
}

// Reconciler drives the minimal set of index mutations needed to match
// the current filesystem state. One Sync call runs four strictly
// ordered phases - delete, update, insert, rebuild - with per-file
// failure isolation inside each phase and a pluggable execution
// strategy for the per-file fan-out.
type Reconciler struct {
	registry *SourceRegistry
	scanner  *FileScanner
	detector *ChangeDetector
	tagger   *ChunkTagger

	index    driven.DocumentIndex
	loader   driven.ContentLoader
	chunker  driven.Chunker
	embedder driven.EmbeddingService // optional
	keyword  driven.KeywordIndex     // optional
	hooks    []driven.RebuildHook

	strategy ExecutionStrategy
	cfg      ReconcilerConfig

	mu      sync.RWMutex
	running bool
	done    int
	failed  int
}

// NewReconciler creates a reconciler. The embedder and keyword index
// are optional; hooks are additional downstream consumers notified
// after a changed run.
func NewReconciler(
	registry *SourceRegistry,
	index driven.DocumentIndex,
	loader driven.ContentLoader,
	chunker driven.Chunker,
	embedder driven.EmbeddingService,
	keyword driven.KeywordIndex,
	strategy ExecutionStrategy,
	cfg ReconcilerConfig,
) *Reconciler {
	if strategy == nil {
		strategy = NewSequentialStrategy()
	}
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = DefaultFailureThreshold
	}
	return &Reconciler{
		registry: registry,
		scanner:  NewFileScanner(),
		detector: NewChangeDetector(),
		tagger:   NewChunkTagger(),
		index:    index,
		loader:   loader,
		chunker:  chunker,
		embedder: embedder,
		keyword:  keyword,
		strategy: strategy,
		cfg:      cfg,
	}
}

// AddRebuildHook registers a downstream consumer to notify once per
// changed run, after all phases complete.
func (r *Reconciler) AddRebuildHook(hook driven.RebuildHook) {
	r.hooks = append(r.hooks, hook)
}

// Status returns the state of the run in progress, if any.
func (r *Reconciler) Status(_ context.Context) (*driving.SyncStatus, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return &driving.SyncStatus{
		Running:        r.running,
		FilesProcessed: r.done,
		ErrorCount:     r.failed,
	}, nil
}

// Sync runs one reconciliation pass. It returns a report even when
// individual files failed; only configuration errors and an
// unreachable index abort the run.
func (r *Reconciler) Sync(ctx context.Context) (*domain.SyncReport, error) {
	r.setRunning(true)
	defer r.setRunning(false)

	report := &domain.SyncReport{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
	}

	sources, err := r.registry.ListSources(ctx)
	if err != nil {
		return nil, err
	}

	owners, current, err := r.scanAll(ctx, sources)
	if err != nil {
		return nil, err
	}

	plan, prints, err := r.classify(ctx, current, report)
	if err != nil {
		return nil, err
	}

	report.NewCount = len(plan.New)
	report.ModifiedCount = len(plan.Modified)
	report.DeletedCount = len(plan.Deleted)
	report.UnchangedCount = len(plan.Unchanged)

	logger.Info("Plan: %d new, %d modified, %d deleted, %d unchanged",
		report.NewCount, report.ModifiedCount, report.DeletedCount, report.UnchangedCount)

	wasEmpty, err := r.index.IsEmpty(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: is empty check: %v", domain.ErrIndexUnavailable, err)
	}

	var applied int
	streak := 0

	// Phase 1: delete. Removing chunks for vanished files first keeps
	// later phases working against the post-delete index state.
	if len(plan.Deleted) > 0 {
		logger.Section("Delete Phase")
		results := r.strategy.Run(ctx, plan.Deleted, r.deleteTask)
		n, err := r.collect(ctx, results, domain.ClassDeleted, report, &streak)
		if err != nil {
			return nil, err
		}
		applied += n
	}

	// Phase 2: update. Delete-then-insert rather than in-place
	// mutation, so a file whose chunk count shrank leaves no orphans.
	if len(plan.Modified) > 0 {
		logger.Section("Update Phase")
		results := r.strategy.Run(ctx, plan.Modified, func(ctx context.Context, path string) (int, error) {
			if _, err := r.deleteTask(ctx, path); err != nil {
				return 0, err
			}
			return r.insertFile(ctx, path, owners[path], prints[path])
		})
		n, err := r.collect(ctx, results, domain.ClassModified, report, &streak)
		if err != nil {
			return nil, err
		}
		applied += n
	}

	// Phase 3: insert. First population of an empty index is batched
	// into a single add; otherwise files are added incrementally.
	if len(plan.New) > 0 {
		logger.Section("Insert Phase")
		var (
			results []FileResult
			addErr  error
		)
		if wasEmpty {
			results, addErr = r.batchInsert(ctx, plan.New, owners, prints)
			if addErr != nil {
				return nil, addErr
			}
		} else {
			results = r.strategy.Run(ctx, plan.New, func(ctx context.Context, path string) (int, error) {
				return r.insertFile(ctx, path, owners[path], prints[path])
			})
		}
		n, err := r.collect(ctx, results, domain.ClassNew, report, &streak)
		if err != nil {
			return nil, err
		}
		applied += n
	}

	// Phase 4: rebuild. Signal downstream consumers only when the run
	// actually changed the index; a no-op run skips the rebuild cost.
	if applied > 0 {
		logger.Section("Rebuild Phase")
		r.rebuild(ctx)
		report.Rebuilt = true
	} else {
		logger.Debug("No changes applied, skipping rebuild")
	}

	report.FinishedAt = time.Now()
	logger.Info("Sync %s complete: %d outcomes, %d failures",
		report.RunID, len(report.Outcomes), report.Failures)
	return report, nil
}

// scanAll expands every source and maps each file to its owning
// source. When sources overlap, the first source to claim a path wins.
func (r *Reconciler) scanAll(
	ctx context.Context, sources []domain.DataSource,
) (map[string]domain.DataSource, []string, error) {
	owners := make(map[string]domain.DataSource)
	var current []string

	for _, src := range sources {
		paths, err := r.scanner.Scan(ctx, src)
		if err != nil {
			return nil, nil, err
		}
		for _, p := range paths {
			if _, claimed := owners[p]; claimed {
				continue
			}
			owners[p] = src
			current = append(current, p)
		}
	}
	sort.Strings(current)
	return owners, current, nil
}

// classify reads the index state once and partitions the observed file
// set. Fingerprints computed here are reused by the insert phase.
func (r *Reconciler) classify(
	ctx context.Context, current []string, report *domain.SyncReport,
) (*domain.ReconciliationPlan, map[string]*domain.FileFingerprint, error) {
	indexed, err := r.index.ListSourceMeta(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: list source metadata: %v", domain.ErrIndexUnavailable, err)
	}
	logger.Debug("Index knows %d source paths", len(indexed))

	plan := &domain.ReconciliationPlan{}
	prints := make(map[string]*domain.FileFingerprint)
	currentSet := make(map[string]struct{}, len(current))

	for _, path := range current {
		currentSet[path] = struct{}{}

		meta, known := indexed[path]
		if !known {
			plan.New = append(plan.New, path)
			continue
		}
		if !r.cfg.ChangeDetection {
			plan.Unchanged = append(plan.Unchanged, path)
			continue
		}

		fp, err := r.detector.Fingerprint(path)
		if err != nil {
			logger.Warn("Fingerprint failed for %s: %v", path, err)
			report.Record(domain.FileOutcome{Path: path, Class: domain.ClassUnchanged, Err: err.Error()})
			continue
		}
		prints[path] = fp

		switch r.detector.Classify(fp, &meta) {
		case domain.ClassModified:
			plan.Modified = append(plan.Modified, path)
		default:
			plan.Unchanged = append(plan.Unchanged, path)
		}
	}

	if r.cfg.AutoDeleteMissing {
		for path := range indexed {
			if _, exists := currentSet[path]; !exists {
				plan.Deleted = append(plan.Deleted, path)
			}
		}
		sort.Strings(plan.Deleted)
	}

	return plan, prints, nil
}

// deleteTask removes every chunk whose source path matches. A path
// with no indexed chunks is already absent, not an error.
func (r *Reconciler) deleteTask(ctx context.Context, path string) (int, error) {
	metas, err := r.index.GetBySource(ctx, path)
	if err != nil {
		return 0, fmt.Errorf("%w: get chunks for %s: %v", domain.ErrIndexOp, path, err)
	}
	if len(metas) == 0 {
		return 0, nil
	}

	ids := make([]string, len(metas))
	for i, m := range metas {
		ids[i] = m.ChunkID
	}
	if err := r.index.Delete(ctx, ids); err != nil {
		return 0, fmt.Errorf("%w: delete chunks for %s: %v", domain.ErrIndexOp, path, err)
	}
	logger.Debug("Deleted %d chunks for %s", len(ids), path)
	return len(ids), nil
}

// insertFile loads, chunks, tags, embeds and adds one file.
func (r *Reconciler) insertFile(
	ctx context.Context, path string, src domain.DataSource, fp *domain.FileFingerprint,
) (int, error) {
	chunks, err := r.prepareFile(ctx, path, src, fp)
	if err != nil {
		return 0, err
	}
	if len(chunks) == 0 {
		return 0, nil
	}
	if err := r.index.Add(ctx, chunks); err != nil {
		return 0, fmt.Errorf("%w: add chunks for %s: %v", domain.ErrIndexOp, path, err)
	}
	return len(chunks), nil
}

// prepareFile produces the tagged, optionally embedded chunks for one
// file without touching the index.
func (r *Reconciler) prepareFile(
	ctx context.Context, path string, src domain.DataSource, fp *domain.FileFingerprint,
) ([]domain.Chunk, error) {
	if fp == nil {
		var err error
		fp, err = r.detector.Fingerprint(path)
		if err != nil {
			return nil, err
		}
	}

	content, err := r.loader.Load(ctx, path)
	if err != nil {
		return nil, err
	}

	pieces := r.chunker.Split(content)
	chunks := r.tagger.Tag(src, *fp, pieces)

	if r.embedder != nil && len(chunks) > 0 {
		texts := make([]string, len(chunks))
		for i := range chunks {
			texts[i] = chunks[i].Content
		}
		vectors, err := r.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embed chunks for %s: %w", path, err)
		}
		for i := range chunks {
			chunks[i].Embedding = vectors[i]
		}
	}

	return chunks, nil
}

// batchInsert populates an empty index with a single add call. The
// per-file load/chunk/embed work still fans out through the strategy;
// only the final add is batched.
func (r *Reconciler) batchInsert(
	ctx context.Context,
	paths []string,
	owners map[string]domain.DataSource,
	prints map[string]*domain.FileFingerprint,
) ([]FileResult, error) {
	var (
		mu        sync.Mutex
		collected []domain.Chunk
	)

	results := r.strategy.Run(ctx, paths, func(ctx context.Context, path string) (int, error) {
		chunks, err := r.prepareFile(ctx, path, owners[path], prints[path])
		if err != nil {
			return 0, err
		}
		mu.Lock()
		collected = append(collected, chunks...)
		mu.Unlock()
		return len(chunks), nil
	})

	if len(collected) == 0 {
		return results, nil
	}

	if err := r.index.Add(ctx, collected); err != nil {
		// The one batched add failed: every prepared file failed with it.
		wrapped := fmt.Errorf("%w: batch add: %v", domain.ErrIndexOp, err)
		for i := range results {
			if results[i].Err == nil {
				results[i].Err = wrapped
				results[i].Chunks = 0
			}
		}
		return results, nil
	}
	logger.Info("Populated empty index with %d chunks from %d files", len(collected), len(paths))
	return results, nil
}

// collect records a phase's results and enforces the escalation
// policy: a streak of consecutive index-operation failures means the
// index itself is unreachable and the run must abort instead of
// silently failing every remaining file.
func (r *Reconciler) collect(
	ctx context.Context,
	results []FileResult,
	class domain.FileClass,
	report *domain.SyncReport,
	streak *int,
) (applied int, err error) {
	for _, res := range results {
		outcome := domain.FileOutcome{Path: res.Path, Class: class, Chunks: res.Chunks}
		if res.Err != nil {
			outcome.Err = res.Err.Error()
		}
		report.Record(outcome)
		r.track(res.Err != nil)

		if res.Err == nil {
			*streak = 0
			applied++
			continue
		}

		logger.Warn("%s failed for %s: %v", class, res.Path, res.Err)
		if errors.Is(res.Err, domain.ErrIndexOp) {
			*streak++
			if *streak >= r.cfg.FailureThreshold {
				return applied, fmt.Errorf("%w: %d consecutive index failures",
					domain.ErrIndexUnavailable, *streak)
			}
		} else {
			*streak = 0
		}
	}

	if err := ctx.Err(); err != nil {
		return applied, err
	}
	return applied, nil
}

// rebuild re-derives downstream state from the full current chunk set.
// Rebuild errors are logged, not fatal: the index itself is already
// consistent and the next changed run signals again.
func (r *Reconciler) rebuild(ctx context.Context) {
	if r.keyword != nil {
		chunks, err := r.index.AllChunks(ctx)
		if err != nil {
			logger.Warn("Rebuild: loading chunks failed: %v", err)
		} else if err := r.keyword.Rebuild(ctx, chunks); err != nil {
			logger.Warn("Rebuild: keyword index failed: %v", err)
		} else {
			logger.Debug("Keyword index rebuilt with %d chunks", len(chunks))
		}
	}
	for _, hook := range r.hooks {
		if err := hook(ctx); err != nil {
			logger.Warn("Rebuild hook failed: %v", err)
		}
	}
}

func (r *Reconciler) setRunning(v bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.running = v
	if v {
		r.done = 0
		r.failed = 0
	}
}

func (r *Reconciler) track(failed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.done++
	if failed {
		r.failed++
	}
}

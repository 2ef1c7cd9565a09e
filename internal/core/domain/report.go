package domain

import "time"

// FileOutcome records the result of processing one file during a run.
type FileOutcome struct {
	// Path is the file the outcome refers to.
	Path string

	// Class is the change classification that drove the processing.
	Class FileClass

	// Chunks is the number of chunks written or removed for the file.
	Chunks int

	// Err is non-empty when processing the file failed.
	Err string
}

// Failed reports whether the file's processing failed.
func (o FileOutcome) Failed() bool {
	return o.Err != ""
}

// SyncReport aggregates the results of one sync run. Created at the
// start of a run, appended to as processing completes, and returned to
// the caller even when individual files failed. Never persisted.
type SyncReport struct {
	// RunID uniquely identifies the run.
	RunID string

	// StartedAt and FinishedAt bound the run.
	StartedAt  time.Time
	FinishedAt time.Time

	// Counts per change class, as planned.
	NewCount       int
	ModifiedCount  int
	DeletedCount   int
	UnchangedCount int

	// Failures is the number of per-file failures recorded.
	Failures int

	// Rebuilt indicates downstream consumers were signalled to rebuild.
	Rebuilt bool

	// Outcomes lists every file that was actually processed.
	Outcomes []FileOutcome
}

// Record appends an outcome and updates the failure count.
func (r *SyncReport) Record(o FileOutcome) {
	if o.Failed() {
		r.Failures++
	}
	r.Outcomes = append(r.Outcomes, o)
}

// Changed reports whether the run mutated the index.
func (r *SyncReport) Changed() bool {
	return r.NewCount > 0 || r.ModifiedCount > 0 || r.DeletedCount > 0
}

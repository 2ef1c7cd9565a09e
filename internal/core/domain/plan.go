package domain

// ReconciliationPlan partitions the observed file set into the four
// disjoint change classes. Computed once per sync run.
//
// Invariants: New, Modified and Unchanged together cover exactly the
// file set observed by the scanner; Deleted holds paths known to the
// index that no longer exist on disk (populated only when auto-delete
// is enabled).
type ReconciliationPlan struct {
	New       []string
	Modified  []string
	Deleted   []string
	Unchanged []string
}

// HasChanges reports whether applying the plan will mutate the index.
func (p *ReconciliationPlan) HasChanges() bool {
	return len(p.New) > 0 || len(p.Modified) > 0 || len(p.Deleted) > 0
}

// Total returns the number of classified paths.
func (p *ReconciliationPlan) Total() int {
	return len(p.New) + len(p.Modified) + len(p.Deleted) + len(p.Unchanged)
}

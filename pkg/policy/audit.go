package policy

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/biblioworks/marcflow/pkg/marc"
)

// Audit accumulates per-batch bookkeeping: which identifiers the batch
// covered and what the policy counted while transforming its records.
// One Audit exists per batch; the pipeline creates it before streaming
// starts and discards it when the batch completes.
type Audit struct {
	// ID uniquely labels this batch audit.
	ID string
	// Kind is the lower-cased record kind.
	Kind string
	// RecordIDs lists the identifiers the batch was asked to retrieve.
	RecordIDs []marc.RecordID
	// CreatedAt is the accumulator creation time.
	CreatedAt time.Time
	// Counts holds policy-defined counters.
	Counts map[string]int
}

// NewAudit creates a batch audit for the given kind and identifier list.
func NewAudit(kind string, ids []marc.RecordID) *Audit {
	return &Audit{
		ID:        uuid.NewString(),
		Kind:      strings.ToLower(kind),
		RecordIDs: ids,
		CreatedAt: time.Now(),
		Counts:    make(map[string]int),
	}
}

// Add increments the named counter by delta.
func (a *Audit) Add(name string, delta int) {
	a.Counts[name] += delta
}

// Items accumulates holdings-level counts for bibliographic batches.
// Nil for every other kind.
type Items struct {
	// Total is the number of holdings fields seen in the batch.
	Total int
	// ByBranch counts holdings per owning branch code.
	ByBranch map[string]int
}

// NewItems creates an empty holdings accumulator.
func NewItems() *Items {
	return &Items{ByBranch: make(map[string]int)}
}

// Count tallies one holdings field. Fields without a branch code count
// into the total only.
func (i *Items) Count(branch string) {
	i.Total++
	if branch != "" {
		i.ByBranch[branch]++
	}
}

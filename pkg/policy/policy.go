// Package policy defines per-kind export policies: the exclusion and
// transformation hooks the pipeline applies to every record, plus the
// batch-scoped accumulators those hooks update.
package policy

import (
	"time"

	"github.com/biblioworks/marcflow/pkg/marc"
)

// Policy is the per-record-kind contract the export pipeline drives.
// The pipeline calls Exclude first; excluded records skip every later
// step and are not counted as written. Transform runs on surviving
// records before tag pruning and serialization, and may mutate the
// record and update the batch accumulators.
//
// Implementations are selected at construction time by the caller, one
// per record kind. They are driven from a single goroutine.
type Policy interface {
	// Kind returns the record kind this policy serves ("Bib" or "Auth").
	Kind() string

	// Exclude reports whether the record is dropped from the export.
	Exclude(rec *marc.Record) (bool, error)

	// Transform mutates the record before serialization. items is nil
	// for non-bibliographic batches.
	Transform(rec *marc.Record, audit *Audit, items *Items) error
}

// deletedStatus is the leader position 5 value marking a deleted record.
const deletedStatus = 'd'

func leaderDeleted(rec *marc.Record) bool {
	return len(rec.Leader) > 5 && rec.Leader[5] == deletedStatus
}

// stamp writes the cataloging agency into 003 when absent and refreshes
// the 005 latest-transaction timestamp.
func stamp(rec *marc.Record, org string, at time.Time) {
	if org != "" {
		if _, ok := rec.ControlFieldValue("003"); !ok {
			rec.SetControlField("003", org)
		}
	}
	rec.SetControlField("005", at.Format("20060102150405")+".0")
}

package policy

import (
	"time"

	"github.com/biblioworks/marcflow/pkg/config"
	"github.com/biblioworks/marcflow/pkg/marc"
)

const (
	// holdingsTag is the embedded holdings field on bibliographic
	// records; subfield a carries the owning branch code.
	holdingsTag = "952"

	// localDataTag and suppressionCode locate the 942$n flag marking
	// records suppressed from public catalogs.
	localDataTag    = "942"
	suppressionCode = "n"
)

// BibPolicy is the bibliographic export policy. Deleted and suppressed
// records are excluded; exported records get the cataloging agency and
// latest-transaction stamps; holdings fields are tallied into the batch
// accumulators.
type BibPolicy struct {
	// Org is the MARC organization code stamped into 003 when absent.
	Org string

	now func() time.Time
}

// NewBibPolicy creates the bibliographic policy with the given
// organization code. An empty code disables 003 stamping.
func NewBibPolicy(org string) *BibPolicy {
	return &BibPolicy{Org: org, now: time.Now}
}

// Kind implements Policy.
func (p *BibPolicy) Kind() string { return config.KindBib }

// Exclude drops deleted records and records suppressed via 942$n.
func (p *BibPolicy) Exclude(rec *marc.Record) (bool, error) {
	if leaderDeleted(rec) {
		return true, nil
	}
	for _, f := range rec.FieldsByTag(localDataTag) {
		if v, ok := f.Subfield(suppressionCode); ok && v == "1" {
			return true, nil
		}
	}
	return false, nil
}

// Transform stamps 003/005 and tallies holdings into the accumulators.
func (p *BibPolicy) Transform(rec *marc.Record, audit *Audit, items *Items) error {
	stamp(rec, p.Org, p.now())

	holdings := rec.FieldsByTag(holdingsTag)
	if audit != nil {
		audit.Add("records", 1)
		audit.Add("items", len(holdings))
	}
	if items != nil {
		for _, h := range holdings {
			branch, _ := h.Subfield("a")
			items.Count(branch)
		}
	}
	return nil
}

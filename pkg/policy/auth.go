package policy

import (
	"time"

	"github.com/biblioworks/marcflow/pkg/config"
	"github.com/biblioworks/marcflow/pkg/marc"
)

// AuthPolicy is the authority export policy: deleted headings are
// excluded and exported records get the cataloging agency and
// latest-transaction stamps. Authorities carry no holdings, so the
// items accumulator is never consulted.
type AuthPolicy struct {
	// Org is the MARC organization code stamped into 003 when absent.
	Org string

	now func() time.Time
}

// NewAuthPolicy creates the authority policy with the given
// organization code.
func NewAuthPolicy(org string) *AuthPolicy {
	return &AuthPolicy{Org: org, now: time.Now}
}

// Kind implements Policy.
func (p *AuthPolicy) Kind() string { return config.KindAuth }

// Exclude drops deleted records.
func (p *AuthPolicy) Exclude(rec *marc.Record) (bool, error) {
	return leaderDeleted(rec), nil
}

// Transform stamps 003/005 and counts the record into the audit.
func (p *AuthPolicy) Transform(rec *marc.Record, audit *Audit, _ *Items) error {
	stamp(rec, p.Org, p.now())

	if audit != nil {
		audit.Add("records", 1)
	}
	return nil
}

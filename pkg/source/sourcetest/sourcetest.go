// Package sourcetest provides a scripted in-memory record source for
// pipeline and policy tests.
package sourcetest

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/biblioworks/marcflow/pkg/marc"
)

// Fake is a scripted source.Source. Populate the canned fields, then
// inspect the call counters after driving the code under test. The zero
// value is usable; Records lazily initializes on first Add.
type Fake struct {
	// WindowIDs is returned by ModifiedBetween.
	WindowIDs []marc.RecordID
	// QueryRows is returned by Query.
	QueryRows [][]interface{}
	// Records maps identifier to the record Iterate hands the callback.
	// Identifiers without a record are skipped, mirroring a catalog row
	// deleted between resolution and retrieval.
	Records map[marc.RecordID]*marc.Record

	// WindowErr, QueryErr and IterateErr inject failures.
	WindowErr  error
	QueryErr   error
	IterateErr error

	// Call counters.
	WindowCalls  int
	QueryCalls   int
	IterateCalls int
	CloseCalls   int

	// IterateCriteria records the idCriterion of each Iterate call.
	IterateCriteria []string
	// IterateEncodings records the encoding of each Iterate call.
	IterateEncodings []string

	// LastWindow records the arguments of the last ModifiedBetween call.
	LastWindow struct {
		Kind  string
		Since time.Time
		Until time.Time
	}
}

// New creates an empty fake.
func New() *Fake {
	return &Fake{Records: make(map[marc.RecordID]*marc.Record)}
}

// Add registers a record under the given identifier and stamps its 001.
func (f *Fake) Add(id marc.RecordID, rec *marc.Record) {
	if f.Records == nil {
		f.Records = make(map[marc.RecordID]*marc.Record)
	}
	rec.SetControlField("001", string(id))
	f.Records[id] = rec
}

// AddN registers n minimal records with identifiers start..start+n-1,
// rendered in decimal. Convenient for batch-boundary tests.
func (f *Fake) AddN(start, n int) []marc.RecordID {
	ids := make([]marc.RecordID, 0, n)
	for i := 0; i < n; i++ {
		id := marc.RecordID(strconv.Itoa(start + i))
		f.Add(id, marc.NewRecord(""))
		ids = append(ids, id)
	}
	return ids
}

// ModifiedBetween returns the canned window identifiers.
func (f *Fake) ModifiedBetween(ctx context.Context, kind string, since, until time.Time) ([]marc.RecordID, error) {
	f.WindowCalls++
	f.LastWindow.Kind = kind
	f.LastWindow.Since = since
	f.LastWindow.Until = until
	if f.WindowErr != nil {
		return nil, f.WindowErr
	}
	return f.WindowIDs, nil
}

// Query returns the canned rows.
func (f *Fake) Query(ctx context.Context, criteria string) ([][]interface{}, error) {
	f.QueryCalls++
	if f.QueryErr != nil {
		return nil, f.QueryErr
	}
	return f.QueryRows, nil
}

// Iterate splits the criterion and invokes fn for every identifier that
// has a canned record, in criterion order.
func (f *Fake) Iterate(ctx context.Context, kind, encoding, idCriterion string, fn func(*marc.Record) error) error {
	f.IterateCalls++
	f.IterateCriteria = append(f.IterateCriteria, idCriterion)
	f.IterateEncodings = append(f.IterateEncodings, encoding)
	if f.IterateErr != nil {
		return f.IterateErr
	}

	for _, part := range strings.Split(idCriterion, ",") {
		rec, ok := f.Records[marc.RecordID(part)]
		if !ok {
			continue
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	return nil
}

// Close counts the call.
func (f *Fake) Close(ctx context.Context) error {
	f.CloseCalls++
	return nil
}

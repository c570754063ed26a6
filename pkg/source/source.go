// Package source defines the record source contract the export pipeline
// retrieves catalog records through, plus a driver registry the concrete
// database adapters register themselves with.
//
// The pipeline sees only the Source interface: identifier resolution via
// a modification window or an arbitrary criteria query, and streamed
// retrieval of the records behind a batch of identifiers. Adapters for
// PostgreSQL, MySQL, and SQLite live in subpackages and register under
// their driver name; importing an adapter package for side effects makes
// its driver available to Open.
package source

import (
	"context"
	"time"

	"github.com/biblioworks/marcflow/pkg/config"
	"github.com/biblioworks/marcflow/pkg/errors"
	"github.com/biblioworks/marcflow/pkg/marc"
	stringpool "github.com/biblioworks/marcflow/pkg/strings"
)

// Source retrieves catalog records and their identifiers. Implementations
// wrap one database connection (or pool) and are driven from a single
// goroutine for the duration of a run.
type Source interface {
	// ModifiedBetween returns the identifiers of records of the given
	// kind modified within [since, until), in modification order.
	ModifiedBetween(ctx context.Context, kind string, since, until time.Time) ([]marc.RecordID, error)

	// Query executes an arbitrary criteria query and returns the result
	// rows. The caller takes the first column of each row as a record
	// identifier.
	Query(ctx context.Context, criteria string) ([][]interface{}, error)

	// Iterate retrieves the records selected by idCriterion (a
	// comma-separated identifier list) and invokes fn once per record, in
	// retrieval order. Retrieval errors fail the whole call; an error
	// from fn aborts the iteration and is returned unwrapped.
	Iterate(ctx context.Context, kind, encoding, idCriterion string, fn func(*marc.Record) error) error

	// Close releases the underlying connection.
	Close(ctx context.Context) error
}

// Factory creates a Source from its driver configuration.
type Factory func(ctx context.Context, cfg *config.SourceConfig) (Source, error)

// Table returns the catalog table holding records of the given kind.
func Table(kind string) (string, error) {
	switch kind {
	case config.KindBib:
		return "bib_records", nil
	case config.KindAuth:
		return "auth_records", nil
	}
	return "", errors.Newf(errors.ErrorTypeConfig, "unknown record kind %q", kind)
}

// JoinIDs renders a batch of identifiers as the comma-separated retrieval
// criterion handed to Iterate.
func JoinIDs(ids []marc.RecordID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	return stringpool.Join(parts, ",")
}

// Package sqlite implements the record source contract on a local SQLite
// catalog file. Useful for test fixtures and small standalone catalogs.
package sqlite

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/biblioworks/marcflow/pkg/config"
	"github.com/biblioworks/marcflow/pkg/errors"
	"github.com/biblioworks/marcflow/pkg/logger"
	"github.com/biblioworks/marcflow/pkg/marc"
	"github.com/biblioworks/marcflow/pkg/source"
	stringpool "github.com/biblioworks/marcflow/pkg/strings"
)

// Source is the SQLite record source adapter.
type Source struct {
	db     *sql.DB
	logger *zap.Logger
}

// New opens the SQLite database file at cfg.Path.
func New(ctx context.Context, cfg *config.SourceConfig) (*Source, error) {
	if cfg.Path == "" {
		return nil, errors.New(errors.ErrorTypeConfig, "sqlite source requires a database path")
	}

	db, err := sql.Open("sqlite3", cfg.Path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConnection, "failed to open sqlite database")
	}
	// A single writer elsewhere must not fail reads immediately.
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, errors.ErrorTypeConnection, "failed to configure sqlite database")
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, errors.ErrorTypeConnection, "failed to ping sqlite database")
	}

	log := logger.Get().With(zap.String("source", "sqlite"))
	log.Info("opened sqlite database", zap.String("path", cfg.Path))

	return &Source{db: db, logger: log}, nil
}

// ModifiedBetween returns the identifiers of records modified within
// [since, until), in modification order.
func (s *Source) ModifiedBetween(ctx context.Context, kind string, since, until time.Time) ([]marc.RecordID, error) {
	table, err := source.Table(kind)
	if err != nil {
		return nil, err
	}

	query := "SELECT record_id FROM " + table +
		" WHERE updated_at >= ? AND updated_at < ? ORDER BY updated_at, record_id"
	rows, err := s.db.QueryContext(ctx, query, since, until)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeQuery, "modification window query failed")
	}
	defer rows.Close()

	var ids []marc.RecordID
	for rows.Next() {
		var id interface{}
		if err := rows.Scan(&id); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeQuery, "failed to scan record identifier")
		}
		ids = append(ids, marc.RecordID(stringpool.ValueToString(id)))
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeQuery, "modification window query failed")
	}
	return ids, nil
}

// Query executes the criteria query verbatim and returns the result rows.
func (s *Source) Query(ctx context.Context, criteria string) ([][]interface{}, error) {
	s.logger.Debug("executing criteria query", zap.String("criteria", criteria))

	rows, err := s.db.QueryContext(ctx, criteria)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeQuery, "criteria query failed")
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeQuery, "failed to read criteria query columns")
	}

	var out [][]interface{}
	for rows.Next() {
		values := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeQuery, "failed to read criteria query row")
		}
		out = append(out, values)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeQuery, "criteria query failed")
	}
	return out, nil
}

// Iterate retrieves the records selected by idCriterion and invokes fn
// once per record, in retrieval order.
func (s *Source) Iterate(ctx context.Context, kind, encoding, idCriterion string, fn func(*marc.Record) error) error {
	table, err := source.Table(kind)
	if err != nil {
		return err
	}
	if idCriterion == "" {
		return nil
	}

	query := "SELECT record_id, metadata FROM " + table +
		" WHERE record_id IN (" + idCriterion + ") ORDER BY record_id"

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeQuery, "record retrieval failed")
	}
	defer rows.Close()

	for rows.Next() {
		var id interface{}
		var metadata []byte
		if err := rows.Scan(&id, &metadata); err != nil {
			return errors.Wrap(err, errors.ErrorTypeQuery, "failed to scan record row")
		}

		rec, err := marc.ParseXML(metadata)
		if err != nil {
			return errors.Wrapf(err, errors.ErrorTypeData, "malformed record %s", stringpool.ValueToString(id))
		}
		if _, ok := rec.ControlFieldValue("001"); !ok {
			rec.SetControlField("001", stringpool.ValueToString(id))
		}

		if err := fn(rec); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeQuery, "record retrieval failed")
	}
	return nil
}

// Close releases the database handle.
func (s *Source) Close(ctx context.Context) error {
	if err := s.db.Close(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeConnection, "failed to close sqlite database")
	}
	s.logger.Info("sqlite source closed")
	return nil
}

// Package postgres implements the record source contract on PostgreSQL
// using pgx connection pooling.
package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/biblioworks/marcflow/pkg/config"
	"github.com/biblioworks/marcflow/pkg/errors"
	"github.com/biblioworks/marcflow/pkg/logger"
	"github.com/biblioworks/marcflow/pkg/marc"
	"github.com/biblioworks/marcflow/pkg/source"
	stringpool "github.com/biblioworks/marcflow/pkg/strings"
)

// Source is the PostgreSQL record source adapter.
type Source struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// New connects to PostgreSQL and verifies the connection with a ping.
func New(ctx context.Context, cfg *config.SourceConfig) (*Source, error) {
	connStr := stringpool.Sprintf("postgres://%s:%s@%s:%d/%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database)

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "invalid postgresql connection string")
	}
	poolConfig.MaxConns = 4
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConnection, "failed to create postgresql connection pool")
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, errors.ErrorTypeConnection, "failed to ping postgresql")
	}

	log := logger.Get().With(zap.String("source", "postgres"))
	log.Info("connected to postgresql",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Database))

	return &Source{pool: pool, logger: log}, nil
}

// ModifiedBetween returns the identifiers of records modified within
// [since, until), in modification order.
func (s *Source) ModifiedBetween(ctx context.Context, kind string, since, until time.Time) ([]marc.RecordID, error) {
	table, err := source.Table(kind)
	if err != nil {
		return nil, err
	}

	query := "SELECT record_id FROM " + table +
		" WHERE updated_at >= $1 AND updated_at < $2 ORDER BY updated_at, record_id"
	s.logger.Debug("resolving modification window",
		zap.String("table", table),
		zap.Time("since", since),
		zap.Time("until", until))

	rows, err := s.pool.Query(ctx, query, since, until)
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

	rows, err := s.pool.Query(ctx, criteria)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeQuery, "criteria query failed")
	}
	defer rows.Close()

	var out [][]interface{}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
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

	// Identifiers originate from this database; the criterion splices
	// into the IN clause the way the retrieval contract fixes it.
	query := "SELECT record_id, metadata FROM " + table +
		" WHERE record_id IN (" + idCriterion + ") ORDER BY record_id"

	rows, err := s.pool.Query(ctx, query)
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

// Close releases the connection pool.
func (s *Source) Close(ctx context.Context) error {
	s.pool.Close()
	s.logger.Info("postgresql source closed")
	return nil
}

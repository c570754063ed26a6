package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/biblioworks/marcflow/pkg/marc"
	stringpool "github.com/biblioworks/marcflow/pkg/strings"
)

// resolve computes the full identifier sequence for the run, once. The
// window strategy applies when Since is set; the criteria strategy
// otherwise. Validate has already established that one of the two is
// configured.
func (e *Exporter) resolve(ctx context.Context) ([]marc.RecordID, error) {
	if e.resolved {
		return e.ids, nil
	}

	var (
		ids []marc.RecordID
		err error
	)
	if !e.cfg.Since.IsZero() {
		until := e.cfg.Until
		if until.IsZero() {
			until = time.Now()
		}
		e.logger.Info("resolving identifiers by modification window",
			zap.Time("since", e.cfg.Since),
			zap.Time("until", until))
		ids, err = e.source.ModifiedBetween(ctx, e.cfg.RecordKind, e.cfg.Since, until)
	} else {
		e.logger.Info("resolving identifiers by criteria",
			zap.String("criteria", e.cfg.Criteria))
		var rows [][]interface{}
		rows, err = e.source.Query(ctx, e.cfg.Criteria)
		if err == nil {
			ids = make([]marc.RecordID, 0, len(rows))
			for _, row := range rows {
				if len(row) == 0 {
					continue
				}
				ids = append(ids, marc.RecordID(stringpool.ValueToString(row[0])))
			}
		}
	}
	if err != nil {
		return nil, err
	}

	e.ids = ids
	e.resolved = true
	e.logger.Info("identifiers resolved", zap.Int("count", len(ids)))
	return ids, nil
}

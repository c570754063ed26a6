// Package pipeline implements the export engine: identifier resolution,
// batching, the streaming per-record processing loop, and output
// dispatch.
//
// # Control Flow
//
// A run validates its configuration, resolves the full identifier
// sequence (by modification window or criteria query), slices it into
// batches, and streams each batch's records from the source through the
// export policy's exclusion and transformation hooks, tag pruning, and
// serialization to the destination. Progress updates are throttled; a
// summary reports the written count and elapsed time.
//
// # Failure Model
//
// Everything is fatal: configuration, retrieval, policy and write errors
// abort the run with no retry and no partial-batch recovery. Output
// written before the failure is left as-is. The engine is single-
// threaded and an Exporter drives at most one run.
package pipeline

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/biblioworks/marcflow/pkg/config"
	"github.com/biblioworks/marcflow/pkg/docstore"
	"github.com/biblioworks/marcflow/pkg/errors"
	"github.com/biblioworks/marcflow/pkg/logger"
	"github.com/biblioworks/marcflow/pkg/marc"
	"github.com/biblioworks/marcflow/pkg/metrics"
	"github.com/biblioworks/marcflow/pkg/observability"
	"github.com/biblioworks/marcflow/pkg/policy"
	"github.com/biblioworks/marcflow/pkg/source"
)

// progressInterval is the record-count cadence of throttled progress
// updates for file and docstore destinations.
const progressInterval = 5

// sourceEncoding is the text encoding fixed for record retrieval.
const sourceEncoding = "UTF-8"

// Exporter drives one export run from a validated configuration, a
// record source, and an export policy. Create one per run; Run may be
// called once.
type Exporter struct {
	cfg      *config.ExportConfig
	source   source.Source
	policy   policy.Policy
	reporter Reporter
	sink     docstore.Sink
	fallback io.Writer
	logger   *zap.Logger

	ids      []marc.RecordID
	resolved bool
	ran      bool

	done    int
	written int
}

// Option customizes an Exporter.
type Option func(*Exporter)

// WithReporter sets the progress reporter. The default discards all
// presentation output.
func WithReporter(r Reporter) Option {
	return func(e *Exporter) { e.reporter = r }
}

// WithSink injects a document sink, overriding the one the exporter
// would open from the configuration. A configured sink takes precedence
// over the serialization path for every record.
func WithSink(s docstore.Sink) Option {
	return func(e *Exporter) { e.sink = s }
}

// WithOutput sets the stream destination used when no file destination
// is configured. The default is standard output.
func WithOutput(w io.Writer) Option {
	return func(e *Exporter) { e.fallback = w }
}

// New creates an Exporter. The configuration is validated at Run, not
// here.
func New(cfg *config.ExportConfig, src source.Source, pol policy.Policy, opts ...Option) *Exporter {
	e := &Exporter{
		cfg:      cfg,
		source:   src,
		policy:   pol,
		reporter: NopReporter{},
		fallback: os.Stdout,
		logger: logger.Get().With(
			zap.String("component", "exporter"),
			zap.String("export_id", cfg.ExportID)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes the export. It returns the first fatal error; output
// written before the failure is left in place.
func (e *Exporter) Run(ctx context.Context) error {
	if e.ran {
		return errors.New(errors.ErrorTypeState, "exporter has already run; one exporter drives at most one run")
	}
	e.ran = true

	start := time.Now()

	if err := e.cfg.Validate(); err != nil {
		return err
	}
	if e.policy == nil {
		return errors.New(errors.ErrorTypeConfig, "no export policy configured for record kind "+e.cfg.RecordKind)
	}
	if e.policy.Kind() != e.cfg.RecordKind {
		return errors.Newf(errors.ErrorTypeConfig, "policy kind %q does not match record kind %q",
			e.policy.Kind(), e.cfg.RecordKind)
	}

	outputType := e.cfg.ResolveOutputType()
	collector := metrics.NewCollector(strings.ToLower(e.cfg.RecordKind), string(outputType))

	ctx, span := observability.StartSpan(ctx, "export_run",
		attribute.String("export_id", e.cfg.ExportID),
		attribute.String("kind", e.cfg.RecordKind),
		attribute.String("output_type", string(outputType)))
	defer span.End()

	err := e.run(ctx, outputType, collector, start)
	if err != nil {
		collector.RecordError(string(errors.GetType(err)))
		span.RecordError(err)
		return err
	}

	collector.RunDone()
	span.SetAttributes(attribute.Int("records_written", e.written))
	return nil
}

func (e *Exporter) run(ctx context.Context, outputType config.OutputType, collector *metrics.Collector, start time.Time) error {
	e.logger.Info("export run starting",
		zap.String("kind", e.cfg.RecordKind),
		zap.String("output_type", string(outputType)),
		zap.Int("batch_size", e.cfg.BatchSize))

	// The document sink is opened before the stream destination so a
	// bad docstore configuration fails before any file is truncated.
	sink := e.sink
	if sink == nil && e.cfg.DocStore != nil {
		opened, err := docstore.NewMongoSink(ctx, e.cfg.DocStore)
		if err != nil {
			return err
		}
		sink = opened
		defer func() {
			if cerr := sink.Close(context.Background()); cerr != nil {
				e.logger.Warn("failed to close document sink", zap.Error(cerr))
			}
		}()
	}

	disp, err := newDispatcher(e.cfg, outputType, sink, e.fallback)
	if err != nil {
		return err
	}

	ids, err := e.resolve(ctx)
	if err != nil {
		_ = disp.Close()
		return err
	}
	total := len(ids)

	batcher := NewBatcher(ids, e.cfg.BatchSize)
	frame := outputType == config.OutputTypeXML

	batchNum := 0
	for {
		batch, ok := batcher.Next()
		if !ok {
			break
		}
		batchNum++

		if err := e.runBatch(ctx, disp, collector, batch, batchNum, total, frame); err != nil {
			_ = disp.Close()
			return err
		}
		collector.BatchDone(len(batch))
	}

	if err := disp.Close(); err != nil {
		return err
	}

	elapsed := time.Since(start)
	e.reporter.Summary(e.written, elapsed)
	e.logger.Info("export run finished",
		zap.Int("written", e.written),
		zap.Int("processed", e.done),
		zap.Int("batches", batchNum),
		zap.Duration("elapsed", elapsed))
	return nil
}

// runBatch streams one batch of identifiers through the per-record loop.
func (e *Exporter) runBatch(ctx context.Context, disp *dispatcher, collector *metrics.Collector, batch []marc.RecordID, batchNum, total int, frame bool) error {
	ctx, span := observability.StartSpan(ctx, "export_batch",
		attribute.Int("batch", batchNum),
		attribute.Int("size", len(batch)))
	defer span.End()

	audit := policy.NewAudit(e.cfg.RecordKind, batch)
	var items *policy.Items
	if e.cfg.RecordKind == config.KindBib {
		items = policy.NewItems()
	}

	e.logger.Debug("batch starting",
		zap.Int("batch", batchNum),
		zap.Int("size", len(batch)),
		zap.String("audit_id", audit.ID))

	// Collection framing wraps each batch, not the whole run. A
	// multi-batch XML export therefore contains one complete wrapped
	// collection per batch.
	if frame {
		if err := disp.BeginCollection(); err != nil {
			span.RecordError(err)
			return err
		}
	}

	err := e.source.Iterate(ctx, e.cfg.RecordKind, sourceEncoding, source.JoinIDs(batch),
		func(rec *marc.Record) error {
			return e.processRecord(ctx, disp, collector, rec, total, audit, items)
		})
	if err != nil {
		span.RecordError(err)
		return err
	}

	if frame {
		if err := disp.EndCollection(); err != nil {
			span.RecordError(err)
			return err
		}
	}

	e.logger.Debug("batch finished",
		zap.Int("batch", batchNum),
		zap.String("audit_id", audit.ID),
		zap.Any("counts", audit.Counts))
	return nil
}

// processRecord is the per-record callback: count, throttled progress,
// exclusion, transformation, tag pruning, dispatch.
func (e *Exporter) processRecord(ctx context.Context, disp *dispatcher, collector *metrics.Collector, rec *marc.Record, total int, audit *policy.Audit, items *policy.Items) error {
	e.done++

	if e.done == total || (e.done%progressInterval == 0 && e.cfg.ThrottledProgress()) {
		e.reporter.Progress(e.done, total)
	}

	excluded, err := e.policy.Exclude(rec)
	if err != nil {
		return errors.Wrapf(err, errors.ErrorTypeData, "exclusion check failed for record %s", rec.ID())
	}
	if excluded {
		collector.RecordExcluded()
		return nil
	}

	if err := e.policy.Transform(rec, audit, items); err != nil {
		return errors.Wrapf(err, errors.ErrorTypeData, "transform failed for record %s", rec.ID())
	}

	for _, tag := range e.cfg.ExcludeTags {
		rec.RemoveTag(tag)
	}

	if err := disp.Dispatch(ctx, rec); err != nil {
		return err
	}
	e.written++
	collector.RecordWritten()
	return nil
}

// Written returns the number of records written so far.
func (e *Exporter) Written() int {
	return e.written
}

// Package marcflow is the root of the MARC catalog record export
// pipeline.
//
// marcflow extracts bibliographic and authority records identified by a
// catalog database, applies per-record filtering and transformation
// through pluggable export policies, and emits the survivors as MARCXML,
// MARC-in-JSON, ISO 2709, MARCMaker mnemonic text, or documents in a
// MongoDB collection.
//
// # Quick Start
//
// Export bibliographic records modified since a date:
//
//	marcflow run -k Bib --since 2026-01-01 -d /srv/exports -f bib.xml.gz
//
// Or drive the pipeline from Go:
//
//	cfg := config.NewExportConfig(config.KindBib)
//	cfg.Criteria = "SELECT record_id FROM bib_records"
//	src, _ := source.Open(ctx, &cfg.Source)
//	exp := pipeline.New(cfg, src, policy.NewBibPolicy("OrgCode"))
//	err := exp.Run(ctx)
//
// # Key Packages
//
//	cmd/marcflow      - Command-line interface
//	internal/pipeline - Export engine: resolution, batching, streaming
//	                    record loop, output dispatch, progress reporting
//	pkg/config        - Export configuration with YAML loading
//	pkg/marc          - MARC 21 record model and serializations
//	pkg/policy        - Per-kind exclusion/transformation policies
//	pkg/source        - Record source contract; PostgreSQL, MySQL and
//	                    SQLite adapters
//	pkg/docstore      - MongoDB document sink
//	pkg/errors        - Structured error handling
//	pkg/logger        - Structured logging
//	pkg/metrics       - Prometheus metrics
//
// Configuration files support environment variables with ${VAR_NAME}
// syntax.
package marcflow

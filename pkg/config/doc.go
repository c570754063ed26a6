// Package config provides configuration management for marcflow exports.
//
// A single ExportConfig structure describes everything about a run: which
// records to select, how to serialize them, and where to deliver them. The
// pipeline validates the configuration once at run start and treats it as
// immutable for the rest of the run.
//
// # Key Features
//
// - ExportConfig: one structure for the whole run
// - Record selection by query criteria or by modification time window
// - Output type resolution with docstore/xml defaulting
// - Environment variable substitution with ${VAR_NAME} syntax
// - Run-start validation with typed configuration errors
//
// # Usage
//
// ## Programmatic Construction
//
//	cfg := config.NewExportConfig(config.KindBib)
//	cfg.Criteria = "SELECT biblionumber FROM biblio WHERE datecreated > '2026-01-01'"
//	cfg.OutputDir = "/var/lib/marcflow"
//	cfg.OutputFile = "bibs.xml"
//
//	if err := cfg.Validate(); err != nil {
//		log.Fatal(err)
//	}
//
// ## Loading From a File
//
//	cfg, err := config.LoadFromFile("export.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//
// ## Environment Variable Substitution
//
//	# export.yaml
//	record_kind: Bib
//	criteria: "SELECT biblionumber FROM biblio WHERE datecreated > '2026-01-01'"
//	source:
//	  driver: postgres
//	  host: localhost
//	  user: koha
//	  password: ${KOHA_DB_PASSWORD}
//	  database: koha
//
// # Selection Rules
//
// Exactly one selection mechanism must be configured: either Criteria (a
// source query expression whose first result column yields record
// identifiers) or a Since/Until modification window. Until is exclusive
// and defaults to the run start time when zero. A configuration with
// neither fails validation before any source or destination I/O happens.
//
// # Output Resolution
//
// OutputType may be set explicitly to xml, json, iso2709, mnemonic, or
// docstore. When empty, the effective type is docstore if a DocStore
// destination is configured and xml otherwise. The pipeline resolves the
// type once at run start; destination precedence (document store over
// stream) is handled by the output dispatcher.
package config

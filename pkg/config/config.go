// Package config provides the configuration system for marcflow exports.
// It defines a single ExportConfig structure consumed by the export
// pipeline, with run-start validation and YAML loading.
package config

import (
	"path/filepath"
	"time"

	"github.com/biblioworks/marcflow/pkg/errors"
)

// Record kinds understood by the pipeline.
const (
	// KindBib selects bibliographic records.
	KindBib = "Bib"
	// KindAuth selects authority records.
	KindAuth = "Auth"
)

// OutputType identifies a record serialization format.
type OutputType string

// Supported output types.
const (
	// OutputTypeXML emits MARCXML with per-batch collection framing.
	OutputTypeXML OutputType = "xml"
	// OutputTypeJSON emits newline-delimited MARC-in-JSON.
	OutputTypeJSON OutputType = "json"
	// OutputTypeISO2709 emits binary ISO 2709 transmission records.
	OutputTypeISO2709 OutputType = "iso2709"
	// OutputTypeMnemonic emits MARCMaker mnemonic text.
	OutputTypeMnemonic OutputType = "mnemonic"
	// OutputTypeDocStore inserts one document per record into the
	// configured document store.
	OutputTypeDocStore OutputType = "docstore"
)

// DefaultBatchSize bounds the number of identifiers retrieved per batch.
const DefaultBatchSize = 1000

// ExportConfig is the configuration for a single export run. Build it with
// NewExportConfig or load it from YAML; the pipeline validates it at run
// start. Apart from the exclusion list and the destination fields it is
// treated as immutable once a run begins.
type ExportConfig struct {
	// ExportID labels the run; derived from the start timestamp when empty.
	ExportID string `yaml:"export_id" json:"export_id"`

	// RecordKind selects the record family: "Bib" or "Auth".
	RecordKind string `yaml:"record_kind" json:"record_kind"`

	// Criteria is a source query expression yielding record identifiers.
	// Exactly one of Criteria or the Since/Until window must be set.
	Criteria string `yaml:"criteria" json:"criteria"`
	// Since is the inclusive lower bound of the modification window.
	Since time.Time `yaml:"since" json:"since"`
	// Until is the exclusive upper bound; zero means the run start time.
	Until time.Time `yaml:"until" json:"until"`

	// ExcludeTags lists field tags stripped from every exported record.
	ExcludeTags []string `yaml:"exclude_tags" json:"exclude_tags"`

	// OutputType selects the serialization format. Empty selects the
	// default: docstore when a document store is configured, else xml.
	OutputType OutputType `yaml:"output_type" json:"output_type"`
	// OutputDir is the destination directory; it must exist before the run.
	OutputDir string `yaml:"output_dir" json:"output_dir"`
	// OutputFile is the destination file name inside OutputDir. A
	// compression suffix (.gz, .zst, .lz4) wraps the writer accordingly.
	OutputFile string `yaml:"output_file" json:"output_file"`
	// DocStore configures the document-store destination, when present.
	DocStore *DocStoreConfig `yaml:"docstore" json:"docstore"`

	// BatchSize bounds identifiers per retrieval batch.
	BatchSize int `yaml:"batch_size" json:"batch_size"`

	// Source configures the catalog database records are exported from.
	Source SourceConfig `yaml:"source" json:"source"`

	// Logging configures the ambient logger.
	Logging LogConfig `yaml:"logging" json:"logging"`
}

// SourceConfig locates the catalog database.
type SourceConfig struct {
	// Driver selects the adapter: "postgres", "mysql", or "sqlite".
	Driver string `yaml:"driver" json:"driver"`
	// Host of the database server.
	Host string `yaml:"host" json:"host"`
	// Port of the database server.
	Port int `yaml:"port" json:"port"`
	// User for authentication.
	User string `yaml:"user" json:"user"`
	// Password for authentication; use ${VAR_NAME} substitution in files.
	Password string `yaml:"password" json:"password"`
	// Database name.
	Database string `yaml:"database" json:"database"`
	// Path of the database file, for file-backed drivers.
	Path string `yaml:"path" json:"path"`
}

// DocStoreConfig locates the document-store destination collection.
type DocStoreConfig struct {
	// URI of the document store, e.g. mongodb://localhost:27017.
	URI string `yaml:"uri" json:"uri"`
	// Database receiving exported documents.
	Database string `yaml:"database" json:"database"`
	// Collection receiving exported documents.
	Collection string `yaml:"collection" json:"collection"`
}

// LogConfig controls logger initialization.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level" json:"level"`
	// Encoding is "json" or "console".
	Encoding string `yaml:"encoding" json:"encoding"`
}

// NewExportConfig creates an ExportConfig for the given record kind with
// defaults applied: a timestamp-derived ExportID, the standard batch size,
// and info-level JSON logging.
//
// Example:
//
//	cfg := config.NewExportConfig(config.KindBib)
//	cfg.Criteria = "SELECT biblionumber FROM biblio WHERE datecreated > '2026-01-01'"
func NewExportConfig(kind string) *ExportConfig {
	return &ExportConfig{
		ExportID:   DeriveExportID(time.Now()),
		RecordKind: kind,
		BatchSize:  DefaultBatchSize,
		Logging: LogConfig{
			Level:    "info",
			Encoding: "json",
		},
	}
}

// DeriveExportID renders the canonical run label for a start time.
func DeriveExportID(t time.Time) string {
	return "export-" + t.Format("20060102150405")
}

// Validate checks the configuration for a run. The pipeline calls it at
// run start, before any identifier resolution or destination I/O.
func (c *ExportConfig) Validate() error {
	if c.RecordKind == "" {
		return errors.New(errors.ErrorTypeConfig, "record kind is required")
	}
	if c.Criteria == "" && c.Since.IsZero() {
		return errors.New(errors.ErrorTypeConfig, "selection criteria or modification window is required")
	}
	if c.BatchSize < 1 {
		return errors.Newf(errors.ErrorTypeConfig, "batch size must be positive, got %d", c.BatchSize)
	}
	if c.OutputType != "" && !c.OutputType.Valid() {
		return errors.Newf(errors.ErrorTypeConfig, "unknown output type %q", string(c.OutputType))
	}
	if c.OutputType == OutputTypeDocStore && c.DocStore == nil {
		return errors.New(errors.ErrorTypeConfig, "docstore output requires a docstore destination")
	}
	return nil
}

// Valid reports whether t names a supported output type.
func (t OutputType) Valid() bool {
	switch t {
	case OutputTypeXML, OutputTypeJSON, OutputTypeISO2709, OutputTypeMnemonic, OutputTypeDocStore:
		return true
	}
	return false
}

// OutputTypes returns the supported output types in listing order.
func OutputTypes() []OutputType {
	return []OutputType{
		OutputTypeXML,
		OutputTypeJSON,
		OutputTypeISO2709,
		OutputTypeMnemonic,
		OutputTypeDocStore,
	}
}

// ResolveOutputType returns the effective output type for the run: the
// explicit type when set, docstore when a document store is configured,
// xml otherwise. The pipeline resolves this once at run start and keeps
// the result for the whole run.
func (c *ExportConfig) ResolveOutputType() OutputType {
	if c.OutputType != "" {
		return c.OutputType
	}
	if c.DocStore != nil {
		return OutputTypeDocStore
	}
	return OutputTypeXML
}

// FileDestination reports whether a file destination is fully configured.
func (c *ExportConfig) FileDestination() bool {
	return c.OutputDir != "" && c.OutputFile != ""
}

// OutputPath returns the destination file path.
func (c *ExportConfig) OutputPath() string {
	return filepath.Join(c.OutputDir, c.OutputFile)
}

// ThrottledProgress reports whether cadence progress updates are enabled.
// Cadence redraws fire only for runs with a file or document-store
// destination; stdout-only runs report just the final record.
func (c *ExportConfig) ThrottledProgress() bool {
	return c.FileDestination() || c.DocStore != nil
}

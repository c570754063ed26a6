package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biblioworks/marcflow/pkg/config"
	"github.com/biblioworks/marcflow/pkg/errors"
)

func TestExportConfig_Validate(t *testing.T) {
	window := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		mutate  func(*config.ExportConfig)
		wantErr string
	}{
		{
			name:   "criteria selection is valid",
			mutate: func(c *config.ExportConfig) { c.Criteria = "SELECT biblionumber FROM biblio" },
		},
		{
			name:   "window selection is valid",
			mutate: func(c *config.ExportConfig) { c.Since = window },
		},
		{
			name:    "no selection fails",
			mutate:  func(c *config.ExportConfig) {},
			wantErr: "selection criteria or modification window is required",
		},
		{
			name: "missing record kind fails",
			mutate: func(c *config.ExportConfig) {
				c.RecordKind = ""
				c.Criteria = "SELECT biblionumber FROM biblio"
			},
			wantErr: "record kind is required",
		},
		{
			name: "zero batch size fails",
			mutate: func(c *config.ExportConfig) {
				c.Criteria = "SELECT biblionumber FROM biblio"
				c.BatchSize = 0
			},
			wantErr: "batch size must be positive",
		},
		{
			name: "unknown output type fails",
			mutate: func(c *config.ExportConfig) {
				c.Criteria = "SELECT biblionumber FROM biblio"
				c.OutputType = "marc8"
			},
			wantErr: `unknown output type "marc8"`,
		},
		{
			name: "docstore type without destination fails",
			mutate: func(c *config.ExportConfig) {
				c.Criteria = "SELECT biblionumber FROM biblio"
				c.OutputType = config.OutputTypeDocStore
			},
			wantErr: "docstore output requires a docstore destination",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.NewExportConfig(config.KindBib)
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
		})
	}
}

func TestOutputType_Valid(t *testing.T) {
	for _, ot := range config.OutputTypes() {
		assert.True(t, ot.Valid(), string(ot))
	}
	assert.False(t, config.OutputType("marc8").Valid())
	assert.False(t, config.OutputType("").Valid())
}

func TestExportConfig_Destination(t *testing.T) {
	cfg := config.NewExportConfig(config.KindBib)
	assert.False(t, cfg.FileDestination())
	assert.False(t, cfg.ThrottledProgress())

	cfg.OutputDir = "/var/lib/marcflow"
	assert.False(t, cfg.FileDestination())

	cfg.OutputFile = "bibs.xml"
	assert.True(t, cfg.FileDestination())
	assert.True(t, cfg.ThrottledProgress())
	assert.Equal(t, filepath.Join("/var/lib/marcflow", "bibs.xml"), cfg.OutputPath())

	sinkOnly := config.NewExportConfig(config.KindBib)
	sinkOnly.DocStore = &config.DocStoreConfig{URI: "mongodb://localhost:27017"}
	assert.True(t, sinkOnly.ThrottledProgress())
}

func TestLoadFromFile(t *testing.T) {
	t.Setenv("MARCFLOW_TEST_DB_PASSWORD", "s3cret")

	yaml := `
record_kind: Bib
criteria: "SELECT biblionumber FROM biblio WHERE datecreated > '2026-01-01'"
exclude_tags: ["952", "999"]
output_type: xml
output_dir: /var/lib/marcflow
output_file: bibs.xml
source:
  driver: postgres
  host: localhost
  port: 5432
  user: koha
  password: ${MARCFLOW_TEST_DB_PASSWORD}
  database: koha
`
	path := filepath.Join(t.TempDir(), "export.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	cfg, err := config.LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, config.KindBib, cfg.RecordKind)
	assert.Equal(t, "SELECT biblionumber FROM biblio WHERE datecreated > '2026-01-01'", cfg.Criteria)
	assert.Equal(t, []string{"952", "999"}, cfg.ExcludeTags)
	assert.Equal(t, config.OutputTypeXML, cfg.OutputType)
	assert.Equal(t, "s3cret", cfg.Source.Password)

	// Fields absent from the file keep constructor defaults.
	assert.Equal(t, config.DefaultBatchSize, cfg.BatchSize)
	assert.NotEmpty(t, cfg.ExportID)

	require.NoError(t, cfg.Validate())
}

func TestLoadFromFile_Missing(t *testing.T) {
	_, err := config.LoadFromFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeFile))
}

func TestSaveToFile(t *testing.T) {
	cfg := config.NewExportConfig(config.KindAuth)
	cfg.Criteria = "SELECT authid FROM auth_header"

	path := filepath.Join(t.TempDir(), "saved.yaml")
	require.NoError(t, config.SaveToFile(path, cfg))

	loaded, err := config.LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, config.KindAuth, loaded.RecordKind)
	assert.Equal(t, "SELECT authid FROM auth_header", loaded.Criteria)
}

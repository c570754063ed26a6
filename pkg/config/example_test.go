package config_test

import (
	"fmt"
	"time"

	"github.com/biblioworks/marcflow/pkg/config"
)

// ExampleNewExportConfig demonstrates creating an export configuration
// with default values.
func ExampleNewExportConfig() {
	cfg := config.NewExportConfig(config.KindBib)
	cfg.Criteria = "SELECT biblionumber FROM biblio WHERE datecreated > '2026-01-01'"

	fmt.Printf("Kind: %s\n", cfg.RecordKind)
	fmt.Printf("Batch Size: %d\n", cfg.BatchSize)
	fmt.Printf("Output Type: %s\n", cfg.ResolveOutputType())

	// Output:
	// Kind: Bib
	// Batch Size: 1000
	// Output Type: xml
}

// ExampleExportConfig_Validate shows run-start validation catching a
// configuration with no record selection.
func ExampleExportConfig_Validate() {
	cfg := config.NewExportConfig(config.KindAuth)

	if err := cfg.Validate(); err != nil {
		fmt.Println(err)
	}

	cfg.Since = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if err := cfg.Validate(); err == nil {
		fmt.Println("configuration is valid")
	}

	// Output:
	// config: selection criteria or modification window is required
	// configuration is valid
}

// ExampleExportConfig_ResolveOutputType shows output type defaulting:
// docstore wins when a document store is configured and no explicit type
// is set; an explicit type always wins.
func ExampleExportConfig_ResolveOutputType() {
	cfg := config.NewExportConfig(config.KindBib)
	fmt.Println(cfg.ResolveOutputType())

	cfg.DocStore = &config.DocStoreConfig{
		URI:        "mongodb://localhost:27017",
		Database:   "catalog",
		Collection: "exports",
	}
	fmt.Println(cfg.ResolveOutputType())

	cfg.OutputType = config.OutputTypeMnemonic
	fmt.Println(cfg.ResolveOutputType())

	// Output:
	// xml
	// docstore
	// mnemonic
}

// ExampleDeriveExportID shows the canonical run label format.
func ExampleDeriveExportID() {
	start := time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC)
	fmt.Println(config.DeriveExportID(start))

	// Output:
	// export-20240102150405
}

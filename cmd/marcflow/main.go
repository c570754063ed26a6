// Command marcflow exports MARC catalog records from a catalog database
// to MARCXML, MARC-in-JSON, ISO 2709, MARCMaker mnemonic text, or a
// MongoDB collection.
package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/biblioworks/marcflow/internal/pipeline"
	"github.com/biblioworks/marcflow/pkg/config"
	"github.com/biblioworks/marcflow/pkg/errors"
	"github.com/biblioworks/marcflow/pkg/json"
	"github.com/biblioworks/marcflow/pkg/logger"
	"github.com/biblioworks/marcflow/pkg/observability"
	"github.com/biblioworks/marcflow/pkg/policy"
	"github.com/biblioworks/marcflow/pkg/source"

	// Register the source drivers.
	_ "github.com/biblioworks/marcflow/pkg/source/mysql"
	_ "github.com/biblioworks/marcflow/pkg/source/postgres"
	_ "github.com/biblioworks/marcflow/pkg/source/sqlite"
)

var version = "0.1.0"

// exportFlags carries the run/schedule flag overrides applied on top of
// the YAML configuration.
type exportFlags struct {
	configFile  string
	kind        string
	criteria    string
	since       string
	until       string
	excludeTags []string
	outputType  string
	outputDir   string
	outputFile  string
	batchSize   int
	org         string
	logLevel    string
	trace       bool
}

func (f *exportFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.configFile, "config", "c", "", "Path to export configuration YAML file")
	cmd.Flags().StringVarP(&f.kind, "kind", "k", "", "Record kind: Bib or Auth")
	cmd.Flags().StringVar(&f.criteria, "criteria", "", "Identifier selection query")
	cmd.Flags().StringVar(&f.since, "since", "", "Modification window start (RFC 3339 or YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.until, "until", "", "Modification window end, exclusive (defaults to now)")
	cmd.Flags().StringSliceVar(&f.excludeTags, "exclude-tags", nil, "Field tags stripped from every record (e.g. 952,999)")
	cmd.Flags().StringVarP(&f.outputType, "output-type", "t", "", "Output type: xml, json, iso2709, mnemonic, docstore")
	cmd.Flags().StringVarP(&f.outputDir, "output-dir", "d", "", "Destination directory (must exist)")
	cmd.Flags().StringVarP(&f.outputFile, "output-file", "f", "", "Destination file name; .gz/.zst/.lz4 suffix compresses")
	cmd.Flags().IntVar(&f.batchSize, "batch-size", 0, "Identifiers per retrieval batch")
	cmd.Flags().StringVar(&f.org, "org", "", "Cataloging agency code stamped into 003")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	cmd.Flags().BoolVar(&f.trace, "trace", false, "Emit OpenTelemetry spans to stdout")
}

func main() {
	root := &cobra.Command{
		Use:   "marcflow",
		Short: "marcflow - MARC catalog record export pipeline",
		Long: `marcflow extracts bibliographic and authority records from a catalog
database, applies per-record filtering and transformation, and emits them as
MARCXML, MARC-in-JSON, ISO 2709, MARCMaker mnemonic text, or documents in a
MongoDB collection.`,
	}

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("marcflow v%s\n", version)
			fmt.Printf("Go version: %s\n", runtime.Version())
			fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})

	var formatsJSON bool
	formatsCmd := &cobra.Command{
		Use:   "formats",
		Short: "List supported output types and registered source drivers",
		RunE: func(cmd *cobra.Command, args []string) error {
			if formatsJSON {
				out, err := json.MarshalIndent(map[string]interface{}{
					"output_types": config.OutputTypes(),
					"drivers":      source.Drivers(),
				}, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(out))
				return nil
			}

			fmt.Println("Output types:")
			for _, t := range config.OutputTypes() {
				fmt.Printf("  - %s\n", t)
			}
			fmt.Println("\nSource drivers:")
			for _, d := range source.Drivers() {
				fmt.Printf("  - %s\n", d)
			}
			return nil
		},
	}
	formatsCmd.Flags().BoolVar(&formatsJSON, "json", false, "Emit the listing as JSON")
	root.AddCommand(formatsCmd)

	runFlags := &exportFlags{}
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run one export",
		Long: `Run one export. Settings come from the YAML configuration file, with
command-line flags taking precedence.

Example:
  marcflow run -c export.yaml -k Bib --since 2026-01-01 -d /srv/exports -f bib.xml.gz`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildConfig(runFlags)
			if err != nil {
				return err
			}
			defer shutdown()
			return runExport(cmd.Context(), cfg, runFlags.org)
		},
	}
	runFlags.register(runCmd)
	root.AddCommand(runCmd)

	scheduleFlags := &exportFlags{}
	var cronExpr string
	scheduleCmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run recurring exports on a cron schedule",
		Long: `Run recurring exports on a cron schedule. Each firing performs a full
export with a fresh export identifier; a window export whose until is unset
covers records modified up to that firing.

Example:
  marcflow schedule --cron "0 2 * * *" -c export.yaml -k Bib --since 2026-01-01`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cronExpr == "" {
				return errors.New(errors.ErrorTypeConfig, "schedule requires a cron expression")
			}
			base, err := buildConfig(scheduleFlags)
			if err != nil {
				return err
			}
			defer shutdown()

			c := cron.New()
			_, err = c.AddFunc(cronExpr, func() {
				cfg := *base
				cfg.ExportID = config.DeriveExportID(time.Now())
				if err := runExport(context.Background(), &cfg, scheduleFlags.org); err != nil {
					logger.Error("scheduled export failed",
						zap.String("export_id", cfg.ExportID),
						zap.Bool("retryable", errors.IsRetryable(err)),
						zap.Error(err))
				}
			})
			if err != nil {
				return errors.Wrap(err, errors.ErrorTypeConfig, "invalid cron expression")
			}

			logger.Info("export schedule started", zap.String("cron", cronExpr))
			c.Run()
			return nil
		},
	}
	scheduleFlags.register(scheduleCmd)
	scheduleCmd.Flags().StringVar(&cronExpr, "cron", "", "Cron expression (required)")
	root.AddCommand(scheduleCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// buildConfig loads the YAML configuration (when given), applies flag
// overrides, and initializes the ambient logger and tracer.
func buildConfig(flags *exportFlags) (*config.ExportConfig, error) {
	var cfg *config.ExportConfig
	if flags.configFile != "" {
		loaded, err := config.LoadFromFile(flags.configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = config.NewExportConfig("")
	}

	if flags.kind != "" {
		cfg.RecordKind = flags.kind
	}
	if flags.criteria != "" {
		cfg.Criteria = flags.criteria
	}
	if flags.since != "" {
		t, err := parseTime(flags.since)
		if err != nil {
			return nil, err
		}
		cfg.Since = t
	}
	if flags.until != "" {
		t, err := parseTime(flags.until)
		if err != nil {
			return nil, err
		}
		cfg.Until = t
	}
	if flags.excludeTags != nil {
		cfg.ExcludeTags = flags.excludeTags
	}
	if flags.outputType != "" {
		cfg.OutputType = config.OutputType(flags.outputType)
	}
	if flags.outputDir != "" {
		cfg.OutputDir = flags.outputDir
	}
	if flags.outputFile != "" {
		cfg.OutputFile = flags.outputFile
	}
	if flags.batchSize > 0 {
		cfg.BatchSize = flags.batchSize
	}
	if flags.logLevel != "" {
		cfg.Logging.Level = flags.logLevel
	}

	if err := logger.Init(logger.Config{
		Level:    cfg.Logging.Level,
		Encoding: cfg.Logging.Encoding,
	}); err != nil {
		return nil, err
	}

	if flags.trace {
		if err := observability.Init(observability.DefaultConfig()); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// runExport opens the source, selects the policy for the record kind,
// and drives one export run.
func runExport(ctx context.Context, cfg *config.ExportConfig, org string) error {
	pol, err := policyForKind(cfg.RecordKind, org)
	if err != nil {
		return err
	}

	src, err := source.Open(ctx, &cfg.Source)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := src.Close(context.Background()); cerr != nil {
			logger.Warn("failed to close source", zap.Error(cerr))
		}
	}()

	exp := pipeline.New(cfg, src, pol, pipeline.WithReporter(pickReporter()))
	return exp.Run(ctx)
}

// policyForKind selects the export policy at construction time.
func policyForKind(kind, org string) (policy.Policy, error) {
	switch kind {
	case config.KindBib:
		return policy.NewBibPolicy(org), nil
	case config.KindAuth:
		return policy.NewAuthPolicy(org), nil
	case "":
		return nil, errors.New(errors.ErrorTypeConfig, "record kind is required")
	}
	return nil, errors.Newf(errors.ErrorTypeConfig, "no export policy for record kind %q", kind)
}

// pickReporter chooses the progress presentation: the redrawn status
// line on an interactive terminal, structured logs otherwise.
func pickReporter() pipeline.Reporter {
	if term.IsTerminal(int(os.Stdout.Fd())) {
		return pipeline.NewTerminalReporter(os.Stdout)
	}
	return pipeline.NewLogReporter(logger.Get())
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.Newf(errors.ErrorTypeConfig, "unparseable time %q", s)
}

func shutdown() {
	if err := observability.Shutdown(context.Background()); err != nil {
		logger.Warn("failed to shut down tracing", zap.Error(err))
	}
	_ = logger.Sync()
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the pdf2bib CLI.
// pdf2bib finds the DOI in each PDF, fetches its metadata and writes one
// BibTeX entry per paper.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pdf2bib/internal/bib"
	"github.com/pdiddy/pdf2bib/internal/command"
	"github.com/pdiddy/pdf2bib/internal/convert"
	"github.com/pdiddy/pdf2bib/internal/discover"
	"github.com/pdiddy/pdf2bib/internal/httputil"
	"github.com/pdiddy/pdf2bib/internal/lookup"
	"github.com/pdiddy/pdf2bib/internal/pipeline"
	"github.com/pdiddy/pdf2bib/internal/report"
	"github.com/pdiddy/pdf2bib/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

const (
	defaultBackend           = string(types.BackendAuto)
	defaultPages             = 1
	defaultExtractionTimeout = 60 * time.Second
	defaultSource            = string(types.SourceDOI)
	defaultLookupTimeout     = 30 * time.Second
)

// executor runs the external extraction tools. Tests replace it.
var executor command.Executor = command.OS{}

// flagKeys maps viper keys to the flags that set them.
var flagKeys = map[string]string{
	"output.path":        "output",
	"output.exclude":     "exclude",
	"output.report":      "report",
	"extraction.backend": "backend",
	"extraction.pages":   "pages",
	"extraction.timeout": "extraction-timeout",
	"lookup.source":      "source",
	"lookup.mailto":      "mailto",
	"lookup.rate":        "rate",
	"lookup.timeout":     "lookup-timeout",
}

// rootCmd is the base command for the pdf2bib CLI.
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "pdf2bib [flags] <path>...",
		Short: "Generate BibTeX entries from PDF papers",
		Long: `pdf2bib converts the first pages of each PDF to text, finds the paper's DOI,
looks up its metadata and prints one BibTeX entry per paper.

Paths may be PDF files or directories, which are searched recursively.
Entries go to standard output or the file named by --output; progress and
the final summary go to standard error.

Exit status is 0 when every file produced an entry, 1 when some did not,
2 for configuration errors and 3 for a missing or non-PDF path argument.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return usageError(fmt.Errorf("provide one or more PDF files or directories"))
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(cmd, v)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, v, args)
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	pf := cmd.PersistentFlags()
	pf.String("config", "", "YAML config file (no config file is read unless given)")
	pf.BoolP("verbose", "v", false, "debug logging")

	f := cmd.Flags()
	f.StringP("output", "o", "", "BibTeX output file (default stdout)")
	f.StringP("exclude", "e", "", "comma-separated fields to omit, e.g. file,url")
	f.String("report", "", "write a YAML outcome report to this file")
	f.String("backend", defaultBackend, "text extraction backend: auto, pdftotext, pdftohtml, or markitdown")
	f.Int("pages", defaultPages, "leading pages to convert, 0 = all")
	f.Duration("extraction-timeout", defaultExtractionTimeout, "time limit for converting one PDF")
	f.String("source", defaultSource, "metadata source: doi or crossref")
	f.String("mailto", "", "contact address sent to the metadata service")
	f.Float64("rate", 0, "max lookups per second, 0 = unlimited")
	f.Duration("lookup-timeout", defaultLookupTimeout, "time limit for one metadata lookup")

	for key, name := range flagKeys {
		_ = v.BindPFlag(key, f.Lookup(name))
	}
	v.SetDefault("extraction.backend", defaultBackend)
	v.SetDefault("extraction.pages", defaultPages)
	v.SetDefault("extraction.timeout", defaultExtractionTimeout)
	v.SetDefault("lookup.source", defaultSource)
	v.SetDefault("lookup.timeout", defaultLookupTimeout)
	v.SetDefault("lookup.rate", 0)

	v.SetEnvPrefix("PDF2BIB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return cmd
}

// initConfig reads the config file named by --config, if any.
func initConfig(cmd *cobra.Command, v *viper.Viper) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	if cfgFile == "" {
		return nil
	}
	v.SetConfigFile(cfgFile)
	if err := v.ReadInConfig(); err != nil {
		return usageError(fmt.Errorf("reading config file: %w", err))
	}
	return nil
}

// loadConfig assembles and validates the run configuration.
func loadConfig(v *viper.Viper) (types.Config, error) {
	mailto := v.GetString("lookup.mailto")
	cfg := types.Config{
		Extraction: types.ExtractionConfig{
			Backend: types.ExtractionBackend(strings.ToLower(v.GetString("extraction.backend"))),
			Pages:   v.GetInt("extraction.pages"),
			Timeout: v.GetDuration("extraction.timeout"),
		},
		Lookup: types.LookupConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   v.GetDuration("lookup.timeout"),
				UserAgent: httputil.UserAgent("pdf2bib", version, mailto),
			},
			Source:  types.MetadataSource(strings.ToLower(v.GetString("lookup.source"))),
			BaseURL: v.GetString("lookup.base_url"),
			Mailto:  mailto,
			Rate:    v.GetFloat64("lookup.rate"),
		},
		Output: types.OutputConfig{
			Path:       v.GetString("output.path"),
			Exclude:    v.GetString("output.exclude"),
			ReportPath: v.GetString("output.report"),
		},
	}

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func newLogger(w io.Writer, verbose bool) *log.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{Prefix: "pdf2bib", Level: level})
}

func run(cmd *cobra.Command, v *viper.Viper, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	stderr := cmd.ErrOrStderr()
	verbose, _ := cmd.Flags().GetBool("verbose")
	logger := newLogger(stderr, verbose)

	cfg, err := loadConfig(v)
	if err != nil {
		return usageError(err)
	}
	exclude, err := bib.ParseFieldList(cfg.Output.Exclude)
	if err != nil {
		return usageError(err)
	}
	if len(exclude) > 0 {
		logger.Debug("excluding fields", "fields", exclude.Names())
	}
	if v.ConfigFileUsed() != "" {
		logger.Debug("using config file", "path", v.ConfigFileUsed())
	}

	paths, err := discover.Resolve(args, logger)
	if err != nil {
		return pathError(err)
	}
	if len(paths) == 0 {
		logger.Warn("no PDF files found", "paths", args)
	}

	conv, err := convert.Detect(ctx, cfg.Extraction, executor)
	if err != nil {
		return usageError(err)
	}
	logger.Debug("text extraction", "backend", conv.Name(), "pages", cfg.Extraction.Pages)

	client := httputil.NewClient(cfg.Lookup.HTTPConfig, cfg.Lookup.Rate)
	fetcher, err := lookup.New(cfg.Lookup, client)
	if err != nil {
		return usageError(err)
	}
	logger.Debug("metadata lookup", "source", cfg.Lookup.Source, "user_agent", cfg.Lookup.UserAgent)

	out, closeOut, err := openOutput(cfg.Output.Path, cmd.OutOrStdout())
	if err != nil {
		return usageError(err)
	}
	defer closeOut()

	var reportOut io.Writer
	closeReport := func() error { return nil }
	if cfg.Output.ReportPath != "" {
		if reportOut, closeReport, err = openOutput(cfg.Output.ReportPath, nil); err != nil {
			return usageError(err)
		}
		defer closeReport()
	}

	p := &pipeline.Pipeline{
		Converter: conv,
		Fetcher:   fetcher,
		Exclude:   exclude,
		Logger:    logger,
	}
	rep := p.Run(ctx, paths)

	if err := rep.WriteEntries(out); err != nil {
		return usageError(fmt.Errorf("writing entries: %w", err))
	}
	if err := closeOut(); err != nil {
		return usageError(fmt.Errorf("writing entries: %w", err))
	}
	if err := rep.WriteSummary(stderr); err != nil {
		return err
	}
	if reportOut != nil {
		if err := rep.WriteYAML(reportOut); err != nil {
			return usageError(fmt.Errorf("writing report: %w", err))
		}
		if err := closeReport(); err != nil {
			return usageError(fmt.Errorf("writing report: %w", err))
		}
		logger.Debug("wrote report", "path", cfg.Output.ReportPath)
	}

	if rep.HasFailures() {
		return &exitError{
			code: exitPartial,
			err:  fmt.Errorf("%d of %d file(s) produced no entry", rep.Total()-rep.Count(report.Written), rep.Total()),
		}
	}
	return nil
}

// openOutput creates the file at path, or returns stdout when path is empty.
// Sinks are opened before any PDF is processed so a bad path fails the run
// early. The returned close function is safe to call more than once.
func openOutput(path string, stdout io.Writer) (io.Writer, func() error, error) {
	if path == "" {
		return stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s: %w", path, err)
	}
	closed := false
	return f, func() error {
		if closed {
			return nil
		}
		closed = true
		return f.Close()
	}, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		code := exitCode(err)
		if code != exitPartial {
			fmt.Fprintln(os.Stderr, "pdf2bib:", err)
		}
		os.Exit(code)
	}
}

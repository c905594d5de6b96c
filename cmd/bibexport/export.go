// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/bibexport/internal/bib"
	"github.com/pdiddy/bibexport/internal/cache"
	"github.com/pdiddy/bibexport/internal/exporter"
	"github.com/pdiddy/bibexport/internal/schema"
	"github.com/pdiddy/bibexport/pkg/types"
)

var exportCmd = &cobra.Command{
	Use:   "export [library.yaml]",
	Short: "Export a library of items to a .bib stream",
	Long: `Export reads a YAML item library, encodes every item as a BibTeX or
BibLaTeX record, and writes the records to one stream in library order.
Per-item failures are reported and skipped; the run continues.

With --caching, serialized records are kept in a SQLite cache keyed by item
identity and dialect, and unchanged items are served from it.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg := exportConfig(cmd)

	schemaFile, _ := cmd.Flags().GetString("schema")
	var tables *schema.Schema
	var err error
	if schemaFile != "" {
		tables, err = schema.LoadFile(schemaFile)
	} else {
		tables, err = schema.Load()
	}
	if err != nil {
		return err
	}

	items, err := exporter.LoadLibrary(args[0])
	if err != nil {
		return err
	}

	var store *cache.Store
	if cfg.Caching {
		cacheDir, _ := cmd.Flags().GetString("cache-dir")
		store, err = cache.Open(cacheDir)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	out := os.Stdout
	if outPath, _ := cmd.Flags().GetString("out"); outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	engine := bib.New(cfg, tables, nil)
	x := exporter.New(engine, cfg, store)

	summary, err := x.Export(context.Background(), items, out, os.Stderr)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d item(s) failed to export", summary.Failed)
	}
	return nil
}

// exportConfig assembles the engine configuration from flags, falling back
// to values from the viper config file. A flag set on the command line wins
// over the config file; an untouched flag defers to the file, then to the
// flag default.
func exportConfig(cmd *cobra.Command) types.ExportConfig {
	flags := cmd.Flags()

	stringOpt := func(flag, key, fallback string) string {
		if v, _ := flags.GetString(flag); v != "" {
			return v
		}
		if v := viper.GetString(key); v != "" {
			return v
		}
		return fallback
	}
	boolOpt := func(flag, key string) bool {
		if flags.Changed(flag) {
			v, _ := flags.GetBool(flag)
			return v
		}
		return viper.GetBool(key)
	}
	intOpt := func(flag, key string) int {
		if !flags.Changed(flag) && viper.IsSet(key) {
			return viper.GetInt(key)
		}
		v, _ := flags.GetInt(flag)
		return v
	}
	sliceOpt := func(flag, key string) []string {
		if !flags.Changed(flag) && viper.IsSet(key) {
			return viper.GetStringSlice(key)
		}
		v, _ := flags.GetStringSlice(flag)
		return v
	}

	dialect := types.Dialect(stringOpt("dialect", "dialect", string(types.BibTeX)))
	caps := types.PreserveCaps(stringOpt("preserve-caps", "preserve_caps", string(types.PreserveNone)))
	doiURL := types.DOIandURL(stringOpt("doi-and-url", "doi_and_url", string(types.KeepBoth)))

	return types.ExportConfig{
		Dialect:                 dialect,
		PreserveCaps:            caps,
		FancyURLs:               boolOpt("fancy-urls", "fancy_urls"),
		Unicode:                 boolOpt("unicode", "unicode"),
		Testing:                 boolOpt("testing", "testing"),
		Caching:                 boolOpt("caching", "caching"),
		ExportFileData:          boolOpt("export-files", "export_file_data"),
		ExportPath:              stringOpt("export-path", "export_path", ""),
		DOIandURL:               doiURL,
		SkipFields:              sliceOpt("skip-fields", "skip_fields"),
		PreserveBibTeXVariables: boolOpt("preserve-variables", "preserve_bibtex_variables"),
		Normalize:               boolOpt("normalize", "normalize"),
		FileRefsOnly:            boolOpt("file-refs-only", "file_refs_only"),
		FieldEncoding:           viper.GetStringMapString("field_encoding"),
		Workers:                 intOpt("workers", "workers"),
	}
}

func init() {
	exportCmd.Flags().String("dialect", "", "output dialect: bibtex or biblatex")
	exportCmd.Flags().String("out", "", "output file (default: stdout)")
	exportCmd.Flags().String("schema", "", "replacement field map YAML file")
	exportCmd.Flags().String("preserve-caps", "", "capitalization protection: none, all, or inner")
	exportCmd.Flags().Bool("fancy-urls", false, "wrap URLs in \\url{} markup")
	exportCmd.Flags().Bool("unicode", false, "emit non-ASCII characters as-is")
	exportCmd.Flags().Bool("testing", false, "deterministic output for comparison runs")
	exportCmd.Flags().Bool("caching", false, "cache serialized records between runs")
	exportCmd.Flags().String("cache-dir", "cache", "cache directory")
	exportCmd.Flags().Bool("export-files", false, "request attachment copies next to the export")
	exportCmd.Flags().String("export-path", "", "directory attachment paths are made relative to")
	exportCmd.Flags().String("doi-and-url", "", "when both present keep: doi, url, or both")
	exportCmd.Flags().StringSlice("skip-fields", nil, "field names removed from every record")
	exportCmd.Flags().Bool("preserve-variables", false, "pass identifier-shaped values through as @string references")
	exportCmd.Flags().Bool("normalize", false, "canonicalize field text to Unicode NFC")
	exportCmd.Flags().Bool("file-refs-only", false, "render attachments as bare paths")
	exportCmd.Flags().Int("workers", 1, "concurrent records during export")

	rootCmd.AddCommand(exportCmd)
}

package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/rafabd1/PIIHound/config"
	"github.com/rafabd1/PIIHound/core/detector"
	"github.com/rafabd1/PIIHound/core/filetree"
	"github.com/rafabd1/PIIHound/core/inventory"
	"github.com/rafabd1/PIIHound/core/loader"
	"github.com/rafabd1/PIIHound/core/match"
	"github.com/rafabd1/PIIHound/core/matcher"
	"github.com/rafabd1/PIIHound/core/patterns"
	"github.com/rafabd1/PIIHound/core/scanner"
	"github.com/rafabd1/PIIHound/core/terms"
	"github.com/rafabd1/PIIHound/output"
	"github.com/rafabd1/PIIHound/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfiguration(viper.GetViper())
	if err != nil {
		return err
	}

	logger := output.NewLogger(cfg.Verbose, cfg.Silent)
	logger.Info("Starting PIIHound v%s", Version)

	root := "."
	if len(args) > 0 {
		root = args[0]
	}

	format, err := output.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}

	writer, err := output.NewWriter(cfg.Output, format)
	if err != nil {
		return err
	}
	defer writer.Close()

	report, err := scanPackage(cmd.Context(), root, cfg, logger)
	if err != nil {
		return err
	}

	if err := writer.WriteReport(report); err != nil {
		return err
	}

	logFinalStats(logger, report)
	if writer.Path() != "" {
		logger.Success("Report written to %s", writer.Path())
	}
	return nil
}

// loadConfiguration reads the config file (explicit or ./piihound.yaml) and
// layers env vars and flags over it.
func loadConfiguration(v *viper.Viper) (config.Configuration, error) {
	path := cfgFile
	explicit := path != ""
	if !explicit {
		path = config.DefaultFile
	}

	if explicit && !utils.FileExists(path) {
		return config.Configuration{}, utils.NewError(utils.ConfigError, fmt.Sprintf("config file %s not found", path), nil)
	}

	base, err := config.Load(path)
	if err != nil {
		return base, err
	}
	return config.Resolve(v, base)
}

/*
Classifies root, scans its data files then its code files and builds the
report. Per-file failures are logged and counted, never returned.
*/
func scanPackage(ctx context.Context, root string, cfg config.Configuration, logger *output.Logger) (*output.Report, error) {
	catalog, err := terms.NewCatalog(cfg.CustomTerms...)
	if err != nil {
		return nil, err
	}

	mode := matcher.ModeFor(cfg.Strict)
	logger.Info("Matching %d terms (%s mode, %d custom)", catalog.Len(), mode, len(catalog.Custom()))

	tree, err := filetree.Classify(root, filetree.Options{
		ExcludeDirs: cfg.ExcludeDirs,
		MaxFileSize: cfg.MaxFileSize,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("Found %d files: %d data, %d code, %d docs, %d other",
		tree.Total(), len(tree.Data), len(tree.Code), len(tree.Docs), len(tree.Other))
	for _, skipped := range tree.Skipped {
		logger.Warning("Skipped %s", skipped)
	}

	rules, err := buildRuleSet(cfg)
	if err != nil {
		return nil, err
	}
	logger.Debug("Loaded %d context rules", rules.GetRuleCount())

	det := detector.NewDetector(matcher.FromCatalog(catalog, mode), rules, logger, detector.Config{
		MaxFileSize: cfg.MaxFileSize,
	})

	sc := scanner.NewScanner(det, logger, scanner.Config{
		Concurrency: cfg.Concurrency,
		LoadOptions: loader.Options{
			MaxRows:    cfg.MaxRows,
			MaxSamples: cfg.MaxSamples,
		},
		ShowProgress: !cfg.NoProgress && !logger.IsSilent(),
	})

	dataMatches, dataStats := sc.ScanDataFiles(ctx, tree.Data)
	codeMatches, codeStats := sc.ScanCodeFiles(ctx, tree.Code)
	docMatches, docStats := sc.ScanDocFiles(ctx, tree.TextDocs())

	all := make([]string, 0, tree.Total())
	all = append(all, tree.Data...)
	all = append(all, tree.Code...)
	all = append(all, tree.Docs...)
	all = append(all, tree.Other...)
	inv := inventory.Build(all)
	for _, failed := range inv.Failed {
		logger.Debug("Could not checksum %s", failed)
	}

	if logger.IsVerbose() {
		logStats(logger, det.GetStats())
	}

	return &output.Report{
		Root:           root,
		GeneratedAt:    time.Now(),
		Strict:         cfg.Strict,
		CatalogVersion: terms.CatalogVersion,
		CustomTerms:    catalog.Custom(),
		Tree:           tree,
		Inventory:      inv,
		DataMatches:    nonNil(dataMatches),
		CodeMatches:    nonNil(codeMatches),
		DocMatches:     nonNil(docMatches),
		Summary: output.Summary{
			DataFilesScanned: dataStats.TotalFiles - dataStats.SkippedFiles,
			DataFilesFlagged: dataStats.FlaggedFiles,
			DataFilesFailed:  dataStats.FailedFiles,
			CodeFilesScanned: codeStats.TotalFiles - codeStats.SkippedFiles,
			CodeFilesFlagged: codeStats.FlaggedFiles,
			CodeFilesFailed:  codeStats.FailedFiles,
			DocFilesScanned:  docStats.TotalFiles - docStats.SkippedFiles,
			DocFilesFlagged:  docStats.FlaggedFiles,
			DocFilesFailed:   docStats.FailedFiles,
		},
	}, nil
}

// buildRuleSet applies the configured category filter and custom rules.
func buildRuleSet(cfg config.Configuration) (*patterns.RuleSet, error) {
	rules := patterns.NewRuleSet()
	if err := rules.LoadRules(cfg.RuleCategories, cfg.ExcludeRuleCategories); err != nil {
		return nil, utils.NewError(utils.ConfigError, "invalid rule categories", err)
	}

	for _, custom := range cfg.CustomRules {
		if err := rules.AddRule(custom.Name, custom.Regex, custom.Description); err != nil {
			return nil, utils.NewError(utils.ConfigError, fmt.Sprintf("invalid custom rule %s", custom.Name), err)
		}
	}
	return rules, nil
}

func logStats(logger *output.Logger, stats detector.Stats) {
	logger.Debug("Variables scanned: %d, flagged: %d", stats.VariablesScanned, stats.VariablesFlagged)
	logger.Debug("Lines scanned: %d, suppressed: %d, flagged: %d", stats.LinesScanned, stats.LinesSuppressed, stats.LinesFlagged)
	logger.Debug("Documentation lines scanned: %d, flagged: %d", stats.DocLinesScanned, stats.DocLinesFlagged)
}

func nonNil(matches []match.PIIMatch) []match.PIIMatch {
	if matches == nil {
		return []match.PIIMatch{}
	}
	return matches
}

func logFinalStats(logger *output.Logger, report *output.Report) {
	s := report.Summary
	logger.Info("Data files: %d scanned, %d flagged, %d unreadable", s.DataFilesScanned, s.DataFilesFlagged, s.DataFilesFailed)
	logger.Info("Code files: %d scanned, %d flagged, %d unreadable", s.CodeFilesScanned, s.CodeFilesFlagged, s.CodeFilesFailed)
	logger.Info("Documentation: %d scanned, %d flagged, %d unreadable", s.DocFilesScanned, s.DocFilesFlagged, s.DocFilesFailed)

	if report.TotalMatches() == 0 {
		logger.Success("No potential PII found")
		return
	}
	red := color.New(color.FgRed, color.Bold).SprintFunc()
	logger.Success("Potential PII: %s data variables, %s code lines, %s documentation lines",
		red(len(report.DataMatches)), red(len(report.CodeMatches)), red(len(report.DocMatches)))
}

func initScanFlags(cmd *cobra.Command, vip *viper.Viper) {
	// --- Matching ---
	cmd.Flags().BoolP("strict", "s", false, "Match whole words and underscore-separated tokens only")
	cmd.Flags().StringSliceP("terms", "t", []string{}, "Additional PII terms (comma-separated)")
	vip.BindPFlag("strict", cmd.Flags().Lookup("strict"))
	vip.BindPFlag("custom_terms", cmd.Flags().Lookup("terms"))

	// --- Context Rules ---
	cmd.Flags().StringSlice("rule-categories", []string{}, "Only apply context rules of these categories (e.g., import,declaration)")
	cmd.Flags().StringSlice("exclude-rule-categories", []string{}, "Skip context rules of these categories (e.g., decorator)")
	vip.BindPFlag("rule_categories", cmd.Flags().Lookup("rule-categories"))
	vip.BindPFlag("exclude_rule_categories", cmd.Flags().Lookup("exclude-rule-categories"))

	// --- Output ---
	cmd.Flags().StringP("output", "o", "", "Report file (default: stdout)")
	cmd.Flags().StringP("format", "f", "markdown", "Report format: markdown or json")
	vip.BindPFlag("output", cmd.Flags().Lookup("output"))
	vip.BindPFlag("format", cmd.Flags().Lookup("format"))

	// --- Performance ---
	cmd.Flags().IntP("concurrency", "c", 1, "Number of files scanned at once")
	cmd.Flags().Int("max-rows", loader.DefaultMaxRows, "Rows read per data file when sampling values")
	cmd.Flags().Int("max-samples", loader.DefaultMaxSamples, "Sample values kept per flagged variable")
	cmd.Flags().StringSlice("exclude-dir", []string{}, "Directory names to skip (repeatable)")
	vip.BindPFlag("concurrency", cmd.Flags().Lookup("concurrency"))
	vip.BindPFlag("max_rows", cmd.Flags().Lookup("max-rows"))
	vip.BindPFlag("max_samples", cmd.Flags().Lookup("max-samples"))
	vip.BindPFlag("exclude_dirs", cmd.Flags().Lookup("exclude-dir"))

	// --- General Behavior ---
	cmd.Flags().BoolP("verbose", "v", false, "Enable verbose logging output")
	cmd.Flags().BoolP("silent", "q", false, "Only print results and errors")
	cmd.Flags().BoolP("no-progress", "n", false, "Disable the progress bar display")
	vip.BindPFlag("verbose", cmd.Flags().Lookup("verbose"))
	vip.BindPFlag("silent", cmd.Flags().Lookup("silent"))
	vip.BindPFlag("no_progress", cmd.Flags().Lookup("no-progress"))
}

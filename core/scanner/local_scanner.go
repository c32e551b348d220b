package scanner

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/rafabd1/PIIHound/core/detector"
	"github.com/rafabd1/PIIHound/core/loader"
	"github.com/rafabd1/PIIHound/core/match"
	"github.com/rafabd1/PIIHound/output"
)

// LoadFunc loads a data file into the normalised dataset shape.
type LoadFunc func(path string, opts loader.Options) (*loader.Dataset, error)

// Config holds the configuration for the batch scanner
type Config struct {
	// Number of files scanned at once; 1 scans sequentially
	Concurrency int

	// Row and sample caps handed to the data loaders
	LoadOptions loader.Options

	// Draw a progress bar on terminals
	ShowProgress bool
}

// Scanner runs the detector over lists of files. A file that fails to load
// or read contributes no matches and never stops the batch.
type Scanner struct {
	detector *detector.Detector
	logger   *output.Logger
	config   Config
	load     LoadFunc
}

// ScanStats holds statistics for one batch
type ScanStats struct {
	TotalFiles   int
	FlaggedFiles int
	CleanFiles   int
	FailedFiles  int
	SkippedFiles int
	TotalMatches int
	StartTime    time.Time
	EndTime      time.Time
}

func (s ScanStats) Duration() time.Duration {
	return s.EndTime.Sub(s.StartTime)
}

func NewScanner(d *detector.Detector, logger *output.Logger, config Config) *Scanner {
	if config.Concurrency <= 0 {
		config.Concurrency = 1
	}

	return &Scanner{
		detector: d,
		logger:   logger,
		config:   config,
		load:     loader.Load,
	}
}

// SetLoadFunc replaces the data loader.
func (s *Scanner) SetLoadFunc(fn LoadFunc) {
	s.load = fn
}

/*
Loads and scans each data file. Results keep input file order and, within
a file, variable order.
*/
func (s *Scanner) ScanDataFiles(ctx context.Context, files []string) ([]match.PIIMatch, ScanStats) {
	return s.run(ctx, files, "data", "variable", func(path string) ([]match.PIIMatch, error) {
		ds, err := s.load(path, s.config.LoadOptions)
		if err != nil {
			s.logger.Warning("Could not load %s: %v", path, err)
			return nil, err
		}
		if ds == nil {
			s.logger.Debug("No data loaded from %s", path)
			return nil, nil
		}
		s.logger.Debug("Loaded %s: %d variables, %d rows", path, len(ds.VarNames), ds.RowsRead)
		return s.detector.ScanDataset(ds), nil
	})
}

/*
Reads and scans each code file. Results keep input file order and, within
a file, line order.
*/
func (s *Scanner) ScanCodeFiles(ctx context.Context, files []string) ([]match.PIIMatch, ScanStats) {
	return s.run(ctx, files, "code", "line", s.detector.ScanCodeFile)
}

/*
Reads and scans each README or text documentation file. Results keep
input file order and, within a file, line order.
*/
func (s *Scanner) ScanDocFiles(ctx context.Context, files []string) ([]match.PIIMatch, ScanStats) {
	return s.run(ctx, files, "documentation", "line", s.detector.ScanDocFile)
}

type fileResult struct {
	matches []match.PIIMatch
	err     error
	skipped bool
}

func (s *Scanner) run(ctx context.Context, files []string, kind, unit string, scan func(string) ([]match.PIIMatch, error)) ([]match.PIIMatch, ScanStats) {
	stats := ScanStats{
		TotalFiles: len(files),
		StartTime:  time.Now(),
	}

	if len(files) == 0 {
		stats.EndTime = time.Now()
		return nil, stats
	}

	s.logger.Info("Scanning %d %s files", len(files), kind)

	var progressBar *output.ProgressBar
	if s.config.ShowProgress {
		progressBar = output.NewProgressBar(len(files), 30)
		progressBar.SetPrefix(fmt.Sprintf("Scanning %s: ", kind))
		progressBar.Start()
		s.logger.SetProgressBar(progressBar)
		defer func() {
			s.logger.SetProgressBar(nil)
			progressBar.Stop()
		}()
	}

	results := make([]fileResult, len(files))

	var wg sync.WaitGroup
	sem := make(chan struct{}, s.config.Concurrency)

	for i, file := range files {
		wg.Add(1)
		go func(i int, filePath string) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			if ctx.Err() != nil {
				results[i] = fileResult{skipped: true}
				return
			}

			if progressBar != nil {
				progressBar.SetSuffix(filepath.Base(filePath))
			}

			matches, err := scan(filePath)
			results[i] = fileResult{matches: matches, err: err}

			if err == nil {
				s.logger.FileScanned(unit, filePath, len(matches))
			}
			if progressBar != nil {
				progressBar.Increment()
			}
		}(i, file)
	}

	wg.Wait()

	var all []match.PIIMatch
	for _, r := range results {
		switch {
		case r.skipped:
			stats.SkippedFiles++
		case r.err != nil:
			stats.FailedFiles++
		case len(r.matches) > 0:
			stats.FlaggedFiles++
		default:
			stats.CleanFiles++
		}
		stats.TotalMatches += len(r.matches)
		all = append(all, r.matches...)
	}
	stats.EndTime = time.Now()

	s.logger.Info("%s files: %d flagged, %d clean, %d unreadable (%.2fs)",
		kind, stats.FlaggedFiles, stats.CleanFiles, stats.FailedFiles, stats.Duration().Seconds())
	if stats.SkippedFiles > 0 {
		s.logger.Warning("Scan interrupted: %d %s files not scanned", stats.SkippedFiles, kind)
	}

	return all, stats
}

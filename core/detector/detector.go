package detector

import (
	"strings"
	"sync"

	"github.com/rafabd1/PIIHound/core/loader"
	"github.com/rafabd1/PIIHound/core/match"
	"github.com/rafabd1/PIIHound/core/matcher"
	"github.com/rafabd1/PIIHound/core/patterns"
	"github.com/rafabd1/PIIHound/utils"
)

const DefaultExcerptLength = 100

// Logger is the operator channel the detector reports unreadable files to.
type Logger interface {
	Debug(format string, args ...interface{})
	Warning(format string, args ...interface{})
}

type Config struct {
	// ExcerptLength caps the code line excerpt stored as sample value
	ExcerptLength int
	// MaxFileSize is the largest code file read, in bytes (0 = no limit)
	MaxFileSize int64
}

type Detector struct {
	matcher *matcher.Matcher
	rules   *patterns.RuleSet
	logger  Logger
	config  Config
	mu      sync.Mutex
	stats   Stats
}

type Stats struct {
	VariablesScanned int
	VariablesFlagged int
	LinesScanned     int
	LinesSuppressed  int
	LinesFlagged     int
	DocLinesScanned  int
	DocLinesFlagged  int
	UnreadableFiles  int
}

func NewDetector(m *matcher.Matcher, rules *patterns.RuleSet, logger Logger, config Config) *Detector {
	if config.ExcerptLength <= 0 {
		config.ExcerptLength = DefaultExcerptLength
	}
	if rules == nil {
		rules = patterns.NewRuleSet()
	}

	return &Detector{
		matcher: m,
		rules:   rules,
		logger:  logger,
		config:  config,
	}
}

/*
Matches each variable name and its label against the term list and
returns one record per variable with at least one matched term. varLabels
may be shorter than varNames; missing entries mean "no label".
*/
func (d *Detector) ScanDataVariables(filePath string, varNames []string, varLabels []*string, samples map[string][]string) []match.PIIMatch {
	var results []match.PIIMatch
	flagged := 0

	for i, name := range varNames {
		var label *string
		if i < len(varLabels) && varLabels[i] != nil && !loader.IsMissingValue(*varLabels[i]) {
			label = varLabels[i]
		}

		var found []string
		if label != nil {
			found = d.matcher.FindAny(name, *label)
		} else {
			found = d.matcher.Find(name)
		}

		if m, ok := match.New(match.KindData, filePath, name, label, found, samples[name]); ok {
			results = append(results, m)
			flagged++
		}
	}

	d.mu.Lock()
	d.stats.VariablesScanned += len(varNames)
	d.stats.VariablesFlagged += flagged
	d.mu.Unlock()

	return results
}

// ScanDataset scans a loaded data file.
func (d *Detector) ScanDataset(ds *loader.Dataset) []match.PIIMatch {
	if ds == nil {
		return nil
	}
	return d.ScanDataVariables(ds.Path, ds.VarNames, ds.VarLabels, ds.Samples)
}

/*
Scans source lines in order. Blank lines and lines in a false-positive
context are skipped; every other line with a matched term yields a record
identified by its 1-based line number.
*/
func (d *Detector) ScanCodeLines(filePath string, lines []string) []match.PIIMatch {
	results, scanned, suppressed := d.scanLines(match.KindCode, filePath, lines, true)

	d.mu.Lock()
	d.stats.LinesScanned += scanned
	d.stats.LinesSuppressed += suppressed
	d.stats.LinesFlagged += len(results)
	d.mu.Unlock()

	return results
}

// ScanDocLines scans README and other prose lines. Context rules describe
// source code, so they are not applied here.
func (d *Detector) ScanDocLines(filePath string, lines []string) []match.PIIMatch {
	results, scanned, _ := d.scanLines(match.KindDocs, filePath, lines, false)

	d.mu.Lock()
	d.stats.DocLinesScanned += scanned
	d.stats.DocLinesFlagged += len(results)
	d.mu.Unlock()

	return results
}

func (d *Detector) scanLines(kind match.Kind, filePath string, lines []string, applyRules bool) ([]match.PIIMatch, int, int) {
	var results []match.PIIMatch
	scanned, suppressed := 0, 0

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		scanned++

		if applyRules && d.rules.IsFalsePositiveContext(line) {
			suppressed++
			continue
		}

		found := d.matcher.Find(line)
		excerpt := utils.TruncateString(trimmed, d.config.ExcerptLength)
		if m, ok := match.New(kind, filePath, match.LineIdentifier(i+1), nil, found, []string{excerpt}); ok {
			results = append(results, m)
		}
	}

	return results, scanned, suppressed
}

/*
Reads and scans one source file. A file that cannot be read or decoded
yields no records; the failure goes to the logger and is returned only so
callers can count it.
*/
func (d *Detector) ScanCodeFile(filePath string) ([]match.PIIMatch, error) {
	lines, err := d.readLines(filePath)
	if err != nil {
		return nil, err
	}
	return d.ScanCodeLines(filePath, lines), nil
}

// ScanDocFile reads and scans one text documentation file.
func (d *Detector) ScanDocFile(filePath string) ([]match.PIIMatch, error) {
	lines, err := d.readLines(filePath)
	if err != nil {
		return nil, err
	}
	return d.ScanDocLines(filePath, lines), nil
}

func (d *Detector) readLines(filePath string) ([]string, error) {
	lines, err := utils.ReadTextLines(filePath, d.config.MaxFileSize)
	if err != nil {
		d.mu.Lock()
		d.stats.UnreadableFiles++
		d.mu.Unlock()

		if d.logger != nil {
			d.logger.Warning("Could not read %s: %v", filePath, err)
		}
		return nil, err
	}

	if d.logger != nil {
		d.logger.Debug("Scanning %d lines in %s", len(lines), filePath)
	}
	return lines, nil
}

func (d *Detector) Matcher() *matcher.Matcher {
	return d.matcher
}

func (d *Detector) GetStats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stats
}

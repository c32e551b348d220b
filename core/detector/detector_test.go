package detector

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/rafabd1/PIIHound/core/loader"
	"github.com/rafabd1/PIIHound/core/match"
	"github.com/rafabd1/PIIHound/core/matcher"
	"github.com/rafabd1/PIIHound/core/terms"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLogger struct {
	mu       sync.Mutex
	warnings []string
}

func (l *recordingLogger) Debug(format string, args ...interface{}) {}

func (l *recordingLogger) Warning(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warnings = append(l.warnings, fmt.Sprintf(format, args...))
}

func newDetector(t *testing.T, strict bool, custom ...string) (*Detector, *recordingLogger) {
	t.Helper()
	catalog, err := terms.NewCatalog(custom...)
	require.NoError(t, err)
	log := &recordingLogger{}
	return NewDetector(matcher.FromCatalog(catalog, matcher.ModeFor(strict)), nil, log, Config{}), log
}

func strPtr(s string) *string { return &s }

func TestScanDataVariables(t *testing.T) {
	d, _ := newDetector(t, false)

	names := []string{"respondent_id", "first_name", "age", "city"}
	samples := map[string][]string{
		"first_name": {"Ann", "Bo"},
		"city":       {"Lima"},
		"age":        {"34"},
	}

	results := d.ScanDataVariables("survey.csv", names, nil, samples)
	require.Len(t, results, 2)

	assert.Equal(t, "first_name", results[0].Identifier)
	assert.Contains(t, results[0].MatchedTerms, "name")
	assert.Equal(t, []string{"Ann", "Bo"}, results[0].SampleValues)
	assert.Equal(t, match.KindData, results[0].Kind)
	assert.Nil(t, results[0].Label)

	assert.Equal(t, "city", results[1].Identifier)
	assert.Equal(t, []string{"city"}, results[1].MatchedTerms)

	stats := d.GetStats()
	assert.Equal(t, 4, stats.VariablesScanned)
	assert.Equal(t, 2, stats.VariablesFlagged)
}

func TestScanDataVariablesLabels(t *testing.T) {
	d, _ := newDetector(t, true)

	names := []string{"q1", "q2", "q3", "q4"}
	labels := []*string{strPtr("Name of household head"), strPtr("nan"), nil}

	results := d.ScanDataVariables("hh.dta", names, labels, nil)
	require.Len(t, results, 1)

	m := results[0]
	assert.Equal(t, "q1", m.Identifier)
	assert.Equal(t, "Name of household head", m.LabelText())
	assert.Equal(t, []string{"name"}, m.MatchedTerms)
	assert.Empty(t, m.SampleValues)
}

func TestScanDataVariablesUnion(t *testing.T) {
	d, _ := newDetector(t, false)

	results := d.ScanDataVariables("x.csv", []string{"email"}, []*string{strPtr("E-mail address")}, nil)
	require.Len(t, results, 1)
	assert.Equal(t, []string{"address", "email"}, results[0].MatchedTerms)
}

func TestScanDataVariablesMissingLabelIgnored(t *testing.T) {
	d, _ := newDetector(t, false)

	results := d.ScanDataVariables("x.csv", []string{"q7"}, []*string{strPtr("  ")}, nil)
	assert.Empty(t, results)
}

func TestCustomTermsExtend(t *testing.T) {
	d, _ := newDetector(t, false, "patient_id")

	results := d.ScanDataVariables("x.csv", []string{"patient_id", "email", "weight"}, nil, nil)
	require.Len(t, results, 2)
	assert.Equal(t, []string{"patient_id"}, results[0].MatchedTerms)
	assert.Equal(t, []string{"email"}, results[1].MatchedTerms)
}

func TestScanDataset(t *testing.T) {
	d, _ := newDetector(t, false)
	assert.Nil(t, d.ScanDataset(nil))

	ds := &loader.Dataset{
		Path:     "./data/../data/s.csv",
		VarNames: []string{"gps_lat"},
		Samples:  map[string][]string{"gps_lat": {"-12.04"}},
	}
	results := d.ScanDataset(ds)
	require.Len(t, results, 1)
	assert.Equal(t, "./data/../data/s.csv", results[0].FilePath)
	assert.Equal(t, []string{"gps", "lat"}, results[0].MatchedTerms)
}

func TestScanCodeLines(t *testing.T) {
	d, _ := newDetector(t, false)

	lines := []string{
		"library(haven)",
		"",
		"   ",
		"df <- read_dta('survey.dta')",
		"model <- lm(age ~ first_name)",
		"def get_email():",
		"    return df['email']",
		"@property",
	}

	results := d.ScanCodeLines("analysis.R", lines)
	require.Len(t, results, 2)

	assert.Equal(t, "Line 5", results[0].Identifier)
	assert.Contains(t, results[0].MatchedTerms, "name")
	assert.Equal(t, []string{"model <- lm(age ~ first_name)"}, results[0].SampleValues)
	assert.Nil(t, results[0].Label)
	assert.Equal(t, match.KindCode, results[0].Kind)

	assert.Equal(t, "Line 7", results[1].Identifier)
	assert.Equal(t, []string{"return df['email']"}, results[1].SampleValues)

	stats := d.GetStats()
	assert.Equal(t, 6, stats.LinesScanned)
	assert.Equal(t, 3, stats.LinesSuppressed)
	assert.Equal(t, 2, stats.LinesFlagged)
}

func TestScanCodeLinesTruncatesExcerpt(t *testing.T) {
	d, _ := newDetector(t, false)

	line := "x = df['email'] + " + strings.Repeat("y", 132)
	require.Len(t, line, 150)

	results := d.ScanCodeLines("long.py", []string{line})
	require.Len(t, results, 1)
	require.Len(t, results[0].SampleValues, 1)
	assert.LessOrEqual(t, len(results[0].SampleValues[0]), 100)
	assert.Equal(t, line[:100], results[0].SampleValues[0])
}

func TestScanCodeLinesNoMatches(t *testing.T) {
	d, _ := newDetector(t, true)
	results := d.ScanCodeLines("clean.py", []string{"x = 1", "y = x + 2", "print(y)"})
	assert.Empty(t, results)
}

func TestScanCodeFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clean.do")
	require.NoError(t, os.WriteFile(path, []byte("use survey.dta\r\nsummarize village\r\n"), 0644))

	d, log := newDetector(t, false)
	results, err := d.ScanCodeFile(path)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Line 2", results[0].Identifier)
	assert.Equal(t, []string{"summarize village"}, results[0].SampleValues)
	assert.Empty(t, log.warnings)
}

func TestScanCodeFileUnreadable(t *testing.T) {
	dir := t.TempDir()
	binary := filepath.Join(dir, "blob.py")
	require.NoError(t, os.WriteFile(binary, []byte{0x00, 0xff, 0xfe, 'n', 'a', 'm', 'e'}, 0644))

	d, log := newDetector(t, false)

	results, err := d.ScanCodeFile(filepath.Join(dir, "gone.py"))
	assert.Error(t, err)
	assert.Empty(t, results)

	results, err = d.ScanCodeFile(binary)
	assert.Error(t, err)
	assert.Empty(t, results)

	assert.Len(t, log.warnings, 2)
	assert.Equal(t, 2, d.GetStats().UnreadableFiles)
}

func TestScanDocLines(t *testing.T) {
	d, _ := newDetector(t, false)

	lines := []string{
		"# Replication package",
		"",
		"Import the household roster before merging village codes.",
		"Run `01_clean.do` first.",
		"Contact the PI by email for restricted files.",
	}

	results := d.ScanDocLines("README.md", lines)
	require.Len(t, results, 2)

	assert.Equal(t, match.KindDocs, results[0].Kind)
	assert.Equal(t, "Line 3", results[0].Identifier)
	assert.Contains(t, results[0].MatchedTerms, "village")
	assert.Contains(t, results[0].MatchedTerms, "house")
	assert.Equal(t, "Line 5", results[1].Identifier)
	assert.Contains(t, results[1].MatchedTerms, "email")

	stats := d.GetStats()
	assert.Equal(t, 4, stats.DocLinesScanned)
	assert.Equal(t, 2, stats.DocLinesFlagged)
	assert.Equal(t, 0, stats.LinesSuppressed)
}

func TestScanDocFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "README.txt")
	require.NoError(t, os.WriteFile(path, []byte("Data include GPS coordinates.\n"), 0644))

	d, log := newDetector(t, false)
	results, err := d.ScanDocFile(path)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, path, results[0].FilePath)
	assert.Contains(t, results[0].MatchedTerms, "gps")
	assert.Contains(t, results[0].MatchedTerms, "coord")

	_, err = d.ScanDocFile(filepath.Join(dir, "missing.md"))
	assert.Error(t, err)
	assert.Len(t, log.warnings, 1)
}

func TestScanCodeLinesTruncatesMultibyteExcerpt(t *testing.T) {
	d, _ := newDetector(t, false)

	line := "# nombre del pueblo: " + strings.Repeat("é", 120) + " village"
	results := d.ScanCodeLines("labels.py", []string{line})
	require.Len(t, results, 1)

	excerpt := results[0].SampleValues[0]
	assert.Equal(t, 100, len([]rune(excerpt)))
	assert.True(t, strings.HasPrefix(line, excerpt))
}

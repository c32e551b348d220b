package loader

import (
	"fmt"
	"strings"

	"github.com/rafabd1/PIIHound/utils"
)

const (
	DefaultMaxRows    = 1000
	DefaultMaxSamples = 5
)

// Format names a data file format.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatTSV     Format = "tsv"
	FormatParquet Format = "parquet"
	FormatJSON    Format = "json"
	FormatJSONL   Format = "jsonl"
	FormatStata   Format = "stata"
	FormatSPSS    Format = "spss"
	FormatMatlab  Format = "matlab"
	FormatPickle  Format = "pickle"
	FormatRData   Format = "rdata"
	FormatExcel   Format = "excel"
	FormatUnknown Format = "unknown"
)

var extensionFormats = map[string]Format{
	".csv":     FormatCSV,
	".tsv":     FormatTSV,
	".tab":     FormatTSV,
	".parquet": FormatParquet,
	".json":    FormatJSON,
	".jsonl":   FormatJSONL,
	".ndjson":  FormatJSONL,
	".dta":     FormatStata,
	".sav":     FormatSPSS,
	".zsav":    FormatSPSS,
	".por":     FormatSPSS,
	".mat":     FormatMatlab,
	".pkl":     FormatPickle,
	".pickle":  FormatPickle,
	".rds":     FormatRData,
	".rdata":   FormatRData,
	".rda":     FormatRData,
	".xlsx":    FormatExcel,
	".xls":     FormatExcel,
}

// DetectFormat maps a path to its data format by extension.
func DetectFormat(path string) Format {
	if f, ok := extensionFormats[utils.GetFileExtension(path)]; ok {
		return f
	}
	return FormatUnknown
}

// IsDataExtension reports whether ext (with dot) is a known data extension.
func IsDataExtension(ext string) bool {
	_, ok := extensionFormats[strings.ToLower(ext)]
	return ok
}

// Dataset is the normalised view of a data file that every format adapter
// produces. VarLabels runs parallel to VarNames; a nil entry means no label.
type Dataset struct {
	Path      string
	Format    Format
	VarNames  []string
	VarLabels []*string
	Samples   map[string][]string
	RowsRead  int
}

func (ds *Dataset) Label(i int) *string {
	if i < 0 || i >= len(ds.VarLabels) {
		return nil
	}
	return ds.VarLabels[i]
}

type Options struct {
	MaxRows    int
	MaxSamples int
}

func (o Options) withDefaults() Options {
	if o.MaxRows <= 0 {
		o.MaxRows = DefaultMaxRows
	}
	if o.MaxSamples <= 0 {
		o.MaxSamples = DefaultMaxSamples
	}
	return o
}

// Loader reads one data format into a Dataset.
type Loader interface {
	Load(path string) (*Dataset, error)
}

type unsupportedLoader struct {
	format Format
}

func (u unsupportedLoader) Load(path string) (*Dataset, error) {
	return nil, utils.NewError(utils.FormatError,
		fmt.Sprintf("cannot load %s (%s)", path, u.format), utils.ErrUnsupportedFormat)
}

// ForFormat returns the adapter for a format.
func ForFormat(format Format, opts Options) Loader {
	opts = opts.withDefaults()

	switch format {
	case FormatCSV:
		return &CSVLoader{Options: opts, Comma: ','}
	case FormatTSV:
		return &CSVLoader{Options: opts, Comma: '\t'}
	case FormatParquet:
		return &ParquetLoader{Options: opts}
	case FormatJSON:
		return &JSONLoader{Options: opts}
	case FormatJSONL:
		return &JSONLoader{Options: opts, Lines: true}
	default:
		return unsupportedLoader{format: format}
	}
}

/*
Loads a data file by extension. Formats with no Go reader return an error
wrapping ErrUnsupportedFormat; callers treat any error as "no data".
*/
func Load(path string, opts Options) (*Dataset, error) {
	return ForFormat(DetectFormat(path), opts).Load(path)
}

var missingValues = map[string]bool{
	"":     true,
	"nan":  true,
	"na":   true,
	"n/a":  true,
	"null": true,
	"none": true,
	".":    true,
	"<na>": true,
	"nat":  true,
}

// IsMissingValue reports whether s is a missing-value sentinel.
func IsMissingValue(s string) bool {
	return missingValues[strings.ToLower(strings.TrimSpace(s))]
}

// sampleCollector keeps up to limit unique non-missing values per variable,
// in first-seen order.
type sampleCollector struct {
	limit   int
	samples map[string][]string
	seen    map[string]map[string]bool
}

func newSampleCollector(limit int) *sampleCollector {
	return &sampleCollector{
		limit:   limit,
		samples: make(map[string][]string),
		seen:    make(map[string]map[string]bool),
	}
}

func (c *sampleCollector) ensure(name string) {
	if _, ok := c.samples[name]; !ok {
		c.samples[name] = []string{}
		c.seen[name] = make(map[string]bool)
	}
}

func (c *sampleCollector) add(name, value string) {
	c.ensure(name)
	if len(c.samples[name]) >= c.limit || IsMissingValue(value) {
		return
	}
	value = strings.TrimSpace(value)
	if c.seen[name][value] {
		return
	}
	c.seen[name][value] = true
	c.samples[name] = append(c.samples[name], value)
}

package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rafabd1/PIIHound/utils"
)

// CSVLoader reads delimited text with a header row.
type CSVLoader struct {
	Options
	Comma rune
}

func (l *CSVLoader) Load(path string) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, utils.NewError(utils.LoadError, fmt.Sprintf("failed to open %s", path), err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.Comma = l.Comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = fmt.Errorf("file is empty")
		}
		return nil, utils.NewError(utils.LoadError, fmt.Sprintf("failed to read header of %s", path), err)
	}

	names := make([]string, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		names[i] = h
	}

	format := FormatCSV
	if l.Comma == '\t' {
		format = FormatTSV
	}

	collector := newSampleCollector(l.MaxSamples)
	for _, name := range names {
		collector.ensure(name)
	}

	rows := 0
	for rows < l.MaxRows {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, utils.NewError(utils.LoadError, fmt.Sprintf("failed to parse %s", path), err)
		}
		rows++

		for i, value := range record {
			if i < len(names) {
				collector.add(names[i], value)
			}
		}
	}

	return &Dataset{
		Path:      path,
		Format:    format,
		VarNames:  names,
		VarLabels: make([]*string, len(names)),
		Samples:   collector.samples,
		RowsRead:  rows,
	}, nil
}

package loader

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rafabd1/PIIHound/utils"
	"github.com/segmentio/parquet-go"
)

// ParquetLoader reads the leaf columns of a Parquet file. Nested columns are
// named by their dotted path. Parquet carries no variable labels.
type ParquetLoader struct {
	Options
}

func (l *ParquetLoader) Load(path string) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, utils.NewError(utils.LoadError, fmt.Sprintf("failed to open Parquet file %s", path), err)
	}
	defer file.Close()

	reader := parquet.NewReader(file)
	defer reader.Close()

	columns := reader.Schema().Columns()
	names := make([]string, len(columns))
	for i, column := range columns {
		names[i] = strings.Join(column, ".")
	}

	collector := newSampleCollector(l.MaxSamples)
	for _, name := range names {
		collector.ensure(name)
	}

	rows := 0
	buf := make([]parquet.Row, 64)
	for rows < l.MaxRows {
		want := min(len(buf), l.MaxRows-rows)
		n, err := reader.ReadRows(buf[:want])

		for _, row := range buf[:n] {
			row.Range(func(columnIndex int, values []parquet.Value) bool {
				if columnIndex >= len(names) {
					return true
				}
				for _, v := range values {
					if !v.IsNull() {
						collector.add(names[columnIndex], v.String())
					}
				}
				return true
			})
		}
		rows += n

		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, utils.NewError(utils.LoadError, fmt.Sprintf("failed to read rows of %s", path), err)
		}
		if n == 0 {
			break
		}
	}

	return &Dataset{
		Path:      path,
		Format:    FormatParquet,
		VarNames:  names,
		VarLabels: make([]*string, len(names)),
		Samples:   collector.samples,
		RowsRead:  rows,
	}, nil
}

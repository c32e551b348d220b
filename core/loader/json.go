package loader

import (
	"fmt"
	"os"
	"strings"

	"github.com/rafabd1/PIIHound/utils"
	"github.com/tidwall/gjson"
)

/*
JSONLoader understands three layouts:
  - pandas/Table Schema: {"schema": {"fields": [...]}, "data": [...]}
    where a field's "description" or "title" becomes the variable label
  - an array of records
  - an object of columns, {"col": [values...]}; nested objects flatten
    to dotted names

With Lines set, every line is one record (JSON Lines).
*/
type JSONLoader struct {
	Options
	Lines bool
}

// jsonTable accumulates variables in first-seen order.
type jsonTable struct {
	names     []string
	labels    map[string]*string
	index     map[string]bool
	collector *sampleCollector
}

func newJSONTable(maxSamples int) *jsonTable {
	return &jsonTable{
		labels:    make(map[string]*string),
		index:     make(map[string]bool),
		collector: newSampleCollector(maxSamples),
	}
}

func (t *jsonTable) variable(name string) {
	if t.index[name] {
		return
	}
	t.index[name] = true
	t.names = append(t.names, name)
	t.collector.ensure(name)
}

func (t *jsonTable) value(name string, v gjson.Result) {
	t.variable(name)
	if v.Type == gjson.Null {
		return
	}
	t.collector.add(name, scalarString(v))
}

func (t *jsonTable) record(prefix string, rec gjson.Result) {
	rec.ForEach(func(key, v gjson.Result) bool {
		name := joinKey(prefix, key.String())
		if v.IsObject() {
			t.record(name, v)
		} else {
			t.value(name, v)
		}
		return true
	})
}

func (t *jsonTable) dataset(path string, format Format, rows int) *Dataset {
	labels := make([]*string, len(t.names))
	for i, name := range t.names {
		labels[i] = t.labels[name]
	}
	return &Dataset{
		Path:      path,
		Format:    format,
		VarNames:  t.names,
		VarLabels: labels,
		Samples:   t.collector.samples,
		RowsRead:  rows,
	}
}

func (l *JSONLoader) Load(path string) (*Dataset, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, utils.NewError(utils.LoadError, fmt.Sprintf("failed to read %s", path), err)
	}

	if l.Lines {
		return l.loadLines(path, string(content))
	}

	if !gjson.ValidBytes(content) {
		return nil, utils.NewError(utils.LoadError, fmt.Sprintf("invalid JSON in %s", path), nil)
	}

	root := gjson.ParseBytes(content)
	table := newJSONTable(l.MaxSamples)
	rows := 0

	switch {
	case root.IsObject() && root.Get("schema.fields").IsArray() && root.Get("data").IsArray():
		root.Get("schema.fields").ForEach(func(_, field gjson.Result) bool {
			name := field.Get("name").String()
			if name == "" {
				return true
			}
			table.variable(name)
			for _, key := range []string{"description", "title"} {
				if label := field.Get(key); label.Exists() && label.String() != "" {
					s := label.String()
					table.labels[name] = &s
					break
				}
			}
			return true
		})
		rows = l.readRecords(table, root.Get("data"))

	case root.IsArray():
		rows = l.readRecords(table, root)

	case root.IsObject():
		rows = l.readColumns(table, "", root)

	default:
		return nil, utils.NewError(utils.LoadError, fmt.Sprintf("%s holds a bare %s value", path, root.Type), nil)
	}

	return table.dataset(path, FormatJSON, rows), nil
}

func (l *JSONLoader) readRecords(table *jsonTable, records gjson.Result) int {
	rows := 0
	records.ForEach(func(_, rec gjson.Result) bool {
		if rows >= l.MaxRows {
			return false
		}
		rows++
		if rec.IsObject() {
			table.record("", rec)
		}
		return true
	})
	return rows
}

// readColumns walks a column-oriented object. Columns may differ in length.
func (l *JSONLoader) readColumns(table *jsonTable, prefix string, obj gjson.Result) int {
	rows := 0
	obj.ForEach(func(key, v gjson.Result) bool {
		name := joinKey(prefix, key.String())
		switch {
		case v.IsObject():
			rows = max(rows, l.readColumns(table, name, v))
		case v.IsArray():
			table.variable(name)
			n := 0
			v.ForEach(func(_, item gjson.Result) bool {
				if n >= l.MaxRows {
					return false
				}
				n++
				table.value(name, item)
				return true
			})
			rows = max(rows, n)
		default:
			table.value(name, v)
			rows = max(rows, 1)
		}
		return true
	})
	return rows
}

func (l *JSONLoader) loadLines(path, content string) (*Dataset, error) {
	table := newJSONTable(l.MaxSamples)
	rows := 0
	invalid := 0

	gjson.ForEachLine(content, func(line gjson.Result) bool {
		if rows >= l.MaxRows {
			return false
		}
		if strings.TrimSpace(line.Raw) == "" {
			return true
		}
		if !gjson.Valid(line.Raw) || !line.IsObject() {
			invalid++
			return true
		}
		rows++
		table.record("", line)
		return true
	})

	if rows == 0 && invalid > 0 {
		return nil, utils.NewError(utils.LoadError, fmt.Sprintf("no valid JSON records in %s", path), nil)
	}

	return table.dataset(path, FormatJSONL, rows), nil
}

func scalarString(v gjson.Result) string {
	if v.IsArray() {
		return v.Raw
	}
	return v.String()
}

func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

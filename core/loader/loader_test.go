package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rafabd1/PIIHound/utils"
	"github.com/segmentio/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, FormatCSV, DetectFormat("a/b/survey.CSV"))
	assert.Equal(t, FormatTSV, DetectFormat("x.tab"))
	assert.Equal(t, FormatStata, DetectFormat("x.dta"))
	assert.Equal(t, FormatJSONL, DetectFormat("x.ndjson"))
	assert.Equal(t, FormatUnknown, DetectFormat("x.py"))
	assert.True(t, IsDataExtension(".SAV"))
	assert.False(t, IsDataExtension(".md"))
}

func TestIsMissingValue(t *testing.T) {
	for _, v := range []string{"", "  ", "NaN", "NA", "n/a", "null", "None", ".", "<NA>"} {
		assert.True(t, IsMissingValue(v), v)
	}
	for _, v := range []string{"0", "Nancy", "John", "no"} {
		assert.False(t, IsMissingValue(v), v)
	}
}

func TestCSVLoader(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "survey.csv",
		"\ufeffrespondent_id,first_name,age,city\n"+
			"1,Ann,34,Lima\n"+
			"2,Bo,,Lima\n"+
			"3,NA,51,Quito\n"+
			"4,Cy,29,Cusco\n"+
			"5,Di,40,Arequipa\n"+
			"6,Ed,40,Puno\n"+
			"7,Fa,33,Tacna\n"+
			"8,Gi,33,Ica\n")

	ds, err := Load(path, Options{})
	require.NoError(t, err)

	assert.Equal(t, FormatCSV, ds.Format)
	assert.Equal(t, []string{"respondent_id", "first_name", "age", "city"}, ds.VarNames)
	assert.Len(t, ds.VarLabels, 4)
	assert.Nil(t, ds.Label(1))
	assert.Equal(t, 8, ds.RowsRead)
	assert.Equal(t, []string{"Ann", "Bo", "Cy", "Di", "Ed"}, ds.Samples["first_name"])
	assert.Equal(t, []string{"34", "51", "29", "40", "33"}, ds.Samples["age"])
	assert.Equal(t, []string{"Lima", "Quito", "Cusco", "Arequipa", "Puno"}, ds.Samples["city"])
}

func TestCSVLoaderRowCap(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "big.csv", "email\na@x.org\nb@x.org\nc@x.org\n")

	ds, err := Load(path, Options{MaxRows: 2, MaxSamples: 5})
	require.NoError(t, err)
	assert.Equal(t, 2, ds.RowsRead)
	assert.Equal(t, []string{"a@x.org", "b@x.org"}, ds.Samples["email"])
}

func TestCSVLoaderHeaderOnly(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "empty.csv", "village,phone\n")

	ds, err := Load(path, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"village", "phone"}, ds.VarNames)
	assert.Empty(t, ds.Samples["phone"])
	assert.NotNil(t, ds.Samples["phone"])
}

func TestTSVLoader(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "hh.tsv", "hh_id\tvillage\n1\tKaro\n")

	ds, err := Load(path, Options{})
	require.NoError(t, err)
	assert.Equal(t, FormatTSV, ds.Format)
	assert.Equal(t, []string{"Karo"}, ds.Samples["village"])
}

func TestCSVLoaderErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.csv"), Options{})
	require.Error(t, err)
	assert.True(t, utils.IsErrorType(err, utils.LoadError))

	path := writeFile(t, dir, "blank.csv", "")
	_, err = Load(path, Options{})
	assert.Error(t, err)
}

func TestUnsupportedFormats(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.dta", "a.sav", "a.mat", "a.pkl", "a.rds", "a.xlsx", "a.bin"} {
		path := writeFile(t, dir, name, "x")
		_, err := Load(path, Options{})
		require.Error(t, err, name)
		assert.ErrorIs(t, err, utils.ErrUnsupportedFormat, name)
	}
}

func TestJSONTableSchema(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "table.json", `{
		"schema": {"fields": [
			{"name": "index", "type": "integer"},
			{"name": "q1", "type": "string", "description": "Mother's maiden name"},
			{"name": "q2", "type": "string", "title": "Household size"}
		], "pandas_version": "1.4.0"},
		"data": [
			{"index": 0, "q1": "Lopez", "q2": "4"},
			{"index": 1, "q1": null, "q2": "4"}
		]
	}`)

	ds, err := Load(path, Options{})
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, ds.Format)
	assert.Equal(t, []string{"index", "q1", "q2"}, ds.VarNames)
	assert.Nil(t, ds.Label(0))
	require.NotNil(t, ds.Label(1))
	assert.Equal(t, "Mother's maiden name", *ds.Label(1))
	assert.Equal(t, "Household size", *ds.Label(2))
	assert.Equal(t, []string{"Lopez"}, ds.Samples["q1"])
	assert.Equal(t, []string{"4"}, ds.Samples["q2"])
	assert.Equal(t, 2, ds.RowsRead)
}

func TestJSONRecordsAndNesting(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "records.json", `[
		{"id": 1, "contact": {"email": "a@x.org", "phone": "555"}},
		{"id": 2, "contact": {"email": "b@x.org"}, "gps": [1.5, 2.5]}
	]`)

	ds, err := Load(path, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "contact.email", "contact.phone", "gps"}, ds.VarNames)
	assert.Equal(t, []string{"a@x.org", "b@x.org"}, ds.Samples["contact.email"])
	assert.Equal(t, []string{"[1.5, 2.5]"}, ds.Samples["gps"])
}

func TestJSONRaggedColumns(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "ragged.json", `{
		"arrays": [[1, 2, 3], [4, 5]],
		"nested_dict": {
			"names": ["Alice", "Bob", "Charlie"],
			"ages": [25, 30],
			"addresses": {"Alice": "123 Main St", "Bob": "456 Oak Ave"}
		}
	}`)

	ds, err := Load(path, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"arrays", "nested_dict.names", "nested_dict.ages",
		"nested_dict.addresses.Alice", "nested_dict.addresses.Bob",
	}, ds.VarNames)
	assert.Equal(t, []string{"Alice", "Bob", "Charlie"}, ds.Samples["nested_dict.names"])
	assert.Equal(t, []string{"123 Main St"}, ds.Samples["nested_dict.addresses.Alice"])
	assert.Equal(t, 3, ds.RowsRead)
}

func TestJSONInvalid(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(writeFile(t, dir, "bad.json", `{"a": `), Options{})
	assert.Error(t, err)

	_, err = Load(writeFile(t, dir, "scalar.json", `42`), Options{})
	assert.Error(t, err)
}

func TestJSONLines(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "rows.jsonl", "{\"name\": \"Ann\", \"zip\": \"10001\"}\n\nnot json\n{\"name\": \"Bo\"}\n")

	ds, err := Load(path, Options{})
	require.NoError(t, err)
	assert.Equal(t, FormatJSONL, ds.Format)
	assert.Equal(t, []string{"name", "zip"}, ds.VarNames)
	assert.Equal(t, []string{"Ann", "Bo"}, ds.Samples["name"])
	assert.Equal(t, 2, ds.RowsRead)

	_, err = Load(writeFile(t, dir, "junk.jsonl", "nope\nstill nope\n"), Options{})
	assert.Error(t, err)
}

type parquetRow struct {
	HouseholdID int64  `parquet:"household_id"`
	Village     string `parquet:"village"`
	Phone       string `parquet:"phone"`
}

func TestParquetLoader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hh.parquet")
	require.NoError(t, parquet.WriteFile(path, []parquetRow{
		{HouseholdID: 1, Village: "Karo", Phone: "555-0101"},
		{HouseholdID: 2, Village: "Karo", Phone: "555-0102"},
		{HouseholdID: 3, Village: "Mbale", Phone: ""},
	}))

	ds, err := Load(path, Options{})
	require.NoError(t, err)
	assert.Equal(t, FormatParquet, ds.Format)
	assert.ElementsMatch(t, []string{"household_id", "village", "phone"}, ds.VarNames)
	assert.Equal(t, 3, ds.RowsRead)
	assert.Equal(t, []string{"Karo", "Mbale"}, ds.Samples["village"])
	assert.Equal(t, []string{"555-0101", "555-0102"}, ds.Samples["phone"])
	assert.Equal(t, []string{"1", "2", "3"}, ds.Samples["household_id"])
}

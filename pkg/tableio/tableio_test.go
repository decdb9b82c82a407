package tableio

import (
	"bytes"
	"math"
	"strings"
	"testing"

	gojson "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/ajitpratap0/tabprep/pkg/dataset"
	"github.com/ajitpratap0/tabprep/pkg/errors"
	"github.com/ajitpratap0/tabprep/pkg/testutil"
)

const peopleCSV = `age,city,id
25,NY,a1
30,NY,a2
NA,,a3
400,LA,7
`

func TestReadCSVInfersKinds(t *testing.T) {
	ds, err := ReadCSV(strings.NewReader(peopleCSV), CSVOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"age", "city", "id"}, ds.Columns())
	assert.Equal(t, 4, ds.NumRows())
	assert.Equal(t, []string{"age"}, ds.NumericColumns())
	assert.Equal(t, []string{"city", "id"}, ds.CategoricalColumns())

	age, _ := ds.Column("age")
	assert.True(t, age.IsNull(2))
	assert.Equal(t, []float64{25, 30, 400}, age.NonNullFloats())

	city, _ := ds.Column("city")
	assert.True(t, city.IsNull(2))

	id, _ := ds.Column("id")
	v, ok := id.Str(3)
	assert.True(t, ok)
	assert.Equal(t, "7", v, "numeric-looking cells of a categorical column stay strings")
}

func TestReadCSVNullTokens(t *testing.T) {
	in := "x\n1\nNaN\nnull\nNone\n\n2\n"
	ds, err := ReadCSV(strings.NewReader(in), CSVOptions{})
	require.NoError(t, err)
	x, _ := ds.Column("x")
	assert.Equal(t, 4, x.NullCount())

	ds, err = ReadCSV(strings.NewReader("x\n1\n-\n"), CSVOptions{NullTokens: []string{"-"}})
	require.NoError(t, err)
	x, _ = ds.Column("x")
	assert.Equal(t, dataset.Numeric, x.Kind())
	assert.Equal(t, 1, x.NullCount())
}

func TestReadCSVErrors(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("a,b\n1,2\n3\n"), CSVOptions{})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeData))

	_, err = ReadCSV(strings.NewReader("a,a\n1,2\n"), CSVOptions{})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))

	ds, err := ReadCSV(strings.NewReader(""), CSVOptions{})
	require.NoError(t, err)
	assert.Zero(t, ds.NumColumns())
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, testutil.People(), CSVOptions{}))
	assert.Equal(t, "age,city\n25,NY\n30,NY\n,\n400,LA\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteCSV(&buf, testutil.People(), CSVOptions{Delimiter: ';', NullOutput: "NA"}))
	assert.Equal(t, "age;city\n25;NY\n30;NY\nNA;NA\n400;LA\n", buf.String())
}

func TestWriteJSON(t *testing.T) {
	ds := dataset.MustNew(
		dataset.Floats("age", 25, math.NaN(), 1.5),
		dataset.Strings("city", testutil.Str("NY"), nil, testutil.Str(`say "hi"`)),
	)
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, ds))
	assert.Equal(t,
		`[{"age":25,"city":"NY"},{"age":null,"city":null},{"age":1.5,"city":"say \"hi\""}]`+"\n",
		buf.String())

	var rows []map[string]interface{}
	require.NoError(t, gojson.Unmarshal(buf.Bytes(), &rows))
	assert.Len(t, rows, 3)
}

func TestReadJSON(t *testing.T) {
	in := `[{"city":"NY","age":25},{"age":null},{"age":30,"city":"LA","flag":true}]`
	ds, err := ReadJSON(strings.NewReader(in))
	require.NoError(t, err)

	assert.Equal(t, []string{"age", "city", "flag"}, ds.Columns())
	assert.Equal(t, []string{"age"}, ds.NumericColumns())
	city, _ := ds.Column("city")
	assert.True(t, city.IsNull(1))
	flag, _ := ds.Column("flag")
	assert.Equal(t, []string{"true"}, flag.NonNullStrings())

	_, err = ReadJSON(strings.NewReader(`[{"a":{"b":1}}]`))
	assert.True(t, errors.IsType(err, errors.ErrorTypeData))
	_, err = ReadJSON(strings.NewReader(`{"a":1}`))
	assert.True(t, errors.IsType(err, errors.ErrorTypeData))
}

type FileTestSuite struct {
	testutil.FileSuite
}

func TestFileSuite(t *testing.T) {
	suite.Run(t, new(FileTestSuite))
}

func (s *FileTestSuite) TestRoundTripEveryCompression() {
	for _, ext := range []string{".csv", ".csv.gz", ".csv.zst", ".csv.sz", ".csv.s2", ".csv.lz4", ".json", ".json.gz", ".tsv"} {
		path := s.Path("people" + ext)
		s.Require().NoError(WriteFile(path, testutil.People(), CSVOptions{}), ext)

		got, err := ReadFile(path, CSVOptions{})
		s.Require().NoError(err, ext)
		s.Equal(4, got.NumRows(), ext)

		age, err := got.Column("age")
		s.Require().NoError(err, ext)
		s.Equal([]float64{25, 30, 400}, age.NonNullFloats(), ext)
		s.True(age.IsNull(2), ext)
	}
}

func (s *FileTestSuite) TestTSVUsesTabs() {
	path := s.Path("t.tsv")
	s.Require().NoError(WriteFile(path, testutil.People(), CSVOptions{}))
	s.Contains(string(s.ReadFile("t.tsv")), "age\tcity\n")
}

func (s *FileTestSuite) TestReadPlainFile() {
	path := s.WriteFile("in.csv", []byte(peopleCSV))
	ds, err := ReadFile(path, CSVOptions{})
	s.Require().NoError(err)
	s.Equal([]string{"age", "city", "id"}, ds.Columns())
}

func (s *FileTestSuite) TestErrors() {
	_, err := ReadFile(s.Path("missing.csv"), CSVOptions{})
	s.True(errors.IsType(err, errors.ErrorTypeFile))

	_, err = ReadFile(s.Path("table.parquet"), CSVOptions{})
	s.True(errors.IsType(err, errors.ErrorTypeValidation))

	path := s.WriteFile("bad.csv.gz", []byte("plain text"))
	_, err = ReadFile(path, CSVOptions{})
	s.True(errors.IsType(err, errors.ErrorTypeData))
}

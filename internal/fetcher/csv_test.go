package fetcher

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSV(t *testing.T) {
	input := "\ufeffold_number,last_number\n111,999\n\n222,888,extra\n"

	table, err := ReadCSV(strings.NewReader(input), CSVOptions{})
	require.NoError(t, err)
	require.NoError(t, table.Require("old_number", "last_number"))
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "999", table.Get(table.Rows[0], "last_number"))
	assert.Equal(t, "222", table.Get(table.Rows[1], "old_number"))
}

func TestReadCSV_Delimiter(t *testing.T) {
	table, err := ReadCSV(strings.NewReader("a;b\n1;2\n"), CSVOptions{Delimiter: ';'})
	require.NoError(t, err)
	assert.Equal(t, "2", table.Get(table.Rows[0], "b"))
}

func TestReadCSV_Malformed(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("a,b\n\"unterminated,2\n"), CSVOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "csv: read rows")
}

func TestTable_Require(t *testing.T) {
	table := NewTable([]string{"a", "b"}, nil)
	require.NoError(t, table.Require("a", "b"))

	err := table.Require("a", "endline")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `missing column "endline"`)
}

func TestReadTable_DispatchesOnExtension(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "endline.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("reporting_number,endline\n111,2021-06-01\n"), 0o644))

	table, err := ReadTable(csvPath)
	require.NoError(t, err)
	assert.Equal(t, "2021-06-01", table.Get(table.Rows[0], "endline"))

	xlsxPath := createTestXLSX(t, map[string][][]string{"Sheet1": {{"x"}, {"1"}}})
	table, err = ReadTable(xlsxPath)
	require.NoError(t, err)
	assert.Equal(t, "1", table.Get(table.Rows[0], "x"))

	_, err = ReadTable(filepath.Join(dir, "roster.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file type")
}

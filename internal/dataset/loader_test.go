package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

const jsonFixture = `[
  {
    "name": "Summit Ridge Capital",
    "industries": ["Software", "Business Services"],
    "regions": ["US"],
    "revenue_focus_usd": {"min": 10000000, "max": 100000000},
    "deal_types": ["Buyout", "Recap"]
  },
  {"name": "Harbor Gate Equity"}
]`

const yamlFixture = `
- name: Summit Ridge Capital
  industries: [Software, Business Services]
  regions: [US]
  revenue_focus_usd:
    min: 10000000
    max: 100000000
  deal_types: [Buyout, Recap]
- name: Harbor Gate Equity
`

func TestLoadJSON(t *testing.T) {
	funds, err := LoadJSON(strings.NewReader(jsonFixture))
	require.NoError(t, err)
	require.Len(t, funds, 2)

	assert.Equal(t, "Summit Ridge Capital", funds[0].Name)
	assert.Equal(t, []string{"Software", "Business Services"}, funds[0].Industries)
	require.NotNil(t, funds[0].RevenueFocus)
	assert.InDelta(t, 10e6, *funds[0].RevenueFocus.Min, 1)

	// Sparse record loads without error.
	assert.Equal(t, "Harbor Gate Equity", funds[1].Name)
	assert.Nil(t, funds[1].RevenueFocus)
	assert.Empty(t, funds[1].DealTypes)
}

func TestLoadJSONMalformed(t *testing.T) {
	_, err := LoadJSON(strings.NewReader(`{"not": "an array"}`))
	assert.Error(t, err)
}

func TestLoadYAML(t *testing.T) {
	funds, err := LoadYAML(strings.NewReader(yamlFixture))
	require.NoError(t, err)
	require.Len(t, funds, 2)
	assert.Equal(t, []string{"Buyout", "Recap"}, funds[0].DealTypes)
	assert.Nil(t, funds[1].EmployeeFocus)
}

func TestLoadDispatchesOnExtension(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "funds.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(jsonFixture), 0o644))

	funds, err := Load(jsonPath)
	require.NoError(t, err)
	assert.Len(t, funds, 2)

	yamlPath := filepath.Join(dir, "funds.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(yamlFixture), 0o644))

	funds, err = Load(yamlPath)
	require.NoError(t, err)
	assert.Len(t, funds, 2)

	_, err = Load(filepath.Join(dir, "funds.csv"))
	assert.Error(t, err)
}

func TestLoadXLSX(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "funds.xlsx")

	wb := xlsx.NewFile()
	sheet, err := wb.AddSheet("Funds")
	require.NoError(t, err)

	header := sheet.AddRow()
	for _, h := range []string{"name", "industries", "regions", "revenue_min", "revenue_max", "deal_types", "notes"} {
		header.AddCell().SetString(h)
	}

	row := sheet.AddRow()
	row.AddCell().SetString("Lakeshore Partners")
	row.AddCell().SetString("Industrial; Manufacturing")
	row.AddCell().SetString("US, Canada")
	row.AddCell().SetString("$25,000,000")
	row.AddCell().SetString("30000000")
	row.AddCell().SetString("LBO")
	row.AddCell().SetString("prefers founder-led businesses")

	// Row without a name is skipped, not an error.
	blank := sheet.AddRow()
	blank.AddCell().SetString("")

	require.NoError(t, wb.Save(path))

	funds, err := LoadXLSX(path)
	require.NoError(t, err)
	require.Len(t, funds, 1)

	f := funds[0]
	assert.Equal(t, "Lakeshore Partners", f.Name)
	assert.Equal(t, []string{"Industrial", "Manufacturing"}, f.Industries)
	assert.Equal(t, []string{"US", "Canada"}, f.Regions)
	require.NotNil(t, f.RevenueFocus)
	assert.InDelta(t, 25e6, *f.RevenueFocus.Min, 1)
	assert.InDelta(t, 30e6, *f.RevenueFocus.Max, 1)
	assert.Nil(t, f.EmployeeFocus)
	assert.Equal(t, []string{"LBO"}, f.DealTypes)
	assert.Equal(t, "prefers founder-led businesses", f.Notes)
}

func TestLoadXLSXMissingNameColumn(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.xlsx")

	wb := xlsx.NewFile()
	sheet, err := wb.AddSheet("Funds")
	require.NoError(t, err)
	sheet.AddRow().AddCell().SetString("industries")
	require.NoError(t, wb.Save(path))

	_, err = LoadXLSX(path)
	assert.Error(t, err)
}

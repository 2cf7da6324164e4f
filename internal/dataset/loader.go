// Package dataset loads fund catalogs from JSON, YAML, or XLSX files.
// Loaders are tolerant: missing optional fields never fail a record.
package dataset

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/fundmatch/internal/model"
)

// Load reads a fund catalog, dispatching on file extension
// (.json, .yaml/.yml, .xlsx).
func Load(path string) ([]model.Fund, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrapf(err, "dataset: open %s", path)
		}
		defer f.Close() //nolint:errcheck
		return LoadJSON(f)
	case ".yaml", ".yml":
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrapf(err, "dataset: open %s", path)
		}
		defer f.Close() //nolint:errcheck
		return LoadYAML(f)
	case ".xlsx":
		return LoadXLSX(path)
	default:
		return nil, eris.Errorf("dataset: unsupported file type %q", filepath.Ext(path))
	}
}

// LoadJSON decodes a JSON array of fund records.
func LoadJSON(r io.Reader) ([]model.Fund, error) {
	var funds []model.Fund
	if err := json.NewDecoder(r).Decode(&funds); err != nil {
		return nil, eris.Wrap(err, "dataset: decode json")
	}
	return funds, nil
}

// LoadYAML decodes a YAML sequence of fund records.
func LoadYAML(r io.Reader) ([]model.Fund, error) {
	var funds []model.Fund
	if err := yaml.NewDecoder(r).Decode(&funds); err != nil {
		return nil, eris.Wrap(err, "dataset: decode yaml")
	}
	return funds, nil
}

// xlsxColumns maps expected header names to fund fields. List cells use
// comma or semicolon separators.
var xlsxColumns = []string{
	"name", "industries", "regions",
	"revenue_min", "revenue_max",
	"employees_min", "employees_max",
	"deal_types", "notes",
}

// LoadXLSX reads fund records from the first sheet of an XLSX workbook.
// The first row must be a header; columns are matched by name and may
// appear in any order. Rows without a name are skipped.
func LoadXLSX(path string) ([]model.Fund, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: open xlsx %s", path)
	}
	if len(f.Sheets) == 0 {
		return nil, eris.Errorf("dataset: %s has no sheets", path)
	}
	sheet := f.Sheets[0]
	if len(sheet.Rows) == 0 {
		return nil, nil
	}

	// Resolve column positions from the header row.
	colIdx := make(map[string]int, len(xlsxColumns))
	for i, cell := range sheet.Rows[0].Cells {
		h := strings.ToLower(strings.TrimSpace(cell.String()))
		for _, want := range xlsxColumns {
			if h == want {
				colIdx[want] = i
			}
		}
	}
	if _, ok := colIdx["name"]; !ok {
		return nil, eris.Errorf("dataset: %s is missing a name column", path)
	}

	var funds []model.Fund
	for _, row := range sheet.Rows[1:] {
		cell := func(col string) string {
			i, ok := colIdx[col]
			if !ok || i >= len(row.Cells) {
				return ""
			}
			return strings.TrimSpace(row.Cells[i].String())
		}

		name := cell("name")
		if name == "" {
			continue
		}

		funds = append(funds, model.Fund{
			Name:          name,
			Industries:    splitList(cell("industries")),
			Regions:       splitList(cell("regions")),
			RevenueFocus:  parseRange(cell("revenue_min"), cell("revenue_max")),
			EmployeeFocus: parseRange(cell("employees_min"), cell("employees_max")),
			DealTypes:     splitList(cell("deal_types")),
			Notes:         cell("notes"),
		})
	}

	return funds, nil
}

// splitList splits a comma- or semicolon-separated cell into trimmed values.
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' }) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseRange builds a Range from min/max cells. Unparseable or empty cells
// leave the bound open; a range with both bounds open collapses to nil.
func parseRange(minCell, maxCell string) *model.Range {
	r := &model.Range{
		Min: parseNumber(minCell),
		Max: parseNumber(maxCell),
	}
	if r.Empty() {
		return nil
	}
	return r
}

func parseNumber(s string) *float64 {
	s = strings.NewReplacer("$", "", ",", "", " ", "").Replace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

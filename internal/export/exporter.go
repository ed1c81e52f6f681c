package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rebeliceyang/lazytab/internal/dataset"
	"github.com/rebeliceyang/lazytab/internal/filter"
)

// ExportCSV writes the rows of tbl selected by mask to a CSV file with
// a header row. A nil mask exports every row; nulls become empty
// fields.
func ExportCSV(tbl *dataset.Table, mask filter.Mask, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	columns := tbl.ColumnNames()
	if err := writer.Write(columns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	row := make([]string, len(columns))
	for i := 0; i < tbl.NumRows(); i++ {
		if mask != nil && !mask[i] {
			continue
		}
		for j := range columns {
			row[j] = tbl.CellString(i, j)
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// ExportJSON writes the selected rows as an array of objects keyed by
// column name. Values are exported in their printed form; nulls become
// JSON null.
func ExportJSON(tbl *dataset.Table, mask filter.Mask, path string) error {
	columns := tbl.ColumnNames()

	rows := make([]map[string]any, 0)
	for i := 0; i < tbl.NumRows(); i++ {
		if mask != nil && !mask[i] {
			continue
		}
		obj := make(map[string]any, len(columns))
		for j, col := range columns {
			if tbl.ColumnAt(j).IsNull(i) {
				obj[col] = nil
				continue
			}
			obj[col] = tbl.CellString(i, j)
		}
		rows = append(rows, obj)
	}

	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal rows to JSON: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write JSON file: %w", err)
	}

	return nil
}

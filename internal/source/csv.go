package source

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/reviewlens/backend/internal/dataset"
)

// ParseCSV turns a CSV payload into a raw table. The first row is the header;
// short rows leave their trailing columns missing rather than failing the
// whole file.
func ParseCSV(body []byte) (dataset.RawTable, error) {
	reader := csv.NewReader(bytes.NewReader(body))
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return dataset.RawTable{}, fmt.Errorf("failed to parse CSV: %w", err)
	}

	if len(records) == 0 {
		return dataset.RawTable{}, fmt.Errorf("CSV payload is empty")
	}

	columns := make([]string, len(records[0]))
	for i, col := range records[0] {
		columns[i] = strings.TrimSpace(strings.TrimPrefix(col, "\uFEFF"))
	}

	rows := make([]dataset.Record, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make(dataset.Record, len(columns))
		for i, col := range columns {
			if i < len(rec) {
				row[col] = rec[i]
			}
		}
		rows = append(rows, row)
	}

	return dataset.RawTable{Columns: columns, Rows: rows}, nil
}

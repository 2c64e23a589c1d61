package ingest

import (
	"strings"

	"github.com/xuri/excelize/v2"
)

// headerScanLimit bounds how many leading rows are inspected when looking
// for the true header row. Real exports frequently prepend title or metadata
// rows before the tabular data starts.
const headerScanLimit = 15

// headerKeywords mark a row as the likely column-header row. Matching is by
// lower-cased substring against every cell of the row.
var headerKeywords = []string{"usuario", "nombre", "email", "pregunta", "respuesta", "%"}

// locateHeader scans at most the first headerScanLimit rows of a raw grid
// and returns the index of the first row containing a recognizable domain
// keyword. When nothing qualifies it reports row 0 with found=false so the
// caller can decide whether the assumption deserves a warning.
func locateHeader(grid [][]string) (idx int, found bool) {
	limit := len(grid)
	if limit > headerScanLimit {
		limit = headerScanLimit
	}
	for i := 0; i < limit; i++ {
		for _, cell := range grid[i] {
			val := strings.ToLower(cell)
			for _, kw := range headerKeywords {
				if strings.Contains(val, kw) {
					return i, true
				}
			}
		}
	}
	return 0, false
}

// rowsFrom re-keys the grid using the row at headerIdx as the header row.
// Columns with a blank header cell are keyed by their Excel column name so
// positional aliases still work. Rows with no populated cell are skipped.
func rowsFrom(grid [][]string, headerIdx int) []Row {
	if headerIdx >= len(grid) {
		return nil
	}
	header := grid[headerIdx]
	var rows []Row
	for _, raw := range grid[headerIdx+1:] {
		row := NewRow()
		for col, cell := range raw {
			key := ""
			if col < len(header) {
				key = strings.TrimSpace(header[col])
			}
			if key == "" {
				name, err := excelize.ColumnNumberToName(col + 1)
				if err != nil {
					continue
				}
				key = name
			}
			row.Set(key, cell)
		}
		if row.Len() == 0 {
			continue
		}
		rows = append(rows, row)
	}
	return rows
}

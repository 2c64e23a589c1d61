package ingest

import "strings"

// Row is one data row keyed by the header cell text of its column. Column
// order is preserved so alias resolution is deterministic when two columns
// fold to the same name. Columns whose header cell is blank are keyed by
// their Excel column name ("A", "B", ...), which lets alias tables address
// positional columns in malformed exports.
//
// Cells that are empty in the source sheet are not stored, mirroring how
// spreadsheet-to-JSON conversion drops blank cells. Resolve therefore falls
// through to the next alias when a matching column holds no value for this
// row.
type Row struct {
	keys   []string
	values map[string]string
}

// NewRow returns an empty Row.
func NewRow() Row {
	return Row{values: make(map[string]string)}
}

// Set stores a cell under the given column name. Blank values are dropped;
// the first occurrence of a duplicate column name wins.
func (r *Row) Set(key, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	if _, exists := r.values[key]; exists {
		return
	}
	r.keys = append(r.keys, key)
	r.values[key] = value
}

// Len reports the number of populated cells.
func (r Row) Len() int { return len(r.keys) }

// Resolve returns the value of the first column matching any of the given
// header aliases, trying aliases in the caller's priority order. Column names
// and aliases are compared case-insensitively after trimming. The second
// return is false when no alias matches a populated cell.
func (r Row) Resolve(aliases ...string) (string, bool) {
	if len(r.keys) == 0 {
		return "", false
	}
	for _, alias := range aliases {
		want := strings.ToLower(strings.TrimSpace(alias))
		for _, key := range r.keys {
			if strings.ToLower(strings.TrimSpace(key)) == want {
				return r.values[key], true
			}
		}
	}
	return "", false
}

// stringOr resolves a string field, applying the default when no alias
// matches or the matched value trims to empty.
func stringOr(r Row, def string, aliases ...string) string {
	v, ok := r.Resolve(aliases...)
	if !ok || strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

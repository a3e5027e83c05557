package tabular

import (
	"errors"
	"strings"
)

var ErrNoValidRows = errors.New("no data rows found")

// NormalizeHeader collapses header spelling variants to a single form:
// lowercased, trimmed, with spaces, underscores, hyphens and dots removed.
// "Report Date", "report_date" and "REPORTDATE" all normalize to "reportdate".
func NormalizeHeader(cell string) string {
	s := strings.ToLower(strings.TrimSpace(cell))
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '_', '-', '.':
			return -1
		}
		return r
	}, s)
}

// Column declares one recognized column of a record type.
type Column struct {
	// Key is the canonical name downstream coercion reads.
	Key string
	// Aliases are accepted normalized spellings beyond the key itself.
	Aliases []string
	// SecondaryKey, when non-empty, receives the value of a second header that
	// normalizes to this column. This is a deliberate legacy exception for
	// files carrying a duplicated column; it applies only where declared.
	SecondaryKey string
}

// Schema is the explicit alias table for one record type.
type Schema struct {
	Columns []Column
}

// Row is one data row mapped from canonical column key to raw cell value.
// Line is the 1-based line number in the source file (header is line 1).
type Row struct {
	Line  int
	Cells map[string]string
}

// Get returns the raw value for a canonical key, trimmed. Missing cells read
// as the empty string.
func (r Row) Get(key string) string {
	return strings.TrimSpace(r.Cells[key])
}

// Has reports whether the source file carried a column for the canonical key.
func (r Row) Has(key string) bool {
	_, ok := r.Cells[key]
	return ok
}

// canonicalFor resolves a normalized header to its canonical column, or nil.
func (s *Schema) canonicalFor(normalized string) *Column {
	for i := range s.Columns {
		c := &s.Columns[i]
		if NormalizeHeader(c.Key) == normalized {
			return c
		}
		for _, a := range c.Aliases {
			if NormalizeHeader(a) == normalized {
				return c
			}
		}
	}
	return nil
}

// HeaderMap is the resolved mapping from column index to canonical key,
// plus the headers the schema does not recognize.
type HeaderMap struct {
	keys    []string // canonical key per column index, "" = unmapped
	Ignored []string // normalized spellings of unrecognized headers
}

// MapHeader resolves a header row against the schema. When two headers
// normalize to the same canonical key, the first occurrence wins; the second
// feeds the column's declared SecondaryKey, or is ignored when none is
// declared.
func (s *Schema) MapHeader(header []string) *HeaderMap {
	hm := &HeaderMap{keys: make([]string, len(header))}
	seen := make(map[string]bool)

	for i, cell := range header {
		normalized := NormalizeHeader(cell)
		if normalized == "" {
			continue
		}
		col := s.canonicalFor(normalized)
		if col == nil {
			hm.keys[i] = normalized
			hm.Ignored = append(hm.Ignored, normalized)
			continue
		}
		if !seen[col.Key] {
			hm.keys[i] = col.Key
			seen[col.Key] = true
			continue
		}
		if col.SecondaryKey != "" && !seen[col.SecondaryKey] {
			hm.keys[i] = col.SecondaryKey
			seen[col.SecondaryKey] = true
		}
	}
	return hm
}

// MapRows turns a raw table (header row first) into canonical-keyed rows.
// Missing trailing cells are simply absent from the row's cell map. Returns
// ErrNoValidRows when the table has no data rows, and the header map so the
// caller can report ignored columns.
func (s *Schema) MapRows(table [][]string) ([]Row, *HeaderMap, error) {
	if len(table) == 0 {
		return nil, nil, ErrNoValidRows
	}
	hm := s.MapHeader(table[0])

	var rows []Row
	for i, record := range table[1:] {
		if isBlank(record) {
			continue
		}
		cells := make(map[string]string, len(hm.keys))
		for j, key := range hm.keys {
			if key == "" || j >= len(record) {
				continue
			}
			cells[key] = record[j]
		}
		rows = append(rows, Row{Line: i + 2, Cells: cells})
	}
	if len(rows) == 0 {
		return nil, hm, ErrNoValidRows
	}
	return rows, hm, nil
}

func isBlank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

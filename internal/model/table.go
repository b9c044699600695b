// Package model defines the core domain models used throughout the application.
package model

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"strings"
)

// Column is one resolved column of a raw sheet table. For two-level headers
// Category holds the top level (forward-filled across merged cells) and Label
// the leaf; single-header tables leave Category empty.
type Column struct {
	Category string
	Label    string
	Index    int
}

// FullLabel returns the display label for the column, joining both header
// levels when present.
func (c Column) FullLabel() string {
	if c.Category != "" && c.Label != "" {
		return c.Category + " / " + c.Label
	}
	if c.Label != "" {
		return c.Label
	}
	return c.Category
}

// Matches reports whether either header level equals the given name,
// ignoring case and surrounding whitespace.
func (c Column) Matches(name string) bool {
	return strings.EqualFold(strings.TrimSpace(c.Label), name) ||
		strings.EqualFold(strings.TrimSpace(c.Category), name)
}

// RawTable is an immutable tabular snapshot of one worksheet. The header
// shape (single row vs two-level) is resolved once at construction so
// downstream code never branches on it.
type RawTable struct {
	Sheet      string
	Columns    []Column
	Rows       [][]any
	MultiLevel bool
}

// NewSingleHeaderTable builds a RawTable from a single header row.
func NewSingleHeaderTable(sheet string, header []string, rows [][]any) *RawTable {
	columns := make([]Column, len(header))
	for i, label := range header {
		columns[i] = Column{Label: strings.TrimSpace(label), Index: i}
	}
	return &RawTable{Sheet: sheet, Columns: columns, Rows: rows}
}

// NewMultiHeaderTable builds a RawTable from a two-level header. Blank cells
// in the top level inherit the value to their left, matching how merged
// category cells come back from the sheets API.
func NewMultiHeaderTable(sheet string, top, sub []string, rows [][]any) *RawTable {
	width := len(top)
	if len(sub) > width {
		width = len(sub)
	}

	columns := make([]Column, width)
	category := ""
	for i := 0; i < width; i++ {
		if i < len(top) {
			if v := strings.TrimSpace(top[i]); v != "" {
				category = v
			}
		}
		label := ""
		if i < len(sub) {
			label = strings.TrimSpace(sub[i])
		}
		columns[i] = Column{Category: category, Label: label, Index: i}
	}
	return &RawTable{Sheet: sheet, Columns: columns, Rows: rows, MultiLevel: true}
}

// DateColumn locates the column identified as the date axis in either header
// level. Returns false when the table has no date axis.
func (t *RawTable) DateColumn() (Column, bool) {
	for _, col := range t.Columns {
		if col.Matches("Date") {
			return col, true
		}
	}
	return Column{}, false
}

// Cell returns the value of the given column in a row, or nil when the row
// is shorter than the header.
func (t *RawTable) Cell(row []any, col Column) any {
	if col.Index < 0 || col.Index >= len(row) {
		return nil
	}
	return row[col.Index]
}

// IsEmpty reports whether the table holds no data rows.
func (t *RawTable) IsEmpty() bool {
	return t == nil || len(t.Rows) == 0
}

// ContentHash returns a stable hash of the table's header and cell values,
// used for cache invalidation and refresh change detection.
func (t *RawTable) ContentHash() string {
	payload := struct {
		Sheet   string   `json:"sheet"`
		Columns []Column `json:"columns"`
		Rows    [][]any  `json:"rows"`
	}{t.Sheet, t.Columns, t.Rows}

	data, err := json.Marshal(payload)
	if err != nil {
		// Only unmarshalable cell types can get here; fall back to a
		// representation that still changes with the data.
		data = []byte(fmt.Sprintf("%v", payload))
	}
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash)
}

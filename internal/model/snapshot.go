package model

import (
	"fmt"
	"time"
)

// SheetSnapshot is a persisted copy of one fetched worksheet: the raw cell
// values plus the content hash used to detect changes on refresh.
type SheetSnapshot struct {
	FetchedAt   time.Time
	Sheet       string
	ContentHash string
	Values      [][]any
	HeaderRows  int
}

// Table reconstructs the RawTable from the stored values, splitting off the
// header rows. Returns nil when the snapshot has no header rows to
// interpret.
func (s *SheetSnapshot) Table() *RawTable {
	if s == nil || len(s.Values) < s.HeaderRows || s.HeaderRows < 1 {
		return nil
	}

	if s.HeaderRows == 2 {
		return NewMultiHeaderTable(s.Sheet, headerStrings(s.Values[0]), headerStrings(s.Values[1]), s.Values[2:])
	}
	return NewSingleHeaderTable(s.Sheet, headerStrings(s.Values[0]), s.Values[1:])
}

// headerStrings renders a header row as strings; non-string header cells
// are formatted with their default representation.
func headerStrings(row []any) []string {
	out := make([]string, len(row))
	for i, cell := range row {
		switch v := cell.(type) {
		case nil:
			out[i] = ""
		case string:
			out[i] = v
		default:
			out[i] = fmt.Sprintf("%v", v)
		}
	}
	return out
}

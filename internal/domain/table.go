package domain

import (
	"fmt"
	"path/filepath"
	"time"
)

// exportTimestampLayout gives second precision, e.g. 2024-04-26-151000.
const exportTimestampLayout = "2006-01-02-150405"

// StationTable accumulates export rows in insertion order. Rows are never
// modified once appended.
type StationTable struct {
	rows []StationRow
}

// NewStationTable returns an empty table. The header is implicit; sinks write
// TableHeader before the rows.
func NewStationTable() *StationTable {
	return &StationTable{}
}

// Append adds rows to the end of the table.
func (t *StationTable) Append(rows ...StationRow) {
	t.rows = append(t.rows, rows...)
}

// Rows returns the table's rows. Callers must not modify the returned slice.
func (t *StationTable) Rows() []StationRow {
	return t.rows
}

// Len returns the number of data rows, excluding the header.
func (t *StationTable) Len() int {
	return len(t.rows)
}

// ExportPath builds <dir>/<prefix>_<YYYY-MM-DD-HHMMSS>.<ext> for a run completed at at.
func ExportPath(dir, prefix, ext string, at time.Time) string {
	name := fmt.Sprintf("%s_%s.%s", prefix, at.Format(exportTimestampLayout), ext)
	return filepath.Join(dir, name)
}

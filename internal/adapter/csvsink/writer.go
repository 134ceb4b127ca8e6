// Package csvsink writes station tables as CSV files.
package csvsink

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/couchcryptid/noaa-station-export/internal/adapter/atomicfile"
	"github.com/couchcryptid/noaa-station-export/internal/domain"
)

// Writer implements pipeline.TableWriter for .csv files.
type Writer struct{}

// NewWriter creates a CSV table writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Extension returns the file extension, without the dot.
func (w *Writer) Extension() string {
	return "csv"
}

// WriteTable writes the header and every row to path. Dates are rendered as
// YYYY-MM-DD or their marker text.
func (w *Writer) WriteTable(path string, table *domain.StationTable) error {
	return atomicfile.Write(path, func(out io.Writer) error {
		cw := csv.NewWriter(out)
		if err := cw.Write(domain.TableHeader); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
		for i, row := range table.Rows() {
			if err := cw.Write(formatRow(row)); err != nil {
				return fmt.Errorf("write row %d: %w", i+2, err)
			}
		}
		cw.Flush()
		return cw.Error()
	})
}

func formatRow(row domain.StationRow) []string {
	return []string{
		row.StationID,
		row.Country,
		row.State,
		row.Name,
		formatScalar(row.Latitude),
		formatScalar(row.Longitude),
		row.Precision,
		row.BeginDate.String(),
		row.EndDate.String(),
	}
}

func formatScalar(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// Package xlsx writes station tables as single-sheet Excel workbooks.
package xlsx

import (
	"fmt"
	"io"
	"time"

	"github.com/couchcryptid/noaa-station-export/internal/adapter/atomicfile"
	"github.com/couchcryptid/noaa-station-export/internal/domain"
	"github.com/xuri/excelize/v2"
)

// SheetName is the name of the only sheet in the workbook.
const SheetName = "Stations"

const dateFormat = "yyyy-mm-dd"

// Excel serial dates cannot represent days before 1900, and the 1900 leap-year
// bug makes the first two months unreliable. Earlier dates are written as text.
var minSerialDate = time.Date(1900, time.March, 1, 0, 0, 0, 0, time.UTC)

// Writer implements pipeline.TableWriter for .xlsx files.
type Writer struct{}

// NewWriter creates an xlsx table writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Extension returns the file extension, without the dot.
func (w *Writer) Extension() string {
	return "xlsx"
}

// WriteTable writes the header and every row to path. Calendar dates become
// date cells; Present and Unknown stay as text.
func (w *Writer) WriteTable(path string, table *domain.StationTable) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	numFmt := dateFormat
	dateStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
	if err != nil {
		return fmt.Errorf("create date style: %w", err)
	}

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return fmt.Errorf("open stream writer: %w", err)
	}

	header := make([]any, len(domain.TableHeader))
	for i, h := range domain.TableHeader {
		header[i] = h
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, row := range table.Rows() {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, rowCells(row, dateStyle)); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush sheet: %w", err)
	}

	return atomicfile.Write(path, func(out io.Writer) error {
		if _, err := f.WriteTo(out); err != nil {
			return fmt.Errorf("save workbook: %w", err)
		}
		return nil
	})
}

func rowCells(row domain.StationRow, dateStyle int) []any {
	cells := row.Cells()
	for i, v := range cells {
		t, ok := v.(time.Time)
		if !ok {
			continue
		}
		if t.Before(minSerialDate) {
			cells[i] = t.Format(time.DateOnly)
			continue
		}
		cells[i] = excelize.Cell{StyleID: dateStyle, Value: t}
	}
	return cells
}

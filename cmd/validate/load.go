package main

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/couchcryptid/noaa-station-export/internal/adapter/xlsx"
	"github.com/xuri/excelize/v2"
)

// loadWorkbook returns the formatted cell text of the station sheet. Date cells
// come back rendered with their yyyy-mm-dd number format.
func loadWorkbook(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := f.GetRows(xlsx.SheetName)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", xlsx.SheetName, err)
	}
	return rows, nil
}

func loadCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	return r.ReadAll()
}

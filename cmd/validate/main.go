// Command validate re-opens an exported station table and checks its integrity:
// the header, row width, identity columns, and date columns.
//
// Usage:
//
//	go run ./cmd/validate -file noaa_weather_stations_2024-04-27-060000.xlsx
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	file := flag.String("file", "", "path to an exported .xlsx or .csv station table")
	flag.Parse()

	if *file == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*file); code != 0 {
		os.Exit(code)
	}
}

func run(path string) int {
	fmt.Println("=== Station Export Validation ===")
	fmt.Println()

	rows, err := loadRows(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load %s: %v\n", path, err)
		return 1
	}
	if len(rows) == 0 {
		fmt.Fprintf(os.Stderr, "FATAL: %s is empty\n", path)
		return 1
	}

	header, data := rows[0], rows[1:]
	phases := []*phase{
		validateHeader(header),
		validateRowWidth(data),
		validateIdentity(data),
		validateDates(data),
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-32s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Rows: %d stations in %s\n", len(data), filepath.Base(path))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func loadRows(path string) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return loadWorkbook(path)
	case ".csv":
		return loadCSV(path)
	default:
		return nil, fmt.Errorf("unsupported file type %q", filepath.Ext(path))
	}
}

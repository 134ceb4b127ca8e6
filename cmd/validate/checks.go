package main

import (
	"regexp"
	"slices"

	"github.com/couchcryptid/noaa-station-export/internal/domain"
)

const (
	colStationID = 0
	colCountry   = 1
	colState     = 2
	colBeginDate = 7
	colEndDate   = 8
)

var isoDate = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

func validateHeader(header []string) *phase {
	p := &phase{name: "Header"}
	if !slices.Equal(header, domain.TableHeader) {
		p.errorf("header = %q, want %q", header, domain.TableHeader)
	}
	return p
}

// validateRowWidth checks that every data row carries the full column set.
// Spreadsheet readers drop trailing empty cells, but End Date is never empty.
func validateRowWidth(rows [][]string) *phase {
	p := &phase{name: "Row width"}
	for i, row := range rows {
		if len(row) != len(domain.TableHeader) {
			p.errorf("row %d: %d cells, want %d", i+2, len(row), len(domain.TableHeader))
		}
	}
	return p
}

func validateIdentity(rows [][]string) *phase {
	p := &phase{name: "Station identity"}
	for i, row := range rows {
		line := i + 2
		if len(row) <= colState {
			continue
		}
		if row[colStationID] == "" {
			p.errorf("row %d: empty station id", line)
		}
		country, state := row[colCountry], row[colState]
		switch {
		case country == "":
			p.errorf("row %d: empty country", line)
		case country == domain.USACountry && state == "":
			p.errorf("row %d: USA station %s has no state", line, row[colStationID])
		case country != domain.USACountry && state != "":
			p.errorf("row %d: %s station %s has state %q", line, country, row[colStationID], state)
		}
	}
	return p
}

func validateDates(rows [][]string) *phase {
	p := &phase{name: "Period of record dates"}
	for i, row := range rows {
		for _, col := range []int{colBeginDate, colEndDate} {
			if col >= len(row) {
				continue
			}
			if v := row[col]; !validDate(v) {
				p.errorf("row %d: %s = %q", i+2, domain.TableHeader[col], v)
			}
		}
	}
	return p
}

func validDate(v string) bool {
	return v == domain.PresentMarker || v == domain.UnknownMarker || isoDate.MatchString(v)
}

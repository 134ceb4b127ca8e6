package domain

import (
	"errors"
	"time"
)

var (
	// ErrMissingStationID is returned when a raw record has no ncdcStnId.
	ErrMissingStationID = errors.New("station record has no ncdcStnId")

	// ErrUpstreamUnavailable marks fetch failures that say nothing about the
	// region's contents: transport errors and non-200 responses.
	ErrUpstreamUnavailable = errors.New("station registry unavailable")

	// ErrMalformedResponse marks a 200 response whose body is not a station collection.
	ErrMalformedResponse = errors.New("malformed station registry response")
)

// RawStation is one undecoded entry of stationCollection.stations. Numbers are
// held as json.Number.
type RawStation map[string]any

// StationRow is the fixed nine-column export row for one station.
type StationRow struct {
	StationID string
	Country   string
	State     string
	Name      string
	Latitude  any // float64, or a string when the source value is missing or not numeric
	Longitude any
	Precision string
	BeginDate DateValue
	EndDate   DateValue
}

// TableHeader is the export header row, in column order.
var TableHeader = []string{
	"StnID",
	"Country",
	"State",
	"Name",
	"Latitude",
	"Longitude",
	"Precision",
	"Begin Date",
	"End Date",
}

// Cells returns the row as nine spreadsheet values in TableHeader order.
func (r StationRow) Cells() []any {
	return []any{
		r.StationID,
		r.Country,
		r.State,
		r.Name,
		r.Latitude,
		r.Longitude,
		r.Precision,
		r.BeginDate.Cell(),
		r.EndDate.Cell(),
	}
}

// RunSummary describes a completed or aborted export run.
type RunSummary struct {
	RunID              string
	StatesProcessed    int
	CountriesProcessed int
	Rows               int
	FailedRegions      []Region
	OutputPath         string
	CompletedAt        time.Time
}

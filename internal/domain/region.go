package domain

import (
	"errors"
	"fmt"
)

// USACountry is the country label attached to every row produced by a state query.
const USACountry = "USA"

// ErrInvalidFilter is returned when a RegionFilter sets both or neither of state and country.
var ErrInvalidFilter = errors.New("region filter must set exactly one of state or country")

// RegionKind distinguishes the two catalog label spaces.
type RegionKind string

const (
	RegionState   RegionKind = "state"
	RegionCountry RegionKind = "country"
)

// Region is a single catalog entry: a US state code or a HOMR country name.
type Region struct {
	Kind RegionKind
	Code string
}

// Filter returns the query filter selecting this region's stations.
func (r Region) Filter() RegionFilter {
	if r.Kind == RegionState {
		return RegionFilter{State: r.Code}
	}
	return RegionFilter{Country: r.Code}
}

// RowContext returns the country and state columns for rows fetched from this region.
// States are always reported under USA; countries carry an empty state.
func (r Region) RowContext() (country, state string) {
	if r.Kind == RegionState {
		return USACountry, r.Code
	}
	return r.Code, ""
}

func (r Region) String() string {
	return fmt.Sprintf("%s:%s", r.Kind, r.Code)
}

// RegionFilter selects the stations of one region in a HOMR search.
type RegionFilter struct {
	State   string
	Country string
}

// Validate reports ErrInvalidFilter unless exactly one field is set.
func (f RegionFilter) Validate() error {
	if (f.State == "") == (f.Country == "") {
		return ErrInvalidFilter
	}
	return nil
}

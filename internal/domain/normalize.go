package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// decimalRe accepts plain decimal literals only. ParseFloat alone would also
// take "NaN", "Inf" and hex floats.
var decimalRe = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// Normalize maps one raw HOMR record onto a StationRow. Country and state are
// taken from the region being iterated, not from the record. Every field except
// ncdcStnId defaults to empty when absent at any nesting level.
func Normalize(record RawStation, country, state string) (StationRow, error) {
	id, ok := record["ncdcStnId"]
	if !ok {
		return StationRow{}, ErrMissingStationID
	}

	header := object(record, "header")
	por := object(header, "por")

	return StationRow{
		StationID: text(id),
		Country:   country,
		State:     state,
		Name:      text(header["preferredName"]),
		Latitude:  coordinate(header["latitude_dec"]),
		Longitude: coordinate(header["longitude_dec"]),
		Precision: text(header["precision"]),
		BeginDate: ParseDate(dateString(por["beginDate"])),
		EndDate:   ParseDate(dateString(por["endDate"])),
	}, nil
}

// object returns the nested object under key, or nil when it is missing or not an object.
// Indexing a nil map is safe, so callers can chain lookups.
func object(m map[string]any, key string) map[string]any {
	switch v := m[key].(type) {
	case map[string]any:
		return v
	case RawStation:
		return v
	default:
		return nil
	}
}

// text renders a scalar as a string. Missing values and nested structures become "".
func text(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case map[string]any, []any:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// coordinate returns a finite float64 for numeric values and decimal strings,
// "" when missing, and the original text otherwise.
func coordinate(v any) any {
	switch v := v.(type) {
	case json.Number:
		if f, err := v.Float64(); err == nil && finite(f) {
			return f
		}
		return v.String()
	case float64:
		if finite(v) {
			return v
		}
		return text(v)
	case string:
		s := strings.TrimSpace(v)
		if !decimalRe.MatchString(s) {
			return v
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil && finite(f) {
			return f
		}
		return v
	default:
		return text(v)
	}
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// dateString returns v when it is a string; anything else counts as missing.
func dateString(v any) string {
	s, _ := v.(string)
	return s
}

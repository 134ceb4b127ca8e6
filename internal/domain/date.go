package domain

import (
	"regexp"
	"time"
)

const (
	PresentMarker = "Present"
	UnknownMarker = "Unknown"

	dateLayout = "2006-01-02"
)

// datePrefixRe matches the date portion of an ISO-8601 timestamp. The trailing
// T is required; a bare date does not match.
var datePrefixRe = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})T`)

// DateKind tags the three shapes a normalized date can take.
type DateKind int

const (
	DateUnknown DateKind = iota
	DatePresent
	DateCalendar
)

// DateValue is a normalized period-of-record date.
type DateValue struct {
	Kind DateKind
	Date time.Time // midnight UTC; set only for DateCalendar
}

// CalendarDate returns a DateCalendar value for the given day.
func CalendarDate(year int, month time.Month, day int) DateValue {
	return DateValue{Kind: DateCalendar, Date: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// String renders the value as YYYY-MM-DD, "Present" or "Unknown".
func (d DateValue) String() string {
	switch d.Kind {
	case DateCalendar:
		return d.Date.Format(dateLayout)
	case DatePresent:
		return PresentMarker
	default:
		return UnknownMarker
	}
}

// Cell returns the spreadsheet value: a time.Time for calendar dates, the marker string otherwise.
func (d DateValue) Cell() any {
	if d.Kind == DateCalendar {
		return d.Date
	}
	return d.String()
}

// ParseDate normalizes a HOMR period-of-record date.
//
//   - "Present" is kept as the Present marker.
//   - "YYYY-MM-DDT..." yields the calendar date.
//   - Everything else, including a prefix that is not a real calendar day, is Unknown.
func ParseDate(raw string) DateValue {
	if raw == PresentMarker {
		return DateValue{Kind: DatePresent}
	}
	m := datePrefixRe.FindStringSubmatch(raw)
	if m == nil {
		return DateValue{Kind: DateUnknown}
	}
	t, err := time.Parse(dateLayout, m[1])
	if err != nil {
		return DateValue{Kind: DateUnknown}
	}
	return DateValue{Kind: DateCalendar, Date: t}
}

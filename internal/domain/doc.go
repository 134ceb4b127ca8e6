// Package domain models NOAA HOMR (Historical Observing Metadata Repository)
// station metadata and its normalization into a fixed export row.
//
// # Data Source
//
// Station metadata comes from the HOMR station search service at
// https://www.ncdc.noaa.gov/homr/services/station/search. The service is
// queried once per region with either a state or a country filter and
// headersOnly=true, which returns one summary header per station instead of
// the full observing history.
//
// # Response Shape
//
// Stations are nested under stationCollection.stations. Each entry is a loose
// JSON object; any key below the top level may be missing:
//
//	{
//	  "ncdcStnId": "20000001",
//	  "header": {
//	    "preferredName": "ANCHORAGE INTL AP",
//	    "latitude_dec": "61.16917",
//	    "longitude_dec": "-150.02778",
//	    "precision": "DDMMSS",
//	    "por": {"beginDate": "1952-01-01T00:00:00.000", "endDate": "Present"}
//	  }
//	}
//
// ncdcStnId is the only field without a default; a record missing it is
// rejected by [Normalize]. Every other field defaults to an empty cell.
//
// # Period of Record Dates
//
// beginDate and endDate are ISO-8601 timestamps or the literal "Present" for
// stations that are still active. Only the date portion of a timestamp is
// kept, and only when it is immediately followed by "T". Anything else,
// including a bare "1950-01-01", becomes "Unknown". See [ParseDate].
//
// # Coordinates
//
// latitude_dec and longitude_dec arrive either as JSON numbers or as decimal
// strings. Both are exported as numbers; a non-numeric string is kept as text.
package domain

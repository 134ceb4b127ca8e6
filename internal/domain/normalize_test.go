package domain

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const anchorageJSON = `{
	"ncdcStnId": "123",
	"header": {
		"preferredName": "Anchorage",
		"latitude_dec": 61.2,
		"longitude_dec": -149.9,
		"precision": "exact",
		"por": {"beginDate": "1950-01-01T00:00:00", "endDate": "Present"}
	}
}`

func decodeStation(t *testing.T, data string) RawStation {
	t.Helper()
	dec := json.NewDecoder(bytes.NewBufferString(data))
	dec.UseNumber()
	var rec RawStation
	require.NoError(t, dec.Decode(&rec))
	return rec
}

func TestNormalize_FullRecord(t *testing.T) {
	row, err := Normalize(decodeStation(t, anchorageJSON), USACountry, "AK")
	require.NoError(t, err)

	want := []any{"123", "USA", "AK", "Anchorage", 61.2, -149.9, "exact", time.Date(1950, time.January, 1, 0, 0, 0, 0, time.UTC), "Present"}
	if diff := cmp.Diff(want, row.Cells()); diff != "" {
		t.Fatalf("row mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalize_HeaderAbsent(t *testing.T) {
	row, err := Normalize(decodeStation(t, `{"ncdcStnId": "456"}`), "CANADA", "")
	require.NoError(t, err)

	assert.Equal(t, "456", row.StationID)
	assert.Equal(t, "CANADA", row.Country)
	assert.Empty(t, row.State)
	assert.Empty(t, row.Name)
	assert.Equal(t, "", row.Latitude)
	assert.Equal(t, "", row.Longitude)
	assert.Empty(t, row.Precision)
	assert.Equal(t, DateUnknown, row.BeginDate.Kind)
	assert.Equal(t, DateUnknown, row.EndDate.Kind)
	assert.Len(t, row.Cells(), len(TableHeader))
}

func TestNormalize_MissingOptionalFields(t *testing.T) {
	fields := []string{"preferredName", "latitude_dec", "longitude_dec", "precision", "por"}

	for _, field := range fields {
		t.Run(field, func(t *testing.T) {
			rec := decodeStation(t, anchorageJSON)
			delete(rec["header"].(map[string]any), field)

			row, err := Normalize(rec, USACountry, "AK")
			require.NoError(t, err)
			assert.Len(t, row.Cells(), 9)

			switch field {
			case "preferredName":
				assert.Empty(t, row.Name)
			case "latitude_dec":
				assert.Equal(t, "", row.Latitude)
				assert.Equal(t, -149.9, row.Longitude)
			case "longitude_dec":
				assert.Equal(t, "", row.Longitude)
			case "precision":
				assert.Empty(t, row.Precision)
			case "por":
				assert.Equal(t, DateUnknown, row.BeginDate.Kind)
				assert.Equal(t, DateUnknown, row.EndDate.Kind)
			}
		})
	}
}

func TestNormalize_MissingStationID(t *testing.T) {
	_, err := Normalize(decodeStation(t, `{"header": {"preferredName": "Nowhere"}}`), USACountry, "AK")
	require.ErrorIs(t, err, ErrMissingStationID)
}

func TestNormalize_NumericStationID(t *testing.T) {
	row, err := Normalize(decodeStation(t, `{"ncdcStnId": 20000001}`), USACountry, "AK")
	require.NoError(t, err)
	assert.Equal(t, "20000001", row.StationID)
}

func TestNormalize_StringCoordinates(t *testing.T) {
	rec := decodeStation(t, `{"ncdcStnId": "1", "header": {"latitude_dec": "61.16917", "longitude_dec": "n/a"}}`)
	row, err := Normalize(rec, USACountry, "AK")
	require.NoError(t, err)
	assert.Equal(t, 61.16917, row.Latitude)
	assert.Equal(t, "n/a", row.Longitude)
}

func TestNormalize_NonFiniteCoordinateString(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"nan", "NaN"},
		{"infinity", "Infinity"},
		{"signed inf", "-Inf"},
		{"hex float", "0x1p-2"},
		{"overflow", "1e400"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := RawStation{"ncdcStnId": "1", "header": map[string]any{"latitude_dec": tt.raw}}
			row, err := Normalize(rec, USACountry, "AK")
			require.NoError(t, err)
			assert.Equal(t, tt.raw, row.Latitude)

			_, err = json.Marshal(row.Latitude)
			assert.NoError(t, err)
		})
	}
}

func TestNormalize_DecimalCoordinateForms(t *testing.T) {
	rec := decodeStation(t, `{"ncdcStnId": "1", "header": {"latitude_dec": " -.5 ", "longitude_dec": "1.5e2"}}`)
	row, err := Normalize(rec, USACountry, "AK")
	require.NoError(t, err)
	assert.Equal(t, -0.5, row.Latitude)
	assert.Equal(t, 150.0, row.Longitude)
}

func TestNormalize_NonObjectHeader(t *testing.T) {
	rec := decodeStation(t, `{"ncdcStnId": "1", "header": "unexpected"}`)
	row, err := Normalize(rec, USACountry, "TX")
	require.NoError(t, err)
	assert.Empty(t, row.Name)
	assert.Equal(t, DateUnknown, row.BeginDate.Kind)
}

func TestNormalize_NonStringDate(t *testing.T) {
	rec := decodeStation(t, `{"ncdcStnId": "1", "header": {"por": {"beginDate": 19500101, "endDate": null}}}`)
	row, err := Normalize(rec, USACountry, "TX")
	require.NoError(t, err)
	assert.Equal(t, DateUnknown, row.BeginDate.Kind)
	assert.Equal(t, DateUnknown, row.EndDate.Kind)
}

func TestNormalize_CountryStatePassThrough(t *testing.T) {
	rec := decodeStation(t, `{"ncdcStnId": "1", "country": "MEXICO", "state": "ZZ"}`)
	row, err := Normalize(rec, "JAPAN", "")
	require.NoError(t, err)
	assert.Equal(t, "JAPAN", row.Country)
	assert.Empty(t, row.State)
}

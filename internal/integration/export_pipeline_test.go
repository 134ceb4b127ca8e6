//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/couchcryptid/noaa-station-export/internal/adapter/homr"
	"github.com/couchcryptid/noaa-station-export/internal/adapter/kafka"
	"github.com/couchcryptid/noaa-station-export/internal/adapter/xlsx"
	"github.com/couchcryptid/noaa-station-export/internal/catalog"
	"github.com/couchcryptid/noaa-station-export/internal/config"
	"github.com/couchcryptid/noaa-station-export/internal/domain"
	"github.com/couchcryptid/noaa-station-export/internal/observability"
	"github.com/couchcryptid/noaa-station-export/internal/pipeline"
	"github.com/jonboulle/clockwork"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const testTopic = "test-stations"

// homrResponses maps a region query value to the body served for it.
var homrResponses = map[string]string{
	"AK": `{"stationCollection":{"stations":[
		{"ncdcStnId":"20000001","header":{"preferredName":"ANCHORAGE INTL AP","latitude_dec":"61.1689","longitude_dec":"-150.0278","precision":"DDMMSS","por":{"beginDate":"1952-01-01T00:00:00.000","endDate":"Present"}}},
		{"ncdcStnId":"20000002","header":{"preferredName":"BARROW","por":{"beginDate":"ND"}}}
	]}}`,
	"AL": `{"stationCollection":{"stations":[]}}`,
	"CANADA": `{"stationCollection":{"stations":[
		{"ncdcStnId":"30000001","header":{"preferredName":"TORONTO","latitude_dec":43.67,"longitude_dec":-79.63}}
	]}}`,
}

type publishedStation struct {
	RunID     string `json:"run_id"`
	StationID string `json:"station_id"`
	Country   string `json:"country"`
	State     string `json:"state"`
	BeginDate string `json:"begin_date"`
	EndDate   string `json:"end_date"`
}

func newHOMRServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		key := q.Get("state")
		if key == "" {
			key = q.Get("country")
		}
		body, ok := homrResponses[key]
		if !ok {
			http.Error(w, "unknown region", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

// TestExportPipelineEndToEnd runs a full export against a fake registry, then
// verifies both the workbook on disk and the stations published to Kafka.
func TestExportPipelineEndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	domain.SetClock(clockwork.NewFakeClockAt(time.Date(2024, time.April, 27, 6, 0, 0, 0, time.Local)))
	t.Cleanup(func() { domain.SetClock(nil) })

	broker := startKafka(ctx, t)
	createTopic(t, broker, testTopic)

	regions, err := catalog.Parse([]byte("states: [AK, AL]\ncountries: [CANADA, ATLANTIS]\n"))
	require.NoError(t, err)

	metrics := observability.NewMetricsForTesting()
	logger := discardLogger()
	cfg := &config.Config{KafkaBrokers: []string{broker}, KafkaTopic: testTopic}

	publisher := kafka.NewWriter(cfg, metrics, logger)
	t.Cleanup(func() { _ = publisher.Close() })

	outDir := t.TempDir()
	p := pipeline.New(regions,
		homr.NewClient(newHOMRServer(t).URL, 10*time.Second, metrics, logger),
		xlsx.NewWriter(),
		publisher,
		pipeline.Options{
			HeadersOnly:   true,
			OutputDir:     outDir,
			OutputPrefix:  "noaa_weather_stations",
			FailurePolicy: pipeline.SkipFailedRegions,
		},
		logger, metrics,
	)

	summary, err := p.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Rows)
	assert.Equal(t, 2, summary.StatesProcessed)
	assert.Equal(t, 2, summary.CountriesProcessed)
	require.Len(t, summary.FailedRegions, 1)
	assert.Equal(t, "ATLANTIS", summary.FailedRegions[0].Code)
	assert.Equal(t, filepath.Join(outDir, "noaa_weather_stations_2024-04-27-060000.xlsx"), summary.OutputPath)

	// Workbook on disk.
	f, err := excelize.OpenFile(summary.OutputPath)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(xlsx.SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, domain.TableHeader, rows[0])
	assert.Equal(t, []string{"20000001", "USA", "AK", "ANCHORAGE INTL AP", "61.1689", "-150.0278", "DDMMSS", "1952-01-01", "Present"}, rows[1])
	assert.Equal(t, []string{"20000002", "USA", "AK", "BARROW", "", "", "", "Unknown", "Unknown"}, rows[2])
	assert.Equal(t, []string{"30000001", "CANADA", "", "TORONTO", "43.67", "-79.63", "", "Unknown", "Unknown"}, rows[3])

	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files left behind")

	// Published stations, in table order.
	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  []string{broker},
		Topic:    testTopic,
		MaxWait:  500 * time.Millisecond,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	wantIDs := []string{"20000001", "20000002", "30000001"}
	for i, id := range wantIDs {
		readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
		msg, err := consumer.ReadMessage(readCtx)
		readCancel()
		require.NoError(t, err, "read message %d", i)

		assert.Equal(t, id, string(msg.Key))

		var got publishedStation
		require.NoError(t, json.Unmarshal(msg.Value, &got))
		assert.Equal(t, summary.RunID, got.RunID)
		assert.Equal(t, id, got.StationID)

		headers := make(map[string]string, len(msg.Headers))
		for _, h := range msg.Headers {
			headers[h.Key] = string(h.Value)
		}
		assert.Equal(t, summary.RunID, headers["run_id"])
		assert.Equal(t, got.Country, headers["country"])
		assert.Equal(t, got.State, headers["state"])
	}
}

// TestExportPipelineAbortWritesNothing verifies that an unavailable region under
// the abort policy leaves the output directory empty and publishes nothing.
func TestExportPipelineAbortWritesNothing(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	regions, err := catalog.Parse([]byte("states: [AK, ZZ]\ncountries: [CANADA]\n"))
	require.NoError(t, err)

	metrics := observability.NewMetricsForTesting()
	logger := discardLogger()
	outDir := t.TempDir()

	p := pipeline.New(regions,
		homr.NewClient(newHOMRServer(t).URL, 10*time.Second, metrics, logger),
		xlsx.NewWriter(),
		nil,
		pipeline.Options{
			HeadersOnly:   true,
			OutputDir:     outDir,
			OutputPrefix:  "noaa_weather_stations",
			FailurePolicy: pipeline.AbortOnFailedRegion,
		},
		logger, metrics,
	)

	_, err = p.Run(ctx)
	require.ErrorIs(t, err, domain.ErrUpstreamUnavailable)

	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

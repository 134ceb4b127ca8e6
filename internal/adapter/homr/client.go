// Package homr queries the NOAA HOMR station search service.
package homr

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/noaa-station-export/internal/domain"
	"github.com/couchcryptid/noaa-station-export/internal/observability"
)

const userAgent = "noaa-station-export/1.0"

// maxErrorBody bounds how much of a non-200 body is kept in a StatusError.
const maxErrorBody = 512

// StatusError reports a non-200 response. It unwraps to domain.ErrUpstreamUnavailable.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("station search: status %d: %s", e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error {
	return domain.ErrUpstreamUnavailable
}

// Client fetches raw station records, one region per request.
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a HOMR station search client.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		metrics: metrics,
		logger:  logger,
	}
}

// FetchStations issues a single search for one region and returns its station
// records in response order. Transport failures and non-200 responses wrap
// domain.ErrUpstreamUnavailable; a 200 body without stationCollection.stations
// wraps domain.ErrMalformedResponse.
func (c *Client) FetchStations(ctx context.Context, filter domain.RegionFilter, headersOnly bool) ([]domain.RawStation, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	params := url.Values{"headersOnly": {strconv.FormatBool(headersOnly)}}
	if filter.State != "" {
		params.Set("state", filter.State)
	} else {
		params.Set("country", filter.Country)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.FetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.FetchRequests.WithLabelValues("transport_error").Inc()
		return nil, fmt.Errorf("station search request: %w: %w", domain.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.metrics.FetchRequests.WithLabelValues("status_error").Inc()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	stations, err := decodeStations(resp.Body)
	if err != nil {
		c.metrics.FetchRequests.WithLabelValues("malformed").Inc()
		return nil, err
	}

	c.metrics.FetchRequests.WithLabelValues("success").Inc()
	c.metrics.FetchStations.Observe(float64(len(stations)))
	c.logger.Debug("station search complete",
		"state", filter.State,
		"country", filter.Country,
		"stations", len(stations),
	)
	return stations, nil
}

func decodeStations(r io.Reader) ([]domain.RawStation, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var body response
	if err := dec.Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decode: %w", domain.ErrMalformedResponse, err)
	}
	if body.StationCollection == nil || body.StationCollection.Stations == nil {
		return nil, fmt.Errorf("%w: missing stationCollection.stations", domain.ErrMalformedResponse)
	}
	return *body.StationCollection.Stations, nil
}

// HOMR search response types.

type response struct {
	StationCollection *stationCollection `json:"stationCollection"`
}

type stationCollection struct {
	Stations *[]domain.RawStation `json:"stations"`
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Fetch failure policies for regions whose query fails at the transport or HTTP status level.
const (
	FailurePolicySkip  = "skip"
	FailurePolicyAbort = "abort"
)

// Output formats.
const (
	FormatXLSX = "xlsx"
	FormatCSV  = "csv"
)

// regionListSeparator splits REGION_STATES and REGION_COUNTRIES. Commas occur
// inside HOMR country names ("KOREA, SOUTH"), so they cannot be used.
const regionListSeparator = ";"

// Config holds all export settings, populated from environment variables.
type Config struct {
	HOMRBaseURL string
	HOMRTimeout time.Duration
	HeadersOnly bool

	RegionsFile     string
	RegionStates    []string
	RegionCountries []string

	FetchFailurePolicy string

	OutputDir    string
	OutputPrefix string
	OutputFormat string

	// Optional Kafka publishing of the finished table.
	KafkaBrokers []string
	KafkaTopic   string
	KafkaEnabled bool

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	homrTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("HOMR_TIMEOUT", "60s"))
	if err != nil || homrTimeout <= 0 {
		return nil, errors.New("invalid HOMR_TIMEOUT")
	}

	headersOnly, err := strconv.ParseBool(sharedcfg.EnvOrDefault("HOMR_HEADERS_ONLY", "true"))
	if err != nil {
		return nil, errors.New("invalid HOMR_HEADERS_ONLY")
	}

	var brokers []string
	if raw := os.Getenv("KAFKA_BROKERS"); strings.TrimSpace(raw) != "" {
		brokers = sharedcfg.ParseBrokers(raw)
	}

	cfg := &Config{
		HOMRBaseURL:        sharedcfg.EnvOrDefault("HOMR_BASE_URL", "https://www.ncdc.noaa.gov/homr/services/station/search"),
		HOMRTimeout:        homrTimeout,
		HeadersOnly:        headersOnly,
		RegionsFile:        os.Getenv("REGIONS_FILE"),
		RegionStates:       splitList(os.Getenv("REGION_STATES")),
		RegionCountries:    splitList(os.Getenv("REGION_COUNTRIES")),
		FetchFailurePolicy: strings.ToLower(sharedcfg.EnvOrDefault("FETCH_FAILURE_POLICY", FailurePolicySkip)),
		OutputDir:          sharedcfg.EnvOrDefault("OUTPUT_DIR", "."),
		OutputPrefix:       sharedcfg.EnvOrDefault("OUTPUT_PREFIX", "noaa_weather_stations"),
		OutputFormat:       strings.ToLower(sharedcfg.EnvOrDefault("OUTPUT_FORMAT", FormatXLSX)),
		KafkaBrokers:       brokers,
		KafkaTopic:         sharedcfg.EnvOrDefault("KAFKA_TOPIC", "noaa-weather-stations"),
		KafkaEnabled:       len(brokers) > 0,
		HTTPAddr:           os.Getenv("HTTP_ADDR"),
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
	}

	if cfg.HOMRBaseURL == "" {
		return nil, errors.New("HOMR_BASE_URL is required")
	}
	switch cfg.FetchFailurePolicy {
	case FailurePolicySkip, FailurePolicyAbort:
	default:
		return nil, fmt.Errorf("FETCH_FAILURE_POLICY must be %q or %q", FailurePolicySkip, FailurePolicyAbort)
	}
	switch cfg.OutputFormat {
	case FormatXLSX, FormatCSV:
	default:
		return nil, fmt.Errorf("OUTPUT_FORMAT must be %q or %q", FormatXLSX, FormatCSV)
	}
	if cfg.OutputPrefix == "" {
		return nil, errors.New("OUTPUT_PREFIX is required")
	}
	if cfg.KafkaEnabled && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, regionListSeparator) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

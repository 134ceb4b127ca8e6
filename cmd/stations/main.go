// Command stations exports the NOAA HOMR weather-station catalog, one region at
// a time, into a single timestamped spreadsheet.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/noaa-station-export/internal/adapter/csvsink"
	"github.com/couchcryptid/noaa-station-export/internal/adapter/homr"
	httpadapter "github.com/couchcryptid/noaa-station-export/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/noaa-station-export/internal/adapter/kafka"
	"github.com/couchcryptid/noaa-station-export/internal/adapter/xlsx"
	"github.com/couchcryptid/noaa-station-export/internal/catalog"
	"github.com/couchcryptid/noaa-station-export/internal/config"
	"github.com/couchcryptid/noaa-station-export/internal/observability"
	"github.com/couchcryptid/noaa-station-export/internal/pipeline"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err := run(cfg, logger); err != nil {
		logger.Error("export failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	metrics := observability.NewMetrics()

	regions, err := catalog.Load(cfg.RegionsFile)
	if err != nil {
		return err
	}
	regions, err = regions.Subset(cfg.RegionStates, cfg.RegionCountries)
	if err != nil {
		return err
	}

	fetcher := homr.NewClient(cfg.HOMRBaseURL, cfg.HOMRTimeout, metrics, logger)

	var writer pipeline.TableWriter = xlsx.NewWriter()
	if cfg.OutputFormat == config.FormatCSV {
		writer = csvsink.NewWriter()
	}

	// Left as a nil interface when Kafka is disabled.
	var publisher pipeline.TablePublisher
	var kafkaWriter *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		kafkaWriter = kafkaadapter.NewWriter(cfg, metrics, logger)
		publisher = kafkaWriter
		logger.Info("kafka publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	p := pipeline.New(regions, fetcher, writer, publisher, pipeline.Options{
		HeadersOnly:   cfg.HeadersOnly,
		OutputDir:     cfg.OutputDir,
		OutputPrefix:  cfg.OutputPrefix,
		FailurePolicy: pipeline.FailurePolicy(cfg.FetchFailurePolicy),
	}, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var srv *httpadapter.Server
	if cfg.HTTPAddr != "" {
		srv = httpadapter.NewServer(cfg.HTTPAddr, p, logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server error", "error", err)
			}
		}()
	}

	summary, runErr := p.Run(ctx)
	if runErr == nil {
		logger.Info("export complete",
			"run_id", summary.RunID,
			"path", summary.OutputPath,
			"rows", summary.Rows,
			"states", summary.StatesProcessed,
			"countries", summary.CountriesProcessed,
			"failed_regions", len(summary.FailedRegions),
		)
		for _, r := range summary.FailedRegions {
			logger.Warn("region contributed no rows", "region", r.String())
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if srv != nil {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", "error", err)
		}
	}
	if kafkaWriter != nil {
		if err := kafkaWriter.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
	return runErr
}

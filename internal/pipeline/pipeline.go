package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/couchcryptid/noaa-station-export/internal/catalog"
	"github.com/couchcryptid/noaa-station-export/internal/domain"
	"github.com/couchcryptid/noaa-station-export/internal/observability"
	"github.com/google/uuid"
)

// StationFetcher returns the raw station records of one region.
type StationFetcher interface {
	FetchStations(ctx context.Context, filter domain.RegionFilter, headersOnly bool) ([]domain.RawStation, error)
}

// TableWriter persists a finished table to a file.
type TableWriter interface {
	Extension() string
	WriteTable(path string, table *domain.StationTable) error
}

// TablePublisher forwards a finished table to a downstream system.
type TablePublisher interface {
	PublishTable(ctx context.Context, runID string, table *domain.StationTable) error
}

// FailurePolicy decides what an unavailable region does to the run.
type FailurePolicy string

const (
	// SkipFailedRegions records the region as failed and continues with zero rows for it.
	SkipFailedRegions FailurePolicy = "skip"
	// AbortOnFailedRegion stops the run without writing any output.
	AbortOnFailedRegion FailurePolicy = "abort"
)

// Options tunes a Pipeline run.
type Options struct {
	HeadersOnly   bool
	OutputDir     string
	OutputPrefix  string
	FailurePolicy FailurePolicy
}

// Progress is a point-in-time view of a running export.
type Progress struct {
	RunID         string `json:"run_id"`
	RegionsTotal  int    `json:"regions_total"`
	RegionsDone   int    `json:"regions_done"`
	RegionsFailed int    `json:"regions_failed"`
	Rows          int    `json:"rows"`
	CurrentRegion string `json:"current_region,omitempty"`
	Completed     bool   `json:"completed"`
	OutputPath    string `json:"output_path,omitempty"`
}

// Pipeline drives the fetch-normalize-aggregate loop over the region catalog
// and writes the table once at the end.
type Pipeline struct {
	catalog   *catalog.Catalog
	fetcher   StationFetcher
	writer    TableWriter
	publisher TablePublisher
	opts      Options
	logger    *slog.Logger
	metrics   *observability.Metrics
	ready     atomic.Bool
	progress  atomic.Pointer[Progress]
}

// New creates a Pipeline. publisher may be nil.
func New(c *catalog.Catalog, f StationFetcher, w TableWriter, p TablePublisher, opts Options, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	if opts.FailurePolicy == "" {
		opts.FailurePolicy = SkipFailedRegions
	}
	pl := &Pipeline{
		catalog:   c,
		fetcher:   f,
		writer:    w,
		publisher: p,
		opts:      opts,
		logger:    logger,
		metrics:   metrics,
	}
	pl.progress.Store(&Progress{})
	return pl
}

// CheckReadiness returns nil once the pipeline has completed at least one
// region query, or an error describing why it is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not completed any region queries yet")
	}
	return nil
}

// Progress returns a snapshot of the current run.
func (p *Pipeline) Progress() Progress {
	return *p.progress.Load()
}

// Run queries every state, then every country, and writes the resulting table.
// Any returned error means no output file was produced, except a publish
// error, which is returned after the file is in place.
func (p *Pipeline) Run(ctx context.Context) (domain.RunSummary, error) {
	states := p.catalog.States()
	countries := p.catalog.Countries()

	summary := domain.RunSummary{RunID: uuid.NewString()}
	table := domain.NewStationTable()
	p.updateProgress(func(pr *Progress) {
		*pr = Progress{RunID: summary.RunID, RegionsTotal: len(states) + len(countries)}
	})

	p.logger.Info("export started",
		"run_id", summary.RunID,
		"states", len(states),
		"countries", len(countries),
		"failure_policy", p.opts.FailurePolicy,
	)
	p.metrics.ExportRunning.Set(1)
	defer p.metrics.ExportRunning.Set(0)

	p.logger.Info("compiling US weather station data", "regions", len(states))
	for _, r := range states {
		if err := p.processRegion(ctx, r, table, &summary); err != nil {
			return summary, err
		}
		summary.StatesProcessed++
	}

	p.logger.Info("compiling world weather station data", "regions", len(countries))
	for _, r := range countries {
		if err := p.processRegion(ctx, r, table, &summary); err != nil {
			return summary, err
		}
		summary.CountriesProcessed++
	}

	completedAt := domain.Now()
	path := domain.ExportPath(p.opts.OutputDir, p.opts.OutputPrefix, p.writer.Extension(), completedAt)
	if err := p.writer.WriteTable(path, table); err != nil {
		return summary, fmt.Errorf("write table: %w", err)
	}
	summary.Rows = table.Len()
	summary.OutputPath = path
	summary.CompletedAt = completedAt

	p.metrics.RowsExported.Set(float64(table.Len()))
	p.metrics.LastExportTime.Set(float64(summary.CompletedAt.Unix()))
	p.updateProgress(func(pr *Progress) {
		pr.CurrentRegion = ""
		pr.Completed = true
		pr.OutputPath = path
	})
	p.logger.Info("export written",
		"run_id", summary.RunID,
		"path", path,
		"rows", summary.Rows,
		"failed_regions", len(summary.FailedRegions),
	)

	if p.publisher != nil {
		if err := p.publisher.PublishTable(ctx, summary.RunID, table); err != nil {
			return summary, fmt.Errorf("publish table: %w", err)
		}
		p.logger.Info("export published", "run_id", summary.RunID, "rows", summary.Rows)
	}

	return summary, nil
}

// processRegion fetches one region and appends its normalized rows.
func (p *Pipeline) processRegion(ctx context.Context, r domain.Region, table *domain.StationTable, summary *domain.RunSummary) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.updateProgress(func(pr *Progress) { pr.CurrentRegion = r.String() })
	p.logger.Info("processing region", "kind", r.Kind, "code", r.Code)

	records, err := p.fetcher.FetchStations(ctx, r.Filter(), p.opts.HeadersOnly)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if errors.Is(err, domain.ErrUpstreamUnavailable) && p.opts.FailurePolicy == SkipFailedRegions {
			p.logger.Warn("region fetch failed, continuing with no stations",
				"kind", r.Kind,
				"code", r.Code,
				"error", err,
			)
			p.metrics.RegionsProcessed.WithLabelValues(string(r.Kind), "failed").Inc()
			summary.FailedRegions = append(summary.FailedRegions, r)
			p.markRegionDone(0, true)
			return nil
		}
		return fmt.Errorf("fetch %s: %w", r, err)
	}

	country, state := r.RowContext()
	rows := make([]domain.StationRow, 0, len(records))
	for i, rec := range records {
		row, err := domain.Normalize(rec, country, state)
		if err != nil {
			return fmt.Errorf("normalize %s station %d: %w", r, i, err)
		}
		rows = append(rows, row)
	}
	table.Append(rows...)

	p.metrics.RegionsProcessed.WithLabelValues(string(r.Kind), "ok").Inc()
	p.metrics.StationsNormalized.Add(float64(len(rows)))
	p.markRegionDone(len(rows), false)
	p.logger.Debug("region complete", "kind", r.Kind, "code", r.Code, "stations", len(rows))
	return nil
}

func (p *Pipeline) markRegionDone(rows int, failed bool) {
	p.ready.Store(true)
	p.updateProgress(func(pr *Progress) {
		pr.RegionsDone++
		pr.Rows += rows
		if failed {
			pr.RegionsFailed++
		}
	})
}

// updateProgress publishes a modified copy of the progress snapshot. Only the
// pipeline goroutine writes, so load-modify-store does not race.
func (p *Pipeline) updateProgress(fn func(*Progress)) {
	next := *p.progress.Load()
	fn(&next)
	p.progress.Store(&next)
}

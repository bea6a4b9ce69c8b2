// Command seed backfills the earthquakes table from the USGS archive, one
// calendar year at a time. It is meant to be run once against a fresh
// database; reruns are safe because the store upserts by event id.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/seismoindia/quake-data-service/internal/adapter/postgres"
	"github.com/seismoindia/quake-data-service/internal/adapter/usgs"
	"github.com/seismoindia/quake-data-service/internal/config"
	"github.com/seismoindia/quake-data-service/internal/domain"
	"github.com/seismoindia/quake-data-service/internal/observability"
	"github.com/seismoindia/quake-data-service/internal/pipeline"
)

func main() {
	fromYear := flag.Int("from", 1900, "first year to backfill (inclusive)")
	toYear := flag.Int("to", time.Now().UTC().Year(), "last year to backfill (inclusive)")
	minMag := flag.Float64("min-mag", 4.0, "minimum magnitude to request from the archive")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := observability.NewLogger(cfg)

	if *fromYear > *toYear {
		logger.Error("invalid year range", "from", *fromYear, "to", *toYear)
		os.Exit(1)
	}

	ctx := context.Background()

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	store := postgres.NewStore(pool, cfg.BatchSize, logger)
	if err := store.EnsureSchema(ctx); err != nil {
		logger.Error("failed to ensure schema", "error", err)
		os.Exit(1)
	}

	feed := usgs.NewClient(cfg.USGSBaseURL, cfg.USGSTimeout, logger)
	transformer := pipeline.NewTransformer(nil, cfg.HistoricalAge, logger)

	var totalStored, totalSkipped int
	for year := *fromYear; year <= *toYear; year++ {
		stored, skipped, err := backfillYear(ctx, feed, transformer, store, year, *minMag, cfg.FetchLimit, logger)
		if err != nil {
			logger.Error("backfill failed", "year", year, "error", err)
			os.Exit(1)
		}
		totalStored += stored
		totalSkipped += skipped
	}

	logger.Info("backfill complete",
		"from", *fromYear,
		"to", *toYear,
		"stored", totalStored,
		"skipped", totalSkipped,
	)
}

// backfillYear pages through one year of archive results. The FDSN API caps
// a single response at 20000 events, so each year is walked with the
// configured page size and a 1-based offset.
func backfillYear(ctx context.Context, feed *usgs.Client, transformer *pipeline.QuakeTransformer, store *postgres.Store, year int, minMag float64, pageSize int, logger *slog.Logger) (stored, skipped int, err error) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)

	for offset := 1; ; offset += pageSize {
		features, err := feed.FetchEvents(ctx, usgs.Query{
			Start:        start,
			End:          end,
			MinMagnitude: minMag,
			Limit:        pageSize,
			Offset:       offset,
		})
		if err != nil {
			return stored, skipped, err
		}
		if len(features) == 0 {
			break
		}

		events := make([]domain.Earthquake, 0, len(features))
		for _, f := range features {
			event, err := transformer.Transform(ctx, f)
			if err != nil {
				logger.Warn("skipping malformed feature", "id", f.ID, "error", err)
				skipped++
				continue
			}
			events = append(events, event)
		}

		n, err := store.UpsertBatch(ctx, events)
		if err != nil {
			return stored, skipped, err
		}
		stored += n

		logger.Info("backfill page stored", "year", year, "offset", offset, "count", n)

		if len(features) < pageSize {
			break
		}
	}
	return stored, skipped, nil
}

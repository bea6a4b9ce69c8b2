package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/seismoindia/quake-data-service/internal/domain"
)

const (
	defaultQueryLimit = 500
	maxQueryLimit     = 5000
)

// Store reads and writes earthquake rows. It implements the pipeline's
// Loader and the HTTP server's QueryStore.
type Store struct {
	pool      *pgxpool.Pool
	batchSize int
	logger    *slog.Logger
}

// NewStore creates a Store that upserts in batches of batchSize rows.
func NewStore(pool *pgxpool.Pool, batchSize int, logger *slog.Logger) *Store {
	return &Store{
		pool:      pool,
		batchSize: batchSize,
		logger:    logger,
	}
}

// EnsureSchema creates the earthquakes table and indexes if absent.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// UpsertBatch writes events in sequential batches, keyed by the USGS
// identifier so re-ingestion is idempotent per row. A failed batch is
// logged and skipped; later batches still land. There is no cross-batch
// transaction: each row is individually consistent. Returns the number of
// rows that were written.
func (s *Store) UpsertBatch(ctx context.Context, events []domain.Earthquake) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}

	stored := 0
	failed := 0
	for start := 0; start < len(events); start += s.batchSize {
		end := min(start+s.batchSize, len(events))
		chunk := events[start:end]

		if err := s.upsertChunk(ctx, chunk); err != nil {
			if ctx.Err() != nil {
				return stored, ctx.Err()
			}
			s.logger.Error("upsert batch failed, skipping",
				"error", err,
				"batch_start", start,
				"batch_size", len(chunk),
			)
			failed += len(chunk)
			continue
		}
		stored += len(chunk)
	}

	if stored == 0 && failed > 0 {
		return 0, fmt.Errorf("all %d upsert batches failed", failed)
	}
	return stored, nil
}

func (s *Store) upsertChunk(ctx context.Context, events []domain.Earthquake) error {
	batch := &pgx.Batch{}
	for _, e := range events {
		batch.Queue(upsertSQL,
			e.ID, e.Magnitude, e.Location, e.OccurredAt, e.Depth,
			e.Lat, e.Lon, e.State, e.Region, e.IsHistorical, e.Source,
		)
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range events {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("exec upsert: %w", err)
		}
	}
	return nil
}

// Query returns events matching the filter, newest first. Limit defaults to
// 500 and is capped at 5000.
func (s *Store) Query(ctx context.Context, f domain.Filter) ([]domain.Earthquake, error) {
	sql, args := buildQuery(f)

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query earthquakes: %w", err)
	}
	defer rows.Close()

	var events []domain.Earthquake
	for rows.Next() {
		var e domain.Earthquake
		if err := rows.Scan(
			&e.ID, &e.Magnitude, &e.Location, &e.OccurredAt, &e.Depth,
			&e.Lat, &e.Lon, &e.State, &e.Region, &e.IsHistorical, &e.Source,
		); err != nil {
			return nil, fmt.Errorf("scan earthquake row: %w", err)
		}
		e.OccurredAt = e.OccurredAt.UTC()
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate earthquake rows: %w", err)
	}
	return events, nil
}

// buildQuery assembles the filtered SELECT. Kept separate from Query so the
// SQL construction is unit-testable without a database.
func buildQuery(f domain.Filter) (string, []any) {
	var sb strings.Builder
	sb.WriteString(`SELECT id, magnitude, location, occurred_at, depth,
		latitude, longitude, state, region, is_historical, source
		FROM earthquakes`)

	var conds []string
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	switch f.Type {
	case domain.DataTypeRecent:
		conds = append(conds, "is_historical = FALSE")
	case domain.DataTypeHistorical:
		conds = append(conds, "is_historical = TRUE")
	}
	if f.StartYear > 0 {
		conds = append(conds, "occurred_at >= make_timestamptz("+arg(f.StartYear)+", 1, 1, 0, 0, 0, 'UTC')")
	}
	if f.EndYear > 0 {
		conds = append(conds, "occurred_at < make_timestamptz("+arg(f.EndYear+1)+", 1, 1, 0, 0, 0, 'UTC')")
	}
	if f.MinMagnitude > 0 {
		conds = append(conds, "magnitude >= "+arg(f.MinMagnitude))
	}
	if f.State != "" {
		conds = append(conds, "state = "+arg(f.State))
	}
	if f.Region != "" {
		conds = append(conds, "region = "+arg(f.Region))
	}

	if len(conds) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(conds, " AND "))
	}

	limit := f.Limit
	if limit <= 0 {
		limit = defaultQueryLimit
	}
	if limit > maxQueryLimit {
		limit = maxQueryLimit
	}
	sb.WriteString(" ORDER BY occurred_at DESC LIMIT ")
	sb.WriteString(arg(limit))

	return sb.String(), args
}

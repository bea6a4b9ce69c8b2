// Package pipeline orchestrates the USGS poll loop: fetch, transform,
// upsert, and alert.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/seismoindia/quake-data-service/internal/domain"
	"github.com/seismoindia/quake-data-service/internal/observability"
)

// Extractor fetches raw features newer than since, up to limit.
type Extractor interface {
	Extract(ctx context.Context, since time.Time, minMagnitude float64, limit int) ([]domain.Feature, error)
}

// Transformer converts a raw feature into a classified earthquake.
type Transformer interface {
	Transform(ctx context.Context, f domain.Feature) (domain.Earthquake, error)
}

// Loader persists a batch of earthquakes and reports how many were stored.
type Loader interface {
	UpsertBatch(ctx context.Context, events []domain.Earthquake) (int, error)
}

// AlertPublisher fans strong quakes out to downstream consumers.
type AlertPublisher interface {
	PublishAlerts(ctx context.Context, events []domain.Earthquake) error
}

// Options tune the poll loop.
type Options struct {
	PollInterval      time.Duration
	Lookback          time.Duration // initial window behind now on startup
	FetchLimit        int
	MinMagnitude      float64
	AlertMinMagnitude float64
}

// Pipeline runs the periodic fetch-transform-upsert cycle.
type Pipeline struct {
	extractor   Extractor
	transformer Transformer
	loader      Loader
	alerts      AlertPublisher // nil disables alert publishing
	logger      *slog.Logger
	metrics     *observability.Metrics
	opts        Options

	ready    atomic.Bool
	lastSeen time.Time
}

// New creates a Pipeline with the given stages and observability. Pass a
// nil alerts publisher to disable Kafka fanout.
func New(e Extractor, t Transformer, l Loader, alerts AlertPublisher, logger *slog.Logger, metrics *observability.Metrics, opts Options) *Pipeline {
	return &Pipeline{
		extractor:   e,
		transformer: t,
		loader:      l,
		alerts:      alerts,
		logger:      logger,
		metrics:     metrics,
		opts:        opts,
	}
}

// CheckReadiness returns nil once the pipeline has completed at least one
// successful poll cycle.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not completed a poll cycle yet")
	}
	return nil
}

// Run executes the poll loop until the context is cancelled. Failed cycles
// retry with exponential backoff; successful cycles wait the poll interval.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started",
		"poll_interval", p.opts.PollInterval,
		"min_magnitude", p.opts.MinMagnitude,
		"alerts_enabled", p.alerts != nil,
	)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	p.lastSeen = time.Now().Add(-p.opts.Lookback)

	// Exponential backoff for failed cycles: start at 1s, double each
	// retry, cap at the poll interval so errors never slow polling below
	// the normal cadence.
	backoff := time.Second
	maxBackoff := p.opts.PollInterval

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		default:
		}

		if err := p.pollOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			p.logger.Error("poll cycle failed", "error", err)
			if !sleepWithContext(ctx, backoff) {
				return nil
			}
			backoff = nextBackoff(backoff, maxBackoff)
			continue
		}

		backoff = time.Second
		if !sleepWithContext(ctx, p.opts.PollInterval) {
			return nil
		}
	}
}

// pollOnce runs one fetch-transform-upsert cycle.
func (p *Pipeline) pollOnce(ctx context.Context) error {
	start := time.Now()

	features, err := p.extractor.Extract(ctx, p.lastSeen, p.opts.MinMagnitude, p.opts.FetchLimit)
	if err != nil {
		p.metrics.PollCycles.WithLabelValues("error").Inc()
		return err
	}

	if len(features) == 0 {
		p.metrics.PollCycles.WithLabelValues("empty").Inc()
		p.ready.Store(true)
		return nil
	}
	p.metrics.EventsFetched.Add(float64(len(features)))

	events := make([]domain.Earthquake, 0, len(features))
	for _, f := range features {
		event, err := p.transformer.Transform(ctx, f)
		if err != nil {
			p.logger.Warn("transform failed, skipping feature", "error", err, "feature_id", f.ID)
			p.metrics.EventsSkipped.Inc()
			continue
		}
		events = append(events, event)
	}

	stored, err := p.loader.UpsertBatch(ctx, events)
	if err != nil {
		p.metrics.PollCycles.WithLabelValues("error").Inc()
		return err
	}
	p.metrics.EventsStored.Add(float64(stored))
	p.metrics.UpsertBatchSize.Observe(float64(len(events)))

	p.publishAlerts(ctx, events)
	p.advanceWindow(events)

	p.metrics.PollCycleDuration.Observe(time.Since(start).Seconds())
	p.metrics.PollCycles.WithLabelValues("success").Inc()
	p.ready.Store(true)

	p.logger.Info("poll cycle complete",
		"fetched", len(features),
		"stored", stored,
		"skipped", len(features)-len(events),
	)
	return nil
}

// publishAlerts pushes quakes at or above the alert threshold to the
// publisher. Publish failures are logged, not fatal: the events are already
// stored and the next revision of them will be retried.
func (p *Pipeline) publishAlerts(ctx context.Context, events []domain.Earthquake) {
	if p.alerts == nil {
		return
	}

	var strong []domain.Earthquake
	for _, e := range events {
		if e.Magnitude >= p.opts.AlertMinMagnitude {
			strong = append(strong, e)
		}
	}
	if len(strong) == 0 {
		return
	}

	if err := p.alerts.PublishAlerts(ctx, strong); err != nil {
		p.logger.Warn("alert publish failed", "error", err, "count", len(strong))
		return
	}
	p.metrics.AlertsPublished.Add(float64(len(strong)))
}

// advanceWindow moves the fetch window to the newest event seen, minus a
// one-minute overlap. USGS revises magnitudes shortly after publication;
// the overlap re-ingests revisions and the idempotent upsert absorbs the
// duplicates.
func (p *Pipeline) advanceWindow(events []domain.Earthquake) {
	newest := p.lastSeen
	for _, e := range events {
		if e.OccurredAt.After(newest) {
			newest = e.OccurredAt
		}
	}
	if overlapped := newest.Add(-time.Minute); overlapped.After(p.lastSeen) {
		p.lastSeen = overlapped
	}
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

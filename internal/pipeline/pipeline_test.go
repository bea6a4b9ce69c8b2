package pipeline_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seismoindia/quake-data-service/internal/domain"
	"github.com/seismoindia/quake-data-service/internal/observability"
	"github.com/seismoindia/quake-data-service/internal/pipeline"
)

// --- mocks ---

func feature(id string, magnitude float64, lat, lon float64) domain.Feature {
	return domain.Feature{
		ID: id,
		Properties: domain.FeatureProperties{
			Mag:   &magnitude,
			Place: "test place",
			Time:  time.Now().Add(-time.Hour).UnixMilli(),
		},
		Geometry: domain.FeatureGeometry{Coordinates: []float64{lon, lat, 10}},
	}
}

type mockExtractor struct {
	mu       sync.Mutex
	features []domain.Feature
	err      error
	calls    int
}

func (m *mockExtractor) Extract(_ context.Context, _ time.Time, _ float64, _ int) ([]domain.Feature, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	// Only the first cycle returns features; later cycles are empty.
	if m.calls > 1 {
		return nil, nil
	}
	return m.features, nil
}

type mockLoader struct {
	mu     sync.Mutex
	loaded []domain.Earthquake
	err    error
}

func (m *mockLoader) UpsertBatch(_ context.Context, events []domain.Earthquake) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	m.loaded = append(m.loaded, events...)
	return len(events), nil
}

func (m *mockLoader) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.loaded)
}

type mockPublisher struct {
	mu        sync.Mutex
	published []domain.Earthquake
	err       error
}

func (m *mockPublisher) PublishAlerts(_ context.Context, events []domain.Earthquake) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, events...)
	return nil
}

func testOptions() pipeline.Options {
	return pipeline.Options{
		PollInterval:      10 * time.Millisecond,
		Lookback:          24 * time.Hour,
		FetchLimit:        100,
		MinMagnitude:      2.5,
		AlertMinMagnitude: 4.5,
	}
}

func newTestMetrics() *observability.Metrics {
	// Use a fresh registry to avoid "already registered" panics in tests.
	return observability.NewMetricsForTesting()
}

// --- tests ---

func TestPipeline_Run_HappyPath(t *testing.T) {
	ext := &mockExtractor{features: []domain.Feature{
		feature("us1", 3.0, 26.14, 91.74),
		feature("us2", 5.4, 23.24, 69.67),
	}}
	tfm := pipeline.NewTransformer(nil, 30*24*time.Hour, slog.Default())
	ldr := &mockLoader{}
	pub := &mockPublisher{}

	p := pipeline.New(ext, tfm, ldr, pub, slog.Default(), newTestMetrics(), testOptions())

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	err := p.Run(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, ldr.count())
	assert.Equal(t, "Assam", ldr.loaded[0].State)
	assert.Equal(t, "Gujarat", ldr.loaded[1].State)
	assert.NoError(t, p.CheckReadiness(context.Background()))

	// Only the 5.4 quake crosses the alert threshold.
	require.Len(t, pub.published, 1)
	assert.Equal(t, "us2", pub.published[0].ID)
}

func TestPipeline_Run_ContextCancellation(t *testing.T) {
	ext := &mockExtractor{}
	tfm := pipeline.NewTransformer(nil, 30*24*time.Hour, slog.Default())
	ldr := &mockLoader{}

	p := pipeline.New(ext, tfm, ldr, nil, slog.Default(), newTestMetrics(), testOptions())

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // cancel immediately

	err := p.Run(ctx)
	require.NoError(t, err)
	assert.Empty(t, ldr.loaded)
}

func TestPipeline_Run_MalformedFeaturesSkipped(t *testing.T) {
	bad := domain.Feature{ID: "us-bad"} // no coordinates
	ext := &mockExtractor{features: []domain.Feature{
		bad,
		feature("us-good", 3.2, 28.61, 77.21),
	}}
	tfm := pipeline.NewTransformer(nil, 30*24*time.Hour, slog.Default())
	ldr := &mockLoader{}

	p := pipeline.New(ext, tfm, ldr, nil, slog.Default(), newTestMetrics(), testOptions())

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	err := p.Run(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, ldr.count())
	assert.Equal(t, "us-good", ldr.loaded[0].ID)
}

func TestPipeline_Run_ExtractErrorRetries(t *testing.T) {
	ext := &mockExtractor{err: errors.New("feed unavailable")}
	tfm := pipeline.NewTransformer(nil, 30*24*time.Hour, slog.Default())
	ldr := &mockLoader{}

	p := pipeline.New(ext, tfm, ldr, nil, slog.Default(), newTestMetrics(), testOptions())

	ctx, cancel := context.WithTimeout(context.Background(), 2500*time.Millisecond)
	defer cancel()

	err := p.Run(ctx)
	require.NoError(t, err)

	ext.mu.Lock()
	calls := ext.calls
	ext.mu.Unlock()
	assert.GreaterOrEqual(t, calls, 2, "should retry after extract failure")
	assert.Error(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_Run_PublishFailureNotFatal(t *testing.T) {
	ext := &mockExtractor{features: []domain.Feature{feature("us1", 6.0, 26.14, 91.74)}}
	tfm := pipeline.NewTransformer(nil, 30*24*time.Hour, slog.Default())
	ldr := &mockLoader{}
	pub := &mockPublisher{err: errors.New("broker down")}

	p := pipeline.New(ext, tfm, ldr, pub, slog.Default(), newTestMetrics(), testOptions())

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	err := p.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, ldr.count(), "events stored even when alert publish fails")
	assert.NoError(t, p.CheckReadiness(context.Background()))
}

func TestQuakeTransformer_Transform(t *testing.T) {
	tfm := pipeline.NewTransformer(nil, 30*24*time.Hour, slog.Default())

	event, err := tfm.Transform(context.Background(), feature("us7000abcd", 5.4, 26.14, 91.74))

	require.NoError(t, err)
	assert.Equal(t, "us7000abcd", event.ID)
	assert.Equal(t, "Assam", event.State)
	assert.Equal(t, domain.RegionNortheastern, event.Region)
	assert.Equal(t, "strong", event.MagnitudeClass)
	assert.False(t, event.IsHistorical)
	assert.False(t, event.ProcessedAt.IsZero())
}

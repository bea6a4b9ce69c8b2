package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/seismoindia/quake-data-service/internal/domain"
)

// QuakeTransformer implements Transformer using domain parse and enrichment
// functions with optional geocoding. Pass a nil geocoder to disable
// geocoding enrichment.
type QuakeTransformer struct {
	geocoder      domain.Geocoder
	historicalAge time.Duration
	logger        *slog.Logger
}

// NewTransformer creates a QuakeTransformer. Events older than
// historicalAge are flagged historical.
func NewTransformer(geocoder domain.Geocoder, historicalAge time.Duration, logger *slog.Logger) *QuakeTransformer {
	return &QuakeTransformer{
		geocoder:      geocoder,
		historicalAge: historicalAge,
		logger:        logger,
	}
}

func (t *QuakeTransformer) Transform(ctx context.Context, f domain.Feature) (domain.Earthquake, error) {
	event, err := domain.ParseFeature(f)
	if err != nil {
		return domain.Earthquake{}, err
	}

	event = domain.Enrich(event, domain.Now().Add(-t.historicalAge))
	event = domain.EnrichWithGeocoding(ctx, event, t.geocoder, t.logger)

	return event, nil
}

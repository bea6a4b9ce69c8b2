package domain

import (
	"context"
	"log/slog"
)

// EnrichWithGeocoding attempts to attach a human place name to an event.
// Only events that fell through to the country-level default state are
// looked up; state-bucketed events already have a usable label and the
// lookup budget is better spent on offshore epicenters. If geocoder is nil
// or the lookup fails, the event is returned with GeoSource set accordingly
// (graceful degradation).
func EnrichWithGeocoding(ctx context.Context, event Earthquake, geocoder Geocoder, logger *slog.Logger) Earthquake {
	if geocoder == nil {
		return event
	}
	if event.State != DefaultState {
		event.GeoSource = "original"
		return event
	}

	result, err := geocoder.ReverseGeocode(ctx, event.Lat, event.Lon)
	if err != nil {
		logger.Warn("reverse geocoding failed",
			"event_id", event.ID,
			"lat", event.Lat,
			"lon", event.Lon,
			"error", err,
		)
		event.GeoSource = "failed"
		return event
	}
	if result.FormattedAddress == "" {
		event.GeoSource = "original"
		return event
	}

	event.FormattedAddress = result.FormattedAddress
	event.PlaceName = result.PlaceName
	event.GeoConfidence = result.Confidence
	event.GeoSource = "reverse"
	return event
}

package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// SourceUSGS tags events ingested from the USGS FDSN feed.
const SourceUSGS = "USGS"

// FeatureCollection is the top-level USGS GeoJSON response.
type FeatureCollection struct {
	Features []Feature          `json:"features"`
	Metadata CollectionMetadata `json:"metadata"`
}

// CollectionMetadata carries feed-level bookkeeping from USGS.
type CollectionMetadata struct {
	Generated int64  `json:"generated"` // epoch milliseconds
	Count     int    `json:"count"`
	Title     string `json:"title"`
}

// Feature is a single GeoJSON earthquake feature from the USGS feed.
type Feature struct {
	ID         string            `json:"id"`
	Properties FeatureProperties `json:"properties"`
	Geometry   FeatureGeometry   `json:"geometry"`
}

// FeatureProperties holds the USGS event attributes the service consumes.
// Mag is a pointer because USGS emits null for unmeasured events.
type FeatureProperties struct {
	Mag   *float64 `json:"mag"`
	Place string   `json:"place"`
	Time  int64    `json:"time"`    // epoch milliseconds
	Type  string   `json:"type"`    // "earthquake", "quarry blast", ...
	Title string   `json:"title"`
}

// FeatureGeometry holds the event coordinates as [lon, lat, depth_km].
type FeatureGeometry struct {
	Coordinates []float64 `json:"coordinates"`
}

var (
	// ErrMissingID rejects features without a USGS identifier; the ID is
	// the upsert key, so a feature without one cannot be stored.
	ErrMissingID = errors.New("feature has no id")

	// ErrMissingCoordinates rejects features without a usable [lon, lat].
	ErrMissingCoordinates = errors.New("feature has no coordinates")
)

// ParseFeatureCollection deserializes a USGS GeoJSON response body.
func ParseFeatureCollection(data []byte) (FeatureCollection, error) {
	var fc FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return FeatureCollection{}, fmt.Errorf("parse feature collection: %w", err)
	}
	return fc, nil
}

// ParseFeature converts a USGS GeoJSON feature into an Earthquake.
// Coordinates arrive as [lon, lat, depth]; depth may be absent. The event
// time is epoch milliseconds UTC. A nil magnitude maps to 0 (unmeasured).
func ParseFeature(f Feature) (Earthquake, error) {
	if f.ID == "" {
		return Earthquake{}, ErrMissingID
	}
	if len(f.Geometry.Coordinates) < 2 {
		return Earthquake{}, fmt.Errorf("%w: feature %s", ErrMissingCoordinates, f.ID)
	}

	var magnitude float64
	if f.Properties.Mag != nil {
		magnitude = *f.Properties.Mag
	}

	var depth float64
	if len(f.Geometry.Coordinates) >= 3 {
		depth = f.Geometry.Coordinates[2]
	}

	return Earthquake{
		ID:         f.ID,
		Magnitude:  magnitude,
		Location:   f.Properties.Place,
		OccurredAt: time.UnixMilli(f.Properties.Time).UTC(),
		Depth:      depth,
		Lon:        f.Geometry.Coordinates[0],
		Lat:        f.Geometry.Coordinates[1],
		Source:     SourceUSGS,
	}, nil
}

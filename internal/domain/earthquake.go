package domain

import (
	"time"
)

// Earthquake is the domain-rich representation of a single seismic event
// after parsing and classification. It is also the canonical JSON shape
// served by the query API and stored in Postgres.
type Earthquake struct {
	ID             string    `json:"id"`
	Magnitude      float64   `json:"magnitude"`
	Location       string    `json:"location"`
	OccurredAt     time.Time `json:"occurred_at"`
	Depth          float64   `json:"depth"`
	Lat            float64   `json:"latitude"`
	Lon            float64   `json:"longitude"`
	State          string    `json:"state"`
	Region         string    `json:"region"`
	IsHistorical   bool      `json:"is_historical"`
	Source         string    `json:"source"`
	MagnitudeClass string    `json:"magnitude_class,omitempty"`

	// Geocoding enrichment fields.
	PlaceName        string  `json:"place_name,omitempty"`
	FormattedAddress string  `json:"formatted_address,omitempty"`
	GeoConfidence    float64 `json:"geo_confidence,omitempty"`
	GeoSource        string  `json:"geo_source,omitempty"` // "reverse", "original", "failed"

	ProcessedAt time.Time `json:"processed_at"`
}

// DataType selects which slice of the archive a query covers.
const (
	DataTypeRecent     = "recent"
	DataTypeHistorical = "historical"
	DataTypeAll        = "all"
)

// Filter narrows a query over the earthquake archive. Zero values mean
// "no constraint" except Type, which must be one of the DataType constants.
type Filter struct {
	Type         string
	StartYear    int
	EndYear      int
	MinMagnitude float64
	State        string
	Region       string
	Limit        int
}

// Enrich classifies a parsed earthquake: state/region bucketing from
// coordinates, magnitude class label, and the historical flag. Events that
// occurred before historicalBefore are historical. ProcessedAt is stamped
// from the package clock.
func Enrich(e Earthquake, historicalBefore time.Time) Earthquake {
	e.State, e.Region = ClassifyCoordinates(e.Lat, e.Lon)
	e.MagnitudeClass = magnitudeClass(e.Magnitude)
	e.IsHistorical = e.OccurredAt.Before(historicalBefore)
	e.ProcessedAt = clock.Now()
	return e
}

// magnitudeClass maps a Richter-style magnitude to a coarse label used for
// display and alert headers. Thresholds follow the conventional USGS
// magnitude classes. Returns "" when magnitude is 0 (unmeasured).
func magnitudeClass(magnitude float64) string {
	switch {
	case magnitude == 0:
		return ""
	case magnitude < 4.0:
		return "light"
	case magnitude < 5.0:
		return "moderate"
	case magnitude < 6.0:
		return "strong"
	case magnitude < 7.0:
		return "major"
	default:
		return "great"
	}
}

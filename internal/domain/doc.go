// Package domain models earthquake events sourced from the USGS public feed.
//
// # Data Source
//
// Events originate from the USGS FDSN event service
// (https://earthquake.usgs.gov/fdsnws/event/1/), queried as GeoJSON over
// India's bounding box (latitude 6–38, longitude 68–98). Each feature
// carries an opaque USGS identifier, magnitude, a free-text place string,
// an epoch-millisecond timestamp, and [lon, lat, depth_km] coordinates.
//
// # USGS Feed Conventions
//
// Coordinates:
//
//	GeoJSON order is [longitude, latitude, depth]. Depth is kilometers and
//	may be absent for poorly constrained events. Features with fewer than
//	two coordinate values are rejected by [ParseFeature].
//
// Magnitude:
//
//	USGS emits null for unmeasured events; these map to magnitude 0.
//	Magnitude classes used for display and alert headers:
//
//	  <4.0 light | <5.0 moderate | <6.0 strong | <7.0 major | ≥7.0 great
//
// Time:
//
//	Epoch milliseconds UTC. Converted with time.UnixMilli and always
//	handled in UTC.
//
// # State and Region Classification
//
// [ClassifyCoordinates] buckets an epicenter into an Indian state using a
// static bounding-box table, first match wins. Small states enclosed by a
// neighbour's box are ordered first. Coordinates matching no box (offshore
// events, neighbouring countries inside the query window) default to the
// country-level labels ("India", "India"): the function is total and never
// fails. Regions derive from the matched state.
//
// # Identity and Idempotency
//
// The USGS identifier is used verbatim as the primary key. Re-ingesting the
// same feature upserts the same row, which makes feed replays and window
// overlaps safe without coordination.
package domain

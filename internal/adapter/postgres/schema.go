package postgres

// schemaSQL creates the earthquakes table and its indexes. It mirrors
// migrations/0001_create_earthquakes.sql and is idempotent so the service
// can run it at startup.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS earthquakes (
    id            TEXT PRIMARY KEY,
    magnitude     NUMERIC NOT NULL,
    location      TEXT NOT NULL DEFAULT '',
    occurred_at   TIMESTAMPTZ NOT NULL,
    depth         NUMERIC NOT NULL DEFAULT 0,
    latitude      NUMERIC NOT NULL,
    longitude     NUMERIC NOT NULL,
    state         TEXT NOT NULL DEFAULT 'India',
    region        TEXT NOT NULL DEFAULT 'India',
    is_historical BOOLEAN NOT NULL DEFAULT FALSE,
    source        TEXT NOT NULL DEFAULT 'USGS',
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_earthquakes_occurred_at ON earthquakes (occurred_at DESC);
CREATE INDEX IF NOT EXISTS idx_earthquakes_state ON earthquakes (state);
CREATE INDEX IF NOT EXISTS idx_earthquakes_magnitude ON earthquakes (magnitude);
`

const upsertSQL = `
INSERT INTO earthquakes (
    id, magnitude, location, occurred_at, depth,
    latitude, longitude, state, region, is_historical, source
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (id) DO UPDATE SET
    magnitude     = EXCLUDED.magnitude,
    location      = EXCLUDED.location,
    occurred_at   = EXCLUDED.occurred_at,
    depth         = EXCLUDED.depth,
    latitude      = EXCLUDED.latitude,
    longitude     = EXCLUDED.longitude,
    state         = EXCLUDED.state,
    region        = EXCLUDED.region,
    is_historical = EXCLUDED.is_historical,
    source        = EXCLUDED.source
`

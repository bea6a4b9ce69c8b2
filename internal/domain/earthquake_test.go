package domain

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
)

func TestEnrich(t *testing.T) {
	fixedTime := time.Date(2026, 8, 26, 12, 30, 45, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(fixedTime))
	defer SetClock(nil)

	cutoff := time.Date(2026, 7, 27, 0, 0, 0, 0, time.UTC)

	t.Run("recent onshore event", func(t *testing.T) {
		e := Earthquake{
			ID:         "us7000abcd",
			Magnitude:  5.4,
			Lat:        26.14,
			Lon:        91.74,
			OccurredAt: time.Date(2026, 8, 20, 4, 0, 0, 0, time.UTC),
		}

		result := Enrich(e, cutoff)

		assert.Equal(t, "Assam", result.State)
		assert.Equal(t, RegionNortheastern, result.Region)
		assert.Equal(t, "strong", result.MagnitudeClass)
		assert.False(t, result.IsHistorical)
		assert.Equal(t, fixedTime, result.ProcessedAt)
	})

	t.Run("historical offshore event", func(t *testing.T) {
		e := Earthquake{
			ID:         "us6000wxyz",
			Magnitude:  7.6,
			Lat:        16.0,
			Lon:        89.0,
			OccurredAt: time.Date(2004, 12, 26, 0, 58, 53, 0, time.UTC),
		}

		result := Enrich(e, cutoff)

		assert.Equal(t, DefaultState, result.State)
		assert.Equal(t, DefaultRegion, result.Region)
		assert.Equal(t, "great", result.MagnitudeClass)
		assert.True(t, result.IsHistorical)
	})
}

func TestMagnitudeClass(t *testing.T) {
	tests := []struct {
		name      string
		magnitude float64
		expected  string
	}{
		{"unmeasured", 0, ""},
		{"micro", 1.2, "light"},
		{"just under moderate", 3.99, "light"},
		{"moderate", 4.0, "moderate"},
		{"strong", 5.5, "strong"},
		{"major", 6.9, "major"},
		{"great", 7.0, "great"},
		{"very great", 9.1, "great"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, magnitudeClass(tt.magnitude))
		})
	}
}

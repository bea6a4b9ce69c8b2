package domain

import (
	"fmt"
	"math"
)

// Stats summarizes a filtered slice of the earthquake archive. It is
// computed in a single pass and included in query API responses.
type Stats struct {
	Count        int            `json:"count"`
	MinMagnitude float64        `json:"minMagnitude"`
	MaxMagnitude float64        `json:"maxMagnitude"`
	AvgMagnitude float64        `json:"avgMagnitude"`
	StrongestID  string         `json:"strongestId,omitempty"`
	ByState      map[string]int `json:"byState"`
	ByRegion     map[string]int `json:"byRegion"`
	ByDecade     map[string]int `json:"byDecade"`
}

// ComputeStats aggregates counts and magnitude extremes over events.
// Events with magnitude 0 (unmeasured) still count but are excluded from
// the min/max/avg magnitude figures. AvgMagnitude is rounded to 2 decimals
// for stable display.
func ComputeStats(events []Earthquake) Stats {
	s := Stats{
		Count:    len(events),
		ByState:  make(map[string]int),
		ByRegion: make(map[string]int),
		ByDecade: make(map[string]int),
	}

	var sum float64
	var measured int
	for _, e := range events {
		s.ByState[e.State]++
		s.ByRegion[e.Region]++
		s.ByDecade[decadeLabel(e.OccurredAt.Year())]++

		if e.Magnitude == 0 {
			continue
		}
		if measured == 0 || e.Magnitude < s.MinMagnitude {
			s.MinMagnitude = e.Magnitude
		}
		if e.Magnitude > s.MaxMagnitude {
			s.MaxMagnitude = e.Magnitude
			s.StrongestID = e.ID
		}
		sum += e.Magnitude
		measured++
	}

	if measured > 0 {
		s.AvgMagnitude = math.Round(sum/float64(measured)*100) / 100
	}
	return s
}

// decadeLabel formats a year as its decade bucket, e.g. 1997 -> "1990s".
func decadeLabel(year int) string {
	return fmt.Sprintf("%ds", year/10*10)
}

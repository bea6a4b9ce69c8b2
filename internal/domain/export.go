package domain

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"
)

// csvHeader is the stable column order for CSV exports. Changing it breaks
// downstream spreadsheets, so treat it as a public contract.
var csvHeader = []string{
	"id", "magnitude", "location", "occurred_at", "depth",
	"latitude", "longitude", "state", "region", "is_historical", "source",
}

// WriteCSV streams events as CSV. Floats use the shortest representation
// that round-trips exactly (strconv 'g' with -1 precision) and timestamps
// use RFC3339 with nanoseconds, so no magnitude, coordinate, or time
// precision is lost on export.
func WriteCSV(w io.Writer, events []Earthquake) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, e := range events {
		record := []string{
			e.ID,
			formatFloat(e.Magnitude),
			e.Location,
			e.OccurredAt.UTC().Format(time.RFC3339Nano),
			formatFloat(e.Depth),
			formatFloat(e.Lat),
			formatFloat(e.Lon),
			e.State,
			e.Region,
			strconv.FormatBool(e.IsHistorical),
			e.Source,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv record %s: %w", e.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON streams events as a JSON array in the canonical entity encoding.
func WriteJSON(w io.Writer, events []Earthquake) error {
	enc := json.NewEncoder(w)
	if events == nil {
		events = []Earthquake{}
	}
	if err := enc.Encode(events); err != nil {
		return fmt.Errorf("encode json export: %w", err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

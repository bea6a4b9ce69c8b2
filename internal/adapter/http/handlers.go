package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/seismoindia/quake-data-service/internal/domain"
)

// listResponse is the query API envelope.
type listResponse struct {
	Earthquakes []domain.Earthquake `json:"earthquakes"`
	Count       int                 `json:"count"`
	Stats       domain.Stats        `json:"stats"`
	DataType    string              `json:"dataType"`
	DateRange   dateRange           `json:"dateRange"`
	Source      string              `json:"source"`
}

type dateRange struct {
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

func (s *Server) handleListEarthquakes(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	events, err := s.store.Query(r.Context(), filter)
	if err != nil {
		s.logger.Error("earthquake query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch earthquake data")
		return
	}
	if events == nil {
		events = []domain.Earthquake{}
	}

	writeJSON(w, http.StatusOK, listResponse{
		Earthquakes: events,
		Count:       len(events),
		Stats:       domain.ComputeStats(events),
		DataType:    filter.Type,
		DateRange:   rangeOf(events),
		Source:      domain.SourceUSGS,
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "json" {
		writeError(w, http.StatusBadRequest, "format must be csv or json")
		return
	}

	events, err := s.store.Query(r.Context(), filter)
	if err != nil {
		s.logger.Error("earthquake export query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch earthquake data")
		return
	}

	switch format {
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="earthquakes.csv"`)
		if err := domain.WriteCSV(w, events); err != nil {
			s.logger.Error("csv export failed", "error", err)
		}
	case "json":
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", `attachment; filename="earthquakes.json"`)
		if err := domain.WriteJSON(w, events); err != nil {
			s.logger.Error("json export failed", "error", err)
		}
	}
}

// smsRequest is the subscription request body.
type smsRequest struct {
	PhoneNumber  string  `json:"phoneNumber"`
	State        string  `json:"state"`
	MinMagnitude float64 `json:"minMagnitude"`
}

func (s *Server) handleSMSAlert(w http.ResponseWriter, r *http.Request) {
	var req smsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	to, err := domain.NormalizeIndianMobile(req.PhoneNumber)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidMobile) {
			writeError(w, http.StatusBadRequest, "please provide a valid Indian mobile number (10 digits starting with 6-9)")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if s.sms == nil {
		writeError(w, http.StatusServiceUnavailable, "SMS alerts are not configured")
		return
	}

	area := req.State
	if area == "" {
		area = domain.DefaultState
	}
	minMagnitude := req.MinMagnitude
	if minMagnitude <= 0 {
		minMagnitude = 4.0
	}
	body := fmt.Sprintf(
		"QuakeWatch India: this number is subscribed to earthquake alerts for %s (magnitude %.1f and above).",
		area, minMagnitude,
	)

	if err := s.sms.Send(r.Context(), to, body); err != nil {
		s.logger.Error("sms send failed", "provider", s.sms.Name(), "error", err)
		s.metrics.SMSSends.WithLabelValues(s.sms.Name(), "error").Inc()
		writeError(w, http.StatusBadGateway, "failed to send SMS, please try again later")
		return
	}
	s.metrics.SMSSends.WithLabelValues(s.sms.Name(), "success").Inc()

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": fmt.Sprintf("Subscription confirmed for %s", area),
	})
}

// parseFilter validates and converts the shared query parameters.
func parseFilter(q url.Values) (domain.Filter, error) {
	f := domain.Filter{Type: domain.DataTypeRecent}

	if t := q.Get("type"); t != "" {
		switch t {
		case domain.DataTypeRecent, domain.DataTypeHistorical, domain.DataTypeAll:
			f.Type = t
		default:
			return f, fmt.Errorf("type must be one of recent, historical, all")
		}
	}

	var err error
	if f.StartYear, err = intParam(q, "startYear"); err != nil {
		return f, err
	}
	if f.EndYear, err = intParam(q, "endYear"); err != nil {
		return f, err
	}
	if f.StartYear > 0 && f.EndYear > 0 && f.EndYear < f.StartYear {
		return f, fmt.Errorf("endYear must not be before startYear")
	}

	if v := q.Get("minMagnitude"); v != "" {
		f.MinMagnitude, err = strconv.ParseFloat(v, 64)
		if err != nil || f.MinMagnitude < 0 {
			return f, fmt.Errorf("minMagnitude must be a non-negative number")
		}
	}

	f.State = q.Get("state")
	f.Region = q.Get("region")

	if f.Limit, err = intParam(q, "limit"); err != nil {
		return f, err
	}
	return f, nil
}

func intParam(q url.Values, key string) (int, error) {
	v := q.Get(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", key)
	}
	return n, nil
}

// rangeOf reports the oldest and newest event times in the result set.
func rangeOf(events []domain.Earthquake) dateRange {
	if len(events) == 0 {
		return dateRange{}
	}
	oldest, newest := events[0].OccurredAt, events[0].OccurredAt
	for _, e := range events[1:] {
		if e.OccurredAt.Before(oldest) {
			oldest = e.OccurredAt
		}
		if e.OccurredAt.After(newest) {
			newest = e.OccurredAt
		}
	}
	return dateRange{
		From: oldest.UTC().Format(time.RFC3339),
		To:   newest.UTC().Format(time.RFC3339),
	}
}

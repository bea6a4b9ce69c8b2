package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seismoindia/quake-data-service/internal/domain"
	"github.com/seismoindia/quake-data-service/internal/observability"
)

type fakeStore struct {
	events []domain.Earthquake
	err    error
	filter domain.Filter
}

func (f *fakeStore) Query(_ context.Context, filter domain.Filter) ([]domain.Earthquake, error) {
	f.filter = filter
	return f.events, f.err
}

type fakeSMS struct {
	to, body string
	err      error
}

func (f *fakeSMS) Send(_ context.Context, to, body string) error {
	f.to = to
	f.body = body
	return f.err
}

func (f *fakeSMS) Name() string { return "fake" }

type stubReady struct{ err error }

func (s stubReady) CheckReadiness(context.Context) error { return s.err }

func testEvents() []domain.Earthquake {
	return []domain.Earthquake{
		{
			ID:             "us1000abcd",
			Magnitude:      5.2,
			Location:       "12 km NE of Tezpur, India",
			OccurredAt:     time.Date(2024, 3, 10, 4, 30, 0, 0, time.UTC),
			Depth:          10,
			Lat:            26.7,
			Lon:            92.9,
			State:          "Assam",
			Region:         domain.RegionNortheastern,
			Source:         domain.SourceUSGS,
			MagnitudeClass: "moderate",
		},
		{
			ID:             "us1000wxyz",
			Magnitude:      4.1,
			Location:       "Kutch, Gujarat, India",
			OccurredAt:     time.Date(2024, 1, 2, 18, 0, 0, 0, time.UTC),
			Depth:          22,
			Lat:            23.5,
			Lon:            70.1,
			State:          "Gujarat",
			Region:         domain.RegionWestern,
			Source:         domain.SourceUSGS,
			MagnitudeClass: "light",
		},
	}
}

func newTestServer(t *testing.T, store QueryStore, sms SMSSender, ready ReadinessChecker) *Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(&strings.Builder{}, nil))
	if ready == nil {
		ready = stubReady{}
	}
	return NewServer(":0", store, sms, ready, observability.NewMetricsForTesting(), logger)
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t, &fakeStore{}, nil, nil)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
}

func TestReadyEndpoint(t *testing.T) {
	t.Run("ready", func(t *testing.T) {
		srv := newTestServer(t, &fakeStore{}, nil, stubReady{})

		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("not ready", func(t *testing.T) {
		srv := newTestServer(t, &fakeStore{}, nil, stubReady{err: errors.New("no data yet")})

		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), "no data yet")
	})
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, &fakeStore{}, nil, nil)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListEarthquakes(t *testing.T) {
	t.Run("returns envelope with stats and date range", func(t *testing.T) {
		store := &fakeStore{events: testEvents()}
		srv := newTestServer(t, store, nil, nil)

		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/earthquakes?type=all&minMagnitude=3.0", nil))

		require.Equal(t, http.StatusOK, rec.Code)

		var resp listResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

		assert.Equal(t, 2, resp.Count)
		assert.Len(t, resp.Earthquakes, 2)
		assert.Equal(t, domain.DataTypeAll, resp.DataType)
		assert.Equal(t, domain.SourceUSGS, resp.Source)
		assert.Equal(t, "2024-01-02T18:00:00Z", resp.DateRange.From)
		assert.Equal(t, "2024-03-10T04:30:00Z", resp.DateRange.To)
		assert.Equal(t, 2, resp.Stats.Count)
		assert.InDelta(t, 5.2, resp.Stats.MaxMagnitude, 0.001)
		assert.Equal(t, "us1000abcd", resp.Stats.StrongestID)

		assert.Equal(t, domain.DataTypeAll, store.filter.Type)
		assert.InDelta(t, 3.0, store.filter.MinMagnitude, 0.001)
	})

	t.Run("defaults to recent", func(t *testing.T) {
		store := &fakeStore{}
		srv := newTestServer(t, store, nil, nil)

		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/earthquakes", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, domain.DataTypeRecent, store.filter.Type)

		var resp listResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 0, resp.Count)
		assert.NotNil(t, resp.Earthquakes)
	})

	t.Run("passes year and location filters", func(t *testing.T) {
		store := &fakeStore{}
		srv := newTestServer(t, store, nil, nil)

		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
			"/api/earthquakes?type=historical&startYear=1990&endYear=2000&state=Gujarat&region=Western+India&limit=50", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, domain.DataTypeHistorical, store.filter.Type)
		assert.Equal(t, 1990, store.filter.StartYear)
		assert.Equal(t, 2000, store.filter.EndYear)
		assert.Equal(t, "Gujarat", store.filter.State)
		assert.Equal(t, "Western India", store.filter.Region)
		assert.Equal(t, 50, store.filter.Limit)
	})

	t.Run("rejects unknown type", func(t *testing.T) {
		srv := newTestServer(t, &fakeStore{}, nil, nil)

		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/earthquakes?type=upcoming", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "recent, historical, all")
	})

	t.Run("rejects malformed numbers", func(t *testing.T) {
		srv := newTestServer(t, &fakeStore{}, nil, nil)

		for _, target := range []string{
			"/api/earthquakes?startYear=abc",
			"/api/earthquakes?limit=-1",
			"/api/earthquakes?minMagnitude=big",
			"/api/earthquakes?startYear=2000&endYear=1990",
		} {
			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
			assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		}
	})

	t.Run("store failure", func(t *testing.T) {
		srv := newTestServer(t, &fakeStore{err: errors.New("connection refused")}, nil, nil)

		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/earthquakes", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "connection refused")
	})
}

func TestExport(t *testing.T) {
	t.Run("csv by default", func(t *testing.T) {
		srv := newTestServer(t, &fakeStore{events: testEvents()}, nil, nil)

		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/earthquakes/export", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "earthquakes.csv")

		lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
		require.Len(t, lines, 3)
		assert.Equal(t, "id,magnitude,location,occurred_at,depth,latitude,longitude,state,region,is_historical,source", lines[0])
		assert.Contains(t, lines[1], "us1000abcd")
	})

	t.Run("json", func(t *testing.T) {
		srv := newTestServer(t, &fakeStore{events: testEvents()}, nil, nil)

		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/earthquakes/export?format=json", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var events []domain.Earthquake
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &events))
		assert.Len(t, events, 2)
	})

	t.Run("unknown format", func(t *testing.T) {
		srv := newTestServer(t, &fakeStore{}, nil, nil)

		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/earthquakes/export?format=xml", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestSMSAlert(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		sms := &fakeSMS{}
		srv := newTestServer(t, &fakeStore{}, sms, nil)

		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/alerts/sms",
			strings.NewReader(`{"phoneNumber":"+91 98765 43210","state":"Gujarat","minMagnitude":5}`)))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "+919876543210", sms.to)
		assert.Contains(t, sms.body, "Gujarat")
		assert.Contains(t, sms.body, "5.0")

		var resp map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, true, resp["success"])
		assert.Contains(t, resp["message"], "Gujarat")
	})

	t.Run("defaults state and threshold", func(t *testing.T) {
		sms := &fakeSMS{}
		srv := newTestServer(t, &fakeStore{}, sms, nil)

		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/alerts/sms",
			strings.NewReader(`{"phoneNumber":"9876543210"}`)))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, sms.body, domain.DefaultState)
		assert.Contains(t, sms.body, "4.0")
	})

	t.Run("invalid number", func(t *testing.T) {
		srv := newTestServer(t, &fakeStore{}, &fakeSMS{}, nil)

		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/alerts/sms",
			strings.NewReader(`{"phoneNumber":"1234567890"}`)))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "error")
	})

	t.Run("malformed body", func(t *testing.T) {
		srv := newTestServer(t, &fakeStore{}, &fakeSMS{}, nil)

		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/alerts/sms",
			strings.NewReader(`{"phoneNumber":`)))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("no provider configured", func(t *testing.T) {
		srv := newTestServer(t, &fakeStore{}, nil, nil)

		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/alerts/sms",
			strings.NewReader(`{"phoneNumber":"9876543210"}`)))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("gateway failure", func(t *testing.T) {
		sms := &fakeSMS{err: errors.New("upstream 500")}
		srv := newTestServer(t, &fakeStore{}, sms, nil)

		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/alerts/sms",
			strings.NewReader(`{"phoneNumber":"9876543210"}`)))

		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
}

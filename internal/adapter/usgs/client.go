// Package usgs implements the HTTP client for the USGS FDSN event service.
package usgs

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/seismoindia/quake-data-service/internal/domain"
)

// India's bounding box for feed queries. Wide on purpose: border and
// offshore events still matter to users, and classification buckets them to
// the country-level default.
const (
	minLatitude  = 6.0
	maxLatitude  = 38.0
	minLongitude = 68.0
	maxLongitude = 98.0
)

// Query narrows a feed request. Zero times mean "no bound"; a zero
// MinMagnitude requests everything the feed has.
type Query struct {
	Start        time.Time
	End          time.Time
	MinMagnitude float64
	Limit        int
	Offset       int // 1-based, per the FDSN spec
}

// Client fetches earthquake features from the USGS FDSN event API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a USGS feed client. baseURL is the API root without a
// trailing slash, e.g. "https://earthquake.usgs.gov/fdsnws/event/1".
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// FetchEvents queries the feed for earthquake features inside India's
// bounding box, newest first.
func (c *Client) FetchEvents(ctx context.Context, q Query) ([]domain.Feature, error) {
	params := url.Values{
		"format":       {"geojson"},
		"eventtype":    {"earthquake"},
		"minlatitude":  {formatCoord(minLatitude)},
		"maxlatitude":  {formatCoord(maxLatitude)},
		"minlongitude": {formatCoord(minLongitude)},
		"maxlongitude": {formatCoord(maxLongitude)},
		"orderby":      {"time"},
	}
	if !q.Start.IsZero() {
		params.Set("starttime", q.Start.UTC().Format(time.RFC3339))
	}
	if !q.End.IsZero() {
		params.Set("endtime", q.End.UTC().Format(time.RFC3339))
	}
	if q.MinMagnitude > 0 {
		params.Set("minmagnitude", strconv.FormatFloat(q.MinMagnitude, 'f', -1, 64))
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		params.Set("offset", strconv.Itoa(q.Offset))
	}

	fullURL := c.baseURL + "/query?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("usgs feed request: %w", err)
	}
	defer resp.Body.Close()

	// 204 means the query matched nothing; the FDSN spec allows it instead
	// of an empty collection.
	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("usgs API error: status %d: %s", resp.StatusCode, body)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	fc, err := domain.ParseFeatureCollection(body)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("usgs fetch complete", "count", len(fc.Features))
	return fc.Features, nil
}

// Extract implements the pipeline's extractor: features since the given
// time, bounded by the configured minimum magnitude and page size.
func (c *Client) Extract(ctx context.Context, since time.Time, minMagnitude float64, limit int) ([]domain.Feature, error) {
	return c.FetchEvents(ctx, Query{
		Start:        since,
		MinMagnitude: minMagnitude,
		Limit:        limit,
	})
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

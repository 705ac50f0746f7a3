package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/claimworks/subsidence-report/pkg/models/domain"
	"github.com/claimworks/subsidence-report/pkg/observability"
	"github.com/rs/zerolog"
)

const defaultBaseURL = "https://api.opencagedata.com/geocode/v1/json"

// Resolver turns an Eircode into a coordinate. A failed resolution is
// reported as domain.ErrAreaCodeNotFound, never as a transport error.
type Resolver interface {
	Resolve(ctx context.Context, eircode string) (domain.Coordinate, error)
}

// Client implements Resolver using the OpenCage forward geocoding API,
// restricted to Ireland and to the first result.
type Client struct {
	key        string
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
}

func NewClient(key string, timeout time.Duration, metrics *observability.Metrics) *Client {
	return &Client{
		key: key,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: defaultBaseURL,
		metrics: metrics,
	}
}

// Resolve performs a single lookup attempt. No retry, no caching: one
// authoritative answer per submission.
func (c *Client) Resolve(ctx context.Context, eircode string) (domain.Coordinate, error) {
	logger := zerolog.Ctx(ctx)

	if c.key == "" {
		return domain.Coordinate{}, &domain.ConfigError{Field: "OPENCAGE_API_KEY"}
	}

	params := url.Values{
		"q":           {eircode},
		"key":         {c.key},
		"countrycode": {"ie"},
		"limit":       {"1"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return domain.Coordinate{}, fmt.Errorf("create geocode request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.ExternalRequestDuration.WithLabelValues("opencage").Observe(time.Since(start).Seconds())
	if err != nil {
		logger.Warn().Err(err).Str("eircode", eircode).Msg("geocode request failed")
		return domain.Coordinate{}, domain.ErrAreaCodeNotFound
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Warn().Int("status", resp.StatusCode).Str("eircode", eircode).Msg("geocode service error")
		return domain.Coordinate{}, domain.ErrAreaCodeNotFound
	}

	var ocResp response
	if err := json.NewDecoder(resp.Body).Decode(&ocResp); err != nil {
		logger.Warn().Err(err).Msg("failed to decode geocode response")
		return domain.Coordinate{}, domain.ErrAreaCodeNotFound
	}

	if len(ocResp.Results) == 0 {
		return domain.Coordinate{}, domain.ErrAreaCodeNotFound
	}

	g := ocResp.Results[0].Geometry
	return domain.Coordinate{Lat: g.Lat, Lng: g.Lng}, nil
}

// OpenCage API response types.

type response struct {
	Results []result `json:"results"`
}

type result struct {
	Geometry geometry `json:"geometry"`
}

type geometry struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}
